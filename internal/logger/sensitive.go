package logger

import (
	"regexp"
	"strings"
)

const redactedValue = "[REDACTED]"

// SensitiveDataPatterns contains regex patterns for sensitive data that should be redacted in logs
var SensitiveDataPatterns = []*regexp.Regexp{
	// Auth tokens (Bearer, JWT, etc.)
	regexp.MustCompile(`(?i)(bearer\s+)([A-Za-z0-9-._~+/]+=*)`),

	// Passwords, tokens and secrets in key=value form
	regexp.MustCompile(`(?i)((token|secret|passw(or)?d)[0-9a-z\-_\.]*[\s:=]+)([^;,\s]{3,})`),

	// Session cookies
	regexp.MustCompile(`(?i)((session|sid)=)([^;,\s]{5,})`),
}

// SensitiveKeywords are field keys whose values are always redacted
var SensitiveKeywords = []string{
	"password", "passwd", "secret", "token", "cookie", "session_key", "authorization", "dsn",
}

// RedactSensitiveData replaces sensitive information with "[REDACTED]"
func RedactSensitiveData(input string) string {
	if input == "" {
		return input
	}
	for _, pattern := range SensitiveDataPatterns {
		input = pattern.ReplaceAllString(input, "$1"+redactedValue)
	}
	return input
}

func isSensitiveKey(key string) bool {
	keyLower := strings.ToLower(key)
	for _, sensitive := range SensitiveKeywords {
		if strings.Contains(keyLower, sensitive) {
			return true
		}
	}
	return false
}
