// env.go - Environment variable configuration and validation
package conf

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// envBinding holds metadata for environment variable bindings (internal use)
type envBinding struct {
	ConfigKey string             // Viper config key
	EnvVar    string             // Environment variable name
	Validate  func(string) error // Optional validation function
}

// getEnvBindings returns all environment variable bindings with validation
func getEnvBindings() []envBinding {
	return []envBinding{
		{"debug", "RETINASCAN_DEBUG", validateEnvBool},
		{"server.url", "RETINASCAN_SERVER", validateEnvURL},
		{"http.timeout", "RETINASCAN_HTTP_TIMEOUT", validateEnvDuration},
		{"notification.duration", "RETINASCAN_NOTIFICATION_DURATION", validateEnvDuration},
		{"display.locale", "RETINASCAN_LOCALE", nil},
		{"display.timezone", "RETINASCAN_TIMEZONE", nil},
		{"logging.level", "RETINASCAN_LOG_LEVEL", validateEnvLogLevel},
		{"logging.file", "RETINASCAN_LOG_FILE", nil},
		{"telemetry.enabled", "RETINASCAN_TELEMETRY", validateEnvBool},
		{"telemetry.dsn", "RETINASCAN_SENTRY_DSN", nil},
		{"devserver.listen", "RETINASCAN_DEVSERVER_LISTEN", nil},
		{"devserver.sessionkey", "RETINASCAN_DEVSERVER_SESSION_KEY", nil},
		{"devserver.database", "RETINASCAN_DEVSERVER_DATABASE", nil},
	}
}

// bindEnvVars sets up environment variable bindings with validation (internal)
func bindEnvVars(v *viper.Viper) error {
	var warnings []string

	for _, binding := range getEnvBindings() {
		if err := v.BindEnv(binding.ConfigKey, binding.EnvVar); err != nil {
			warnings = append(warnings, fmt.Sprintf("failed to bind %s: %v", binding.EnvVar, err))
			continue
		}

		if binding.Validate == nil {
			continue
		}
		if envValue, ok := os.LookupEnv(binding.EnvVar); ok {
			if err := binding.Validate(envValue); err != nil {
				warnings = append(warnings, fmt.Sprintf("invalid %s value '%s': %v", binding.EnvVar, envValue, err))
			}
		}
	}

	if len(warnings) > 0 {
		return fmt.Errorf("environment variable issues:\n  - %s", strings.Join(warnings, "\n  - "))
	}
	return nil
}

// validateEnvBool validates boolean environment variables
func validateEnvBool(value string) error {
	if _, err := strconv.ParseBool(strings.TrimSpace(value)); err != nil {
		return fmt.Errorf("invalid boolean value: %s", value)
	}
	return nil
}

// validateEnvURL validates the backend base URL
func validateEnvURL(value string) error {
	return validateServerURL(strings.TrimSpace(value))
}

// validateEnvDuration validates Go duration strings such as "3s"
func validateEnvDuration(value string) error {
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return fmt.Errorf("invalid duration: %w", err)
	}
	if d < 0 {
		return fmt.Errorf("duration must not be negative")
	}
	return nil
}

// validateEnvLogLevel validates log level names
func validateEnvLogLevel(value string) error {
	return validateLogLevel(strings.ToLower(strings.TrimSpace(value)))
}

func validateServerURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("URL must include a host")
	}
	return nil
}
