// conf/validate.go

package conf

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/language"
)

// ValidationError represents a collection of validation errors
type ValidationError struct {
	Errors []string
}

// Error returns a string representation of the validation errors
func (ve ValidationError) Error() string {
	return fmt.Sprintf("validation errors: %s", strings.Join(ve.Errors, "; "))
}

// ValidateSettings validates the entire Settings struct
func ValidateSettings(settings *Settings) error {
	ve := ValidationError{}

	if err := validateServerURL(settings.Server.URL); err != nil {
		ve.Errors = append(ve.Errors, fmt.Sprintf("server.url: %v", err))
	}

	if settings.HTTP.Timeout < 0 {
		ve.Errors = append(ve.Errors, "http.timeout must not be negative")
	}

	if settings.Notification.Duration <= 0 {
		ve.Errors = append(ve.Errors, "notification.duration must be positive")
	}
	if settings.Notification.Fade < 0 {
		ve.Errors = append(ve.Errors, "notification.fade must not be negative")
	}

	if _, err := language.Parse(settings.Display.Locale); err != nil {
		ve.Errors = append(ve.Errors, fmt.Sprintf("display.locale: %v", err))
	}
	if _, err := LoadTimezone(settings.Display.Timezone); err != nil {
		ve.Errors = append(ve.Errors, fmt.Sprintf("display.timezone: %v", err))
	}

	if err := validateLogLevel(settings.Logging.Level); err != nil {
		ve.Errors = append(ve.Errors, fmt.Sprintf("logging.level: %v", err))
	}

	if settings.Telemetry.Enabled && settings.Telemetry.DSN == "" {
		ve.Errors = append(ve.Errors, "telemetry.dsn is required when telemetry is enabled")
	}

	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}

// LoadTimezone resolves "Local", "UTC" or an IANA zone name
func LoadTimezone(name string) (*time.Location, error) {
	switch name {
	case "", "Local":
		return time.Local, nil
	default:
		return time.LoadLocation(name)
	}
}

func validateLogLevel(level string) error {
	switch level {
	case "trace", "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("unknown log level %q", level)
	}
}
