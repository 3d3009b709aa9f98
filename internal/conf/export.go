package conf

import (
	"gopkg.in/yaml.v3"
)

const maskedSecret = "********"

// MarshalYAMLMasked renders the effective settings with secrets masked.
func (s *Settings) MarshalYAMLMasked() ([]byte, error) {
	masked := *s
	if masked.Telemetry.DSN != "" {
		masked.Telemetry.DSN = maskedSecret
	}
	if masked.DevServer.SessionKey != "" {
		masked.DevServer.SessionKey = maskedSecret
	}
	return yaml.Marshal(&masked)
}
