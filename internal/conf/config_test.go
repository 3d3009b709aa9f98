package conf

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o600))
	return dir
}

func TestLoad_EmbeddedDefaults(t *testing.T) {
	settings, err := load(viper.New(), []string{t.TempDir()})
	require.NoError(t, err)

	assert.Equal(t, DefaultServerURL, settings.Server.URL)
	assert.Equal(t, time.Duration(0), settings.HTTP.Timeout, "no client-side timeout by default")
	assert.Equal(t, DefaultUserAgent, settings.HTTP.UserAgent)
	assert.Equal(t, DefaultNotificationDuration, settings.Notification.Duration)
	assert.Equal(t, DefaultNotificationFade, settings.Notification.Fade)
	assert.Equal(t, DefaultLocale, settings.Display.Locale)
	assert.Equal(t, "Local", settings.Display.Timezone)
	assert.Equal(t, "info", settings.Logging.Level)
	assert.False(t, settings.Telemetry.Enabled)
}

func TestLoad_ConfigFileOverrides(t *testing.T) {
	dir := writeConfig(t, `
server:
  url: https://screening.example.org
http:
  timeout: 45s
notification:
  duration: 5s
display:
  locale: de-DE
  timezone: UTC
logging:
  level: debug
`)

	settings, err := load(viper.New(), []string{dir})
	require.NoError(t, err)

	assert.Equal(t, "https://screening.example.org", settings.Server.URL)
	assert.Equal(t, 45*time.Second, settings.HTTP.Timeout)
	assert.Equal(t, 5*time.Second, settings.Notification.Duration)
	assert.Equal(t, DefaultNotificationFade, settings.Notification.Fade, "unset keys keep defaults")
	assert.Equal(t, "de-DE", settings.Display.Locale)
	assert.Equal(t, "UTC", settings.Display.Timezone)
	assert.Equal(t, "debug", settings.Logging.Level)
}

func TestLoad_InvalidSettingsRejected(t *testing.T) {
	dir := writeConfig(t, `
server:
  url: ftp://example.org
`)

	_, err := load(viper.New(), []string{dir})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.url")
}

func TestLoad_EnvironmentOverride(t *testing.T) {
	t.Setenv("RETINASCAN_SERVER", "http://10.0.0.5:8080")
	t.Setenv("RETINASCAN_LOG_LEVEL", "warn")

	settings, err := load(viper.New(), []string{t.TempDir()})
	require.NoError(t, err)

	assert.Equal(t, "http://10.0.0.5:8080", settings.Server.URL)
	assert.Equal(t, "warn", settings.Logging.Level)
}

func TestValidateSettings(t *testing.T) {
	t.Parallel()

	valid := func() *Settings {
		return &Settings{
			Server:       ServerSettings{URL: DefaultServerURL},
			Notification: NotificationSettings{Duration: time.Second},
			Display:      DisplaySettings{Locale: "en-US", Timezone: "UTC"},
			Logging:      LoggingSettings{Level: "info"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(s *Settings)
		wantErr string
	}{
		{"valid", func(s *Settings) {}, ""},
		{"missing host", func(s *Settings) { s.Server.URL = "http://" }, "server.url"},
		{"negative timeout", func(s *Settings) { s.HTTP.Timeout = -time.Second }, "http.timeout"},
		{"zero notification duration", func(s *Settings) { s.Notification.Duration = 0 }, "notification.duration"},
		{"negative fade", func(s *Settings) { s.Notification.Fade = -time.Millisecond }, "notification.fade"},
		{"bad locale", func(s *Settings) { s.Display.Locale = "not a locale!" }, "display.locale"},
		{"bad timezone", func(s *Settings) { s.Display.Timezone = "Mars/Olympus" }, "display.timezone"},
		{"bad log level", func(s *Settings) { s.Logging.Level = "verbose" }, "logging.level"},
		{"telemetry without dsn", func(s *Settings) { s.Telemetry.Enabled = true }, "telemetry.dsn"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := valid()
			tt.mutate(s)
			err := ValidateSettings(s)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			var ve ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestMarshalYAMLMasked(t *testing.T) {
	t.Parallel()

	s := &Settings{
		Server:    ServerSettings{URL: DefaultServerURL},
		Telemetry: TelemetrySettings{Enabled: true, DSN: "https://key@sentry.example/1"},
		DevServer: DevServerSettings{SessionKey: "super-secret-key"},
	}

	out, err := s.MarshalYAMLMasked()
	require.NoError(t, err)
	assert.NotContains(t, string(out), "super-secret-key")
	assert.NotContains(t, string(out), "key@sentry")

	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal(out, &decoded))
	assert.Contains(t, decoded, "server")
	assert.Equal(t, "https://key@sentry.example/1", s.Telemetry.DSN, "original settings untouched")
}
