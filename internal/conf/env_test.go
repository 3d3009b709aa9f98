package conf

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvValidators(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		validate func(string) error
		value    string
		wantErr  bool
	}{
		{"bool true", validateEnvBool, "true", false},
		{"bool garbage", validateEnvBool, "maybe", true},
		{"url http", validateEnvURL, "http://localhost:5000", false},
		{"url https", validateEnvURL, " https://example.org ", false},
		{"url no scheme", validateEnvURL, "localhost:5000", true},
		{"duration", validateEnvDuration, "1m30s", false},
		{"duration negative", validateEnvDuration, "-1s", true},
		{"duration garbage", validateEnvDuration, "soon", true},
		{"log level", validateEnvLogLevel, "DEBUG", false},
		{"log level unknown", validateEnvLogLevel, "chatty", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.validate(tt.value)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestBindEnvVars_ReportsInvalidValues(t *testing.T) {
	t.Setenv("RETINASCAN_HTTP_TIMEOUT", "forever")

	err := bindEnvVars(viper.New())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RETINASCAN_HTTP_TIMEOUT")
}

func TestBindEnvVars_Clean(t *testing.T) {
	t.Setenv("RETINASCAN_TELEMETRY", "false")

	v := viper.New()
	require.NoError(t, bindEnvVars(v))
	assert.False(t, v.GetBool("telemetry.enabled"))
}
