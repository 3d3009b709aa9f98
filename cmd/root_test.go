package cmd

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/retinascan/internal/buildinfo"
	"github.com/tphakala/retinascan/internal/conf"
)

func testSettings() *conf.Settings {
	return &conf.Settings{
		Server:       conf.ServerSettings{URL: "http://localhost:5000"},
		HTTP:         conf.HTTPSettings{UserAgent: conf.DefaultUserAgent},
		Notification: conf.NotificationSettings{Duration: 3 * time.Second, Fade: 300 * time.Millisecond},
		Display:      conf.DisplaySettings{Locale: "en-US", Timezone: "UTC"},
		Logging:      conf.LoggingSettings{Level: "error"},
		Telemetry:    conf.TelemetrySettings{DSN: "https://key@sentry.example/1"},
		DevServer:    conf.DevServerSettings{Listen: "127.0.0.1:0", SessionKey: "hunter2"},
	}
}

func TestRootCommand_Subcommands(t *testing.T) {
	root := RootCommand(testSettings(), buildinfo.Info{Version: "test"})

	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"shell", "analyze", "history", "devserver", "config"} {
		assert.Contains(t, names, want)
	}
}

func TestConfigCommand_FlagsAndMasking(t *testing.T) {
	settings := testSettings()
	root := RootCommand(settings, buildinfo.Info{Version: "test"})

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"config", "--server", "https://screening.example", "--locale", "de-DE"})
	require.NoError(t, root.Execute())

	text := out.String()
	assert.Contains(t, text, "https://screening.example")
	assert.Contains(t, text, "de-DE")
	assert.NotContains(t, text, "hunter2")
	assert.NotContains(t, text, "key@sentry")
	assert.Equal(t, "https://screening.example", settings.Server.URL)
}

func TestRootCommand_RejectsInvalidFlag(t *testing.T) {
	root := RootCommand(testSettings(), buildinfo.Info{Version: "test"})
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"config", "--server", "ftp://nope"})

	require.Error(t, root.Execute())
}
