// Package testbackend starts the development backend for command tests.
package testbackend

import (
	"bytes"
	"image"
	"image/png"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/tphakala/retinascan/internal/conf"
	"github.com/tphakala/retinascan/internal/devserver"
)

// Start serves a devserver with one account, alice/s3cret, and returns
// client settings pointing at it.
func Start(t *testing.T) *conf.Settings {
	t.Helper()

	srv, err := devserver.New(devserver.Config{
		SessionKey: "cmd-test",
		BcryptCost: bcrypt.MinCost,
		AuthRate:   -1,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = srv.Close() })
	_, err = srv.Store().CreateUser("alice", "alice@example.com", "s3cret")
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	return &conf.Settings{
		Server:       conf.ServerSettings{URL: ts.URL},
		HTTP:         conf.HTTPSettings{Timeout: 10 * time.Second, UserAgent: conf.DefaultUserAgent},
		Notification: conf.NotificationSettings{Duration: time.Minute, Fade: time.Second},
		Display:      conf.DisplaySettings{Locale: "en-US", Timezone: "UTC"},
		Logging:      conf.LoggingSettings{Level: "error"},
	}
}

// WriteImage writes a bright 8x8 PNG to a temp dir and returns its path.
func WriteImage(t *testing.T, name string) string {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 8, 8))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))
	return path
}
