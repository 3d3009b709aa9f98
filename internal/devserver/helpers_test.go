package devserver

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/tphakala/retinascan/internal/api"
	"github.com/tphakala/retinascan/internal/httpclient"
)

// fakeClock advances one second per reading.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 5, 14, 7, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

func testConfig() Config {
	return Config{
		SessionKey: "test-session-key",
		BcryptCost: bcrypt.MinCost,
		AuthRate:   -1,
		Now:        newFakeClock().Now,
	}
}

// newTestServer starts the devserver under httptest.
func newTestServer(t *testing.T, cfg Config) (*Server, *httptest.Server) {
	t.Helper()
	s, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, s.Close()) })
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

// newAPIClient returns a backend client with its own cookie jar.
func newAPIClient(t *testing.T, baseURL string) *api.Client {
	t.Helper()
	c, _ := newAPIClientWithHTTP(t, baseURL)
	return c
}

// newAPIClientWithHTTP also returns the raw client sharing the cookie jar.
func newAPIClientWithHTTP(t *testing.T, baseURL string) (*api.Client, *http.Client) {
	t.Helper()
	hc, err := httpclient.New(nil)
	require.NoError(t, err)
	t.Cleanup(hc.Close)

	c, err := api.NewClient(baseURL, hc)
	require.NoError(t, err)
	return c, hc.HTTPClient()
}

func decodeErrorBody(t *testing.T, r io.Reader) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.NewDecoder(r).Decode(&body))
	return body.Error
}

func counterValue(c prometheus.Counter) (float64, error) {
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		return 0, err
	}
	return m.GetCounter().GetValue(), nil
}

// solidPNG encodes a size x size image filled with gray level v.
func solidPNG(t *testing.T, v uint8, size int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := range size {
		for x := range size {
			img.Set(x, y, color.RGBA{R: v, G: v, B: v, A: 0xff})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

type pngImage struct {
	name string
	data []byte
}

func (i pngImage) Filename() string    { return i.name }
func (i pngImage) ContentType() string { return "image/png" }
func (i pngImage) Bytes() []byte       { return i.data }
