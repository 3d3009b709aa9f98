package api

import (
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/retinascan/internal/httpclient"
)

const testBaseURL = "http://backend.test"

// setupHTTPMock returns a Client whose transport is an isolated httpmock transport.
func setupHTTPMock(t *testing.T) (*Client, *httpmock.MockTransport) {
	t.Helper()

	mock := httpmock.NewMockTransport()
	hc, err := httpclient.New(&httpclient.Config{Transport: mock})
	require.NoError(t, err)
	t.Cleanup(hc.Close)

	client, err := NewClient(testBaseURL, hc)
	require.NoError(t, err)
	return client, mock
}

type testImage struct {
	name string
	mime string
	data []byte
}

func (i testImage) Filename() string    { return i.name }
func (i testImage) ContentType() string { return i.mime }
func (i testImage) Bytes() []byte       { return i.data }

func predictSuccessResponse() string {
	return `{
  "prediction": "Moderate",
  "confidence": 71.25,
  "severity_level": 2,
  "all_predictions": {
    "Moderate": 71.25,
    "Mild": 15.5,
    "No DR": 8.0,
    "Severe": 4.0,
    "Proliferative DR": 1.25
  }
}`
}
