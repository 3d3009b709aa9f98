package upload

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/retinascan/internal/errors"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := range w {
		for y := range h {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 40, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestNew_SniffsType(t *testing.T) {
	t.Parallel()

	img := New("/tmp/scans/left-eye.png", pngBytes(t, 4, 4))
	assert.Equal(t, "left-eye.png", img.Filename())
	assert.Equal(t, "image/png", img.ContentType())
	assert.True(t, img.IsImage())

	text := New("notes.txt", []byte("hello world"))
	assert.Equal(t, "text/plain", text.ContentType(), "charset parameter stripped")
	assert.False(t, text.IsImage())
}

func TestPreviewDataURL(t *testing.T) {
	t.Parallel()

	// larger than one encoding chunk
	data := bytes.Repeat([]byte{0xFF, 0xD8, 0xFF, 0xE0, 1, 2, 3}, 100_000)
	img := New("big.jpg", data)

	url, err := img.PreviewDataURL(t.Context())
	require.NoError(t, err)

	prefix := "data:" + img.ContentType() + ";base64,"
	require.True(t, strings.HasPrefix(url, prefix))
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(url, prefix))
	require.NoError(t, err)
	assert.Equal(t, data, decoded)
}

func TestPreviewDataURL_Empty(t *testing.T) {
	t.Parallel()

	url, err := New("empty.bin", nil).PreviewDataURL(t.Context())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "data:"))
	assert.True(t, strings.HasSuffix(url, ";base64,"))
}

func TestPreviewDataURL_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err := New("a.png", pngBytes(t, 2, 2)).PreviewDataURL(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, errors.IsCategory(err, errors.CategoryCancellation))
}

func TestFromFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "fundus.png")
	require.NoError(t, os.WriteFile(path, pngBytes(t, 3, 3), 0o600))

	img, err := FromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "fundus.png", img.Filename())
	assert.Positive(t, img.Size())

	_, err = FromFile(filepath.Join(t.TempDir(), "missing.png"))
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryFileIO))
}

func TestFromReader(t *testing.T) {
	t.Parallel()

	img, err := FromReader("eye.png", bytes.NewReader(pngBytes(t, 2, 2)))
	require.NoError(t, err)
	assert.Equal(t, "image/png", img.ContentType())
}
