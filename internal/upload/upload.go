// Package upload holds the image a user selected but has not submitted yet.
package upload

import (
	"context"
	"encoding/base64"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/tphakala/retinascan/internal/errors"
)

// PendingImage is immutable once created. A new selection replaces it.
type PendingImage struct {
	name string
	mime string
	data []byte
}

// New wraps data read from a file called name. The content type is sniffed
// from the bytes; no type or size policy is applied.
func New(name string, data []byte) *PendingImage {
	return &PendingImage{
		name: filepath.Base(name),
		mime: mimetype.Detect(data).String(),
		data: data,
	}
}

// FromFile reads path fully.
func FromFile(path string) (*PendingImage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New(err).
			Component("upload").
			Category(errors.CategoryFileIO).
			FileContext(path, 0).
			Build()
	}
	return New(path, data), nil
}

// FromReader drains r.
func FromReader(name string, r io.Reader) (*PendingImage, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.New(err).
			Component("upload").
			Category(errors.CategoryFileIO).
			Context("file_name", filepath.Base(name)).
			Build()
	}
	return New(name, data), nil
}

// Filename returns the base name of the selected file.
func (p *PendingImage) Filename() string { return p.name }

// ContentType returns the sniffed MIME type, without parameters.
func (p *PendingImage) ContentType() string {
	if i := strings.IndexByte(p.mime, ';'); i >= 0 {
		return p.mime[:i]
	}
	return p.mime
}

// Bytes returns the raw file content. Callers must not modify it.
func (p *PendingImage) Bytes() []byte { return p.data }

// Size returns the file length in bytes.
func (p *PendingImage) Size() int { return len(p.data) }

// IsImage reports whether the sniffed type is an image/* type.
func (p *PendingImage) IsImage() bool {
	return strings.HasPrefix(p.ContentType(), "image/")
}

// PreviewDataURL encodes the image as a data: URL. It is the slow part of a
// selection and honours ctx cancellation between chunks.
func (p *PendingImage) PreviewDataURL(ctx context.Context) (string, error) {
	const chunk = 3 * 64 * 1024 // multiple of 3 keeps base64 output unpadded between chunks

	var b strings.Builder
	prefix := "data:" + p.ContentType() + ";base64,"
	b.Grow(len(prefix) + base64.StdEncoding.EncodedLen(len(p.data)))
	b.WriteString(prefix)

	buf := make([]byte, base64.StdEncoding.EncodedLen(chunk))
	for off := 0; off < len(p.data); off += chunk {
		if err := ctx.Err(); err != nil {
			return "", errors.New(err).
				Component("upload").
				Category(errors.CategoryCancellation).
				Build()
		}
		end := min(off+chunk, len(p.data))
		n := base64.StdEncoding.EncodedLen(end - off)
		base64.StdEncoding.Encode(buf[:n], p.data[off:end])
		b.Write(buf[:n])
	}
	return b.String(), nil
}
