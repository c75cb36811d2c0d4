// Package imagestore keeps uploaded meal images. Objects are addressed by
// names minted with idx.NewObjectName and live either in a local directory
// or in a MinIO bucket.
package imagestore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"

	"github.com/aussiebroadwan/bitebank/pkg/idx"
)

// Backends selectable through ORDER_IMAGE_STORE.
const (
	BackendLocal = "local"
	BackendMinio = "minio"
)

// sniffLen is how much of an upload http.DetectContentType looks at.
const sniffLen = 512

var (
	ErrNotFound = errors.New("imagestore: image not found")
	ErrNotImage = errors.New("imagestore: file is not a supported image")
)

// extensions maps every accepted content type to the extension used when the
// uploaded file name has none.
var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
	"image/bmp":  ".bmp",
}

// Object is an open image. The caller closes it.
type Object struct {
	io.ReadCloser
	ContentType string
	Size        int64
}

// Store is an image backend.
type Store interface {
	// Put stores size bytes from r under name.
	Put(ctx context.Context, name string, r io.Reader, size int64, contentType string) error

	// Get opens the named image or returns ErrNotFound.
	Get(ctx context.Context, name string) (*Object, error)

	// Ping reports whether the backend is usable.
	Ping(ctx context.Context) error
}

// Save sniffs the upload, rejects anything that is not an image and stores
// the rest under a fresh object name carrying the original extension. It
// returns the name.
func Save(ctx context.Context, st Store, filename string, r io.Reader, size int64) (string, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read upload: %w", err)
	}
	head = head[:n]
	if n == 0 {
		return "", fmt.Errorf("%w: empty file", ErrNotImage)
	}

	contentType := http.DetectContentType(head)
	ext, ok := extensions[contentType]
	if !ok {
		return "", fmt.Errorf("%w: detected %s", ErrNotImage, contentType)
	}

	name := idx.NewObjectName(filename)
	if path.Ext(name) == "" {
		name += ext
	}

	body := io.MultiReader(bytes.NewReader(head), r)
	if err := st.Put(ctx, name, body, size, contentType); err != nil {
		return "", fmt.Errorf("store image: %w", err)
	}
	return name, nil
}
