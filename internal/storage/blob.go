package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

// ErrInvalidKey is returned for object keys that would escape the storage root.
var ErrInvalidKey = errors.New("invalid object key")

// Blob is a prepared upload ready to be written.
type Blob struct {
	Key         string
	ContentType string
	Data        []byte
}

// IBlobStore persists uploaded media and returns a public URL for it.
type IBlobStore interface {
	Put(ctx context.Context, blob Blob) (string, error)
}

// LocalStorage writes blobs under a directory that the HTTP server exposes at /uploads.
type LocalStorage struct {
	dir     string
	baseURL string
}

// NewLocalStorage creates dir if needed. URLs are baseURL + "/uploads/" + key.
func NewLocalStorage(dir, baseURL string) (*LocalStorage, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("upload directory cannot be empty")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory '%s': %w", dir, err)
	}
	return &LocalStorage{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (s *LocalStorage) Dir() string { return s.dir }

func (s *LocalStorage) Put(ctx context.Context, blob Blob) (string, error) {
	if blob.Key == "" || blob.Key != filepath.Base(blob.Key) || strings.HasPrefix(blob.Key, ".") {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, blob.Key)
	}
	path := filepath.Join(s.dir, blob.Key)
	if err := os.WriteFile(path, blob.Data, 0644); err != nil {
		return "", fmt.Errorf("failed to write upload '%s': %w", path, err)
	}
	log.Ctx(ctx).Debug().Str("key", blob.Key).Int("bytes", len(blob.Data)).Msg("stored upload on disk")
	return s.baseURL + "/uploads/" + blob.Key, nil
}
