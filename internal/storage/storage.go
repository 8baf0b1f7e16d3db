package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/xerrors"
)

type Storage interface {
	// Put stores data with the given key and returns the storage URL
	Put(ctx context.Context, key string, data []byte) (string, error)
	// Get retrieves data from the given storage URL
	Get(ctx context.Context, url string) ([]byte, error)
}

const (
	BackendNone = "none"
	BackendFile = "file"
	BackendS3   = "s3"
)

var ErrUnknownBackend = xerrors.New("unknown storage backend")

type Config struct {
	Backend string
	File    FileConfig
	S3      S3Config
}

// New returns the backend named by c.Backend, or nil for BackendNone.
func New(ctx context.Context, c Config) (Storage, error) {
	switch c.Backend {
	case BackendNone, "":
		return nil, nil
	case BackendFile:
		return NewFileStorage(ctx, c.File)
	case BackendS3:
		return NewS3Storage(ctx, c.S3)
	default:
		return nil, xerrors.Errorf("%q: %w", c.Backend, ErrUnknownBackend)
	}
}

// Key builds a content addressed key, prefix/<xxhash>/<timestamp><ext>, so
// artifacts with identical bytes share a directory.
func Key(prefix string, data []byte, ext string) string {
	return keyAt(prefix, data, ext, time.Now())
}

func keyAt(prefix string, data []byte, ext string, now time.Time) string {
	return fmt.Sprintf("%s/%016x/%s%s", prefix, xxhash.Sum64(data), now.UTC().Format("20060102150405"), ext)
}
