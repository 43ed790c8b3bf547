package storage

import (
	"context"
	"strings"
)

const AudioContentType = "audio/mpeg"

// Backend stores audio blobs and returns their public URL.
type Backend interface {
	Upload(ctx context.Context, data []byte, key, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
	Name() string
}

func cleanKey(key string) string {
	return strings.TrimLeft(key, "/")
}
