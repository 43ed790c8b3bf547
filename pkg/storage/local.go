package storage

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/smith3v/sentence-trainer/pkg/apperr"
)

// Local writes blobs below BaseDir and serves them under PublicPrefix.
type Local struct {
	BaseDir      string
	PublicPrefix string
}

func NewLocal(baseDir, publicPrefix string) *Local {
	if publicPrefix == "" {
		publicPrefix = "/static/audio"
	}
	return &Local{BaseDir: baseDir, PublicPrefix: strings.TrimRight(publicPrefix, "/")}
}

func (l *Local) Name() string { return "local" }

func (l *Local) path(key string) (string, error) {
	key = cleanKey(key)
	target := filepath.Join(l.BaseDir, filepath.FromSlash(key))
	rel, err := filepath.Rel(l.BaseDir, target)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", apperr.Processing("invalid audio key "+key, err)
	}
	return target, nil
}

func (l *Local) Upload(_ context.Context, data []byte, key, _ string) (string, error) {
	target, err := l.path(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", apperr.Processing("failed to create audio directory", err)
	}
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return "", apperr.Processing("failed to write audio file", err)
	}
	return l.PublicPrefix + "/" + cleanKey(key), nil
}

func (l *Local) Delete(_ context.Context, key string) error {
	target, err := l.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(target); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return apperr.Processing("failed to delete audio file", err)
	}
	return nil
}
