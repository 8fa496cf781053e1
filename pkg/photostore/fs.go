package photostore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/afero"
)

// FSStore writes photos below a directory of a filesystem.
type FSStore struct {
	fs     afero.Fs
	dir    string
	logger hclog.Logger
}

// NewFSStore creates a store rooted at dir. A nil fs means the OS filesystem.
func NewFSStore(fs afero.Fs, dir string, logger hclog.Logger) (*FSStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("photo directory is required")
	}
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create photo directory %s: %w", dir, err)
	}

	return &FSStore{
		fs:     fs,
		dir:    dir,
		logger: logger.Named("photostore"),
	}, nil
}

// Put writes data to <dir>/<key> and returns that path.
func (s *FSStore) Put(ctx context.Context, key, contentType string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	path := filepath.Join(s.dir, filepath.FromSlash(key))
	if err := s.fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory for %s: %w", key, err)
	}
	if err := afero.WriteFile(s.fs, path, data, os.FileMode(0o644)); err != nil {
		return "", fmt.Errorf("failed to write photo %s: %w", key, err)
	}

	s.logger.Debug("photo written", "path", path, "content_type", contentType, "bytes", len(data))
	return path, nil
}
