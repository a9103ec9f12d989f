package sink

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/afero"
)

// FileConfig configures a FileSink.
type FileConfig struct {
	// Fs defaults to the OS filesystem.
	Fs afero.Fs

	// Dir is created if missing. Default: current directory.
	Dir string

	// Overwrite allows replacing existing files.
	Overwrite bool

	Logger hclog.Logger
}

// FileSink writes blobs as files under a directory.
type FileSink struct {
	fs        afero.Fs
	dir       string
	overwrite bool
	logger    hclog.Logger
}

// NewFileSink creates a new FileSink.
func NewFileSink(cfg FileConfig) (*FileSink, error) {
	if cfg.Fs == nil {
		cfg.Fs = afero.NewOsFs()
	}
	if cfg.Dir == "" {
		cfg.Dir = "."
	}
	if cfg.Logger == nil {
		cfg.Logger = hclog.NewNullLogger()
	}

	if err := cfg.Fs.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %q: %w", cfg.Dir, err)
	}

	return &FileSink{
		fs:        cfg.Fs,
		dir:       cfg.Dir,
		overwrite: cfg.Overwrite,
		logger:    cfg.Logger.Named("file-sink"),
	}, nil
}

// Save writes data to Dir/FileName(name) and returns the path.
func (s *FileSink) Save(ctx context.Context, name string, data []byte, mimeType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	path := filepath.Join(s.dir, FileName(name))

	if !s.overwrite {
		exists, err := afero.Exists(s.fs, path)
		if err != nil {
			return "", fmt.Errorf("failed to check %q: %w", path, err)
		}
		if exists {
			return "", fmt.Errorf("%q: %w", path, ErrExists)
		}
	}

	if err := afero.WriteFile(s.fs, path, data, os.FileMode(0o644)); err != nil {
		return "", fmt.Errorf("failed to write %q: %w", path, err)
	}

	s.logger.Debug("saved document", "path", path, "bytes", len(data), "mime_type", mimeType)
	return path, nil
}
