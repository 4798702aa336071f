package printing

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/freightdesk/backend/internal/domain/bol"
)

// FileStoreConfig contains configuration for local artifact storage
type FileStoreConfig struct {
	// BaseDir is the root directory. Default: ./output
	BaseDir string
	// Prefix is the first key segment under BaseDir. Default: bols
	Prefix string
	Logger *zap.Logger
}

// FileStore writes artifacts to the local file system under
// {base}/{prefix}/{year}/{month}/{name}.
type FileStore struct {
	baseDir string
	prefix  string
	logger  *zap.Logger
	now     func() time.Time
}

// NewFileStore creates the base directory if needed.
func NewFileStore(cfg FileStoreConfig) (*FileStore, error) {
	if cfg.BaseDir == "" {
		cfg.BaseDir = "./output"
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "bols"
	}
	if err := os.MkdirAll(cfg.BaseDir, 0o755); err != nil {
		return nil, NewRenderError(ErrCodeStorageFailed,
			fmt.Sprintf("failed to create storage directory: %s", cfg.BaseDir), err)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileStore{baseDir: cfg.BaseDir, prefix: cfg.Prefix, logger: logger, now: time.Now}, nil
}

// Save writes data under a dated key derived from name.
func (s *FileStore) Save(ctx context.Context, name string, data []byte, contentType string) (*bol.Artifact, error) {
	if err := ctx.Err(); err != nil {
		return nil, NewRenderError(ErrCodeStorageFailed, "operation cancelled", err)
	}
	if len(data) == 0 {
		return nil, NewRenderError(ErrCodeStorageFailed, "artifact is empty", nil)
	}

	key := bol.ArtifactKey(s.prefix, name, s.now())
	full, err := s.resolve(key)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return nil, NewRenderError(ErrCodeStorageFailed, "failed to create directory", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return nil, NewRenderError(ErrCodeStorageFailed, "failed to write artifact", err)
	}

	s.logger.Info("Artifact stored",
		zap.String("path", full),
		zap.Int("size", len(data)))

	return &bol.Artifact{
		Name:        filepath.Base(full),
		Key:         key,
		ContentType: contentType,
		Size:        int64(len(data)),
		Location:    full,
	}, nil
}

// Ping checks that the base directory still exists.
func (s *FileStore) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	info, err := os.Stat(s.baseDir)
	if err != nil {
		return NewRenderError(ErrCodeStorageFailed, "storage directory unavailable", err)
	}
	if !info.IsDir() {
		return NewRenderError(ErrCodeStorageFailed, "storage path is not a directory: "+s.baseDir, nil)
	}
	return nil
}

// resolve maps key under baseDir and rejects anything that escapes it.
func (s *FileStore) resolve(key string) (string, error) {
	absBase, err := filepath.Abs(s.baseDir)
	if err != nil {
		return "", NewRenderError(ErrCodeStorageFailed, "failed to resolve base path", err)
	}
	absPath, err := filepath.Abs(filepath.Join(absBase, filepath.FromSlash(key)))
	if err != nil {
		return "", NewRenderError(ErrCodeStorageFailed, "failed to resolve file path", err)
	}
	if !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) {
		s.logger.Warn("path escape attempt blocked", zap.String("key", key))
		return "", NewRenderError(ErrCodeStorageFailed, "invalid artifact key", nil)
	}
	return absPath, nil
}
