// Package storage keeps uploaded attachment blobs on the local filesystem.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrInvalidReference is returned for references that escape the storage root.
var ErrInvalidReference = errors.New("invalid file reference")

// Local stores files under a base directory. References are slash separated
// paths relative to that directory, for example "complaint_attachments/<uuid>.pdf".
type Local struct {
	basePath string
	logger   zerolog.Logger
}

// NewLocal ensures the base directory exists and returns the store.
func NewLocal(basePath string, logger zerolog.Logger) (*Local, error) {
	if strings.TrimSpace(basePath) == "" {
		return nil, fmt.Errorf("storage path must not be empty")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	return &Local{
		basePath: basePath,
		logger:   logger.With().Str("component", "local_storage").Logger(),
	}, nil
}

// Save writes the reader to folder under a fresh unique name that keeps the
// original extension.
func (l *Local) Save(ctx context.Context, folder, filename string, reader io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	folder = strings.Trim(filepath.ToSlash(filepath.Clean("/"+folder)), "/")
	dir := filepath.Join(l.basePath, filepath.FromSlash(folder))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create folder: %w", err)
	}

	name := uuid.NewString() + strings.ToLower(filepath.Ext(filename))
	dstPath := filepath.Join(dir, name)

	dst, err := os.Create(dstPath)
	if err != nil {
		return "", fmt.Errorf("failed to create destination file: %w", err)
	}
	if _, err := io.Copy(dst, reader); err != nil {
		_ = dst.Close()
		_ = os.Remove(dstPath)
		return "", fmt.Errorf("failed to save file content: %w", err)
	}
	if err := dst.Close(); err != nil {
		_ = os.Remove(dstPath)
		return "", fmt.Errorf("failed to close destination file: %w", err)
	}

	ref := name
	if folder != "" {
		ref = folder + "/" + name
	}
	l.logger.Debug().Str("reference", ref).Msg("file stored")
	return ref, nil
}

// Delete removes the referenced file. Missing files are not an error.
func (l *Local) Delete(_ context.Context, ref string) error {
	path, err := l.resolve(ref)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			l.logger.Warn().Str("reference", ref).Msg("file to delete does not exist")
			return nil
		}
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// Path returns the filesystem location of a reference.
func (l *Local) Path(ref string) (string, error) {
	return l.resolve(ref)
}

func (l *Local) resolve(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", ErrInvalidReference
	}
	cleaned := filepath.Clean("/" + filepath.FromSlash(ref))
	if cleaned == string(filepath.Separator) {
		return "", ErrInvalidReference
	}
	return filepath.Join(l.basePath, cleaned), nil
}
