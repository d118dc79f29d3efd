package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"social-go/internal/config"
	"social-go/internal/socialtypes"
)

// LocalStorageService stores files on the local filesystem.
type LocalStorageService struct {
	basePath string // e.g. "./uploads"
	baseURL  string // URL prefix the files are served under, e.g. "/uploads"
}

// NewLocalStorageService creates the base directory if needed.
func NewLocalStorageService(cfg config.StorageConfig) (socialtypes.StorageService, error) {
	if err := os.MkdirAll(cfg.LocalPath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage dir '%s': %w", cfg.LocalPath, err)
	}
	return &LocalStorageService{
		basePath: cfg.LocalPath,
		baseURL:  cfg.BaseURL,
	}, nil
}

// UploadFile saves the file under a random name that keeps the extension.
func (s *LocalStorageService) UploadFile(ctx context.Context, reader io.Reader, fileSize int64, fileName string, mimeType string) (*socialtypes.FileInfo, error) {
	ext := filepath.Ext(fileName)
	if ext == "" {
		if extensions, _ := mime.ExtensionsByType(mimeType); len(extensions) > 0 {
			ext = extensions[0]
		}
	}
	key := uuid.New().String() + ext
	dstPath := filepath.Join(s.basePath, key)

	dst, err := os.Create(dstPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create file '%s': %w", dstPath, err)
	}
	defer dst.Close()

	written, err := io.Copy(dst, reader)
	if err != nil {
		os.Remove(dstPath)
		return nil, fmt.Errorf("failed to write file: %w", err)
	}
	if written != fileSize {
		os.Remove(dstPath)
		return nil, fmt.Errorf("file size mismatch: expected %d, wrote %d", fileSize, written)
	}

	return &socialtypes.FileInfo{
		URL:      strings.TrimSuffix(s.baseURL, "/") + "/" + url.PathEscape(key),
		Key:      key,
		Size:     fileSize,
		MimeType: mimeType,
		FileName: fileName,
	}, nil
}

// DeleteFile removes a previously uploaded file.
func (s *LocalStorageService) DeleteFile(ctx context.Context, key string) error {
	if key == "" || key != filepath.Base(key) {
		return fmt.Errorf("invalid storage key %q", key)
	}
	err := os.Remove(filepath.Join(s.basePath, key))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete file %q: %w", key, err)
	}
	return nil
}
