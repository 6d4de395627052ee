package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"taskhub/domain/ports"
	"taskhub/pkg/logger"
	"taskhub/pkg/utils"
)

// LocalStorage writes export artifacts below a directory on disk
type LocalStorage struct {
	basePath string // ./exports
	baseURL  string // http://localhost:3000/exports
}

type LocalStorageConfig struct {
	BasePath string
	BaseURL  string
}

func NewLocalStorage(config LocalStorageConfig) (ports.ObjectStorage, error) {
	if err := os.MkdirAll(config.BasePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	return &LocalStorage{
		basePath: config.BasePath,
		baseURL:  strings.TrimSuffix(config.BaseURL, "/"),
	}, nil
}

func (l *LocalStorage) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error) {
	key, err := utils.SanitizeObjectKey(key)
	if err != nil {
		return "", fmt.Errorf("invalid object key: %w", err)
	}

	fullPath := filepath.Join(l.basePath, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	// write to a temp file first so readers never see a partial object
	tmp, err := os.CreateTemp(filepath.Dir(fullPath), ".upload-*")
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, body); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	if err := os.Rename(tmp.Name(), fullPath); err != nil {
		return "", fmt.Errorf("failed to move file: %w", err)
	}

	logger.DebugContext(ctx, "Object written to local storage", "key", key, "content_type", contentType)
	return l.objectURL(key), nil
}

func (l *LocalStorage) Provider() string {
	return "local"
}

func (l *LocalStorage) objectURL(key string) string {
	if l.baseURL == "" {
		return filepath.ToSlash(filepath.Join(l.basePath, key))
	}
	return l.baseURL + "/" + key
}
