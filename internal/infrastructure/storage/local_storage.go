package storage

import (
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	domain "video-uploader/internal/domain/repositories"
)

// LocalMediaRoute is where the API serves a LocalStorage directory when no
// public base URL is configured.
const LocalMediaRoute = "/media"

// LocalStorage is a BlobStore backed by a directory, used in development
// and when no object store is configured.
type LocalStorage struct {
	BasePath      string
	PublicBaseURL string
}

func NewLocalStorage(basePath, publicBaseURL string) *LocalStorage {
	if publicBaseURL == "" {
		publicBaseURL = LocalMediaRoute
	}
	return &LocalStorage{
		BasePath:      basePath,
		PublicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}
}

func (l *LocalStorage) path(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if clean == "." || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) || filepath.IsAbs(clean) {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	return filepath.Join(l.BasePath, clean), nil
}

func (l *LocalStorage) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	fullPath, err := l.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), os.ModePerm); err != nil {
		return fmt.Errorf("create object dir: %w", err)
	}

	tmpPath := fullPath + ".tmp"
	outFile, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create object file: %w", err)
	}
	if _, err := io.Copy(outFile, body); err != nil {
		outFile.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write object: %w", err)
	}
	if err := outFile.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close object: %w", err)
	}
	return os.Rename(tmpPath, fullPath)
}

func (l *LocalStorage) Get(_ context.Context, key string) (io.ReadCloser, error) {
	fullPath, err := l.path(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrObjectNotFound
		}
		return nil, err
	}
	return f, nil
}

func (l *LocalStorage) Stat(_ context.Context, key string) (*domain.ObjectInfo, error) {
	fullPath, err := l.path(key)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrObjectNotFound
		}
		return nil, err
	}
	return &domain.ObjectInfo{
		Key:          key,
		Size:         info.Size(),
		ContentType:  mime.TypeByExtension(filepath.Ext(fullPath)),
		LastModified: info.ModTime(),
	}, nil
}

func (l *LocalStorage) Delete(_ context.Context, key string) error {
	fullPath, err := l.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (l *LocalStorage) URL(key string) string {
	return l.PublicBaseURL + "/" + key
}
