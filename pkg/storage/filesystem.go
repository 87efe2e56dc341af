package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Object describes a stored image.
type Object struct {
	Key         string `json:"key"`
	URL         string `json:"url"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}

// ErrNotFound is returned when an object does not exist.
var ErrNotFound = errors.New("object not found")

// LocalStorage keeps images on disk and hands out signed URLs that the
// gateway serves itself.
type LocalStorage struct {
	baseDir       string
	publicBaseURL string
	signer        *SignedURLSigner
}

// NewLocalStorage ensures the base directory exists and returns a handle.
func NewLocalStorage(baseDir, publicBaseURL string, signer *SignedURLSigner) (*LocalStorage, error) {
	if baseDir == "" {
		baseDir = "./media"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create media directory: %w", err)
	}
	return &LocalStorage{
		baseDir:       baseDir,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		signer:        signer,
	}, nil
}

// Put copies r into key and returns its signed URL.
func (s *LocalStorage) Put(ctx context.Context, key, contentType string, r io.Reader, size int64) (Object, error) {
	path, err := s.resolve(key)
	if err != nil {
		return Object{}, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return Object{}, fmt.Errorf("prepare media directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return Object{}, fmt.Errorf("create media file: %w", err)
	}
	written, copyErr := io.Copy(file, r)
	closeErr := file.Close()
	if copyErr != nil || closeErr != nil {
		_ = os.Remove(path)
		if copyErr == nil {
			copyErr = closeErr
		}
		return Object{}, fmt.Errorf("write media file: %w", copyErr)
	}

	token, _, err := s.signer.Sign(key)
	if err != nil {
		_ = os.Remove(path)
		return Object{}, fmt.Errorf("sign media url: %w", err)
	}
	return Object{Key: key, URL: s.publicBaseURL + "/" + token, ContentType: contentType, Size: written}, nil
}

// OpenSigned verifies token and opens the object it grants.
func (s *LocalStorage) OpenSigned(token string) (*os.File, string, error) {
	key, err := s.signer.Verify(token)
	if err != nil {
		return nil, "", err
	}
	path, err := s.resolve(key)
	if err != nil {
		return nil, "", err
	}
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", ErrNotFound
		}
		return nil, "", fmt.Errorf("open media file: %w", err)
	}
	return file, key, nil
}

// Delete removes a stored object if present.
func (s *LocalStorage) Delete(ctx context.Context, key string) error {
	path, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete media file: %w", err)
	}
	return nil
}

func (s *LocalStorage) resolve(key string) (string, error) {
	clean := filepath.Clean("/" + key)
	if clean == "/" {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	return filepath.Join(s.baseDir, clean), nil
}
