package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// DiskStore writes objects below Root and serves them under URLPrefix.
type DiskStore struct {
	Root      string
	URLPrefix string
}

func NewDiskStore(root, urlPrefix string) (*DiskStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create media root: %w", err)
	}

	return &DiskStore{Root: root, URLPrefix: strings.TrimSuffix(urlPrefix, "/")}, nil
}

func (s *DiskStore) Save(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	target, err := s.pathFor(key)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", err
	}

	f, err := os.OpenFile(target, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", key, err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(target)
		return "", fmt.Errorf("write %s: %w", key, err)
	}

	if err := f.Close(); err != nil {
		return "", err
	}

	return s.URLPrefix + "/" + key, nil
}

func (s *DiskStore) Remove(ctx context.Context, url string) error {
	if !strings.HasPrefix(url, s.URLPrefix+"/") {
		return nil
	}

	target, err := s.pathFor(strings.TrimPrefix(url, s.URLPrefix+"/"))
	if err != nil {
		return nil
	}

	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return err
	}

	return nil
}

func (s *DiskStore) pathFor(key string) (string, error) {
	clean := path.Clean("/" + key)
	if clean == "/" {
		return "", fmt.Errorf("invalid key %q", key)
	}

	return filepath.Join(s.Root, filepath.FromSlash(clean)), nil
}
