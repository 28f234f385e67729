package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/marketly-dev/marketly/internal/apperr"
	"github.com/marketly-dev/marketly/internal/storage"
)

const MaxImageSize = 2 * 1024 * 1024

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// SaveProductImage validates an uploaded product image and stores it under a fresh
// name, returning its URL.
func SaveProductImage(ctx context.Context, store storage.Store, file *multipart.FileHeader) (string, error) {
	contentType := file.Header.Get("Content-Type")
	if !allowedImageTypes[contentType] {
		return "", apperr.Validation("Only JPG, PNG or WebP images are allowed")
	}

	if file.Size > MaxImageSize {
		return "", apperr.Validation("Image is too large")
	}

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	// the header size is client supplied
	content, err := io.ReadAll(io.LimitReader(src, MaxImageSize+1))
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if len(content) > MaxImageSize {
		return "", apperr.Validation("Image is too large")
	}

	extension := strings.ToLower(filepath.Ext(file.Filename))
	if extension == "" {
		extension = ".jpg"
	}

	key := "products/" + uuid.NewString() + extension

	return store.Save(ctx, key, bytes.NewReader(content), int64(len(content)), contentType)
}

// RemoveProductImage deletes a previously stored image. A nil or empty URL is a no-op.
func RemoveProductImage(ctx context.Context, store storage.Store, url *string) error {
	if url == nil || *url == "" {
		return nil
	}

	return store.Remove(ctx, *url)
}
