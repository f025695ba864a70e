// Package storage uploads files (quote documents, client attachments, product
// media) and returns their public URLs.
package storage

import (
	"context"
	"fmt"
	"mime"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type BlobStore interface {
	Upload(ctx context.Context, folder string, data []byte, contentType string) (string, error)
}

// Remover is implemented by stores that can delete what they uploaded.
type Remover interface {
	Remove(ctx context.Context, publicURL string) error
}

// RemoveBestEffort deletes urls when store supports it, logging failures.
func RemoveBestEffort(ctx context.Context, store BlobStore, log zerolog.Logger, urls ...string) {
	r, ok := store.(Remover)
	if !ok {
		return
	}
	for _, u := range urls {
		if u == "" {
			continue
		}
		if err := r.Remove(ctx, u); err != nil {
			log.Warn().Err(err).Str("url", u).Msg("blob cleanup failed")
		}
	}
}

var extensions = map[string]string{
	"application/pdf": ".pdf",
	"image/png":       ".png",
	"image/jpeg":      ".jpg",
	"image/webp":      ".webp",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": ".xlsx",
}

// ObjectName builds "<folder>/<unix>-<uuid><ext>".
func ObjectName(folder, contentType string) string {
	ext := extensionFor(contentType)
	folder = strings.Trim(folder, "/")
	return fmt.Sprintf("%s/%d-%s%s", folder, time.Now().UTC().Unix(), uuid.New().String(), ext)
}

func extensionFor(contentType string) string {
	base, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		base = contentType
	}
	if ext, ok := extensions[base]; ok {
		return ext
	}
	if exts, err := mime.ExtensionsByType(base); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ".bin"
}

type Config struct {
	Driver          string
	Bucket          string
	CredentialsFile string
	R2              R2Config
	LocalDir        string
	LocalBaseURL    string
}

// Open builds the store selected by cfg.Driver.
func Open(ctx context.Context, cfg Config) (BlobStore, error) {
	switch cfg.Driver {
	case "gcs":
		store, err := NewGCS(ctx, cfg.Bucket, cfg.CredentialsFile)
		if err != nil {
			return nil, err
		}
		return store, nil
	case "r2":
		store, err := NewR2(ctx, cfg.R2)
		if err != nil {
			return nil, err
		}
		return store, nil
	case "local", "":
		store, err := NewLocal(cfg.LocalDir, cfg.LocalBaseURL)
		if err != nil {
			return nil, err
		}
		return store, nil
	case "memory":
		return NewMemory("memory://blobs"), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
