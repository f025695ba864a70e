package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Local writes objects below a directory served by the HTTP server.
type Local struct {
	dir     string
	baseURL string
}

func NewLocal(dir, baseURL string) (*Local, error) {
	if dir == "" {
		dir = "uploads"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Local{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (l *Local) Dir() string { return l.dir }

func (l *Local) Upload(_ context.Context, folder string, data []byte, contentType string) (string, error) {
	objectName := ObjectName(folder, contentType)
	path := filepath.Join(l.dir, filepath.FromSlash(objectName))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create folder: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", objectName, err)
	}
	return l.baseURL + "/" + objectName, nil
}

func (l *Local) Remove(_ context.Context, publicURL string) error {
	if !strings.HasPrefix(publicURL, l.baseURL+"/") {
		return fmt.Errorf("not a local file url")
	}
	objectName := strings.TrimPrefix(publicURL, l.baseURL+"/")
	if strings.Contains(objectName, "..") {
		return fmt.Errorf("invalid object name")
	}
	if err := os.Remove(filepath.Join(l.dir, filepath.FromSlash(objectName))); err != nil {
		return fmt.Errorf("remove %s: %w", objectName, err)
	}
	return nil
}
