package utils

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
)

type FileValidator struct {
	allowedExt  map[string]bool
	allowedMime map[string]bool
	maxSize     int64
}

// NewFileValidator accepts files up to maxMB whose extension and sniffed
// content type are both allowed.
func NewFileValidator(maxMB int, extensions, mimeTypes []string) *FileValidator {
	allowedExt := make(map[string]bool)
	for _, ext := range extensions {
		if ext = strings.TrimSpace(strings.ToLower(ext)); ext != "" {
			if !strings.HasPrefix(ext, ".") {
				ext = "." + ext
			}
			allowedExt[ext] = true
		}
	}

	allowedMime := make(map[string]bool)
	for _, m := range mimeTypes {
		if m = strings.TrimSpace(strings.ToLower(m)); m != "" {
			allowedMime[m] = true
		}
	}

	if maxMB <= 0 {
		maxMB = 5
	}
	return &FileValidator{
		allowedExt:  allowedExt,
		allowedMime: allowedMime,
		maxSize:     int64(maxMB) << 20,
	}
}

func (v *FileValidator) MaxBytes() int64 { return v.maxSize }

// ReadFile validates the upload and returns its content with the sniffed
// content type.
func (v *FileValidator) ReadFile(fileHeader *multipart.FileHeader) ([]byte, string, error) {
	if fileHeader.Size > v.maxSize {
		return nil, "", fmt.Errorf("file too large (max %d MB)", v.maxSize>>20)
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if !v.allowedExt[ext] {
		return nil, "", fmt.Errorf("invalid file extension")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, "", err
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, v.maxSize+1))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read file")
	}
	if int64(len(data)) > v.maxSize {
		return nil, "", fmt.Errorf("file too large (max %d MB)", v.maxSize>>20)
	}

	detectedMime, err := v.Sniff(data)
	if err != nil {
		return nil, "", err
	}
	return data, detectedMime, nil
}

// Sniff checks the content type detected from the first bytes of data.
func (v *FileValidator) Sniff(data []byte) (string, error) {
	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	detectedMime := strings.ToLower(http.DetectContentType(head))
	if i := strings.Index(detectedMime, ";"); i >= 0 {
		detectedMime = strings.TrimSpace(detectedMime[:i])
	}
	if !v.allowedMime[detectedMime] {
		return "", fmt.Errorf("invalid file type")
	}
	return detectedMime, nil
}
