package render

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ImageFetcher loads the product picture shown on the document.
type ImageFetcher interface {
	Fetch(ctx context.Context, url string) (*Image, error)
}

// HTTPImages downloads public images, capped at MaxBytes.
type HTTPImages struct {
	Client   *http.Client
	MaxBytes int64
}

func NewHTTPImages(timeout time.Duration) *HTTPImages {
	return &HTTPImages{Client: &http.Client{Timeout: timeout}, MaxBytes: 5 << 20}
}

func (h *HTTPImages) Fetch(ctx context.Context, url string) (*Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := h.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch image: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch image: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, h.MaxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	if int64(len(data)) > h.MaxBytes {
		return nil, fmt.Errorf("image larger than %d bytes", h.MaxBytes)
	}

	ct := resp.Header.Get("Content-Type")
	if ct == "" {
		ct = http.DetectContentType(data)
	}
	switch {
	case strings.HasPrefix(ct, "image/png"):
		return &Image{Data: data, Type: "PNG"}, nil
	case strings.HasPrefix(ct, "image/jpeg"):
		return &Image{Data: data, Type: "JPG"}, nil
	default:
		return nil, fmt.Errorf("unsupported image type %q", ct)
	}
}
