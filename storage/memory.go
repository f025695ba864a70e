package storage

import (
	"context"
	"strings"
	"sync"
)

type Object struct {
	Data        []byte
	ContentType string
}

// Memory keeps uploads in process. Used in dev mode and tests.
type Memory struct {
	mu      sync.Mutex
	baseURL string
	objects map[string]Object
}

func NewMemory(baseURL string) *Memory {
	return &Memory{baseURL: strings.TrimRight(baseURL, "/"), objects: make(map[string]Object)}
}

func (m *Memory) Upload(_ context.Context, folder string, data []byte, contentType string) (string, error) {
	url := m.baseURL + "/" + ObjectName(folder, contentType)
	buf := make([]byte, len(data))
	copy(buf, data)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[url] = Object{Data: buf, ContentType: contentType}
	return url, nil
}

func (m *Memory) Remove(_ context.Context, publicURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, publicURL)
	return nil
}

func (m *Memory) Get(publicURL string) (Object, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.objects[publicURL]
	return o, ok
}

func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}
