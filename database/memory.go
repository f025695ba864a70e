package database

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// MemoryCollection keeps documents in process. Documents go through the same
// bson encoding as the Mongo backend so tags and omitempty behave alike.
type MemoryCollection[T any] struct {
	mu    sync.RWMutex
	docs  map[string]bson.M
	order []string
	now   func() time.Time
}

func NewMemoryCollection[T any]() *MemoryCollection[T] {
	return &MemoryCollection[T]{docs: make(map[string]bson.M), now: time.Now}
}

// List returns matches newest first (reverse insertion order).
func (m *MemoryCollection[T]) List(_ context.Context, f Filter) ([]T, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	items := make([]T, 0, len(m.order))
	for i := len(m.order) - 1; i >= 0; i-- {
		if f.Limit > 0 && len(items) == f.Limit {
			break
		}
		doc := m.docs[m.order[i]]
		if !matchesFilter(doc, f) {
			continue
		}
		item, err := fromDocument[T](doc)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func (m *MemoryCollection[T]) Get(_ context.Context, id string) (T, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	doc, ok := m.docs[id]
	if !ok {
		var zero T
		return zero, ErrNotFound
	}
	return fromDocument[T](doc)
}

func (m *MemoryCollection[T]) Insert(_ context.Context, doc T) (string, error) {
	fields, err := toDocument(doc)
	if err != nil {
		return "", err
	}
	if oid, ok := fields["_id"].(bson.ObjectID); !ok && fields["_id"] == nil || ok && oid.IsZero() {
		fields["_id"] = bson.NewObjectID()
	}
	id := idString(fields["_id"])

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.docs[id]; exists {
		return "", ErrDuplicate
	}
	m.put(id, fields)
	return id, nil
}

func (m *MemoryCollection[T]) Replace(_ context.Context, id string, doc T) error {
	fields, err := toDocument(doc)
	if err != nil {
		return err
	}
	fields["_id"] = idValue(id)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.put(id, fields)
	return nil
}

func (m *MemoryCollection[T]) InsertIfMissing(_ context.Context, id string, doc T) (bool, error) {
	fields, err := toDocument(doc)
	if err != nil {
		return false, err
	}
	fields["_id"] = idValue(id)

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.docs[id]; exists {
		return false, nil
	}
	m.put(id, fields)
	return true, nil
}

func (m *MemoryCollection[T]) Update(ctx context.Context, id string, patch Patch) error {
	ok, err := m.UpdateIf(ctx, id, nil, patch)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

func (m *MemoryCollection[T]) UpdateIf(_ context.Context, id string, cond, patch Patch) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	doc, ok := m.docs[id]
	if !ok {
		return false, nil
	}
	for k, want := range cond {
		equal, err := sameValue(doc[k], want)
		if err != nil {
			return false, err
		}
		if !equal {
			return false, nil
		}
	}

	next := make(bson.M, len(doc)+len(patch)+1)
	for k, v := range doc {
		next[k] = v
	}
	for k, v := range patch {
		next[k] = v
	}
	next["updatedAt"] = m.now().UTC()

	// Round-trip so later reads see what a database would return.
	normalized, err := toDocument(next)
	if err != nil {
		return false, err
	}
	m.docs[id] = normalized
	return true, nil
}

func (m *MemoryCollection[T]) SoftDelete(ctx context.Context, id string) error {
	return m.Update(ctx, id, Patch{"isDeleted": true})
}

func (m *MemoryCollection[T]) Restore(ctx context.Context, id string) error {
	return m.Update(ctx, id, Patch{"isDeleted": false})
}

func (m *MemoryCollection[T]) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.docs[id]; !ok {
		return ErrNotFound
	}
	delete(m.docs, id)
	for i, key := range m.order {
		if key == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

// put must be called with the write lock held.
func (m *MemoryCollection[T]) put(id string, fields bson.M) {
	if _, exists := m.docs[id]; !exists {
		m.order = append(m.order, id)
	}
	m.docs[id] = fields
}

func matchesFilter(doc bson.M, f Filter) bool {
	if f.Deleted != nil {
		deleted, _ := doc["isDeleted"].(bool)
		if deleted != *f.Deleted {
			return false
		}
	}
	if f.Status != "" {
		status, _ := doc["status"].(string)
		if status != f.Status {
			return false
		}
	}
	return true
}

// sameValue compares two values by their bson encoding, so a typed string
// constant matches the plain string read back from storage.
func sameValue(a, b any) (bool, error) {
	ra, err := bson.Marshal(bson.M{"v": a})
	if err != nil {
		return false, fmt.Errorf("encode condition: %w", err)
	}
	rb, err := bson.Marshal(bson.M{"v": b})
	if err != nil {
		return false, fmt.Errorf("encode condition: %w", err)
	}
	return bytes.Equal(ra, rb), nil
}

func fromDocument[T any](doc bson.M) (T, error) {
	var out T
	data, err := bson.Marshal(doc)
	if err != nil {
		return out, fmt.Errorf("marshal document: %w", err)
	}
	if err := bson.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("unmarshal document: %w", err)
	}
	return out, nil
}
