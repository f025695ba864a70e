package database

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Collection names.
const (
	ProductsCollection = "products"
	QuotesCollection   = "quotes"
	SettingsCollection = "settings"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
)

// Filter narrows List. Zero values match everything.
type Filter struct {
	Deleted *bool
	Status  string
	// Limit caps the number of records returned, newest first. Zero means no cap.
	Limit int
}

// Patch is a set of top-level fields to overwrite.
type Patch map[string]any

// Collection is the record store used by the services and handlers. Ids are
// ObjectID hex strings, or plain strings for singleton documents.
type Collection[T any] interface {
	List(ctx context.Context, f Filter) ([]T, error)
	Get(ctx context.Context, id string) (T, error)
	Insert(ctx context.Context, doc T) (string, error)
	Replace(ctx context.Context, id string, doc T) error
	// InsertIfMissing stores doc under id only when no record has that id.
	InsertIfMissing(ctx context.Context, id string, doc T) (bool, error)
	Update(ctx context.Context, id string, patch Patch) error
	// UpdateIf applies patch only when every field of cond matches the stored
	// record, and reports whether it did.
	UpdateIf(ctx context.Context, id string, cond, patch Patch) (bool, error)
	SoftDelete(ctx context.Context, id string) error
	Restore(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

func Bool(b bool) *bool { return &b }

// idValue is the stored _id for id: an ObjectID when id is valid hex.
func idValue(id string) any {
	if oid, err := bson.ObjectIDFromHex(id); err == nil {
		return oid
	}
	return id
}

func idString(v any) string {
	switch id := v.(type) {
	case bson.ObjectID:
		return id.Hex()
	case string:
		return id
	default:
		return fmt.Sprint(id)
	}
}
