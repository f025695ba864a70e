package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type MongoCollection[T any] struct {
	col *mongo.Collection
}

func NewMongoCollection[T any](db *mongo.Database, name string) *MongoCollection[T] {
	return &MongoCollection[T]{col: db.Collection(name)}
}

func listQuery(f Filter) bson.M {
	filter := bson.M{}
	if f.Deleted != nil {
		if *f.Deleted {
			filter["isDeleted"] = true
		} else {
			filter["isDeleted"] = bson.M{"$ne": true}
		}
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	return filter
}

func (m *MongoCollection[T]) List(ctx context.Context, f Filter) ([]T, error) {
	findOpts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if f.Limit > 0 {
		findOpts.SetLimit(int64(f.Limit))
	}
	cursor, err := m.col.Find(ctx, listQuery(f), findOpts)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", m.col.Name(), err)
	}
	defer cursor.Close(ctx)

	items := make([]T, 0)
	if err := cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("decode %s: %w", m.col.Name(), err)
	}
	return items, nil
}

func (m *MongoCollection[T]) Get(ctx context.Context, id string) (T, error) {
	var doc T
	err := m.col.FindOne(ctx, bson.M{"_id": idValue(id)}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return doc, ErrNotFound
	}
	if err != nil {
		return doc, fmt.Errorf("find %s %s: %w", m.col.Name(), id, err)
	}
	return doc, nil
}

func (m *MongoCollection[T]) Insert(ctx context.Context, doc T) (string, error) {
	res, err := m.col.InsertOne(ctx, doc)
	if err != nil {
		if IsDuplicateKey(err) {
			return "", ErrDuplicate
		}
		return "", fmt.Errorf("insert %s: %w", m.col.Name(), err)
	}
	return idString(res.InsertedID), nil
}

func (m *MongoCollection[T]) Replace(ctx context.Context, id string, doc T) error {
	opts := options.Replace().SetUpsert(true)
	if _, err := m.col.ReplaceOne(ctx, bson.M{"_id": idValue(id)}, doc, opts); err != nil {
		return fmt.Errorf("replace %s %s: %w", m.col.Name(), id, err)
	}
	return nil
}

func (m *MongoCollection[T]) InsertIfMissing(ctx context.Context, id string, doc T) (bool, error) {
	fields, err := toDocument(doc)
	if err != nil {
		return false, err
	}
	delete(fields, "_id")

	opts := options.UpdateOne().SetUpsert(true)
	res, err := m.col.UpdateOne(ctx, bson.M{"_id": idValue(id)}, bson.M{"$setOnInsert": fields}, opts)
	if err != nil {
		return false, fmt.Errorf("upsert %s %s: %w", m.col.Name(), id, err)
	}
	return res.UpsertedCount == 1, nil
}

func (m *MongoCollection[T]) Update(ctx context.Context, id string, patch Patch) error {
	ok, err := m.UpdateIf(ctx, id, nil, patch)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

func (m *MongoCollection[T]) UpdateIf(ctx context.Context, id string, cond, patch Patch) (bool, error) {
	filter := bson.M{"_id": idValue(id)}
	for k, v := range cond {
		filter[k] = v
	}
	set := bson.M{"updatedAt": time.Now().UTC()}
	for k, v := range patch {
		set[k] = v
	}
	res, err := m.col.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return false, fmt.Errorf("update %s %s: %w", m.col.Name(), id, err)
	}
	return res.MatchedCount == 1, nil
}

func (m *MongoCollection[T]) SoftDelete(ctx context.Context, id string) error {
	return m.Update(ctx, id, Patch{"isDeleted": true})
}

func (m *MongoCollection[T]) Restore(ctx context.Context, id string) error {
	return m.Update(ctx, id, Patch{"isDeleted": false})
}

func (m *MongoCollection[T]) Delete(ctx context.Context, id string) error {
	res, err := m.col.DeleteOne(ctx, bson.M{"_id": idValue(id)})
	if err != nil {
		return fmt.Errorf("delete %s %s: %w", m.col.Name(), id, err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// IsDuplicateKey reports a unique index violation.
func IsDuplicateKey(err error) bool {
	return mongo.IsDuplicateKeyError(err)
}

func toDocument(v any) (bson.M, error) {
	data, err := bson.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}
	var m bson.M
	if err := bson.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("unmarshal document: %w", err)
	}
	return m, nil
}
