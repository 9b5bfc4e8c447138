// Package store holds the MongoDB repositories. Each store owns one collection
// and translates driver errors into ErrNotFound and ErrDuplicate. Any other
// driver failure is returned as an apperr UPSTREAM_FAILURE.
package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"homznspace/backend/internal/apperr"
	"homznspace/backend/internal/db"
)

var (
	// ErrNotFound is returned when the addressed document does not exist.
	ErrNotFound = errors.New("document not found")
	// ErrDuplicate is returned when an insert or update violates a unique index.
	ErrDuplicate = errors.New("duplicate key")
)

// translate maps driver errors onto the store sentinels, keeping the context message.
func translate(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	if db.IsMongoDuplicateKeyError(err) {
		return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrDuplicate)
	}
	return apperr.Upstream(err, fmt.Sprintf(format, args...))
}

// findByIDs loads every document whose _id is in ids and indexes the result by id.
func findByIDs[T any](ctx context.Context, coll *mongo.Collection, ids []primitive.ObjectID, idOf func(*T) primitive.ObjectID) (map[primitive.ObjectID]*T, error) {
	out := make(map[primitive.ObjectID]*T, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	cursor, err := coll.Find(ctx, bson.M{"_id": bson.M{"$in": uniqueIDs(ids)}})
	if err != nil {
		return nil, translate(err, "failed to query %s by ids", coll.Name())
	}
	var docs []T
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, translate(err, "failed to decode %s", coll.Name())
	}
	for i := range docs {
		doc := &docs[i]
		out[idOf(doc)] = doc
	}
	return out, nil
}

func uniqueIDs(ids []primitive.ObjectID) []primitive.ObjectID {
	seen := make(map[primitive.ObjectID]struct{}, len(ids))
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok || id.IsZero() {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
