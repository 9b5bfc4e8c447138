package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type IBase interface {
	GenIDIfEmpty()
	GetID() primitive.ObjectID
}

// Base carries the document id and creation time shared by every collection.
type Base struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

// GenIDIfEmpty assigns a fresh id and creation time to a document about to be inserted.
func (m *Base) GenIDIfEmpty() {
	if m.ID.IsZero() {
		m.ID = primitive.NewObjectID()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
}

func (m *Base) GetID() primitive.ObjectID {
	return m.ID
}

// ParseID parses a hex document id. Callers map the error to a not-found result.
func ParseID(hex string) (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(hex)
}
