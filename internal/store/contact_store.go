package store

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"

	"homznspace/backend/internal/db"
	"homznspace/backend/internal/models"
)

type IContactStore interface {
	Create(ctx context.Context, lead *models.ContactLead) error
}

type contactStore struct {
	db *mongo.Database
}

func NewContactStore(database *mongo.Database) IContactStore {
	return &contactStore{db: database}
}

func (s *contactStore) Create(ctx context.Context, lead *models.ContactLead) error {
	lead.GenIDIfEmpty()
	_, err := s.db.Collection(db.ContactsCollection).InsertOne(ctx, lead)
	return translate(err, "failed to insert contact lead")
}
