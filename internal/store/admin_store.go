package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"homznspace/backend/internal/db"
	"homznspace/backend/internal/models"
)

type IAdminStore interface {
	FindByUsername(ctx context.Context, username string) (*models.Admin, error)
	// Upsert creates the admin or resets its password. It reports whether a new admin was created.
	Upsert(ctx context.Context, username, passwordHash string) (*models.Admin, bool, error)
}

type adminStore struct {
	db *mongo.Database
}

func NewAdminStore(database *mongo.Database) IAdminStore {
	return &adminStore{db: database}
}

func (s *adminStore) FindByUsername(ctx context.Context, username string) (*models.Admin, error) {
	var admin models.Admin
	err := s.db.Collection(db.AdminsCollection).FindOne(ctx, bson.M{"username": username}).Decode(&admin)
	if err != nil {
		return nil, translate(err, "error finding admin %q", username)
	}
	return &admin, nil
}

func (s *adminStore) Upsert(ctx context.Context, username, passwordHash string) (*models.Admin, bool, error) {
	update := bson.M{
		"$set": bson.M{"password": passwordHash},
		"$setOnInsert": bson.M{
			"_id":        primitive.NewObjectID(),
			"created_at": time.Now().UTC(),
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.Before)
	var before models.Admin
	err := s.db.Collection(db.AdminsCollection).FindOneAndUpdate(ctx, bson.M{"username": username}, update, opts).Decode(&before)
	created := false
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		created = true
	case err != nil:
		return nil, false, translate(err, "failed to upsert admin %q", username)
	}

	admin, err := s.FindByUsername(ctx, username)
	if err != nil {
		return nil, false, err
	}
	return admin, created, nil
}
