package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"homznspace/backend/internal/db"
	"homznspace/backend/internal/models"
)

type ITemplateStore interface {
	Find(ctx context.Context, templateID, locale string) (*models.EmailTemplate, error)
}

type templateStore struct {
	db *mongo.Database
}

func NewTemplateStore(database *mongo.Database) ITemplateStore {
	return &templateStore{db: database}
}

func (s *templateStore) Find(ctx context.Context, templateID, locale string) (*models.EmailTemplate, error) {
	filter := bson.M{"template_id": templateID, "locale": locale}
	var tmpl models.EmailTemplate
	if err := s.db.Collection(db.EmailTemplatesCollection).FindOne(ctx, filter).Decode(&tmpl); err != nil {
		return nil, translate(err, "error finding email template %s/%s", templateID, locale)
	}
	return &tmpl, nil
}
