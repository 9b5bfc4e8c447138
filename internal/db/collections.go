package db

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names.
const (
	AdminsCollection         = "admins"
	AgentsCollection         = "agents"
	UsersCollection          = "users"
	PropertiesCollection     = "properties"
	InquiriesCollection      = "inquiries"
	ContactsCollection       = "contacts"
	EmailTemplatesCollection = "email_templates"
)

// EnsureIndexes creates the unique and lookup indexes the stores rely on. It is idempotent.
func EnsureIndexes(ctx context.Context, database *mongo.Database) error {
	specs := map[string][]mongo.IndexModel{
		AdminsCollection: {
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		AgentsCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "isApproved", Value: 1}}},
		},
		UsersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		PropertiesCollection: {
			{Keys: bson.D{{Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "agent", Value: 1}, {Key: "created_at", Value: -1}}},
		},
		InquiriesCollection: {
			{Keys: bson.D{{Key: "user", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "agent", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "property", Value: 1}}},
		},
		EmailTemplatesCollection: {
			{Keys: bson.D{{Key: "template_id", Value: 1}, {Key: "locale", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
	}
	for coll, models := range specs {
		if _, err := database.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", coll, err)
		}
	}
	return nil
}
