package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"homznspace/backend/internal/db"
	"homznspace/backend/internal/models"
)

type IInquiryStore interface {
	Create(ctx context.Context, inquiry *models.Inquiry) error
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Inquiry, error)
	// ListByAgent returns inquiries snapshotted to agentID, or the unassigned ones when agentID is nil.
	ListByAgent(ctx context.Context, agentID *primitive.ObjectID) ([]models.Inquiry, error)
	// DetachProperty clears the property reference on every inquiry about propertyID.
	DetachProperty(ctx context.Context, propertyID primitive.ObjectID) (int64, error)
}

type inquiryStore struct {
	db *mongo.Database
}

func NewInquiryStore(database *mongo.Database) IInquiryStore {
	return &inquiryStore{db: database}
}

func (s *inquiryStore) coll() *mongo.Collection {
	return s.db.Collection(db.InquiriesCollection)
}

func (s *inquiryStore) Create(ctx context.Context, inquiry *models.Inquiry) error {
	inquiry.GenIDIfEmpty()
	_, err := s.coll().InsertOne(ctx, inquiry)
	return translate(err, "failed to insert inquiry")
}

func (s *inquiryStore) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Inquiry, error) {
	return s.list(ctx, bson.M{"user": userID})
}

func (s *inquiryStore) ListByAgent(ctx context.Context, agentID *primitive.ObjectID) ([]models.Inquiry, error) {
	if agentID == nil {
		// Matches both a missing field and an explicit null.
		return s.list(ctx, bson.M{"agent": nil})
	}
	return s.list(ctx, bson.M{"agent": *agentID})
}

func (s *inquiryStore) DetachProperty(ctx context.Context, propertyID primitive.ObjectID) (int64, error) {
	res, err := s.coll().UpdateMany(ctx, bson.M{"property": propertyID}, bson.M{"$unset": bson.M{"property": ""}})
	if err != nil {
		return 0, translate(err, "failed to detach inquiries from property %s", propertyID.Hex())
	}
	return res.ModifiedCount, nil
}

func (s *inquiryStore) list(ctx context.Context, filter bson.M) ([]models.Inquiry, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := s.coll().Find(ctx, filter, opts)
	if err != nil {
		return nil, translate(err, "failed to list inquiries")
	}
	inquiries := []models.Inquiry{}
	if err := cursor.All(ctx, &inquiries); err != nil {
		return nil, translate(err, "failed to decode inquiries")
	}
	return inquiries, nil
}
