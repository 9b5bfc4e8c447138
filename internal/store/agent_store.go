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

// AgentChanges lists the self-editable agent fields; nil fields are left untouched.
type AgentChanges struct {
	Name  *string
	Phone *string
}

type IAgentStore interface {
	Create(ctx context.Context, agent *models.Agent) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Agent, error)
	FindByEmail(ctx context.Context, email string) (*models.Agent, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.Agent, error)
	ListPending(ctx context.Context) ([]models.Agent, error)
	// Approve sets isApproved and reports whether the flag actually changed.
	Approve(ctx context.Context, id primitive.ObjectID) (*models.Agent, bool, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	Update(ctx context.Context, id primitive.ObjectID, changes AgentChanges) (*models.Agent, error)
}

type agentStore struct {
	db *mongo.Database
}

func NewAgentStore(database *mongo.Database) IAgentStore {
	return &agentStore{db: database}
}

func (s *agentStore) coll() *mongo.Collection {
	return s.db.Collection(db.AgentsCollection)
}

func (s *agentStore) Create(ctx context.Context, agent *models.Agent) error {
	agent.GenIDIfEmpty()
	_, err := s.coll().InsertOne(ctx, agent)
	return translate(err, "failed to insert agent %s", agent.Email)
}

func (s *agentStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Agent, error) {
	var agent models.Agent
	if err := s.coll().FindOne(ctx, bson.M{"_id": id}).Decode(&agent); err != nil {
		return nil, translate(err, "error finding agent %s", id.Hex())
	}
	return &agent, nil
}

func (s *agentStore) FindByEmail(ctx context.Context, email string) (*models.Agent, error) {
	var agent models.Agent
	if err := s.coll().FindOne(ctx, bson.M{"email": email}).Decode(&agent); err != nil {
		return nil, translate(err, "error finding agent by email")
	}
	return &agent, nil
}

func (s *agentStore) FindByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.Agent, error) {
	return findByIDs(ctx, s.coll(), ids, func(a *models.Agent) primitive.ObjectID { return a.ID })
}

func (s *agentStore) ListPending(ctx context.Context) ([]models.Agent, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetProjection(bson.M{"password": 0})
	cursor, err := s.coll().Find(ctx, bson.M{"isApproved": false}, opts)
	if err != nil {
		return nil, translate(err, "failed to list pending agents")
	}
	agents := []models.Agent{}
	if err := cursor.All(ctx, &agents); err != nil {
		return nil, translate(err, "failed to decode pending agents")
	}
	return agents, nil
}

func (s *agentStore) Approve(ctx context.Context, id primitive.ObjectID) (*models.Agent, bool, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.Before)
	var before models.Agent
	err := s.coll().FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"isApproved": true}}, opts).Decode(&before)
	if err != nil {
		return nil, false, translate(err, "failed to approve agent %s", id.Hex())
	}
	changed := !before.IsApproved
	before.IsApproved = true
	return &before, changed, nil
}

func (s *agentStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.coll().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return translate(err, "failed to delete agent %s", id.Hex())
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *agentStore) Update(ctx context.Context, id primitive.ObjectID, changes AgentChanges) (*models.Agent, error) {
	set := bson.M{}
	if changes.Name != nil {
		set["name"] = *changes.Name
	}
	if changes.Phone != nil {
		set["phone"] = *changes.Phone
	}
	if len(set) == 0 {
		return s.FindByID(ctx, id)
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var agent models.Agent
	if err := s.coll().FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&agent); err != nil {
		return nil, translate(err, "failed to update agent %s", id.Hex())
	}
	return &agent, nil
}
