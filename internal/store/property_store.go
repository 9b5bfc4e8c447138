package store

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"homznspace/backend/internal/db"
	"homznspace/backend/internal/models"
)

// PropertyFilter narrows a catalogue listing. Empty fields do not constrain.
type PropertyFilter struct {
	City        string
	Area        string
	Type        string // "all" behaves like empty
	Possession  string
	Featured    bool
	ListingType string
	Agent       *primitive.ObjectID
}

type IPropertyStore interface {
	Create(ctx context.Context, p *models.Property) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Property, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.Property, error)
	List(ctx context.Context, filter PropertyFilter) ([]models.Property, error)
	// Replace overwrites the stored document with p. Concurrent writers race; the last one wins.
	Replace(ctx context.Context, p *models.Property) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	DistinctAreas(ctx context.Context) ([]string, error)
	// DeleteAll empties the collection and returns the number of removed documents.
	DeleteAll(ctx context.Context) (int64, error)
}

type propertyStore struct {
	db *mongo.Database
}

func NewPropertyStore(database *mongo.Database) IPropertyStore {
	return &propertyStore{db: database}
}

func (s *propertyStore) coll() *mongo.Collection {
	return s.db.Collection(db.PropertiesCollection)
}

func (s *propertyStore) Create(ctx context.Context, p *models.Property) error {
	p.GenIDIfEmpty()
	_, err := s.coll().InsertOne(ctx, p)
	return translate(err, "failed to insert property %q", p.Title)
}

func (s *propertyStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Property, error) {
	var p models.Property
	if err := s.coll().FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return nil, translate(err, "error finding property %s", id.Hex())
	}
	return &p, nil
}

func (s *propertyStore) FindByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.Property, error) {
	return findByIDs(ctx, s.coll(), ids, func(p *models.Property) primitive.ObjectID { return p.ID })
}

func (s *propertyStore) List(ctx context.Context, filter PropertyFilter) ([]models.Property, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := s.coll().Find(ctx, BuildPropertyFilter(filter), opts)
	if err != nil {
		return nil, translate(err, "failed to list properties")
	}
	properties := []models.Property{}
	if err := cursor.All(ctx, &properties); err != nil {
		return nil, translate(err, "failed to decode properties")
	}
	return properties, nil
}

func (s *propertyStore) Replace(ctx context.Context, p *models.Property) error {
	res, err := s.coll().ReplaceOne(ctx, bson.M{"_id": p.ID}, p)
	if err != nil {
		return translate(err, "failed to replace property %s", p.ID.Hex())
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *propertyStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.coll().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return translate(err, "failed to delete property %s", id.Hex())
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *propertyStore) DistinctAreas(ctx context.Context) ([]string, error) {
	values, err := s.coll().Distinct(ctx, "area", bson.M{})
	if err != nil {
		return nil, translate(err, "failed to list distinct areas")
	}
	return NormalizeAreas(values), nil
}

func (s *propertyStore) DeleteAll(ctx context.Context) (int64, error) {
	res, err := s.coll().DeleteMany(ctx, bson.M{})
	if err != nil {
		return 0, translate(err, "failed to clear properties")
	}
	return res.DeletedCount, nil
}

// BuildPropertyFilter translates a PropertyFilter into a Mongo query.
// Text fields are case-insensitive substring matches on the literal input.
func BuildPropertyFilter(f PropertyFilter) bson.M {
	query := bson.M{}
	if v := strings.TrimSpace(f.City); v != "" {
		query["city"] = containsFold(v)
	}
	if v := strings.TrimSpace(f.Area); v != "" {
		query["area"] = containsFold(v)
	}
	if v := strings.TrimSpace(f.Type); v != "" && !strings.EqualFold(v, "all") {
		query["type"] = v
	}
	if v := strings.TrimSpace(f.Possession); v != "" {
		query["possession"] = containsFold(v)
	}
	if f.Featured {
		query["is_featured"] = true
	}
	if v := strings.TrimSpace(f.ListingType); v != "" {
		query["listingType"] = v
	}
	if f.Agent != nil {
		query["agent"] = *f.Agent
	}
	return query
}

func containsFold(s string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(s), Options: "i"}
}

// NormalizeAreas keeps the non-empty string values, deduplicated and sorted ascending.
func NormalizeAreas(values []interface{}) []string {
	seen := make(map[string]struct{}, len(values))
	areas := make([]string, 0, len(values))
	for _, v := range values {
		area, ok := v.(string)
		if !ok {
			continue
		}
		area = strings.TrimSpace(area)
		if area == "" {
			continue
		}
		if _, dup := seen[area]; dup {
			continue
		}
		seen[area] = struct{}{}
		areas = append(areas, area)
	}
	sort.Strings(areas)
	return areas
}
