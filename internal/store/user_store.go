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

// UserChanges lists the self-editable user fields; nil fields are left untouched.
type UserChanges struct {
	Username  *string
	Phone     *string
	Favorites *[]primitive.ObjectID
}

type IUserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.User, error)
	Update(ctx context.Context, id primitive.ObjectID, changes UserChanges) (*models.User, error)
}

type userStore struct {
	db *mongo.Database
}

func NewUserStore(database *mongo.Database) IUserStore {
	return &userStore{db: database}
}

func (s *userStore) coll() *mongo.Collection {
	return s.db.Collection(db.UsersCollection)
}

func (s *userStore) Create(ctx context.Context, user *models.User) error {
	user.GenIDIfEmpty()
	_, err := s.coll().InsertOne(ctx, user)
	return translate(err, "failed to insert user %s", user.Email)
}

func (s *userStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	if err := s.coll().FindOne(ctx, bson.M{"_id": id}).Decode(&user); err != nil {
		return nil, translate(err, "error finding user %s", id.Hex())
	}
	return &user, nil
}

func (s *userStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.coll().FindOne(ctx, bson.M{"email": email}).Decode(&user); err != nil {
		return nil, translate(err, "error finding user by email")
	}
	return &user, nil
}

func (s *userStore) FindByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.User, error) {
	return findByIDs(ctx, s.coll(), ids, func(u *models.User) primitive.ObjectID { return u.ID })
}

func (s *userStore) Update(ctx context.Context, id primitive.ObjectID, changes UserChanges) (*models.User, error) {
	set := bson.M{}
	if changes.Username != nil {
		set["username"] = *changes.Username
	}
	if changes.Phone != nil {
		set["phone"] = *changes.Phone
	}
	if changes.Favorites != nil {
		set["favorites"] = *changes.Favorites
	}
	if len(set) == 0 {
		return s.FindByID(ctx, id)
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var user models.User
	if err := s.coll().FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&user); err != nil {
		return nil, translate(err, "failed to update user %s", id.Hex())
	}
	return &user, nil
}
