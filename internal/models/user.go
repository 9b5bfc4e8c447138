package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Admin is a platform operator. Admins are created out of band with the create-admin command.
type Admin struct {
	Base         `bson:",inline"`
	Username     string `bson:"username" json:"username"`
	PasswordHash string `bson:"password" json:"-"`
}

// Agent lists properties on behalf of sellers. A new agent cannot log in until approved.
type Agent struct {
	Base         `bson:",inline"`
	Name         string `bson:"name" json:"name"`
	Email        string `bson:"email" json:"email"`
	Phone        string `bson:"phone" json:"phone"`
	PasswordHash string `bson:"password" json:"-"`
	IsApproved   bool   `bson:"isApproved" json:"isApproved"`
}

// User is a buyer or renter browsing the catalogue.
type User struct {
	Base         `bson:",inline"`
	Username     string               `bson:"username" json:"username"`
	Email        string               `bson:"email" json:"email"`
	Phone        string               `bson:"phone,omitempty" json:"phone,omitempty"`
	PasswordHash string               `bson:"password" json:"-"`
	Favorites    []primitive.ObjectID `bson:"favorites,omitempty" json:"favorites"`
}

// UserSummary is the public subset of a User embedded in seller inquiry views.
type UserSummary struct {
	ID       primitive.ObjectID `bson:"_id" json:"_id"`
	Username string             `bson:"username" json:"username"`
	Email    string             `bson:"email" json:"email"`
	Phone    string             `bson:"phone,omitempty" json:"phone,omitempty"`
}

// AgentSummary is the public subset of an Agent embedded in buyer inquiry views.
type AgentSummary struct {
	ID    primitive.ObjectID `bson:"_id" json:"_id"`
	Name  string             `bson:"name" json:"name"`
	Email string             `bson:"email" json:"email"`
	Phone string             `bson:"phone" json:"phone"`
}

func (u *User) Summary() *UserSummary {
	return &UserSummary{ID: u.ID, Username: u.Username, Email: u.Email, Phone: u.Phone}
}

func (a *Agent) Summary() *AgentSummary {
	return &AgentSummary{ID: a.ID, Name: a.Name, Email: a.Email, Phone: a.Phone}
}
