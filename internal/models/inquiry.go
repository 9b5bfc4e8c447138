package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type InquiryStatus string

const (
	InquiryStatusPending   InquiryStatus = "Pending"
	InquiryStatusContacted InquiryStatus = "Contacted"
	InquiryStatusResolved  InquiryStatus = "Resolved"
)

// Inquiry is a buyer's message about a property.
// Agent is copied from the property when the inquiry is filed and never follows later reassignment.
type Inquiry struct {
	Base     `bson:",inline"`
	User     primitive.ObjectID  `bson:"user" json:"user"`
	Property *primitive.ObjectID `bson:"property,omitempty" json:"property"`
	Agent    *primitive.ObjectID `bson:"agent,omitempty" json:"agent"`
	Message  string              `bson:"message" json:"message"`
	Status   InquiryStatus       `bson:"status" json:"status"`
}

// BuyerInquiryView is an inquiry as shown to the user who filed it.
type BuyerInquiryView struct {
	ID        primitive.ObjectID `json:"_id"`
	Message   string             `json:"message"`
	Status    InquiryStatus      `json:"status"`
	CreatedAt time.Time          `json:"created_at"`
	Property  *PropertySummary   `json:"property"`
	Agent     *AgentSummary      `json:"agent"`
}

// SellerInquiryView is an inquiry as shown to the agent or admin handling it.
type SellerInquiryView struct {
	ID        primitive.ObjectID `json:"_id"`
	Message   string             `json:"message"`
	Status    InquiryStatus      `json:"status"`
	CreatedAt time.Time          `json:"created_at"`
	User      *UserSummary       `json:"user"`
	Property  *PropertySummary   `json:"property"`
}
