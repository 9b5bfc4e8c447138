package models

// ContactLead is an anonymous enquiry left through the contact form.
type ContactLead struct {
	Base       `bson:",inline"`
	Name       string `bson:"name" json:"name" validate:"required"`
	Email      string `bson:"email" json:"email" validate:"required,email"`
	Phone      string `bson:"phone" json:"phone" validate:"required"`
	Message    string `bson:"message,omitempty" json:"message,omitempty"`
	PropertyID string `bson:"property_id,omitempty" json:"property_id,omitempty"`
}
