package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PropertyType string

const (
	PropertyTypeApartment  PropertyType = "Apartment"
	PropertyTypeVilla      PropertyType = "Villa"
	PropertyTypePlot       PropertyType = "Plot"
	PropertyTypeRowHouse   PropertyType = "Row House"
	PropertyTypeVillament  PropertyType = "Villament"
	PropertyTypeCommercial PropertyType = "Commercial"
)

type ListingType string

const (
	ListingTypeSale ListingType = "Sale"
	ListingTypeRent ListingType = "Rent"
)

const (
	DefaultPropertyRating = 4.5
	DefaultPropertyStatus = "Available"
)

// Property is a catalogue listing. A nil Agent means the property is admin-owned.
type Property struct {
	Base        `bson:",inline"`
	Title       string              `bson:"title" json:"title" validate:"required"`
	Description string              `bson:"description" json:"description" validate:"required"`
	Price       string              `bson:"price" json:"price" validate:"required"`
	Location    string              `bson:"location" json:"location" validate:"required"`
	Area        string              `bson:"area" json:"area" validate:"required"`
	City        string              `bson:"city" json:"city" validate:"required"`
	Type        PropertyType        `bson:"type" json:"type" validate:"required,oneof=Apartment Villa Plot 'Row House' Villament Commercial"`
	ListingType ListingType         `bson:"listingType" json:"listingType" validate:"required,oneof=Sale Rent"`
	Image       string              `bson:"image" json:"image" validate:"required"`
	Images      []string            `bson:"images" json:"images"`
	Video       string              `bson:"video,omitempty" json:"video,omitempty"`
	Bedrooms    string              `bson:"bedrooms,omitempty" json:"bedrooms,omitempty"`
	Bathrooms   *float64            `bson:"bathrooms,omitempty" json:"bathrooms,omitempty"`
	Sqft        string              `bson:"sqft,omitempty" json:"sqft,omitempty"`
	Possession  string              `bson:"possession,omitempty" json:"possession,omitempty"`
	Builder     string              `bson:"builder,omitempty" json:"builder,omitempty"`
	Amenities   []string            `bson:"amenities" json:"amenities"`
	IsFeatured  bool                `bson:"is_featured" json:"is_featured"`
	Rating      float64             `bson:"rating" json:"rating"`
	Reviews     int                 `bson:"reviews" json:"reviews"`
	Status      string              `bson:"status" json:"status"`
	Whatsapp    string              `bson:"whatsapp,omitempty" json:"whatsapp,omitempty"`
	BookingURL  string              `bson:"booking_url,omitempty" json:"booking_url,omitempty"`
	BrochureURL string              `bson:"brochure_url,omitempty" json:"brochure_url,omitempty"`
	Agent       *primitive.ObjectID `bson:"agent,omitempty" json:"agent,omitempty"`
}

// OwnedBy reports whether the property is assigned to the given agent.
func (p *Property) OwnedBy(agentID primitive.ObjectID) bool {
	return p.Agent != nil && *p.Agent == agentID
}

// PropertySummary is the subset of a Property embedded in inquiry views.
type PropertySummary struct {
	ID       primitive.ObjectID `bson:"_id" json:"_id"`
	Title    string             `bson:"title" json:"title"`
	Location string             `bson:"location,omitempty" json:"location,omitempty"`
	Image    string             `bson:"image,omitempty" json:"image,omitempty"`
}

func (p *Property) Summary() *PropertySummary {
	return &PropertySummary{ID: p.ID, Title: p.Title, Location: p.Location, Image: p.Image}
}

// PropertyUpdate enumerates every field a client may set on a property.
// Nil fields are left untouched. Agent is a hex id; an empty string clears it.
type PropertyUpdate struct {
	Title       *string       `json:"title"`
	Description *string       `json:"description"`
	Price       *string       `json:"price"`
	Location    *string       `json:"location"`
	Area        *string       `json:"area"`
	City        *string       `json:"city"`
	Type        *PropertyType `json:"type"`
	ListingType *ListingType  `json:"listingType"`
	Image       *string       `json:"image"`
	Images      *[]string     `json:"images"`
	Video       *string       `json:"video"`
	Bedrooms    *string       `json:"bedrooms"`
	Bathrooms   *float64      `json:"bathrooms"`
	Sqft        *string       `json:"sqft"`
	Possession  *string       `json:"possession"`
	Builder     *string       `json:"builder"`
	Amenities   *[]string     `json:"amenities"`
	IsFeatured  *bool         `json:"is_featured"`
	Rating      *float64      `json:"rating"`
	Reviews     *int          `json:"reviews"`
	Status      *string       `json:"status"`
	Whatsapp    *string       `json:"whatsapp"`
	BookingURL  *string       `json:"booking_url"`
	BrochureURL *string       `json:"brochure_url"`
	Agent       *string       `json:"agent"`
}

// Apply copies every set field except Agent onto p.
func (u *PropertyUpdate) Apply(p *Property) {
	setString(&p.Title, u.Title)
	setString(&p.Description, u.Description)
	setString(&p.Price, u.Price)
	setString(&p.Location, u.Location)
	setString(&p.Area, u.Area)
	setString(&p.City, u.City)
	if u.Type != nil {
		p.Type = *u.Type
	}
	if u.ListingType != nil {
		p.ListingType = *u.ListingType
	}
	setString(&p.Image, u.Image)
	if u.Images != nil {
		p.Images = append([]string{}, (*u.Images)...)
	}
	setString(&p.Video, u.Video)
	setString(&p.Bedrooms, u.Bedrooms)
	if u.Bathrooms != nil {
		v := *u.Bathrooms
		p.Bathrooms = &v
	}
	setString(&p.Sqft, u.Sqft)
	setString(&p.Possession, u.Possession)
	setString(&p.Builder, u.Builder)
	if u.Amenities != nil {
		p.Amenities = append([]string{}, (*u.Amenities)...)
	}
	if u.IsFeatured != nil {
		p.IsFeatured = *u.IsFeatured
	}
	if u.Rating != nil {
		p.Rating = *u.Rating
	}
	if u.Reviews != nil {
		p.Reviews = *u.Reviews
	}
	setString(&p.Status, u.Status)
	setString(&p.Whatsapp, u.Whatsapp)
	setString(&p.BookingURL, u.BookingURL)
	setString(&p.BrochureURL, u.BrochureURL)
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
