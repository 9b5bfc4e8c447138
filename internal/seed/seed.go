// Package seed holds the demo property catalogue and loads it into the store.
package seed

import (
	"context"
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"homznspace/backend/internal/models"
	"homznspace/backend/internal/store"
)

//go:embed properties.yaml
var catalogue []byte

type listing struct {
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	Price       string   `yaml:"price"`
	Location    string   `yaml:"location"`
	Area        string   `yaml:"area"`
	City        string   `yaml:"city"`
	Type        string   `yaml:"type"`
	ListingType string   `yaml:"listingType"`
	Image       string   `yaml:"image"`
	Bedrooms    string   `yaml:"bedrooms"`
	Bathrooms   *float64 `yaml:"bathrooms"`
	Sqft        string   `yaml:"sqft"`
	Possession  string   `yaml:"possession"`
	Builder     string   `yaml:"builder"`
	Amenities   []string `yaml:"amenities"`
	Rating      float64  `yaml:"rating"`
	Reviews     int      `yaml:"reviews"`
	Status      string   `yaml:"status"`
	Featured    bool     `yaml:"featured"`
}

// Properties decodes the embedded catalogue, filling the same defaults a newly
// created property gets. Every seeded property is admin-owned.
func Properties(defaultCity string) ([]models.Property, error) {
	return parse(catalogue, defaultCity)
}

func parse(data []byte, defaultCity string) ([]models.Property, error) {
	var listings []listing
	if err := yaml.Unmarshal(data, &listings); err != nil {
		return nil, fmt.Errorf("failed to parse seed catalogue: %w", err)
	}

	props := make([]models.Property, 0, len(listings))
	for i, l := range listings {
		if l.Title == "" || l.Area == "" {
			return nil, fmt.Errorf("seed entry %d: title and area are required", i)
		}
		p := models.Property{
			Title:       l.Title,
			Description: l.Description,
			Price:       l.Price,
			Location:    l.Location,
			Area:        l.Area,
			City:        l.City,
			Type:        models.PropertyType(l.Type),
			ListingType: models.ListingType(l.ListingType),
			Image:       l.Image,
			Images:      []string{},
			Bedrooms:    l.Bedrooms,
			Bathrooms:   l.Bathrooms,
			Sqft:        l.Sqft,
			Possession:  l.Possession,
			Builder:     l.Builder,
			Amenities:   l.Amenities,
			IsFeatured:  l.Featured,
			Rating:      l.Rating,
			Reviews:     l.Reviews,
			Status:      l.Status,
		}
		if p.City == "" {
			p.City = defaultCity
		}
		if p.ListingType == "" {
			p.ListingType = models.ListingTypeSale
		}
		if p.Amenities == nil {
			p.Amenities = []string{}
		}
		if p.Rating == 0 {
			p.Rating = models.DefaultPropertyRating
		}
		if p.Status == "" {
			p.Status = models.DefaultPropertyStatus
		}
		props = append(props, p)
	}
	return props, nil
}

// Replace deletes every property and inserts props. It returns how many were removed.
func Replace(ctx context.Context, properties store.IPropertyStore, props []models.Property) (int64, error) {
	removed, err := properties.DeleteAll(ctx)
	if err != nil {
		return 0, err
	}
	for i := range props {
		if err := properties.Create(ctx, &props[i]); err != nil {
			return removed, fmt.Errorf("failed to insert %q: %w", props[i].Title, err)
		}
	}
	return removed, nil
}
