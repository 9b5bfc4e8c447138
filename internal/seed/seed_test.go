package seed

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"homznspace/backend/internal/models"
	"homznspace/backend/internal/store"
)

func TestProperties_Catalogue(t *testing.T) {
	props, err := Properties("Coimbatore")
	require.NoError(t, err)
	require.Len(t, props, 14)

	areas := map[string]bool{}
	for _, p := range props {
		assert.Equal(t, "Coimbatore", p.City)
		assert.Equal(t, models.ListingTypeSale, p.ListingType)
		assert.NotEmpty(t, p.Image, p.Title)
		assert.NotNil(t, p.Amenities)
		assert.Nil(t, p.Agent)
		areas[p.Area] = true
	}
	for _, want := range []string{"Saravanampatti", "Peelamedu", "R.S. Puram", "Gandhipuram", "Vadavalli"} {
		assert.True(t, areas[want], want)
	}
}

func TestParse_Defaults(t *testing.T) {
	props, err := parse([]byte(`
- title: Plot
  area: Podanur
  type: Plot
- title: Villa
  area: Kovaipudur
  city: Ooty
  type: Villa
  listingType: Rent
  rating: 4.9
  status: Sold
`), "Coimbatore")
	require.NoError(t, err)
	require.Len(t, props, 2)

	assert.Equal(t, "Coimbatore", props[0].City)
	assert.Equal(t, models.DefaultPropertyRating, props[0].Rating)
	assert.Equal(t, models.DefaultPropertyStatus, props[0].Status)

	assert.Equal(t, "Ooty", props[1].City)
	assert.Equal(t, models.ListingTypeRent, props[1].ListingType)
	assert.Equal(t, 4.9, props[1].Rating)
	assert.Equal(t, "Sold", props[1].Status)
}

func TestParse_RejectsIncompleteEntries(t *testing.T) {
	_, err := parse([]byte(`- title: Nowhere`), "Coimbatore")
	assert.Error(t, err)

	_, err = parse([]byte(`not: [a list`), "Coimbatore")
	assert.Error(t, err)
}

type memoryPropertyStore struct {
	store.IPropertyStore
	docs      []models.Property
	failTitle string
}

func (m *memoryPropertyStore) DeleteAll(ctx context.Context) (int64, error) {
	n := int64(len(m.docs))
	m.docs = nil
	return n, nil
}

func (m *memoryPropertyStore) Create(ctx context.Context, p *models.Property) error {
	if p.Title == m.failTitle {
		return errors.New("write failed")
	}
	p.GenIDIfEmpty()
	m.docs = append(m.docs, *p)
	return nil
}

func TestReplace(t *testing.T) {
	mem := &memoryPropertyStore{docs: []models.Property{{Title: "old"}}}
	props := []models.Property{{Title: "b"}, {Title: "a"}}

	removed, err := Replace(context.Background(), mem, props)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	titles := []string{mem.docs[0].Title, mem.docs[1].Title}
	sort.Strings(titles)
	assert.Equal(t, []string{"a", "b"}, titles)
	assert.NotEqual(t, primitive.NilObjectID, props[0].ID)
}

func TestReplace_StopsOnError(t *testing.T) {
	mem := &memoryPropertyStore{failTitle: "bad"}
	_, err := Replace(context.Background(), mem, []models.Property{{Title: "ok"}, {Title: "bad"}, {Title: "never"}})
	assert.ErrorContains(t, err, `"bad"`)
	assert.Len(t, mem.docs, 1)
}
