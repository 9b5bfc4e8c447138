package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"homznspace/backend/internal/apperr"
	"homznspace/backend/internal/auth"
	"homznspace/backend/internal/cache"
	"homznspace/backend/internal/models"
	"homznspace/backend/internal/storage"
	"homznspace/backend/internal/store"
)

// Upload limits per request.
const (
	MaxImageUploads    = 10
	MaxVideoUploads    = 1
	MaxBrochureUploads = 1
)

// Upload is one file received with a create or update request.
type Upload struct {
	Kind     storage.MediaKind
	Filename string
	Data     []byte
}

type PropertyServiceOptions struct {
	DefaultCity       string
	ImageMaxDimension int
}

type IPropertyService interface {
	List(ctx context.Context, filter store.PropertyFilter) ([]models.Property, error)
	Get(ctx context.Context, id string) (*models.Property, error)
	ListMine(ctx context.Context, p auth.Principal) ([]models.Property, error)
	Create(ctx context.Context, p auth.Principal, input models.PropertyUpdate, uploads []Upload) (*models.Property, error)
	Update(ctx context.Context, p auth.Principal, id string, update models.PropertyUpdate, uploads []Upload) (*models.Property, error)
	Delete(ctx context.Context, p auth.Principal, id string) error
	// Areas returns the distinct non-empty areas across the catalogue, sorted ascending.
	Areas(ctx context.Context) ([]string, error)
}

type propertyService struct {
	properties store.IPropertyStore
	agents     store.IAgentStore
	inquiries  store.IInquiryStore
	blobs      storage.IBlobStore
	areas      cache.IAreaCache
	opts       PropertyServiceOptions
	validate   *validator.Validate
}

func NewPropertyService(
	properties store.IPropertyStore,
	agents store.IAgentStore,
	inquiries store.IInquiryStore,
	blobs storage.IBlobStore,
	areas cache.IAreaCache,
	opts PropertyServiceOptions,
) IPropertyService {
	if areas == nil {
		areas = cache.NewAreaCache(nil, 0)
	}
	return &propertyService{
		properties: properties,
		agents:     agents,
		inquiries:  inquiries,
		blobs:      blobs,
		areas:      areas,
		opts:       opts,
		validate:   newValidator(),
	}
}

func propertyNotFound() error { return apperr.NotFound("property not found") }

func (s *propertyService) List(ctx context.Context, filter store.PropertyFilter) ([]models.Property, error) {
	return s.properties.List(ctx, filter)
}

func (s *propertyService) Get(ctx context.Context, id string) (*models.Property, error) {
	oid, err := models.ParseID(id)
	if err != nil {
		return nil, propertyNotFound()
	}
	return s.find(ctx, oid)
}

func (s *propertyService) find(ctx context.Context, id primitive.ObjectID) (*models.Property, error) {
	prop, err := s.properties.FindByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, propertyNotFound()
	}
	return prop, err
}

func (s *propertyService) ListMine(ctx context.Context, p auth.Principal) ([]models.Property, error) {
	if !p.IsAgent() {
		return nil, apperr.Forbidden("only agents have listings")
	}
	agentID := p.ID
	return s.properties.List(ctx, store.PropertyFilter{Agent: &agentID})
}

func (s *propertyService) Create(ctx context.Context, p auth.Principal, input models.PropertyUpdate, uploads []Upload) (*models.Property, error) {
	if err := s.requireLister(ctx, p); err != nil {
		return nil, err
	}
	blobs, err := s.prepareUploads(uploads)
	if err != nil {
		return nil, err
	}

	prop := &models.Property{
		City:        s.opts.DefaultCity,
		ListingType: models.ListingTypeSale,
		Images:      []string{},
		Amenities:   []string{},
		Rating:      models.DefaultPropertyRating,
		Status:      models.DefaultPropertyStatus,
	}
	input.Apply(prop)

	switch {
	case p.IsAgent():
		// An agent always lists as itself, whatever the payload says.
		agentID := p.ID
		prop.Agent = &agentID
	case input.Agent != nil:
		owner, err := s.resolveAgent(ctx, *input.Agent)
		if err != nil {
			return nil, err
		}
		prop.Agent = owner
	}

	if err := s.attach(ctx, prop, blobs); err != nil {
		return nil, err
	}
	if err := s.validate.Struct(prop); err != nil {
		return nil, validationError(err)
	}
	if err := s.properties.Create(ctx, prop); err != nil {
		return nil, err
	}

	s.areas.Invalidate(ctx)
	zerolog.Ctx(ctx).Info().Str("property_id", prop.ID.Hex()).Str("by", p.String()).Msg("property created")
	return prop, nil
}

func (s *propertyService) Update(ctx context.Context, p auth.Principal, id string, update models.PropertyUpdate, uploads []Upload) (*models.Property, error) {
	oid, err := models.ParseID(id)
	if err != nil {
		return nil, propertyNotFound()
	}
	prop, err := s.find(ctx, oid)
	if err != nil {
		return nil, err
	}
	if !auth.CanMutate(p, prop) {
		return nil, apperr.Forbidden("not authorized to modify this property")
	}

	var owner *primitive.ObjectID
	if update.Agent != nil {
		if !p.IsAdmin() {
			return nil, apperr.Forbidden("only admins can reassign a property")
		}
		if owner, err = s.resolveAgent(ctx, *update.Agent); err != nil {
			return nil, err
		}
	}
	blobs, err := s.prepareUploads(uploads)
	if err != nil {
		return nil, err
	}

	update.Apply(prop)
	if update.Agent != nil {
		prop.Agent = owner
	}
	if err := s.attach(ctx, prop, blobs); err != nil {
		return nil, err
	}
	if err := s.validate.Struct(prop); err != nil {
		return nil, validationError(err)
	}
	if err := s.properties.Replace(ctx, prop); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, propertyNotFound()
		}
		return nil, err
	}

	s.areas.Invalidate(ctx)
	zerolog.Ctx(ctx).Info().Str("property_id", prop.ID.Hex()).Str("by", p.String()).Msg("property updated")
	return prop, nil
}

func (s *propertyService) Delete(ctx context.Context, p auth.Principal, id string) error {
	oid, err := models.ParseID(id)
	if err != nil {
		return propertyNotFound()
	}
	prop, err := s.find(ctx, oid)
	if err != nil {
		return err
	}
	if !auth.CanMutate(p, prop) {
		return apperr.Forbidden("not authorized to delete this property")
	}
	if err := s.properties.Delete(ctx, oid); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return propertyNotFound()
		}
		return err
	}
	s.areas.Invalidate(ctx)

	logger := zerolog.Ctx(ctx).With().Str("property_id", oid.Hex()).Logger()
	detached, err := s.inquiries.DetachProperty(ctx, oid)
	if err != nil {
		logger.Error().Err(err).Msg("failed to detach inquiries from deleted property")
	}
	logger.Info().Int64("inquiries_detached", detached).Str("by", p.String()).Msg("property deleted")
	return nil
}

func (s *propertyService) Areas(ctx context.Context) ([]string, error) {
	cached, gen, ok := s.areas.Get(ctx)
	if ok {
		return cached, nil
	}
	areas, err := s.properties.DistinctAreas(ctx)
	if err != nil {
		return nil, err
	}
	s.areas.Set(ctx, areas, gen)
	return areas, nil
}

// requireLister allows admins and approved agents. The agent record is re-read
// because a token outlives the approval state it was issued under.
func (s *propertyService) requireLister(ctx context.Context, p auth.Principal) error {
	switch p.Kind {
	case auth.KindAdmin:
		return nil
	case auth.KindAgent:
		agent, err := s.agents.FindByID(ctx, p.ID)
		if errors.Is(err, store.ErrNotFound) {
			return apperr.Forbidden("agent account no longer exists")
		}
		if err != nil {
			return err
		}
		if !agent.IsApproved {
			return apperr.New(apperr.CodePendingApproval, "account pending admin approval")
		}
		return nil
	default:
		return apperr.Forbidden("only admins and agents can list properties")
	}
}

// resolveAgent parses an admin-supplied owner. An empty value means admin-owned.
func (s *propertyService) resolveAgent(ctx context.Context, raw string) (*primitive.ObjectID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	id, err := models.ParseID(raw)
	if err != nil {
		return nil, apperr.Validation("agent must be a valid id", "agent")
	}
	if _, err := s.agents.FindByID(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.Validation("agent does not exist", "agent")
		}
		return nil, err
	}
	return &id, nil
}

type preparedUpload struct {
	kind storage.MediaKind
	blob storage.Blob
}

func (s *propertyService) prepareUploads(uploads []Upload) ([]preparedUpload, error) {
	counts := map[storage.MediaKind]int{}
	for _, u := range uploads {
		counts[u.Kind]++
	}
	limits := map[storage.MediaKind]int{
		storage.MediaImage:    MaxImageUploads,
		storage.MediaVideo:    MaxVideoUploads,
		storage.MediaBrochure: MaxBrochureUploads,
	}
	for kind, n := range counts {
		limit, known := limits[kind]
		if !known {
			return nil, apperr.Validation(fmt.Sprintf("unexpected upload field %q", kind), string(kind))
		}
		if n > limit {
			return nil, apperr.Validation(fmt.Sprintf("at most %d file(s) allowed for %s", limit, kind), string(kind))
		}
	}

	prepared := make([]preparedUpload, 0, len(uploads))
	for _, u := range uploads {
		blob, err := storage.Prepare(u.Kind, u.Filename, u.Data, s.opts.ImageMaxDimension)
		if err != nil {
			if errors.Is(err, storage.ErrUnsupportedMedia) {
				return nil, apperr.Validation(err.Error(), string(u.Kind))
			}
			return nil, apperr.Validation(fmt.Sprintf("could not process %s: %v", u.Filename, err), string(u.Kind))
		}
		prepared = append(prepared, preparedUpload{kind: u.Kind, blob: blob})
	}
	return prepared, nil
}

// attach persists the blobs and records their URLs on prop. New images are
// appended; the cover is backfilled only when it was never set.
func (s *propertyService) attach(ctx context.Context, prop *models.Property, blobs []preparedUpload) error {
	for _, u := range blobs {
		url, err := s.blobs.Put(ctx, u.blob)
		if err != nil {
			return apperr.Upstream(err, "failed to store uploaded file")
		}
		switch u.kind {
		case storage.MediaImage:
			prop.Images = append(prop.Images, url)
		case storage.MediaVideo:
			prop.Video = url
		case storage.MediaBrochure:
			prop.BrochureURL = url
		}
	}
	if prop.Images == nil {
		prop.Images = []string{}
	}
	if prop.Amenities == nil {
		prop.Amenities = []string{}
	}
	if prop.Image == "" && len(prop.Images) > 0 {
		prop.Image = prop.Images[0]
	}
	return nil
}
