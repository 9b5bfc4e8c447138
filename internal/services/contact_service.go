package services

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"homznspace/backend/internal/models"
	"homznspace/backend/internal/store"
)

type IContactService interface {
	Create(ctx context.Context, lead models.ContactLead) (*models.ContactLead, error)
}

type contactService struct {
	contacts store.IContactStore
	notifier INotifier
	validate *validator.Validate
}

func NewContactService(contacts store.IContactStore, notifier INotifier) IContactService {
	return &contactService{contacts: contacts, notifier: notifier, validate: newValidator()}
}

func (s *contactService) Create(ctx context.Context, lead models.ContactLead) (*models.ContactLead, error) {
	lead.Name = strings.TrimSpace(lead.Name)
	lead.Email = strings.TrimSpace(lead.Email)
	lead.Phone = strings.TrimSpace(lead.Phone)
	lead.PropertyID = strings.TrimSpace(lead.PropertyID)
	lead.Base = models.Base{}
	if err := s.validate.Struct(lead); err != nil {
		return nil, validationError(err)
	}
	if err := s.contacts.Create(ctx, &lead); err != nil {
		return nil, err
	}
	zerolog.Ctx(ctx).Info().Str("contact_id", lead.ID.Hex()).Msg("contact lead stored")
	s.notifier.ContactLeadReceived(ctx, &lead)
	return &lead, nil
}
