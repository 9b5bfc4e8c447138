package services

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"homznspace/backend/internal/apperr"
	"homznspace/backend/internal/auth"
	"homznspace/backend/internal/models"
	"homznspace/backend/internal/store"
)

// CreateInquiryInput is the POST /api/inquiries body.
type CreateInquiryInput struct {
	Property string `json:"propertyId"`
	Message  string `json:"message"`
}

type IInquiryService interface {
	Create(ctx context.Context, p auth.Principal, input CreateInquiryInput) (*models.Inquiry, error)
	// ListForBuyer returns the caller's own inquiries, newest first.
	ListForBuyer(ctx context.Context, p auth.Principal) ([]models.BuyerInquiryView, error)
	// ListForSeller returns the leads an agent owns, or for an admin the leads on admin-owned properties.
	ListForSeller(ctx context.Context, p auth.Principal) ([]models.SellerInquiryView, error)
}

type inquiryService struct {
	inquiries  store.IInquiryStore
	properties store.IPropertyStore
	agents     store.IAgentStore
	users      store.IUserStore
	notifier   INotifier
}

func NewInquiryService(inquiries store.IInquiryStore, properties store.IPropertyStore, agents store.IAgentStore, users store.IUserStore, notifier INotifier) IInquiryService {
	return &inquiryService{
		inquiries:  inquiries,
		properties: properties,
		agents:     agents,
		users:      users,
		notifier:   notifier,
	}
}

func (s *inquiryService) Create(ctx context.Context, p auth.Principal, input CreateInquiryInput) (*models.Inquiry, error) {
	if !p.IsUser() {
		return nil, apperr.Forbidden("only users can send inquiries")
	}
	message := strings.TrimSpace(input.Message)
	if message == "" {
		return nil, apperr.Validation("missing required field: message", "message")
	}
	propertyID, err := models.ParseID(strings.TrimSpace(input.Property))
	if err != nil {
		return nil, propertyNotFound()
	}
	prop, err := s.properties.FindByID(ctx, propertyID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, propertyNotFound()
	}
	if err != nil {
		return nil, err
	}

	inquiry := &models.Inquiry{
		User:     p.ID,
		Property: &propertyID,
		Agent:    copyID(prop.Agent),
		Message:  message,
		Status:   models.InquiryStatusPending,
	}
	if err := s.inquiries.Create(ctx, inquiry); err != nil {
		return nil, err
	}
	zerolog.Ctx(ctx).Info().Str("inquiry_id", inquiry.ID.Hex()).Str("property_id", propertyID.Hex()).Msg("inquiry created")

	s.notifyOwner(ctx, inquiry, prop)
	return inquiry, nil
}

// notifyOwner mails the agent the inquiry was snapshotted to, or the admin
// mailbox when the property is admin-owned or the agent is gone.
func (s *inquiryService) notifyOwner(ctx context.Context, inquiry *models.Inquiry, prop *models.Property) {
	logger := zerolog.Ctx(ctx)
	notice := InquiryNotice{Property: prop, Message: inquiry.Message}

	if user, err := s.users.FindByID(ctx, inquiry.User); err == nil {
		notice.User = user
	} else {
		logger.Warn().Err(err).Msg("could not load inquiring user for notification")
	}
	if inquiry.Agent != nil {
		agent, err := s.agents.FindByID(ctx, *inquiry.Agent)
		if err == nil {
			notice.Recipient = agent.Email
		} else {
			logger.Warn().Err(err).Str("agent_id", inquiry.Agent.Hex()).Msg("could not load owning agent, notifying admin")
		}
	}
	s.notifier.InquiryReceived(ctx, notice)
}

func (s *inquiryService) ListForBuyer(ctx context.Context, p auth.Principal) ([]models.BuyerInquiryView, error) {
	if !p.IsUser() {
		return nil, apperr.Forbidden("only users have sent inquiries")
	}
	inquiries, err := s.inquiries.ListByUser(ctx, p.ID)
	if err != nil {
		return nil, err
	}

	var propertyIDs, agentIDs []primitive.ObjectID
	for _, inq := range inquiries {
		if inq.Property != nil {
			propertyIDs = append(propertyIDs, *inq.Property)
		}
		if inq.Agent != nil {
			agentIDs = append(agentIDs, *inq.Agent)
		}
	}
	properties, err := s.properties.FindByIDs(ctx, propertyIDs)
	if err != nil {
		return nil, err
	}
	agents, err := s.agents.FindByIDs(ctx, agentIDs)
	if err != nil {
		return nil, err
	}

	views := make([]models.BuyerInquiryView, 0, len(inquiries))
	for _, inq := range inquiries {
		view := models.BuyerInquiryView{ID: inq.ID, Message: inq.Message, Status: inq.Status, CreatedAt: inq.CreatedAt}
		if inq.Property != nil {
			if prop, ok := properties[*inq.Property]; ok {
				view.Property = prop.Summary()
			}
		}
		if inq.Agent != nil {
			if agent, ok := agents[*inq.Agent]; ok {
				view.Agent = agent.Summary()
			}
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *inquiryService) ListForSeller(ctx context.Context, p auth.Principal) ([]models.SellerInquiryView, error) {
	var owner *primitive.ObjectID
	switch p.Kind {
	case auth.KindAgent:
		id := p.ID
		owner = &id
	case auth.KindAdmin:
		owner = nil
	default:
		return nil, apperr.Forbidden("only agents and admins receive inquiries")
	}

	inquiries, err := s.inquiries.ListByAgent(ctx, owner)
	if err != nil {
		return nil, err
	}

	var propertyIDs, userIDs []primitive.ObjectID
	for _, inq := range inquiries {
		if inq.Property != nil {
			propertyIDs = append(propertyIDs, *inq.Property)
		}
		userIDs = append(userIDs, inq.User)
	}
	properties, err := s.properties.FindByIDs(ctx, propertyIDs)
	if err != nil {
		return nil, err
	}
	users, err := s.users.FindByIDs(ctx, userIDs)
	if err != nil {
		return nil, err
	}

	views := make([]models.SellerInquiryView, 0, len(inquiries))
	for _, inq := range inquiries {
		view := models.SellerInquiryView{ID: inq.ID, Message: inq.Message, Status: inq.Status, CreatedAt: inq.CreatedAt}
		if user, ok := users[inq.User]; ok {
			view.User = user.Summary()
		}
		if inq.Property != nil {
			if prop, ok := properties[*inq.Property]; ok {
				view.Property = prop.Summary()
			}
		}
		views = append(views, view)
	}
	return views, nil
}

func copyID(id *primitive.ObjectID) *primitive.ObjectID {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
