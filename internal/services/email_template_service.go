package services

import (
	"context"
	"errors"
	"fmt"

	"homznspace/backend/internal/models"
	"homznspace/backend/internal/store"
)

const DefaultLocale = "en-US"

// ErrTemplateNotFound is returned when neither the database nor the defaults know a template.
var ErrTemplateNotFound = errors.New("email template not found")

// Default email templates used as fallback when not found in database
var defaultEmailTemplates = map[string]models.EmailTemplate{
	models.TemplateAgentRegisteredAdmin: {
		TemplateID: models.TemplateAgentRegisteredAdmin,
		Locale:     DefaultLocale,
		Subject:    "New Agent Registration: {{.name}}",
		Body: "A new agent has registered and is awaiting approval.\n\n" +
			"Name: {{.name}}\nEmail: {{.email}}\nPhone: {{.phone}}\n\n" +
			"Review pending agents in the {{.app_name}} admin dashboard.",
	},
	models.TemplateAgentWelcome: {
		TemplateID: models.TemplateAgentWelcome,
		Locale:     DefaultLocale,
		Subject:    "Welcome to {{.app_name}}",
		Body: "Hi {{.name}},\n\nThank you for registering as an agent with {{.app_name}}. " +
			"Your account is pending approval. We will email you once an administrator has reviewed it.",
	},
	models.TemplateAgentApproved: {
		TemplateID: models.TemplateAgentApproved,
		Locale:     DefaultLocale,
		Subject:    "Your {{.app_name}} agent account is approved",
		Body:       "Hi {{.name}},\n\nYour agent account has been approved. You can now log in and start listing properties.",
	},
	models.TemplateInquiryReceived: {
		TemplateID: models.TemplateInquiryReceived,
		Locale:     DefaultLocale,
		Subject:    "New inquiry for {{.property_title}}",
		Body: "You have received a new inquiry.\n\n" +
			"Property: {{.property_title}}\nFrom: {{.user_name}} <{{.user_email}}>{{if .user_phone}}\nPhone: {{.user_phone}}{{end}}\n\n" +
			"{{.message}}",
	},
	models.TemplateContactLead: {
		TemplateID: models.TemplateContactLead,
		Locale:     DefaultLocale,
		Subject:    "New contact enquiry from {{.name}}",
		Body: "Name: {{.name}}\nEmail: {{.email}}\nPhone: {{.phone}}" +
			"{{if .property_id}}\nProperty: {{.property_id}}{{end}}\n\n{{.message}}",
	},
}

// IEmailTemplateService defines the interface for email template operations.
type IEmailTemplateService interface {
	GetTemplate(ctx context.Context, templateID, locale string) (*models.EmailTemplate, error)
}

// EmailTemplateService loads templates from the database, falling back to built-in defaults.
type EmailTemplateService struct {
	templates store.ITemplateStore
}

func NewEmailTemplateService(templates store.ITemplateStore) *EmailTemplateService {
	return &EmailTemplateService{templates: templates}
}

// GetTemplate retrieves an email template by ID and locale
func (s *EmailTemplateService) GetTemplate(ctx context.Context, templateID, locale string) (*models.EmailTemplate, error) {
	if locale == "" {
		locale = DefaultLocale
	}
	if s.templates != nil {
		tmpl, err := s.templates.Find(ctx, templateID, locale)
		if err == nil {
			return tmpl, nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("error retrieving template: %w", err)
		}
	}
	if defaultTemplate, ok := defaultEmailTemplates[templateID]; ok {
		return &defaultTemplate, nil
	}
	return nil, fmt.Errorf("%w: %s (locale: %s)", ErrTemplateNotFound, templateID, locale)
}
