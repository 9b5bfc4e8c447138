package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"homznspace/backend/internal/models"
	"homznspace/backend/internal/store"
)

func TestGetTemplate_PrefersDatabase(t *testing.T) {
	templates := new(mockTemplateStore)
	custom := &models.EmailTemplate{TemplateID: models.TemplateAgentApproved, Locale: DefaultLocale, Subject: "Custom"}
	templates.On("Find", mock.Anything, models.TemplateAgentApproved, DefaultLocale).Return(custom, nil)

	got, err := NewEmailTemplateService(templates).GetTemplate(context.Background(), models.TemplateAgentApproved, "")
	require.NoError(t, err)
	assert.Equal(t, "Custom", got.Subject)
	templates.AssertExpectations(t)
}

func TestGetTemplate_FallsBackToDefault(t *testing.T) {
	templates := new(mockTemplateStore)
	templates.On("Find", mock.Anything, models.TemplateContactLead, "hi-IN").Return(nil, store.ErrNotFound)

	got, err := NewEmailTemplateService(templates).GetTemplate(context.Background(), models.TemplateContactLead, "hi-IN")
	require.NoError(t, err)
	assert.Equal(t, models.TemplateContactLead, got.TemplateID)
	assert.Contains(t, got.Subject, "{{.name}}")
}

func TestGetTemplate_UnknownTemplate(t *testing.T) {
	templates := new(mockTemplateStore)
	templates.On("Find", mock.Anything, "nope", DefaultLocale).Return(nil, store.ErrNotFound)

	_, err := NewEmailTemplateService(templates).GetTemplate(context.Background(), "nope", DefaultLocale)
	assert.ErrorIs(t, err, ErrTemplateNotFound)
}

func TestGetTemplate_StoreFailureIsNotMaskedByDefaults(t *testing.T) {
	templates := new(mockTemplateStore)
	templates.On("Find", mock.Anything, models.TemplateAgentWelcome, DefaultLocale).Return(nil, errors.New("socket closed"))

	_, err := NewEmailTemplateService(templates).GetTemplate(context.Background(), models.TemplateAgentWelcome, DefaultLocale)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrTemplateNotFound)
}

func TestDefaultTemplatesCoverEveryNotification(t *testing.T) {
	for _, id := range []string{
		models.TemplateAgentRegisteredAdmin,
		models.TemplateAgentWelcome,
		models.TemplateAgentApproved,
		models.TemplateInquiryReceived,
		models.TemplateContactLead,
	} {
		_, ok := defaultEmailTemplates[id]
		assert.True(t, ok, id)
	}
}
