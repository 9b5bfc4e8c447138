package services

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"homznspace/backend/internal/metrics"
	"homznspace/backend/internal/models"
)

func TestNotifier_AgentRegistered(t *testing.T) {
	dispatcher := new(mockDispatcher)
	dispatcher.On("Dispatch", mock.Anything, mock.MatchedBy(func(p models.EmailTaskPayload) bool {
		return p.TemplateID == models.TemplateAgentRegisteredAdmin && p.To == "admin@homznspace.com" && p.ReplyTo == "ravi@example.com"
	})).Return(nil).Once()
	dispatcher.On("Dispatch", mock.Anything, mock.MatchedBy(func(p models.EmailTaskPayload) bool {
		return p.TemplateID == models.TemplateAgentWelcome && p.To == "ravi@example.com" && p.Locale == DefaultLocale
	})).Return(nil).Once()

	n := NewNotifier(dispatcher, "admin@homznspace.com", nil)
	n.AgentRegistered(context.Background(), &models.Agent{Name: "Ravi", Email: "ravi@example.com", Phone: "1"})
	dispatcher.AssertExpectations(t)
}

func TestNotifier_NoAdminMailboxSkipsAdminMail(t *testing.T) {
	dispatcher := new(mockDispatcher)
	n := NewNotifier(dispatcher, "", nil)

	n.ContactLeadReceived(context.Background(), &models.ContactLead{Name: "P", Email: "p@example.com"})
	n.InquiryReceived(context.Background(), InquiryNotice{Message: "hi"})
	dispatcher.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything)
}

func TestNotifier_FailuresAreSwallowedAndCounted(t *testing.T) {
	dispatcher := new(mockDispatcher)
	dispatcher.On("Dispatch", mock.Anything, mock.Anything).Return(errors.New("smtp: 421 try later"))
	m := metrics.New()
	n := NewNotifier(dispatcher, "admin@homznspace.com", m)

	assert.NotPanics(t, func() {
		n.AgentApproved(context.Background(), &models.Agent{Name: "Ravi", Email: "ravi@example.com"})
	})
	count, err := testutil.GatherAndCount(m.Registry(), "homznspace_notification_failures_total")
	assert.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestNotifier_InquiryPayload(t *testing.T) {
	dispatcher := new(mockDispatcher)
	prop := &models.Property{Base: models.Base{ID: primitive.NewObjectID()}, Title: "Villa"}
	user := &models.User{Username: "asha", Email: "asha@example.com"}
	dispatcher.On("Dispatch", mock.Anything, mock.MatchedBy(func(p models.EmailTaskPayload) bool {
		return p.To == "ravi@example.com" && p.ReplyTo == "asha@example.com" &&
			p.Data["property_title"] == "Villa" && p.Data["user_name"] == "asha" && p.Data["message"] == "hi"
	})).Return(nil)

	NewNotifier(dispatcher, "admin@homznspace.com", nil).InquiryReceived(context.Background(), InquiryNotice{
		Recipient: "ravi@example.com", Property: prop, User: user, Message: "hi",
	})
	dispatcher.AssertExpectations(t)
}

func TestNotifier_DispatchOutlivesCanceledRequest(t *testing.T) {
	dispatcher := new(mockDispatcher)
	dispatcher.On("Dispatch", mock.MatchedBy(func(ctx context.Context) bool { return ctx.Err() == nil }), mock.Anything).Return(nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	NewNotifier(dispatcher, "admin@homznspace.com", nil).AgentApproved(ctx, &models.Agent{Email: "ravi@example.com"})
	dispatcher.AssertExpectations(t)
}
