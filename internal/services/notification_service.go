package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"homznspace/backend/internal/metrics"
	"homznspace/backend/internal/models"
)

const notificationTimeout = 10 * time.Second

// Dispatcher hands a rendered-later email to its delivery path (inline or queued).
type Dispatcher interface {
	Dispatch(ctx context.Context, payload models.EmailTaskPayload) error
}

// InquiryNotice carries what the seller needs to follow up on an inquiry.
type InquiryNotice struct {
	Recipient string
	Property  *models.Property
	User      *models.User
	Message   string
}

// INotifier emits best-effort notifications. Implementations never return delivery errors.
type INotifier interface {
	AgentRegistered(ctx context.Context, agent *models.Agent)
	AgentApproved(ctx context.Context, agent *models.Agent)
	InquiryReceived(ctx context.Context, notice InquiryNotice)
	ContactLeadReceived(ctx context.Context, lead *models.ContactLead)
}

type notifier struct {
	dispatcher Dispatcher
	adminEmail string
	metrics    *metrics.Metrics
}

func NewNotifier(dispatcher Dispatcher, adminEmail string, m *metrics.Metrics) INotifier {
	return &notifier{dispatcher: dispatcher, adminEmail: adminEmail, metrics: m}
}

func (n *notifier) AgentRegistered(ctx context.Context, agent *models.Agent) {
	data := map[string]interface{}{
		"name":  agent.Name,
		"email": agent.Email,
		"phone": agent.Phone,
	}
	n.toAdmin(ctx, models.EmailTaskPayload{TemplateID: models.TemplateAgentRegisteredAdmin, ReplyTo: agent.Email, Data: data})
	n.send(ctx, models.EmailTaskPayload{To: agent.Email, TemplateID: models.TemplateAgentWelcome, Data: data})
}

func (n *notifier) AgentApproved(ctx context.Context, agent *models.Agent) {
	n.send(ctx, models.EmailTaskPayload{
		To:         agent.Email,
		TemplateID: models.TemplateAgentApproved,
		Data:       map[string]interface{}{"name": agent.Name, "email": agent.Email},
	})
}

func (n *notifier) InquiryReceived(ctx context.Context, notice InquiryNotice) {
	data := map[string]interface{}{"message": notice.Message}
	if notice.Property != nil {
		data["property_id"] = notice.Property.ID.Hex()
		data["property_title"] = notice.Property.Title
	}
	replyTo := ""
	if notice.User != nil {
		data["user_name"] = notice.User.Username
		data["user_email"] = notice.User.Email
		data["user_phone"] = notice.User.Phone
		replyTo = notice.User.Email
	}
	payload := models.EmailTaskPayload{To: notice.Recipient, ReplyTo: replyTo, TemplateID: models.TemplateInquiryReceived, Data: data}
	if notice.Recipient == "" {
		n.toAdmin(ctx, payload)
		return
	}
	n.send(ctx, payload)
}

func (n *notifier) ContactLeadReceived(ctx context.Context, lead *models.ContactLead) {
	n.toAdmin(ctx, models.EmailTaskPayload{
		ReplyTo:    lead.Email,
		TemplateID: models.TemplateContactLead,
		Data: map[string]interface{}{
			"name":        lead.Name,
			"email":       lead.Email,
			"phone":       lead.Phone,
			"message":     lead.Message,
			"property_id": lead.PropertyID,
		},
	})
}

func (n *notifier) toAdmin(ctx context.Context, payload models.EmailTaskPayload) {
	if n.adminEmail == "" {
		zerolog.Ctx(ctx).Warn().Str("template", payload.TemplateID).Msg("ADMIN_EMAIL not set, skipping admin notification")
		return
	}
	payload.To = n.adminEmail
	n.send(ctx, payload)
}

func (n *notifier) send(ctx context.Context, payload models.EmailTaskPayload) {
	logger := zerolog.Ctx(ctx).With().Str("template", payload.TemplateID).Str("to", payload.To).Logger()
	if n.dispatcher == nil {
		logger.Warn().Msg("no notification dispatcher configured")
		n.metrics.NotificationFailed(payload.TemplateID)
		return
	}
	if payload.Locale == "" {
		payload.Locale = DefaultLocale
	}

	// The request may finish before the mail does; keep its values but not its deadline.
	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notificationTimeout)
	defer cancel()

	if err := n.dispatcher.Dispatch(sendCtx, payload); err != nil {
		logger.Error().Err(err).Msg("failed to dispatch notification")
		n.metrics.NotificationFailed(payload.TemplateID)
		return
	}
	n.metrics.NotificationDispatched(payload.TemplateID)
	logger.Debug().Msg("notification dispatched")
}
