package models

// Notification template ids.
const (
	TemplateAgentRegisteredAdmin = "agent_registered_admin"
	TemplateAgentWelcome         = "agent_welcome"
	TemplateAgentApproved        = "agent_approved"
	TemplateInquiryReceived      = "inquiry_received"
	TemplateContactLead          = "contact_lead"
)

// EmailTaskPayload is one outbound notification, rendered from a template at delivery time.
type EmailTaskPayload struct {
	To         string                 `json:"to"`
	ReplyTo    string                 `json:"reply_to,omitempty"`
	TemplateID string                 `json:"template_id"`
	Locale     string                 `json:"locale,omitempty"`
	Data       map[string]interface{} `json:"data"`
}
