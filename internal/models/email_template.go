package models

// EmailTemplate defines the structure for email templates stored in the DB.
// Subject and Body are text/template sources rendered with the notification data.
type EmailTemplate struct {
	TemplateID string `bson:"template_id" json:"template_id"` // e.g. "agent_registered", "inquiry_received"
	Locale     string `bson:"locale" json:"locale"`
	Subject    string `bson:"subject" json:"subject"`
	Body       string `bson:"body" json:"body"`
}
