package models

// EmailTemplate defines an inquiry notification template stored in the DB.
// Subject and Body use text/template syntax, e.g. {{.property_title}}.
type EmailTemplate struct {
	TemplateID string `bson:"template_id" json:"template_id"` // e.g., "inquiry_received", "appointment_proposed"
	Locale     string `bson:"locale" json:"locale"`           // e.g., "en-US"
	Subject    string `bson:"subject" json:"subject"`
	Body       string `bson:"body" json:"body"` // Plain text
}
