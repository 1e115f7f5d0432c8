package services

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/SIYAM1809/Real-Estate-Management-System/internal/models"
)

// Notification template ids.
const (
	TemplateInquiryReceived      = "inquiry_received"
	TemplateAppointmentRequested = "appointment_requested"
	TemplateAppointmentProposed  = "appointment_proposed"
	TemplateSellerRejected       = "appointment_rejected_by_seller"
	TemplateAppointmentAccepted  = "appointment_accepted"
	TemplateAppointmentDeclined  = "appointment_declined"

	DefaultLocale = "en-US"
)

// Default email templates used as fallback when not found in database
var defaultEmailTemplates = map[string]models.EmailTemplate{
	TemplateInquiryReceived: {
		TemplateID: TemplateInquiryReceived,
		Locale:     DefaultLocale,
		Subject:    "New inquiry about {{.property_title}}",
		Body:       "You have a new message about {{.property_title}}:\n\n{{.message}}\n\nReply to: {{.buyer_email}}\nOpen your inbox: {{.inbox_url}}",
	},
	TemplateAppointmentRequested: {
		TemplateID: TemplateAppointmentRequested,
		Locale:     DefaultLocale,
		Subject:    "Visit requested for {{.property_title}}",
		Body:       "A buyer would like to visit {{.property_title}} on {{.date}} at {{.time}}{{if .place}} ({{.place}}){{end}}.\n\n{{.message}}\n\nRespond here: {{.inbox_url}}",
	},
	TemplateAppointmentProposed: {
		TemplateID: TemplateAppointmentProposed,
		Locale:     DefaultLocale,
		Subject:    "Visit time proposed for {{.property_title}}",
		Body:       "The seller proposed {{.date}} at {{.time}}{{if .place}} at {{.place}}{{end}}.{{if .note}}\n\nNote: {{.note}}{{end}}\n\nAccept or decline: {{.inbox_url}}",
	},
	TemplateSellerRejected: {
		TemplateID: TemplateSellerRejected,
		Locale:     DefaultLocale,
		Subject:    "Visit request for {{.property_title}} declined",
		Body:       "The seller declined your visit request.\n\nReason: {{.reason}}",
	},
	TemplateAppointmentAccepted: {
		TemplateID: TemplateAppointmentAccepted,
		Locale:     DefaultLocale,
		Subject:    "Visit confirmed for {{.property_title}}",
		Body:       "The buyer confirmed the visit on {{.date}} at {{.time}}{{if .place}} at {{.place}}{{end}}.{{if .note}}\n\nNote: {{.note}}{{end}}",
	},
	TemplateAppointmentDeclined: {
		TemplateID: TemplateAppointmentDeclined,
		Locale:     DefaultLocale,
		Subject:    "Visit for {{.property_title}} declined by buyer",
		Body:       "The buyer declined the proposed visit.{{if .note}}\n\nNote: {{.note}}{{end}}",
	},
}

// IEmailTemplateService defines the interface for email template operations.
type IEmailTemplateService interface {
	GetTemplate(ctx context.Context, templateID, locale string) (*models.EmailTemplate, error)
}

const emailTemplatesCollection = "email_templates"

// EmailTemplateService handles operations related to email templates.
// With a nil database only the built-in defaults are served.
type EmailTemplateService struct {
	db *mongo.Database
}

// NewEmailTemplateService creates a new instance of EmailTemplateService
func NewEmailTemplateService(db *mongo.Database) *EmailTemplateService {
	return &EmailTemplateService{
		db: db,
	}
}

// GetTemplate retrieves an email template by ID and locale
func (s *EmailTemplateService) GetTemplate(ctx context.Context, templateID string, locale string) (*models.EmailTemplate, error) {
	if s.db == nil {
		return defaultTemplate(templateID, locale)
	}
	filter := bson.M{
		"template_id": templateID,
		"locale":      locale,
	}

	var template models.EmailTemplate
	err := s.db.Collection(emailTemplatesCollection).FindOne(ctx, filter).Decode(&template)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return defaultTemplate(templateID, locale)
		}
		return nil, fmt.Errorf("error retrieving template: %w", err)
	}

	return &template, nil
}

func defaultTemplate(templateID, locale string) (*models.EmailTemplate, error) {
	if t, ok := defaultEmailTemplates[templateID]; ok {
		return &t, nil
	}
	return nil, fmt.Errorf("template not found: %s (locale: %s)", templateID, locale)
}

// SaveTemplate saves an email template to the database
func (s *EmailTemplateService) SaveTemplate(ctx context.Context, template *models.EmailTemplate) error {
	if s.db == nil {
		return errors.New("email templates are read-only without a database")
	}
	filter := bson.M{
		"template_id": template.TemplateID,
		"locale":      template.Locale,
	}

	update := bson.M{"$set": template}
	opts := options.Update().SetUpsert(true)

	_, err := s.db.Collection(emailTemplatesCollection).UpdateOne(ctx, filter, update, opts)
	if err != nil {
		return fmt.Errorf("error saving template: %w", err)
	}

	return nil
}
