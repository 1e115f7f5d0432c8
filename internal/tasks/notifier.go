package tasks

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/hibiken/asynq"

	"github.com/SIYAM1809/Real-Estate-Management-System/internal/config"
	"github.com/SIYAM1809/Real-Estate-Management-System/internal/models"
	"github.com/SIYAM1809/Real-Estate-Management-System/internal/services"
)

// Enqueuer is the part of *asynq.Client the notifier needs.
type Enqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// IInquiryNotifier turns inquiry events into queued emails.
// Callers invoke it only after the change has been persisted.
type IInquiryNotifier interface {
	InquirySubmitted(ctx context.Context, inq *models.Inquiry) error
	InquiryUpdated(ctx context.Context, inq *models.Inquiry) error
}

type inquiryNotifier struct {
	client  Enqueuer
	users   services.IUserDirectory
	catalog services.IPropertyCatalog
	cfg     *config.Config
}

// NewInquiryNotifier creates a notifier that enqueues TypeEmailDelivery tasks.
func NewInquiryNotifier(client Enqueuer, users services.IUserDirectory, catalog services.IPropertyCatalog, cfg *config.Config) IInquiryNotifier {
	return &inquiryNotifier{client: client, users: users, catalog: catalog, cfg: cfg}
}

func (n *inquiryNotifier) InquirySubmitted(ctx context.Context, inq *models.Inquiry) error {
	templateID := services.TemplateInquiryReceived
	if inq.IsAppointment() {
		templateID = services.TemplateAppointmentRequested
	}
	return n.notify(ctx, inq, inq.SellerID, templateID, "/dashboard/inquiries")
}

// InquiryUpdated notifies the other party of the status the inquiry just entered.
func (n *inquiryNotifier) InquiryUpdated(ctx context.Context, inq *models.Inquiry) error {
	switch inq.Status {
	case models.StatusProposed:
		return n.notify(ctx, inq, inq.BuyerID, services.TemplateAppointmentProposed, "/dashboard/sent")
	case models.StatusSellerRejected:
		return n.notify(ctx, inq, inq.BuyerID, services.TemplateSellerRejected, "/dashboard/sent")
	case models.StatusBuyerAccepted:
		return n.notify(ctx, inq, inq.SellerID, services.TemplateAppointmentAccepted, "/dashboard/inquiries")
	case models.StatusBuyerRejected:
		return n.notify(ctx, inq, inq.SellerID, services.TemplateAppointmentDeclined, "/dashboard/inquiries")
	default:
		return nil
	}
}

func (n *inquiryNotifier) notify(ctx context.Context, inq *models.Inquiry, recipientID, templateID, inboxPath string) error {
	recipient, err := n.users.FindByID(ctx, recipientID)
	if err != nil {
		return fmt.Errorf("resolve recipient %s: %w", recipientID, err)
	}
	if recipient.Email == "" || !recipient.WantsEmail(inq.Kind) {
		log.Printf("DEBUG: user %s opted out of %s emails, skipping %s", recipientID, inq.Kind, templateID)
		return nil
	}

	task, err := NewEmailDeliveryTask(EmailTaskPayload{
		To:         recipient.Email,
		TemplateID: templateID,
		Locale:     services.DefaultLocale,
		InquiryID:  inq.ID,
		Data:       n.templateData(ctx, inq, inboxPath),
	})
	if err != nil {
		return err
	}
	if _, err := n.client.Enqueue(task, asynq.Queue(QueueDefault), asynq.MaxRetry(5)); err != nil {
		return fmt.Errorf("enqueue %s for inquiry %s: %w", templateID, inq.ID, err)
	}
	return nil
}

// templateData fills every key the default templates reference.
func (n *inquiryNotifier) templateData(ctx context.Context, inq *models.Inquiry, inboxPath string) map[string]interface{} {
	title := "your property"
	if property, err := n.catalog.GetProperty(ctx, inq.PropertyID); err == nil && property.Title != "" {
		title = property.Title
	} else if err != nil {
		log.Printf("WARN: property %s unavailable for notification: %v", inq.PropertyID, err)
	}

	data := map[string]interface{}{
		"inquiry_id":     inq.ID,
		"property_title": title,
		"message":        inq.Message,
		"buyer_email":    inq.BuyerEmail,
		"inbox_url":      strings.TrimRight(n.cfg.AppBaseURL, "/") + inboxPath,
		"date":           "",
		"time":           "",
		"place":          "",
		"note":           "",
		"reason":         inq.RejectionReason,
		"app_name":       n.cfg.AppName,
	}
	switch {
	case inq.Proposed != nil:
		data["date"] = inq.Proposed.Date
		data["time"] = inq.Proposed.Time
		data["place"] = inq.Proposed.Place
		data["note"] = inq.Proposed.Note
	case inq.Requested != nil:
		data["date"] = inq.Requested.Date
		data["time"] = inq.Requested.Time
		data["place"] = inq.Requested.Place
	}
	if inq.Status == models.StatusBuyerAccepted || inq.Status == models.StatusBuyerRejected {
		data["note"] = inq.BuyerNote
	}
	return data
}
