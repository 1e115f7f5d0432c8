package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/SIYAM1809/Real-Estate-Management-System/internal/models"
)

const maxMessageLength = 2000

// SubmitInquiryInput is the data a buyer provides to open an inquiry.
// BuyerID always comes from the authenticated identity.
type SubmitInquiryInput struct {
	BuyerID    string             `json:"-" validate:"required"`
	PropertyID string             `json:"property_id" validate:"required"`
	Kind       models.InquiryKind `json:"kind" validate:"required,oneof=message appointment"`
	Message    string             `json:"message" validate:"required,max=2000"`
	Requested  *models.Slot       `json:"requested,omitempty"`
}

// ISubmissionService creates inquiries after checking the buyer, the listing
// and the one-active-inquiry rule.
type ISubmissionService interface {
	Submit(ctx context.Context, input SubmitInquiryInput) (*models.Inquiry, error)
}

type submissionService struct {
	store    IInquiryStore
	catalog  IPropertyCatalog
	users    IUserDirectory
	validate *validator.Validate
	now      func() time.Time
	newID    func() string
}

// NewSubmissionService creates a new SubmissionService.
func NewSubmissionService(store IInquiryStore, catalog IPropertyCatalog, users IUserDirectory) ISubmissionService {
	return &submissionService{
		store:    store,
		catalog:  catalog,
		users:    users,
		validate: validator.New(),
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

func (s *submissionService) Submit(ctx context.Context, input SubmitInquiryInput) (*models.Inquiry, error) {
	input.Message = strings.TrimSpace(input.Message)
	input.PropertyID = strings.TrimSpace(input.PropertyID)
	if err := s.validateInput(input); err != nil {
		return nil, err
	}

	buyer, err := s.users.FindByID(ctx, input.BuyerID)
	if err != nil {
		return nil, err
	}
	if buyer.Role != models.RoleBuyer {
		return nil, newError(KindForbidden, "only buyers can send inquiries")
	}

	property, err := s.catalog.GetProperty(ctx, input.PropertyID)
	if err != nil {
		return nil, err
	}
	if !property.IsApproved() {
		return nil, newError(KindForbidden, "property is not open for inquiries")
	}
	if property.SellerID == buyer.ID {
		return nil, ErrSelfDealing
	}

	existing, err := s.store.FindActiveByBuyerAndProperty(ctx, buyer.ID, property.ID, input.Kind)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, newError(KindDuplicateActive, "an active %s inquiry %s already exists for this property", input.Kind, existing.ID)
	}

	now := s.now().UTC()
	inq := &models.Inquiry{
		ID:         s.newID(),
		BuyerID:    buyer.ID,
		SellerID:   property.SellerID,
		PropertyID: property.ID,
		Kind:       input.Kind,
		Message:    input.Message,
		BuyerEmail: buyer.Email,
		Active:     true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if input.Kind == models.InquiryKindAppointment {
		requested := models.Slot{
			Date:  strings.TrimSpace(input.Requested.Date),
			Time:  strings.TrimSpace(input.Requested.Time),
			Place: strings.TrimSpace(input.Requested.Place),
		}
		inq.Requested = &requested
		inq.Status = models.StatusPending
	}

	if err := s.store.Create(ctx, inq); err != nil {
		return nil, err
	}
	return inq, nil
}

func (s *submissionService) validateInput(input SubmitInquiryInput) error {
	if err := s.validate.Struct(input); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
			}
			return newError(KindValidation, "invalid fields: %s", strings.Join(fields, ", "))
		}
		return &InquiryError{Kind: KindValidation, Message: "invalid input", Err: err}
	}

	if input.Kind != models.InquiryKindAppointment {
		return nil
	}
	if input.Requested == nil {
		return newError(KindMissingSlot, "appointment requests need a date and time")
	}
	date, clock := strings.TrimSpace(input.Requested.Date), strings.TrimSpace(input.Requested.Time)
	if date == "" || clock == "" {
		return newError(KindMissingSlot, "appointment requests need a date and time")
	}
	return validateSlot(date, clock)
}
