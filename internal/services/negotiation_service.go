package services

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/SIYAM1809/Real-Estate-Management-System/internal/models"
)

// ListOptions narrows an inbox listing.
type ListOptions struct {
	Kind   models.InquiryKind
	Status models.InquiryStatus
	Limit  int
}

// INegotiationService drives appointment inquiries through their lifecycle
// and serves the inbox reads for both parties.
type INegotiationService interface {
	ApplyAction(ctx context.Context, inquiryID, actingUserID string, actor models.Actor, action models.Action, payload ActionPayload) (*models.Inquiry, error)
	SellerAction(ctx context.Context, inquiryID, sellerID string, action models.Action, payload ActionPayload) (*models.Inquiry, error)
	BuyerResponse(ctx context.Context, inquiryID, buyerID string, action models.Action, payload ActionPayload) (*models.Inquiry, error)
	GetInquiry(ctx context.Context, inquiryID, userID string) (*models.Inquiry, error)
	ListForSeller(ctx context.Context, sellerID string, opts ListOptions) ([]models.Inquiry, error)
	ListForBuyer(ctx context.Context, buyerID string, opts ListOptions) ([]models.Inquiry, error)
}

type negotiationService struct {
	store   IInquiryStore
	catalog IPropertyCatalog
	now     func() time.Time
}

// NewNegotiationService creates a new NegotiationService.
func NewNegotiationService(store IInquiryStore, catalog IPropertyCatalog) INegotiationService {
	return &negotiationService{store: store, catalog: catalog, now: time.Now}
}

func (s *negotiationService) SellerAction(ctx context.Context, inquiryID, sellerID string, action models.Action, payload ActionPayload) (*models.Inquiry, error) {
	return s.ApplyAction(ctx, inquiryID, sellerID, models.ActorSeller, action, payload)
}

func (s *negotiationService) BuyerResponse(ctx context.Context, inquiryID, buyerID string, action models.Action, payload ActionPayload) (*models.Inquiry, error) {
	return s.ApplyAction(ctx, inquiryID, buyerID, models.ActorBuyer, action, payload)
}

// ApplyAction loads the inquiry, checks who is acting, validates the move and
// persists it with a compare-and-set on the status that was read.
func (s *negotiationService) ApplyAction(ctx context.Context, inquiryID, actingUserID string, actor models.Actor, action models.Action, payload ActionPayload) (*models.Inquiry, error) {
	if !isKnownAction(action) {
		return nil, newError(KindValidation, "unknown action %q", action)
	}
	if actor != models.ActorBuyer && actor != models.ActorSeller {
		return nil, newError(KindValidation, "unknown actor %q", actor)
	}

	inq, err := s.store.FindByID(ctx, inquiryID)
	if err != nil {
		return nil, err
	}

	if !actorMayPerform(actor, action) {
		return nil, newError(KindForbidden, "%s may not %s", actor, action)
	}
	if !isParty(inq, actor, actingUserID) {
		return nil, newError(KindForbidden, "user is not the %s of inquiry %s", actor, inq.ID)
	}
	if !inq.IsAppointment() {
		return nil, ErrNotAnAppointment
	}

	patch, err := ValidateTransition(inq, actor, actingUserID, action, payload, s.fallbackPlace(ctx, inq, action, payload), s.now())
	if err != nil {
		return nil, err
	}

	updated, err := s.store.Update(ctx, inq.ID, inq.Status, patch)
	if err != nil {
		return nil, err
	}
	log.Printf("Inquiry %s: %s %s moved %s -> %s", updated.ID, actor, action, inq.Status, updated.Status)
	return updated, nil
}

// fallbackPlace returns the property address when the action may need it.
// A catalog failure leaves the place empty rather than failing the transition.
func (s *negotiationService) fallbackPlace(ctx context.Context, inq *models.Inquiry, action models.Action, payload ActionPayload) string {
	if strings.TrimSpace(payload.Place) != "" || s.catalog == nil {
		return ""
	}
	switch action {
	case models.ActionAcceptRequested:
		if inq.Requested != nil && strings.TrimSpace(inq.Requested.Place) != "" {
			return ""
		}
	case models.ActionPropose:
	default:
		return ""
	}
	property, err := s.catalog.GetProperty(ctx, inq.PropertyID)
	if err != nil {
		log.Printf("WARN: no fallback meeting place for inquiry %s: %v", inq.ID, err)
		return ""
	}
	return property.MeetingAddress()
}

func isParty(inq *models.Inquiry, actor models.Actor, userID string) bool {
	switch actor {
	case models.ActorSeller:
		return userID != "" && inq.SellerID == userID
	case models.ActorBuyer:
		return userID != "" && inq.BuyerID == userID
	default:
		return false
	}
}

func (s *negotiationService) GetInquiry(ctx context.Context, inquiryID, userID string) (*models.Inquiry, error) {
	inq, err := s.store.FindByID(ctx, inquiryID)
	if err != nil {
		return nil, err
	}
	if userID == "" || (inq.BuyerID != userID && inq.SellerID != userID) {
		return nil, newError(KindForbidden, "user is not a party to inquiry %s", inquiryID)
	}
	return inq, nil
}

func (s *negotiationService) ListForSeller(ctx context.Context, sellerID string, opts ListOptions) ([]models.Inquiry, error) {
	if sellerID == "" {
		return nil, newError(KindValidation, "seller id is required")
	}
	return s.list(ctx, models.InquiryFilter{SellerID: sellerID}, opts)
}

func (s *negotiationService) ListForBuyer(ctx context.Context, buyerID string, opts ListOptions) ([]models.Inquiry, error) {
	if buyerID == "" {
		return nil, newError(KindValidation, "buyer id is required")
	}
	return s.list(ctx, models.InquiryFilter{BuyerID: buyerID}, opts)
}

func (s *negotiationService) list(ctx context.Context, filter models.InquiryFilter, opts ListOptions) ([]models.Inquiry, error) {
	if opts.Kind != "" && !opts.Kind.IsValid() {
		return nil, newError(KindValidation, "unknown kind %q", opts.Kind)
	}
	if opts.Status != "" && !opts.Status.IsValid() {
		return nil, newError(KindValidation, "unknown status %q", opts.Status)
	}
	if opts.Limit < 0 {
		return nil, newError(KindValidation, "limit must not be negative")
	}
	filter.Kind = opts.Kind
	filter.Status = opts.Status
	filter.Limit = normalizeLimit(opts.Limit)
	return s.store.List(ctx, filter)
}
