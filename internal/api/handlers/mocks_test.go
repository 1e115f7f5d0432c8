package handlers_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/SIYAM1809/Real-Estate-Management-System/internal/models"
	"github.com/SIYAM1809/Real-Estate-Management-System/internal/services"
)

// --- Mocks ---

// MockSubmissionService
type MockSubmissionService struct {
	mock.Mock
}

func (m *MockSubmissionService) Submit(ctx context.Context, input services.SubmitInquiryInput) (*models.Inquiry, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Inquiry), args.Error(1)
}

// MockNegotiationService
type MockNegotiationService struct {
	mock.Mock
}

func (m *MockNegotiationService) ApplyAction(ctx context.Context, inquiryID, actingUserID string, actor models.Actor, action models.Action, payload services.ActionPayload) (*models.Inquiry, error) {
	args := m.Called(ctx, inquiryID, actingUserID, actor, action, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Inquiry), args.Error(1)
}

func (m *MockNegotiationService) SellerAction(ctx context.Context, inquiryID, sellerID string, action models.Action, payload services.ActionPayload) (*models.Inquiry, error) {
	args := m.Called(ctx, inquiryID, sellerID, action, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Inquiry), args.Error(1)
}

func (m *MockNegotiationService) BuyerResponse(ctx context.Context, inquiryID, buyerID string, action models.Action, payload services.ActionPayload) (*models.Inquiry, error) {
	args := m.Called(ctx, inquiryID, buyerID, action, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Inquiry), args.Error(1)
}

func (m *MockNegotiationService) GetInquiry(ctx context.Context, inquiryID, userID string) (*models.Inquiry, error) {
	args := m.Called(ctx, inquiryID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Inquiry), args.Error(1)
}

func (m *MockNegotiationService) ListForSeller(ctx context.Context, sellerID string, opts services.ListOptions) ([]models.Inquiry, error) {
	args := m.Called(ctx, sellerID, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Inquiry), args.Error(1)
}

func (m *MockNegotiationService) ListForBuyer(ctx context.Context, buyerID string, opts services.ListOptions) ([]models.Inquiry, error) {
	args := m.Called(ctx, buyerID, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Inquiry), args.Error(1)
}

// MockNotifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) InquirySubmitted(ctx context.Context, inq *models.Inquiry) error {
	args := m.Called(ctx, inq)
	return args.Error(0)
}

func (m *MockNotifier) InquiryUpdated(ctx context.Context, inq *models.Inquiry) error {
	args := m.Called(ctx, inq)
	return args.Error(0)
}
