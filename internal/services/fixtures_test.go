package services

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/SIYAM1809/Real-Estate-Management-System/internal/models"
)

const (
	testBuyerID  = "buyer-1"
	testSellerID = "seller-1"
	testOtherID  = "stranger-1"
	testProperty = "prop-1"
)

var testNow = time.Date(2025, 2, 20, 9, 30, 0, 0, time.UTC)

type negotiationFixture struct {
	store      *MemoryInquiryStore
	catalog    *MemoryPropertyCatalog
	users      *MemoryUserDirectory
	submission *submissionService
	service    *negotiationService
}

func newNegotiationFixture() *negotiationFixture {
	store := NewMemoryInquiryStore()
	catalog := NewMemoryPropertyCatalog(
		models.Property{
			ID: testProperty, SellerID: testSellerID, Title: "Lake House",
			Status:   models.PropertyStatusApproved,
			Location: models.PropertyLocation{Address: "1 Lake Rd", City: "Dhaka"},
		},
		models.Property{ID: "prop-pending", SellerID: testSellerID, Status: models.PropertyStatusPending},
		models.Property{ID: "prop-own", SellerID: testBuyerID, Status: models.PropertyStatusApproved},
	)
	users := NewMemoryUserDirectory(
		models.User{ID: testBuyerID, Email: "buyer@example.com", Role: models.RoleBuyer},
		models.User{ID: testSellerID, Email: "seller@example.com", Role: models.RoleSeller},
		models.User{ID: testOtherID, Email: "other@example.com", Role: models.RoleBuyer},
	)

	var seq int64
	submission := NewSubmissionService(store, catalog, users).(*submissionService)
	submission.now = func() time.Time { return testNow }
	submission.newID = func() string { return fmt.Sprintf("inq-%d", atomic.AddInt64(&seq, 1)) }

	service := NewNegotiationService(store, catalog).(*negotiationService)
	service.now = func() time.Time { return testNow.Add(time.Hour) }

	return &negotiationFixture{store: store, catalog: catalog, users: users, submission: submission, service: service}
}

func (f *negotiationFixture) submitAppointment(slot *models.Slot) (*models.Inquiry, error) {
	return f.submission.Submit(context.Background(), SubmitInquiryInput{
		BuyerID:    testBuyerID,
		PropertyID: testProperty,
		Kind:       models.InquiryKindAppointment,
		Message:    "  I'd like to visit  ",
		Requested:  slot,
	})
}

func pendingAppointment() *models.Inquiry {
	return &models.Inquiry{
		ID:         "inq-x",
		BuyerID:    testBuyerID,
		SellerID:   testSellerID,
		PropertyID: testProperty,
		Kind:       models.InquiryKindAppointment,
		Message:    "visit",
		Status:     models.StatusPending,
		Active:     true,
		Requested:  &models.Slot{Date: "2025-03-01", Time: "10:00", Place: "Front gate"},
		CreatedAt:  testNow,
		UpdatedAt:  testNow,
	}
}
