package services

import (
	"context"
	"sort"
	"sync"

	"github.com/SIYAM1809/Real-Estate-Management-System/internal/models"
)

// MemoryInquiryStore is an in-process IInquiryStore used for local runs and
// tests. It enforces the same uniqueness and compare-and-set rules as Mongo.
type MemoryInquiryStore struct {
	mu        sync.Mutex
	inquiries map[string]*models.Inquiry
	order     []string
}

// NewMemoryInquiryStore creates an empty in-memory store.
func NewMemoryInquiryStore() *MemoryInquiryStore {
	return &MemoryInquiryStore{inquiries: make(map[string]*models.Inquiry)}
}

func (s *MemoryInquiryStore) EnsureIndexes(ctx context.Context) error {
	return nil
}

func (s *MemoryInquiryStore) Create(ctx context.Context, inq *models.Inquiry) error {
	if err := ctx.Err(); err != nil {
		return storeError("insert inquiry", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.inquiries[inq.ID]; exists {
		return newError(KindDuplicateActive, "inquiry %s already exists", inq.ID)
	}
	if inq.Active && s.findActiveLocked(inq.BuyerID, inq.PropertyID, inq.Kind) != nil {
		return newError(KindDuplicateActive, "buyer already has an active %s inquiry for this property", inq.Kind)
	}
	s.inquiries[inq.ID] = cloneInquiry(inq)
	s.order = append(s.order, inq.ID)
	return nil
}

func (s *MemoryInquiryStore) FindByID(ctx context.Context, id string) (*models.Inquiry, error) {
	if err := ctx.Err(); err != nil {
		return nil, storeError("find inquiry", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	inq, ok := s.inquiries[id]
	if !ok {
		return nil, newError(KindNotFound, "inquiry %s not found", id)
	}
	return cloneInquiry(inq), nil
}

func (s *MemoryInquiryStore) FindActiveByBuyerAndProperty(ctx context.Context, buyerID, propertyID string, kind models.InquiryKind) (*models.Inquiry, error) {
	if err := ctx.Err(); err != nil {
		return nil, storeError("find active inquiry", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if inq := s.findActiveLocked(buyerID, propertyID, kind); inq != nil {
		return cloneInquiry(inq), nil
	}
	return nil, nil
}

func (s *MemoryInquiryStore) Update(ctx context.Context, id string, expected models.InquiryStatus, patch *models.InquiryPatch) (*models.Inquiry, error) {
	if err := ctx.Err(); err != nil {
		return nil, storeError("update inquiry", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	inq, ok := s.inquiries[id]
	if !ok {
		return nil, newError(KindNotFound, "inquiry %s not found", id)
	}
	if inq.Status != expected {
		return nil, newError(KindConcurrentModification, "inquiry %s is now %s, expected %s", id, inq.Status, expected)
	}
	patch.Apply(inq)
	return cloneInquiry(inq), nil
}

func (s *MemoryInquiryStore) List(ctx context.Context, filter models.InquiryFilter) ([]models.Inquiry, error) {
	if err := ctx.Err(); err != nil {
		return nil, storeError("list inquiries", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	result := []models.Inquiry{}
	for _, id := range s.order {
		inq := s.inquiries[id]
		if filter.SellerID != "" && inq.SellerID != filter.SellerID {
			continue
		}
		if filter.BuyerID != "" && inq.BuyerID != filter.BuyerID {
			continue
		}
		if filter.Kind != "" && inq.Kind != filter.Kind {
			continue
		}
		if filter.Status != "" && inq.Status != filter.Status {
			continue
		}
		result = append(result, *cloneInquiry(inq))
	}
	// Same order as the Mongo store: newest first, then ID ascending.
	sort.Slice(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID < b.ID
	})
	if limit := normalizeLimit(filter.Limit); len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (s *MemoryInquiryStore) findActiveLocked(buyerID, propertyID string, kind models.InquiryKind) *models.Inquiry {
	for _, inq := range s.inquiries {
		if inq.Active && inq.BuyerID == buyerID && inq.PropertyID == propertyID && inq.Kind == kind {
			return inq
		}
	}
	return nil
}

func cloneInquiry(inq *models.Inquiry) *models.Inquiry {
	c := *inq
	if inq.Requested != nil {
		r := *inq.Requested
		c.Requested = &r
	}
	if inq.Proposed != nil {
		p := *inq.Proposed
		c.Proposed = &p
	}
	if inq.History != nil {
		c.History = append([]models.HistoryEntry(nil), inq.History...)
	}
	return &c
}
