package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SIYAM1809/Real-Estate-Management-System/internal/models"
)

func TestMemoryInquiryStore_CompareAndSet(t *testing.T) {
	store := NewMemoryInquiryStore()
	ctx := context.Background()
	inq := pendingAppointment()
	require.NoError(t, store.Create(ctx, inq))

	patch := &models.InquiryPatch{Status: models.StatusSellerRejected, Active: false, UpdatedAt: testNow}
	_, err := store.Update(ctx, inq.ID, models.StatusProposed, patch)
	assert.True(t, errors.Is(err, ErrConcurrentModification))

	updated, err := store.Update(ctx, inq.ID, models.StatusPending, patch)
	require.NoError(t, err)
	assert.Equal(t, models.StatusSellerRejected, updated.Status)
	assert.False(t, updated.Active)

	_, err = store.Update(ctx, "missing", models.StatusPending, patch)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestMemoryInquiryStore_ReturnsCopies(t *testing.T) {
	store := NewMemoryInquiryStore()
	ctx := context.Background()
	require.NoError(t, store.Create(ctx, pendingAppointment()))

	got, err := store.FindByID(ctx, "inq-x")
	require.NoError(t, err)
	got.Status = models.StatusBuyerAccepted
	got.Requested.Date = "1999-01-01"

	again, err := store.FindByID(ctx, "inq-x")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, again.Status)
	assert.Equal(t, "2025-03-01", again.Requested.Date)
}

func TestMemoryInquiryStore_ActiveUniqueness(t *testing.T) {
	store := NewMemoryInquiryStore()
	ctx := context.Background()
	require.NoError(t, store.Create(ctx, pendingAppointment()))

	dup := pendingAppointment()
	dup.ID = "inq-y"
	assert.True(t, errors.Is(store.Create(ctx, dup), ErrDuplicateActive))

	found, err := store.FindActiveByBuyerAndProperty(ctx, testBuyerID, testProperty, models.InquiryKindAppointment)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "inq-x", found.ID)

	none, err := store.FindActiveByBuyerAndProperty(ctx, testBuyerID, testProperty, models.InquiryKindMessage)
	require.NoError(t, err)
	assert.Nil(t, none)

	dup.Active = false
	dup.Status = models.StatusBuyerRejected
	assert.NoError(t, store.Create(ctx, dup), "inactive records do not collide")
}

func TestMemoryInquiryStore_ListNewestFirstWithLimit(t *testing.T) {
	store := NewMemoryInquiryStore()
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		inq := pendingAppointment()
		inq.ID = fmt.Sprintf("inq-%d", i)
		inq.PropertyID = fmt.Sprintf("prop-%d", i)
		inq.CreatedAt = testNow.Add(time.Duration(i) * time.Minute)
		require.NoError(t, store.Create(ctx, inq))
	}

	list, err := store.List(ctx, models.InquiryFilter{SellerID: testSellerID, Limit: 3})
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"inq-4", "inq-3", "inq-2"}, []string{list[0].ID, list[1].ID, list[2].ID})

	empty, err := store.List(ctx, models.InquiryFilter{BuyerID: "nobody"})
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestMemoryInquiryStore_ListBreaksTimestampTiesByID(t *testing.T) {
	store := NewMemoryInquiryStore()
	ctx := context.Background()
	for i, id := range []string{"inq-c", "inq-b", "inq-a"} {
		inq := pendingAppointment()
		inq.ID = id
		inq.PropertyID = fmt.Sprintf("prop-%d", i)
		inq.CreatedAt = testNow
		require.NoError(t, store.Create(ctx, inq))
	}
	newer := pendingAppointment()
	newer.ID = "inq-z"
	newer.PropertyID = "prop-newer"
	newer.CreatedAt = testNow.Add(time.Second)
	require.NoError(t, store.Create(ctx, newer))

	list, err := store.List(ctx, models.InquiryFilter{SellerID: testSellerID})
	require.NoError(t, err)
	ids := make([]string, 0, len(list))
	for _, inq := range list {
		ids = append(ids, inq.ID)
	}
	assert.Equal(t, []string{"inq-z", "inq-a", "inq-b", "inq-c"}, ids)
}

func TestMemoryInquiryStore_CanceledContext(t *testing.T) {
	store := NewMemoryInquiryStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.FindByID(ctx, "inq-x")
	assert.True(t, errors.Is(err, ErrStoreUnavailable))
	assert.True(t, IsRetryable(err))
}

func TestNormalizeLimit(t *testing.T) {
	assert.Equal(t, defaultListLimit, normalizeLimit(0))
	assert.Equal(t, 10, normalizeLimit(10))
	assert.Equal(t, maxListLimit, normalizeLimit(5000))
}
