package services

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/SIYAM1809/Real-Estate-Management-System/internal/config"
	"github.com/SIYAM1809/Real-Estate-Management-System/internal/db"
	"github.com/SIYAM1809/Real-Estate-Management-System/internal/models"
)

const (
	inquiriesCollection = "inquiries"

	defaultListLimit = 50
	maxListLimit     = 200
)

// IInquiryStore persists inquiries. Implementations must make Update atomic
// with respect to the expected status check.
type IInquiryStore interface {
	Create(ctx context.Context, inq *models.Inquiry) error
	FindByID(ctx context.Context, id string) (*models.Inquiry, error)
	// FindActiveByBuyerAndProperty returns nil, nil when there is no active inquiry.
	FindActiveByBuyerAndProperty(ctx context.Context, buyerID, propertyID string, kind models.InquiryKind) (*models.Inquiry, error)
	// Update applies patch only if the stored status still equals expected.
	Update(ctx context.Context, id string, expected models.InquiryStatus, patch *models.InquiryPatch) (*models.Inquiry, error)
	List(ctx context.Context, filter models.InquiryFilter) ([]models.Inquiry, error)
	EnsureIndexes(ctx context.Context) error
}

// mongoInquiryStore implements IInquiryStore on the inquiries collection.
type mongoInquiryStore struct {
	db         *mongo.Database
	maxRetries int
}

// NewMongoInquiryStore creates a MongoDB backed inquiry store.
func NewMongoInquiryStore(database *mongo.Database, cfg *config.Config) IInquiryStore {
	retries := db.DefaultMaxRetries
	if cfg != nil && cfg.StoreMaxRetries >= 0 {
		retries = cfg.StoreMaxRetries
	}
	return &mongoInquiryStore{db: database, maxRetries: retries}
}

func (s *mongoInquiryStore) collection() *mongo.Collection {
	return s.db.Collection(inquiriesCollection)
}

// EnsureIndexes creates the partial unique index that allows only one active
// inquiry per (buyer, property, kind), plus the inbox indexes.
func (s *mongoInquiryStore) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "buyer_id", Value: 1}, {Key: "property_id", Value: 1}, {Key: "kind", Value: 1}},
			Options: options.Index().
				SetName("active_per_buyer_property").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"active": true}),
		},
		{
			Keys:    bson.D{{Key: "seller_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("seller_inbox"),
		},
		{
			Keys:    bson.D{{Key: "buyer_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("buyer_sent"),
		},
	}
	if err := db.EnsureIndexes(ctx, s.collection(), indexes); err != nil {
		return storeError("ensure inquiry indexes", err)
	}
	return nil
}

func (s *mongoInquiryStore) Create(ctx context.Context, inq *models.Inquiry) error {
	_, err := s.collection().InsertOne(ctx, inq)
	if err != nil {
		if db.IsMongoDuplicateKeyError(err) {
			return newError(KindDuplicateActive, "buyer already has an active %s inquiry for this property", inq.Kind)
		}
		return storeError("insert inquiry", err)
	}
	return nil
}

func (s *mongoInquiryStore) FindByID(ctx context.Context, id string) (*models.Inquiry, error) {
	var inq models.Inquiry
	err := s.read(func() error {
		return s.collection().FindOne(ctx, bson.M{"_id": id}).Decode(&inq)
	})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, newError(KindNotFound, "inquiry %s not found", id)
		}
		return nil, storeError("find inquiry", err)
	}
	return &inq, nil
}

func (s *mongoInquiryStore) FindActiveByBuyerAndProperty(ctx context.Context, buyerID, propertyID string, kind models.InquiryKind) (*models.Inquiry, error) {
	filter := bson.M{
		"buyer_id":    buyerID,
		"property_id": propertyID,
		"kind":        kind,
		"active":      true,
	}
	var inq models.Inquiry
	err := s.read(func() error {
		return s.collection().FindOne(ctx, filter).Decode(&inq)
	})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, storeError("find active inquiry", err)
	}
	return &inq, nil
}

// Update performs a compare-and-set on status. When nothing matches, the
// document is read again to tell a missing inquiry from a lost race.
func (s *mongoInquiryStore) Update(ctx context.Context, id string, expected models.InquiryStatus, patch *models.InquiryPatch) (*models.Inquiry, error) {
	set := bson.M{
		"status":     patch.Status,
		"active":     patch.Active,
		"updated_at": patch.UpdatedAt,
	}
	if patch.Proposed != nil {
		set["proposed"] = patch.Proposed
	}
	if patch.BuyerNote != nil {
		set["buyer_note"] = *patch.BuyerNote
	}
	if patch.RejectionReason != nil {
		set["rejection_reason"] = *patch.RejectionReason
	}
	update := bson.M{
		"$set":  set,
		"$push": bson.M{"history": patch.History},
	}
	filter := bson.M{"_id": id, "status": expected}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated models.Inquiry
	err := s.collection().FindOneAndUpdate(ctx, filter, update, opts).Decode(&updated)
	if err == nil {
		return &updated, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, storeError("update inquiry", err)
	}

	current, findErr := s.FindByID(ctx, id)
	if findErr != nil {
		return nil, findErr
	}
	return nil, newError(KindConcurrentModification, "inquiry %s is now %s, expected %s", id, current.Status, expected)
}

func (s *mongoInquiryStore) List(ctx context.Context, filter models.InquiryFilter) ([]models.Inquiry, error) {
	query := bson.M{}
	if filter.SellerID != "" {
		query["seller_id"] = filter.SellerID
	}
	if filter.BuyerID != "" {
		query["buyer_id"] = filter.BuyerID
	}
	if filter.Kind != "" {
		query["kind"] = filter.Kind
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}}).
		SetLimit(int64(normalizeLimit(filter.Limit)))

	var inquiries []models.Inquiry
	err := s.read(func() error {
		cursor, err := s.collection().Find(ctx, query, opts)
		if err != nil {
			return err
		}
		defer cursor.Close(ctx)
		inquiries = inquiries[:0]
		return cursor.All(ctx, &inquiries)
	})
	if err != nil {
		return nil, storeError("list inquiries", err)
	}
	if inquiries == nil {
		inquiries = []models.Inquiry{}
	}
	return inquiries, nil
}

// read retries idempotent reads on transient driver errors.
func (s *mongoInquiryStore) read(op db.Operation) error {
	err := db.WithRetries(op, s.maxRetries, db.IsTransientError)
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("mongo read failed: %w", err)
	}
	return err
}

func normalizeLimit(limit int) int {
	switch {
	case limit <= 0:
		return defaultListLimit
	case limit > maxListLimit:
		return maxListLimit
	default:
		return limit
	}
}
