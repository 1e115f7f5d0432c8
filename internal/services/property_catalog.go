package services

import (
	"context"
	"errors"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/SIYAM1809/Real-Estate-Management-System/internal/cache"
	"github.com/SIYAM1809/Real-Estate-Management-System/internal/db"
	"github.com/SIYAM1809/Real-Estate-Management-System/internal/models"
)

// IPropertyCatalog resolves listings owned by the catalog.
type IPropertyCatalog interface {
	// GetProperty returns ErrNotFound when the listing does not exist.
	GetProperty(ctx context.Context, id string) (*models.Property, error)
}

const propertiesCollection = "properties"

// mongoPropertyCatalog reads listings from the properties collection.
type mongoPropertyCatalog struct {
	db *mongo.Database
}

// NewMongoPropertyCatalog creates a catalog backed by MongoDB.
func NewMongoPropertyCatalog(database *mongo.Database) IPropertyCatalog {
	return &mongoPropertyCatalog{db: database}
}

func (c *mongoPropertyCatalog) GetProperty(ctx context.Context, id string) (*models.Property, error) {
	var property models.Property
	projection := bson.M{"_id": 1, "seller_id": 1, "title": 1, "status": 1, "location": 1}
	err := db.Try(func() error {
		return c.db.Collection(propertiesCollection).
			FindOne(ctx, bson.M{"_id": id}, options.FindOne().SetProjection(projection)).
			Decode(&property)
	})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, newError(KindNotFound, "property %s not found", id)
		}
		return nil, storeError("load property", err)
	}
	return &property, nil
}

// cachedPropertyCatalog is a Redis read-through cache in front of another catalog.
// Cache failures are logged and fall through to the backing catalog.
type cachedPropertyCatalog struct {
	next  IPropertyCatalog
	store cache.Store
	ttl   time.Duration
}

// NewCachedPropertyCatalog wraps next with a Redis cache. A zero ttl or a nil
// store disables caching.
func NewCachedPropertyCatalog(next IPropertyCatalog, store cache.Store, ttl time.Duration) IPropertyCatalog {
	if store == nil || ttl <= 0 {
		return next
	}
	return &cachedPropertyCatalog{next: next, store: store, ttl: ttl}
}

func propertyCacheKey(id string) string {
	return "property:" + id
}

func (c *cachedPropertyCatalog) GetProperty(ctx context.Context, id string) (*models.Property, error) {
	key := propertyCacheKey(id)
	var cached models.Property
	found, err := cache.GetJSON(ctx, c.store, key, &cached)
	if err != nil {
		log.Printf("WARN: property cache read failed for %s: %v", id, err)
	} else if found {
		return &cached, nil
	}

	property, err := c.next.GetProperty(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := cache.SetJSON(ctx, c.store, key, property, c.ttl); err != nil {
		log.Printf("WARN: property cache write failed for %s: %v", id, err)
	}
	return property, nil
}
