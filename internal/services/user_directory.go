package services

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/SIYAM1809/Real-Estate-Management-System/internal/db"
	"github.com/SIYAM1809/Real-Estate-Management-System/internal/models"
)

// IUserDirectory resolves marketplace accounts.
type IUserDirectory interface {
	// FindByID returns ErrNotFound when the user does not exist.
	FindByID(ctx context.Context, id string) (*models.User, error)
}

const usersCollection = "users"

type mongoUserDirectory struct {
	db *mongo.Database
}

// NewMongoUserDirectory creates a directory backed by the users collection.
func NewMongoUserDirectory(database *mongo.Database) IUserDirectory {
	return &mongoUserDirectory{db: database}
}

func (d *mongoUserDirectory) FindByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := db.Try(func() error {
		return d.db.Collection(usersCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, newError(KindNotFound, "user %s not found", id)
		}
		return nil, storeError("load user", err)
	}
	return &user, nil
}
