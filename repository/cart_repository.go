package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Samaresh-Maiti-2001/stylemaven/database"
	"github.com/Samaresh-Maiti-2001/stylemaven/models"
)

var (
	// ErrNotFound is returned when a requested document does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrVersionConflict is returned when an optimistic write loses the race.
	ErrVersionConflict = errors.New("version conflict")
)

// CartRepository defines cart persistence. Every write carries the caller's
// last-seen version; a stale version fails with ErrVersionConflict.
type CartRepository interface {
	Get(ctx context.Context, userID string) (*models.Cart, error)
	Put(ctx context.Context, userID string, expectedVersion int64, lines []models.CartLine) (*models.Cart, error)
}

// MongoCartRepository implements CartRepository over a carts collection with
// one document per user, keyed _id = userID.
type MongoCartRepository struct {
	collection *mongo.Collection
}

// NewMongoCartRepository creates a Mongo-backed cart repository.
func NewMongoCartRepository(db *mongo.Database) *MongoCartRepository {
	return &MongoCartRepository{collection: db.Collection(database.CollCarts)}
}

// Get returns the user's cart, or nil if the user has never added a line.
func (r *MongoCartRepository) Get(ctx context.Context, userID string) (*models.Cart, error) {
	var cart models.Cart
	err := r.collection.FindOne(ctx, bson.M{"_id": userID}).Decode(&cart)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// Put replaces the cart's lines, guarded by expectedVersion. Version 0 means
// the caller saw no cart; the document is created at version 1. Any stale
// version, including a version-0 write racing a concurrent create, fails
// with ErrVersionConflict.
func (r *MongoCartRepository) Put(ctx context.Context, userID string, expectedVersion int64, lines []models.CartLine) (*models.Cart, error) {
	now := time.Now().UTC()
	if lines == nil {
		lines = []models.CartLine{}
	}

	if expectedVersion == 0 {
		cart := &models.Cart{
			UserID:    userID,
			Lines:     lines,
			Version:   1,
			UpdatedAt: now,
		}
		if _, err := r.collection.InsertOne(ctx, cart); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return nil, ErrVersionConflict
			}
			return nil, err
		}
		return cart, nil
	}

	filter := bson.M{"_id": userID, "version": expectedVersion}
	update := bson.M{
		"$set": bson.M{"lines": lines, "updated_at": now},
		"$inc": bson.M{"version": 1},
	}
	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return nil, err
	}
	if res.MatchedCount == 0 {
		return nil, ErrVersionConflict
	}

	return &models.Cart{
		UserID:    userID,
		Lines:     lines,
		Version:   expectedVersion + 1,
		UpdatedAt: now,
	}, nil
}
