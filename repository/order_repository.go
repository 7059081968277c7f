package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Samaresh-Maiti-2001/stylemaven/database"
	"github.com/Samaresh-Maiti-2001/stylemaven/models"
)

// OrderRepository persists orders. Orders are written once and afterwards
// mutated only through Transition, which enforces the status guard at the
// document level.
type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, orderID string) (*models.Order, error)
	FindByIDAndUser(ctx context.Context, orderID, userID string) (*models.Order, error)
	FindByUser(ctx context.Context, userID string, page, limit int) ([]models.Order, int64, error)
	Transition(ctx context.Context, orderID string, from, to models.OrderStatus, paymentRef string) (bool, error)
}

// MongoOrderRepository implements OrderRepository over the orders collection.
type MongoOrderRepository struct {
	collection *mongo.Collection
}

// NewMongoOrderRepository creates a Mongo-backed order repository.
func NewMongoOrderRepository(db *mongo.Database) *MongoOrderRepository {
	return &MongoOrderRepository{collection: db.Collection(database.CollOrders)}
}

func (r *MongoOrderRepository) Create(ctx context.Context, order *models.Order) error {
	_, err := r.collection.InsertOne(ctx, order)
	return err
}

func (r *MongoOrderRepository) FindByID(ctx context.Context, orderID string) (*models.Order, error) {
	return r.findOne(ctx, bson.M{"_id": orderID})
}

func (r *MongoOrderRepository) FindByIDAndUser(ctx context.Context, orderID, userID string) (*models.Order, error) {
	return r.findOne(ctx, bson.M{"_id": orderID, "user_id": userID})
}

func (r *MongoOrderRepository) findOne(ctx context.Context, filter bson.M) (*models.Order, error) {
	var order models.Order
	err := r.collection.FindOne(ctx, filter).Decode(&order)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// FindByUser returns the user's orders newest first with a total count for
// pagination.
func (r *MongoOrderRepository) FindByUser(ctx context.Context, userID string, page, limit int) ([]models.Order, int64, error) {
	filter := bson.M{"user_id": userID}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	findOptions := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var orders []models.Order
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// Transition applies from -> to as a single guarded update and reports
// whether it was applied. A false return with nil error means the order was
// no longer in the from status; concurrent transitions on the same order
// resolve to exactly one winner.
func (r *MongoOrderRepository) Transition(ctx context.Context, orderID string, from, to models.OrderStatus, paymentRef string) (bool, error) {
	now := time.Now().UTC()

	set := bson.M{"status": to}
	if paymentRef != "" {
		set["payment_ref"] = paymentRef
	}
	switch to {
	case models.OrderStatusPaid:
		set["completed_at"] = now
	case models.OrderStatusFailed, models.OrderStatusCancelled:
		set["canceled_at"] = now
	}

	filter := bson.M{"_id": orderID, "status": from}
	res, err := r.collection.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return false, err
	}
	return res.MatchedCount == 1, nil
}
