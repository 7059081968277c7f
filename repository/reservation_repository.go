package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Samaresh-Maiti-2001/stylemaven/database"
	"github.com/Samaresh-Maiti-2001/stylemaven/models"
)

// ReservationRepository persists the ephemeral stock holds that exist
// between reservation and order confirmation or cancellation.
type ReservationRepository interface {
	Create(ctx context.Context, res *models.Reservation) error
	Delete(ctx context.Context, id string) error
	DeleteByOrder(ctx context.Context, orderID string) error
	FindByOrder(ctx context.Context, orderID string) ([]models.Reservation, error)
	FindExpired(ctx context.Context, now time.Time) ([]models.Reservation, error)
	ReservedQuantity(ctx context.Context, productID string) (int64, error)
}

// MongoReservationRepository implements ReservationRepository over the
// reservations collection.
type MongoReservationRepository struct {
	collection *mongo.Collection
}

// NewMongoReservationRepository creates a Mongo-backed reservation repository.
func NewMongoReservationRepository(db *mongo.Database) *MongoReservationRepository {
	return &MongoReservationRepository{collection: db.Collection(database.CollReservations)}
}

func (r *MongoReservationRepository) Create(ctx context.Context, res *models.Reservation) error {
	_, err := r.collection.InsertOne(ctx, res)
	return err
}

func (r *MongoReservationRepository) Delete(ctx context.Context, id string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (r *MongoReservationRepository) DeleteByOrder(ctx context.Context, orderID string) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"order_id": orderID})
	return err
}

func (r *MongoReservationRepository) FindByOrder(ctx context.Context, orderID string) ([]models.Reservation, error) {
	return r.find(ctx, bson.M{"order_id": orderID})
}

func (r *MongoReservationRepository) FindExpired(ctx context.Context, now time.Time) ([]models.Reservation, error) {
	return r.find(ctx, bson.M{"expires_at": bson.M{"$lte": now}})
}

func (r *MongoReservationRepository) find(ctx context.Context, filter bson.M) ([]models.Reservation, error) {
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var reservations []models.Reservation
	if err := cursor.All(ctx, &reservations); err != nil {
		return nil, err
	}
	return reservations, nil
}

// ReservedQuantity sums all existing holds for a product. Expired holds not
// yet swept still count: the engine under-reports availability rather than
// risk double-selling a hold whose order is being confirmed concurrently.
func (r *MongoReservationRepository) ReservedQuantity(ctx context.Context, productID string) (int64, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{"product_id": productID}}},
		bson.D{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"total": bson.M{"$sum": "$quantity"},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, err
	}
	defer cursor.Close(ctx)

	var result []struct {
		Total int64 `bson:"total"`
	}
	if err := cursor.All(ctx, &result); err != nil {
		return 0, err
	}
	if len(result) == 0 {
		return 0, nil
	}
	return result[0].Total, nil
}
