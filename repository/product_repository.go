package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Samaresh-Maiti-2001/stylemaven/database"
	"github.com/Samaresh-Maiti-2001/stylemaven/models"
)

// ProductRepository is the pipeline's boundary to the catalog: price,
// availability and stock lookups plus the single permanent stock decrement
// applied when a payment is confirmed. Catalog CRUD lives in the admin
// surface, not here.
type ProductRepository interface {
	FindByID(ctx context.Context, productID string) (*models.Product, error)
	FindByIDs(ctx context.Context, productIDs []string) (map[string]*models.Product, error)
	Find(ctx context.Context, page, limit int) ([]models.Product, int64, error)
	DecrementStock(ctx context.Context, productID string, quantity int64) error
}

// MongoProductRepository implements ProductRepository over the products
// collection.
type MongoProductRepository struct {
	collection *mongo.Collection
}

// NewMongoProductRepository creates a Mongo-backed product repository.
func NewMongoProductRepository(db *mongo.Database) *MongoProductRepository {
	return &MongoProductRepository{collection: db.Collection(database.CollProducts)}
}

func (r *MongoProductRepository) FindByID(ctx context.Context, productID string) (*models.Product, error) {
	var product models.Product
	err := r.collection.FindOne(ctx, bson.M{"_id": productID}).Decode(&product)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// FindByIDs returns the products for the given ids keyed by id. Missing ids
// are simply absent from the map; callers decide whether that is an error.
func (r *MongoProductRepository) FindByIDs(ctx context.Context, productIDs []string) (map[string]*models.Product, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": productIDs}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	products := make(map[string]*models.Product, len(productIDs))
	for cursor.Next(ctx) {
		var p models.Product
		if err := cursor.Decode(&p); err != nil {
			return nil, err
		}
		products[p.ID] = &p
	}
	return products, cursor.Err()
}

// Find returns active products, newest first, with a total count for
// pagination.
func (r *MongoProductRepository) Find(ctx context.Context, page, limit int) ([]models.Product, int64, error) {
	filter := bson.M{"active": true}

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

	var products []models.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// DecrementStock permanently deducts quantity from the physical stock count.
// The filter guards stock >= quantity so the count can never go negative.
func (r *MongoProductRepository) DecrementStock(ctx context.Context, productID string, quantity int64) error {
	filter := bson.M{"_id": productID, "stock": bson.M{"$gte": quantity}}
	update := bson.M{"$inc": bson.M{"stock": -quantity}}

	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrVersionConflict
	}
	return nil
}
