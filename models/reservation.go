package models

import (
	"time"

	"github.com/google/uuid"
)

// Reservation is a temporary hold on stock tied to a pending order. It
// exists only between the stock decrement and order confirmation or
// cancellation; expired reservations are released by the sweeper.
type Reservation struct {
	ID        string    `json:"id" bson:"_id"`
	OrderID   string    `json:"order_id" bson:"order_id"`
	ProductID string    `json:"product_id" bson:"product_id"`
	Size      string    `json:"size,omitempty" bson:"size,omitempty"`
	Quantity  int64     `json:"quantity" bson:"quantity"`
	ExpiresAt time.Time `json:"expires_at" bson:"expires_at"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// NewReservation creates a hold for one order line with the given TTL.
func NewReservation(orderID, productID, size string, quantity int64, ttl time.Duration) *Reservation {
	now := time.Now().UTC()
	return &Reservation{
		ID:        uuid.New().String(),
		OrderID:   orderID,
		ProductID: productID,
		Size:      size,
		Quantity:  quantity,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}
}

// Expired reports whether the hold has passed its TTL at the given instant.
func (r *Reservation) Expired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}
