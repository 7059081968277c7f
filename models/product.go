package models

import "time"

// Product is the catalog record as seen by the cart/order pipeline. Price is
// in minor units (cents/paise). Stock is the physical count; availability is
// Stock minus active reservations and is computed by the stock service,
// never stored.
type Product struct {
	ID          string    `json:"id" bson:"_id"`
	Name        string    `json:"name" bson:"name"`
	Description string    `json:"description,omitempty" bson:"description,omitempty"`
	Price       int64     `json:"price" bson:"price"`
	Currency    string    `json:"currency" bson:"currency"`
	Category    string    `json:"category,omitempty" bson:"category,omitempty"`
	Sizes       []string  `json:"sizes,omitempty" bson:"sizes,omitempty"`
	ImageURLs   []string  `json:"image_urls,omitempty" bson:"image_urls,omitempty"`
	Stock       int64     `json:"stock" bson:"stock"`
	Active      bool      `json:"active" bson:"active"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updated_at"`
}
