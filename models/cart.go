package models

import "time"

// CartLine is one (product, size) entry in a user's cart. Size is optional;
// products without variants use an empty string.
type CartLine struct {
	ProductID string `json:"product_id" bson:"product_id"`
	Size      string `json:"size,omitempty" bson:"size,omitempty"`
	Quantity  int64  `json:"quantity" bson:"quantity"`
}

// Cart is the per-user mutable collection of desired quantities. The version
// counter is incremented by exactly one on every successful mutation and is
// the optimistic-concurrency guard for cart writes.
type Cart struct {
	UserID    string     `json:"user_id" bson:"_id"`
	Lines     []CartLine `json:"lines" bson:"lines"`
	Version   int64      `json:"version" bson:"version"`
	UpdatedAt time.Time  `json:"updated_at" bson:"updated_at"`
}

// FindLine returns the index of the line matching (productID, size), or -1.
func (c *Cart) FindLine(productID, size string) int {
	for i, line := range c.Lines {
		if line.ProductID == productID && line.Size == size {
			return i
		}
	}
	return -1
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}
