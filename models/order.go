package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// OrderStatus is the order lifecycle state.
type OrderStatus string

const (
	OrderStatusPendingPayment OrderStatus = "pending_payment"
	OrderStatusPaid           OrderStatus = "paid"
	OrderStatusFailed         OrderStatus = "failed"
	OrderStatusCancelled      OrderStatus = "cancelled"
)

// IsTerminal reports whether the status is absorbing: no transition ever
// leaves paid, failed or cancelled.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusPaid || s == OrderStatusFailed || s == OrderStatusCancelled
}

// CanTransitionTo reports whether the transition s -> next is allowed.
// The only legal transitions are pending_payment -> {paid, failed, cancelled}.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if s != OrderStatusPendingPayment {
		return false
	}
	return next.IsTerminal()
}

func (s OrderStatus) String() string {
	return string(s)
}

// OrderLine is a purchased line with the unit price captured at order
// creation time. Catalog price changes never alter an existing order.
type OrderLine struct {
	ProductID string `json:"product_id" bson:"product_id"`
	Size      string `json:"size,omitempty" bson:"size,omitempty"`
	Quantity  int64  `json:"quantity" bson:"quantity"`
	UnitPrice int64  `json:"unit_price" bson:"unit_price"`
}

// Order is the immutable record of a completed cart-to-purchase transaction.
// Only the status (plus payment ref and transition timestamps) ever changes
// after creation, and only along the transitions OrderStatus allows. Orders
// are never deleted; they are retained as audit records.
type Order struct {
	ID          string      `json:"id" bson:"_id"`
	OrderNumber string      `json:"order_number" bson:"order_number"`
	UserID      string      `json:"user_id" bson:"user_id"`
	Lines       []OrderLine `json:"lines" bson:"lines"`
	TotalAmount int64       `json:"total_amount" bson:"total_amount"`
	Currency    string      `json:"currency" bson:"currency"`
	Status      OrderStatus `json:"status" bson:"status"`
	PaymentRef  string      `json:"payment_ref,omitempty" bson:"payment_ref,omitempty"`
	CreatedAt   time.Time   `json:"created_at" bson:"created_at"`
	CompletedAt *time.Time  `json:"completed_at,omitempty" bson:"completed_at,omitempty"`
	CanceledAt  *time.Time  `json:"canceled_at,omitempty" bson:"canceled_at,omitempty"`
}

// NewOrder builds a pending-payment order from reserved cart lines with
// prices captured at call time.
func NewOrder(userID string, lines []OrderLine, currency string) *Order {
	var total int64
	for _, line := range lines {
		total += line.Quantity * line.UnitPrice
	}
	return &Order{
		ID:          uuid.New().String(),
		OrderNumber: generateOrderNumber(),
		UserID:      userID,
		Lines:       lines,
		TotalAmount: total,
		Currency:    currency,
		Status:      OrderStatusPendingPayment,
		CreatedAt:   time.Now().UTC(),
	}
}

func generateOrderNumber() string {
	return fmt.Sprintf("ORD-%d", time.Now().UnixNano())
}
