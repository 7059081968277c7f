package models

// AddLineRequest is the body for POST /api/cart/add.
type AddLineRequest struct {
	ProductID       string `json:"product_id" binding:"required"`
	Size            string `json:"size"`
	Quantity        int64  `json:"quantity" binding:"required,min=1"`
	ExpectedVersion int64  `json:"expected_version"`
}

// UpdateLineRequest is the body for POST /api/cart/update. Quantity 0
// removes the line.
type UpdateLineRequest struct {
	ProductID       string `json:"product_id" binding:"required"`
	Size            string `json:"size"`
	Quantity        int64  `json:"quantity" binding:"min=0"`
	ExpectedVersion int64  `json:"expected_version"`
}

// RemoveLineRequest is the body for POST /api/cart/remove.
type RemoveLineRequest struct {
	ProductID       string `json:"product_id" binding:"required"`
	Size            string `json:"size"`
	ExpectedVersion int64  `json:"expected_version"`
}

// PlaceOrderRequest is the body for POST /api/order/place. The idempotency
// key is optional; repeating a call with the same key returns the order
// created by the first call.
type PlaceOrderRequest struct {
	IdempotencyKey string `json:"idempotency_key"`
}

// PaymentOutcome is the provider's verdict carried by the webhook.
type PaymentOutcome string

const (
	PaymentOutcomeSuccess PaymentOutcome = "success"
	PaymentOutcomeFailure PaymentOutcome = "failure"
)

// PaymentWebhookRequest is the body for POST /api/order/payment-webhook.
type PaymentWebhookRequest struct {
	OrderID    string         `json:"order_id" binding:"required"`
	PaymentRef string         `json:"payment_ref" binding:"required"`
	Outcome    PaymentOutcome `json:"outcome" binding:"required,oneof=success failure"`
}

// OrderListResponse is the paginated order listing payload.
type OrderListResponse struct {
	Orders []Order  `json:"orders"`
	Meta   MetaData `json:"meta"`
}

// MetaData carries pagination info for list endpoints.
type MetaData struct {
	Page        int   `json:"page"`
	Limit       int   `json:"limit"`
	TotalOrders int64 `json:"total_orders"`
	HasMore     bool  `json:"has_more"`
}
