package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Samaresh-Maiti-2001/stylemaven/apperrors"
	"github.com/Samaresh-Maiti-2001/stylemaven/middleware"
	"github.com/Samaresh-Maiti-2001/stylemaven/models"
	"github.com/Samaresh-Maiti-2001/stylemaven/services"
)

// OrderController handles the /api/order endpoints, including the payment
// provider webhook.
type OrderController struct {
	orders   *services.OrderService
	payments *services.PaymentService
}

// NewOrderController creates an OrderController.
func NewOrderController(orders *services.OrderService, payments *services.PaymentService) *OrderController {
	return &OrderController{orders: orders, payments: payments}
}

// PlaceOrder converts the user's cart into a pending-payment order.
// POST /api/order/place
func (oc *OrderController) PlaceOrder(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.PlaceOrderRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			apperrors.Respond(c, apperrors.Validation(err.Error()))
			return
		}
	}

	order, err := oc.orders.PlaceOrder(c.Request.Context(), userID, req.IdempotencyKey)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"order": order})
}

// PaymentWebhook receives the provider's asynchronous confirmation. The
// endpoint is idempotent: a duplicate delivery gets the order's current
// status back with a 200.
// POST /api/order/payment-webhook
func (oc *OrderController) PaymentWebhook(c *gin.Context) {
	var req models.PaymentWebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.Respond(c, apperrors.Validation(err.Error()))
		return
	}

	status, err := oc.payments.ConfirmPayment(c.Request.Context(), req.OrderID, req.PaymentRef, req.Outcome)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order_id": req.OrderID, "status": status})
}

// GetOrders returns paginated orders for the authenticated user.
// GET /api/order
func (oc *OrderController) GetOrders(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	page, limit := parsePaginationParams(c)

	result, err := oc.orders.ListOrders(c.Request.Context(), userID, page, limit)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetOrderByID returns a specific order for the authenticated user.
// GET /api/order/:id
func (oc *OrderController) GetOrderByID(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	order, err := oc.orders.GetOrder(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}

// parsePaginationParams extracts and clamps page/limit query parameters.
func parsePaginationParams(c *gin.Context) (int, int) {
	const maxLimit = 100

	page := 1
	limit := 10

	if p, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil && p > 0 {
		page = p
	}
	if l, err := strconv.Atoi(c.DefaultQuery("limit", "10")); err == nil && l > 0 {
		limit = l
		if limit > maxLimit {
			limit = maxLimit
		}
	}
	return page, limit
}
