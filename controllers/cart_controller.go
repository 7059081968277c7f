package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Samaresh-Maiti-2001/stylemaven/apperrors"
	"github.com/Samaresh-Maiti-2001/stylemaven/middleware"
	"github.com/Samaresh-Maiti-2001/stylemaven/models"
	"github.com/Samaresh-Maiti-2001/stylemaven/services"
)

// CartController handles the /api/cart endpoints.
type CartController struct {
	carts *services.CartService
}

// NewCartController creates a CartController.
func NewCartController(carts *services.CartService) *CartController {
	return &CartController{carts: carts}
}

// GetCart returns the current cart for the authenticated user.
// GET /api/cart
func (cc *CartController) GetCart(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	cart, err := cc.carts.GetCart(c.Request.Context(), userID)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

// AddLine adds quantity to a cart line.
// POST /api/cart/add
func (cc *CartController) AddLine(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.AddLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.Respond(c, apperrors.Validation(err.Error()))
		return
	}

	cart, err := cc.carts.AddLine(c.Request.Context(), userID, req.ProductID, req.Size, req.Quantity, req.ExpectedVersion)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

// UpdateLine sets a cart line's quantity; 0 removes the line.
// POST /api/cart/update
func (cc *CartController) UpdateLine(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.UpdateLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.Respond(c, apperrors.Validation(err.Error()))
		return
	}

	cart, err := cc.carts.SetQuantity(c.Request.Context(), userID, req.ProductID, req.Size, req.Quantity, req.ExpectedVersion)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

// RemoveLine deletes a cart line.
// POST /api/cart/remove
func (cc *CartController) RemoveLine(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.RemoveLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.Respond(c, apperrors.Validation(err.Error()))
		return
	}

	cart, err := cc.carts.RemoveLine(c.Request.Context(), userID, req.ProductID, req.Size, req.ExpectedVersion)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}
