package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Samaresh-Maiti-2001/stylemaven/apperrors"
	"github.com/Samaresh-Maiti-2001/stylemaven/repository"
)

// ProductController serves the public catalog reads. Catalog writes and
// image uploads are the admin surface's concern.
type ProductController struct {
	products repository.ProductRepository
}

// NewProductController creates a ProductController.
func NewProductController(products repository.ProductRepository) *ProductController {
	return &ProductController{products: products}
}

// ListProducts returns active products, newest first.
// GET /api/product
func (pc *ProductController) ListProducts(c *gin.Context) {
	page, limit := parsePaginationParams(c)

	products, total, err := pc.products.Find(c.Request.Context(), page, limit)
	if err != nil {
		apperrors.Respond(c, apperrors.Internal(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"meta": gin.H{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

// GetProduct returns one product with price, stock and availability flags.
// GET /api/product/:id
func (pc *ProductController) GetProduct(c *gin.Context) {
	product, err := pc.products.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			apperrors.Respond(c, apperrors.NotFound("Product not found"))
			return
		}
		apperrors.Respond(c, apperrors.Internal(err))
		return
	}
	c.JSON(http.StatusOK, product)
}
