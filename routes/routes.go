package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/Samaresh-Maiti-2001/stylemaven/controllers"
	"github.com/Samaresh-Maiti-2001/stylemaven/middleware"
)

// Register mounts all route groups on the engine. The cart and order groups
// require an authenticated user; the payment webhook and product reads do
// not.
func Register(
	r *gin.Engine,
	jwtSecret string,
	cartController *controllers.CartController,
	orderController *controllers.OrderController,
	productController *controllers.ProductController,
) {
	auth := middleware.AuthMiddleware(jwtSecret)

	cart := r.Group("/api/cart")
	cart.Use(auth)
	{
		cart.GET("", cartController.GetCart)
		cart.POST("/add", cartController.AddLine)
		cart.POST("/update", cartController.UpdateLine)
		cart.POST("/remove", cartController.RemoveLine)
	}

	order := r.Group("/api/order")
	{
		// Provider calls the webhook without a user token.
		order.POST("/payment-webhook", orderController.PaymentWebhook)

		authed := order.Group("")
		authed.Use(auth)
		authed.POST("/place", orderController.PlaceOrder)
		authed.GET("", orderController.GetOrders)
		authed.GET("/:id", orderController.GetOrderByID)
	}

	product := r.Group("/api/product")
	{
		product.GET("", productController.ListProducts)
		product.GET("/:id", productController.GetProduct)
	}
}
