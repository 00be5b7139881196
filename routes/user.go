package routes

import (
	"github.com/gin-gonic/gin"

	cartControllers "github.com/heiphin7/bloom-boutique-catalog/controllers/cart"
	orderControllers "github.com/heiphin7/bloom-boutique-catalog/controllers/order"
	productControllers "github.com/heiphin7/bloom-boutique-catalog/controllers/product"
	"github.com/heiphin7/bloom-boutique-catalog/middleware"
)

// SetupUserRoutes registers all "/user/*" endpoints. Requires JWT middleware.
func SetupUserRoutes(r *gin.Engine, d Deps) {
	userGroup := r.Group("/user")
	userGroup.Use(middleware.ValidateToken)
	{
		// ──────────────── Shopping Cart ────────────────
		cartGroup := userGroup.Group("/cart")
		{
			cartGroup.GET("/", cartControllers.GetCart(d.Carts))                // GET /user/cart
			cartGroup.POST("/", cartControllers.AddItem(d.Carts))               // POST /user/cart
			cartGroup.PUT("/:item_id", cartControllers.UpdateItem(d.Carts))     // PUT /user/cart/:item_id
			cartGroup.DELETE("/:item_id", cartControllers.DeleteItem(d.Carts))  // DELETE /user/cart/:item_id
			cartGroup.DELETE("/", cartControllers.ClearCart(d.Carts))           // DELETE /user/cart
		}

		// ──────────────── Browse Products ────────────────
		userGroup.GET("/products", productControllers.GetProducts(d.DB))
		userGroup.GET("/products/:id", productControllers.GetProductByID(d.DB))

		// ──────────────── Checkout & Orders ────────────────
		userGroup.POST("/checkout", orderControllers.Checkout(d.Orders, d.Checkout))

		ordersGroup := userGroup.Group("/orders")
		{
			ordersGroup.GET("/", orderControllers.ListOrders(d.Orders))
			ordersGroup.GET("/ws", orderControllers.OrderEvents(d.Hub))
			ordersGroup.GET("/:orderID", orderControllers.GetOrder(d.Orders))
			ordersGroup.POST("/:orderID/pay", orderControllers.PayOrder(d.Reconciler))
		}
	}
}
