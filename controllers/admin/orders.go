package adminControllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/heiphin7/bloom-boutique-catalog/services"
)

// GET /admin/orders
func GetAllOrders(orders services.OrderRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := orders.All(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

// GET /admin/carts/:user_id
func GetUserCart(carts *services.CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.Param("user_id")
		if userID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
			return
		}

		cart, err := carts.Get(c.Request.Context(), userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cart"})
			return
		}
		c.JSON(http.StatusOK, cart.Items)
	}
}
