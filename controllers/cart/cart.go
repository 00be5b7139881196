package cartControllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/heiphin7/bloom-boutique-catalog/services"
)

type AddItemInput struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,min=1"`
}

type UpdateItemInput struct {
	// Pointer so that an explicit zero (remove the line) survives binding.
	Quantity *int `json:"quantity" binding:"required"`
}

// GET /user/cart
func GetCart(carts *services.CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUser(c)
		if !ok {
			return
		}

		cart, err := carts.Get(c.Request.Context(), userID)
		if err != nil {
			respondCartError(c, err, "Failed to fetch cart")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"items": cart.Items,
			"total": cart.Subtotal(),
		})
	}
}

// POST /user/cart
func AddItem(carts *services.CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUser(c)
		if !ok {
			return
		}

		var input AddItemInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		if err := carts.AddLine(c.Request.Context(), userID, input.ProductID, input.Quantity); err != nil {
			respondCartError(c, err, "Failed to add item to cart")
			return
		}
		c.JSON(http.StatusCreated, gin.H{"message": "Item added to cart"})
	}
}

// PUT /user/cart/:item_id
func UpdateItem(carts *services.CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUser(c)
		if !ok {
			return
		}

		itemID, err := parseItemID(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid item id"})
			return
		}

		var input UpdateItemInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		if err := carts.UpdateQuantity(c.Request.Context(), userID, itemID, *input.Quantity); err != nil {
			respondCartError(c, err, "Failed to update cart item")
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Cart item updated"})
	}
}

// DELETE /user/cart/:item_id
func DeleteItem(carts *services.CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUser(c)
		if !ok {
			return
		}

		itemID, err := parseItemID(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid item id"})
			return
		}

		if err := carts.RemoveLine(c.Request.Context(), userID, itemID); err != nil {
			respondCartError(c, err, "Failed to delete item")
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Cart item deleted"})
	}
}

// DELETE /user/cart
func ClearCart(carts *services.CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUser(c)
		if !ok {
			return
		}

		if err := carts.Clear(c.Request.Context(), userID); err != nil {
			respondCartError(c, err, "Failed to clear cart")
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Cart cleared"})
	}
}

func currentUser(c *gin.Context) (string, bool) {
	userIDVal, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return "", false
	}
	userID, _ := userIDVal.(string)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return "", false
	}
	return userID, true
}

func parseItemID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("item_id"), 10, 64)
	return uint(id), err
}

func respondCartError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, services.ErrNotAuthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
	case errors.Is(err, services.ErrProductNotFound):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Product does not exist"})
	case errors.Is(err, services.ErrLineNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Cart item not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}
