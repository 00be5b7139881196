package orderControllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/heiphin7/bloom-boutique-catalog/models"
	"github.com/heiphin7/bloom-boutique-catalog/services"
)

type CheckoutRequest struct {
	Name            string                 `json:"name" binding:"required"`
	Email           string                 `json:"email" binding:"required,email"`
	ShippingAddress models.ShippingAddress `json:"shipping_address"`
}

// POST /user/checkout
// Checkout freezes the cart into an unpaid order, then asks the payment
// processor for a checkout session. If session creation fails the order
// still exists and the response says so, so the client can retry payment
// from the orders page without losing it.
func Checkout(orders *services.OrderService, checkout *services.CheckoutService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUser(c)
		if !ok {
			return
		}

		var req CheckoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		order, err := orders.Checkout(c.Request.Context(), userID, services.CustomerInfo{
			Name:    req.Name,
			Email:   req.Email,
			Address: req.ShippingAddress,
		})
		if err != nil {
			respondOrderError(c, err, "Failed to create order")
			return
		}

		session, err := checkout.CreateSession(c.Request.Context(), order)
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{
				"error":    "Failed to create payment session",
				"order_id": order.OrderRef,
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"order_id":     order.OrderRef,
			"session_id":   session.ID,
			"checkout_url": session.URL,
		})
	}
}

// GET /user/orders?status=&search=
func ListOrders(orders *services.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUser(c)
		if !ok {
			return
		}

		filter := services.OrderFilter{
			Status: c.Query("status"),
			Search: c.Query("search"),
		}
		result, err := orders.ListByUser(c.Request.Context(), userID, filter)
		if err != nil {
			respondOrderError(c, err, "Failed to fetch orders")
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

// GET /user/orders/:orderID
func GetOrder(orders *services.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUser(c)
		if !ok {
			return
		}

		order, err := orders.GetByRef(c.Request.Context(), userID, c.Param("orderID"))
		if err != nil {
			respondOrderError(c, err, "Failed to fetch order")
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

// POST /user/orders/:orderID/pay
// PayOrder retries payment for an order. An existing session that already
// settled finalizes the order; otherwise a fresh session is returned.
func PayOrder(reconciler *services.Reconciler) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUser(c)
		if !ok {
			return
		}

		result, err := reconciler.PayAgain(c.Request.Context(), userID, c.Param("orderID"))
		if err != nil {
			if errors.Is(err, services.ErrOrderNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
				return
			}
			c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to prepare payment, please try again"})
			return
		}

		if result.Paid {
			c.JSON(http.StatusOK, gin.H{"paid": true})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"paid":         false,
			"session_id":   result.SessionID,
			"checkout_url": result.CheckoutURL,
		})
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

func respondOrderError(c *gin.Context, err error, fallback string) {
	var validation *services.ValidationError
	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  "Validation failed",
			"fields": validation.Fields,
		})
	case errors.Is(err, services.ErrCartEmpty):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cart is empty"})
	case errors.Is(err, services.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
	case errors.Is(err, services.ErrNotAuthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}
