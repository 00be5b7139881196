package paymentControllers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/heiphin7/bloom-boutique-catalog/middleware"
	"github.com/heiphin7/bloom-boutique-catalog/services"
)

type VerifyRequest struct {
	SessionID string `json:"session_id" binding:"required"`
}

// POST /payment/verify
// Verify is hit by the client when it lands on the success redirect. The
// success flag in the URL is never trusted; the processor's session status
// is the only source of truth, and re-verifying a settled session is safe.
func Verify(reconciler *services.Reconciler) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req VerifyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "session_id is required"})
			return
		}

		result, err := reconciler.VerifyAndFinalize(c.Request.Context(), req.SessionID)
		if err != nil {
			log.Printf("payment verification failed for session %s: %v", req.SessionID, err)
			c.JSON(http.StatusBadGateway, gin.H{"error": "We couldn't verify your payment status. Please try again."})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"paid":     result.Paid,
			"order_id": result.OrderRef,
		})
	}
}

// stripeEvent is the envelope Stripe posts to the webhook endpoint.
type stripeEvent struct {
	Type string `json:"type"`
	Data struct {
		Object struct {
			ID string `json:"id"`
		} `json:"object"`
	} `json:"data"`
}

// POST /payment/webhook
// Webhook covers the customer who pays and never returns to the site: the
// completed-session event funnels into the same idempotent verification the
// redirect path uses.
func Webhook(reconciler *services.Reconciler) gin.HandlerFunc {
	return func(c *gin.Context) {
		bodyVal, exists := c.Get(middleware.RawBodyKey)
		if !exists {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing request body"})
			return
		}

		var event stripeEvent
		if err := json.Unmarshal(bodyVal.([]byte), &event); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to parse event"})
			return
		}

		if event.Type != "checkout.session.completed" {
			c.JSON(http.StatusOK, gin.H{"message": "event ignored"})
			return
		}
		if event.Data.Object.ID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing session id"})
			return
		}

		result, err := reconciler.VerifyAndFinalize(c.Request.Context(), event.Data.Object.ID)
		if err != nil {
			log.Printf("webhook verification failed for session %s: %v", event.Data.Object.ID, err)
			// Non-2xx makes Stripe redeliver, which is safe here.
			c.JSON(http.StatusInternalServerError, gin.H{"error": "verification failed"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"paid":     result.Paid,
			"order_id": result.OrderRef,
		})
	}
}
