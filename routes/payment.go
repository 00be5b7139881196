package routes

import (
	"github.com/gin-gonic/gin"

	paymentControllers "github.com/heiphin7/bloom-boutique-catalog/controllers/payment"
	"github.com/heiphin7/bloom-boutique-catalog/middleware"
)

func SetupPaymentRoutes(r *gin.Engine, d Deps) {
	payment := r.Group("/payment")
	{
		// Hit by the client on return from the processor
		payment.POST("/verify", paymentControllers.Verify(d.Reconciler))

		// Webhook endpoint: middleware handles signature verification
		payment.POST("/webhook",
			middleware.StripeWebhookAuth(),
			paymentControllers.Webhook(d.Reconciler),
		)
	}
}
