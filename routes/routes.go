package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/heiphin7/bloom-boutique-catalog/services"
	"github.com/heiphin7/bloom-boutique-catalog/ws"
)

// Deps are the service objects the route handlers close over. Everything is
// constructed once in main and passed down; no package-level state.
type Deps struct {
	DB         *gorm.DB
	Carts      *services.CartService
	Orders     *services.OrderService
	OrderRepo  services.OrderRepository
	Checkout   *services.CheckoutService
	Reconciler *services.Reconciler
	Hub        *ws.Hub
}

// SetupRoutes is the single entry point that wires up all route groups.
func SetupRoutes(r *gin.Engine, d Deps) {
	// Public auth routes (no middleware)
	SetupAuthRoutes(r, d)

	// User routes (JWT-protected)
	SetupUserRoutes(r, d)

	// Payment verification + webhook
	SetupPaymentRoutes(r, d)

	// Admin routes (API-key-protected)
	SetupAdminRoutes(r, d)
}
