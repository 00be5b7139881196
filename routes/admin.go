package routes

import (
	"github.com/gin-gonic/gin"

	adminControllers "github.com/heiphin7/bloom-boutique-catalog/controllers/admin"
	"github.com/heiphin7/bloom-boutique-catalog/middleware"
)

func SetupAdminRoutes(r *gin.Engine, d Deps) {
	adminGroup := r.Group("/admin")
	adminGroup.Use(middleware.ValidateAPIKey)
	{
		adminGroup.GET("/orders", adminControllers.GetAllOrders(d.OrderRepo))
		adminGroup.GET("/orders/export", adminControllers.ExportOrdersToExcel(d.OrderRepo))
		adminGroup.GET("/carts/:user_id", adminControllers.GetUserCart(d.Carts))
	}
}
