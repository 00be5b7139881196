package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/heiphin7/bloom-boutique-catalog/auth"
)

func SetupAuthRoutes(r *gin.Engine, d Deps) {
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/token", auth.IssueToken(d.DB))
	}
}
