package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/AliRajag51/bookstore-backend/controllers"
	"github.com/AliRajag51/bookstore-backend/metrics"
)

func DefaultRoutes(server *gin.Engine) {
	server.GET("/", controllers.GetHome)
	server.GET("/metrics", gin.WrapH(metrics.Handler()))
}
