package routes

import (
	"github.com/gin-gonic/gin"
)

func OrderRoutes(server *gin.Engine, deps Dependencies) {
	orders := server.Group("/orders", deps.RequireAuth)
	{
		orders.POST("", deps.Orders.CreateOrder)
		orders.GET("", deps.Orders.GetOrders)
		orders.GET("/:id", deps.Orders.GetOrderByID)
	}
}
