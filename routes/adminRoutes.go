package routes

import (
	"github.com/gin-gonic/gin"
)

func AdminRoutes(server *gin.Engine, deps Dependencies) {
	admin := server.Group("/admin", deps.RequireAuth, deps.RequireAdmin)
	{
		admin.GET("/users", deps.Admin.GetUsers)
		admin.PATCH("/users/:id", deps.Admin.UpdateUser)
		admin.DELETE("/users/:id", deps.Admin.DeleteUser)
		admin.GET("/orders", deps.Admin.GetOrders)
		admin.PATCH("/orders/:id", deps.Admin.UpdateOrderStatus)
	}
}
