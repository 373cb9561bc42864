package routes

import (
	"github.com/gin-gonic/gin"
)

func CartRoutes(server *gin.Engine, deps Dependencies) {
	cart := server.Group("/cart", deps.RequireAuth)
	{
		cart.GET("", deps.Carts.GetCart)
		cart.POST("", deps.Carts.AddCartItem)
		cart.DELETE("", deps.Carts.ClearCart)
		cart.PUT("/:bookId", deps.Carts.UpdateCartItem)
		cart.DELETE("/:bookId", deps.Carts.RemoveCartItem)
	}
}
