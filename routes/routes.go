package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/AliRajag51/bookstore-backend/controllers"
)

// Dependencies carries the handlers and guards the routes are built from.
type Dependencies struct {
	Auth   *controllers.AuthController
	Books  *controllers.BookController
	Carts  *controllers.CartController
	Orders *controllers.OrderController
	Admin  *controllers.AdminController

	RequireAuth  gin.HandlerFunc
	RequireAdmin gin.HandlerFunc
	AuthLimiter  gin.HandlerFunc
}

func Register(server *gin.Engine, deps Dependencies) {
	DefaultRoutes(server)
	AuthRoutes(server, deps)
	BookRoutes(server, deps)
	CartRoutes(server, deps)
	OrderRoutes(server, deps)
	AdminRoutes(server, deps)
}
