package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func GetHome(ctx *gin.Context) {
	message := `Welcome to the Bookstore API. The following are the endpoints for this API:

AUTH
- POST "/register" - Create user account
- POST "/login" - Access user account
- POST "/logout" - End the session
- GET "/check-auth" - Current user
- POST "/forgot-password" - Request password reset
- POST "/reset-password" - Reset user password

BOOKS
- GET "/books" - List books
- GET "/books/:id" - Get book by ID
- POST "/books", PUT "/books/:id", DELETE "/books/:id" - Manage books (admin)
- POST "/books/:id/images" - Upload book images (admin)

CART
- GET "/cart", POST "/cart", DELETE "/cart"
- PUT "/cart/:bookId", DELETE "/cart/:bookId"

ORDERS
- POST "/orders" - Place an order
- GET "/orders" - Orders of the current user
- GET "/orders/:id" - Get order by ID

ADMIN
- GET "/admin/users", PATCH "/admin/users/:id", DELETE "/admin/users/:id"
- GET "/admin/orders", PATCH "/admin/orders/:id"`

	ctx.JSON(http.StatusOK, gin.H{
		"message": message,
	})
}
