package routes

import (
	"github.com/gin-gonic/gin"
)

func AuthRoutes(server *gin.Engine, deps Dependencies) {
	server.POST("/register", deps.Auth.Register)
	server.POST("/login", deps.AuthLimiter, deps.Auth.Login)
	server.POST("/logout", deps.Auth.Logout)
	server.GET("/check-auth", deps.RequireAuth, deps.Auth.CheckAuth)
	server.POST("/forgot-password", deps.AuthLimiter, deps.Auth.ForgotPassword)
	server.POST("/reset-password", deps.AuthLimiter, deps.Auth.ResetPassword)
}
