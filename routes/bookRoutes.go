package routes

import (
	"github.com/gin-gonic/gin"
)

func BookRoutes(server *gin.Engine, deps Dependencies) {
	books := server.Group("/books")
	{
		books.GET("", deps.Books.GetBooks)
		books.GET("/:id", deps.Books.GetBook)
	}

	manage := server.Group("/books", deps.RequireAuth, deps.RequireAdmin)
	{
		manage.POST("", deps.Books.CreateBook)
		manage.PUT("/:id", deps.Books.UpdateBook)
		manage.DELETE("/:id", deps.Books.DeleteBook)
		manage.POST("/:id/images", deps.Books.UploadBookImages)
	}
}
