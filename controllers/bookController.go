package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/AliRajag51/bookstore-backend/services"
)

const msgInvalidBookID = "Invalid book ID"

type BookController struct {
	catalog *services.CatalogService
	log     *logrus.Logger
}

func NewBookController(catalog *services.CatalogService, log *logrus.Logger) *BookController {
	return &BookController{catalog: catalog, log: log}
}

func (c *BookController) GetBooks(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))

	books, meta, err := c.catalog.List(ctx.Request.Context(), services.NewPage(page, limit), ctx.Query("category"))
	if err != nil {
		respondWithError(ctx, c.log, err)
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{
		"books":    books,
		"metadata": meta,
	})
}

func (c *BookController) GetBook(ctx *gin.Context) {
	id, ok := pathID(ctx, "id", msgInvalidBookID)
	if !ok {
		return
	}

	book, err := c.catalog.Get(ctx.Request.Context(), id)
	if err != nil {
		respondWithError(ctx, c.log, err)
		return
	}
	ctx.JSON(http.StatusOK, book)
}

func (c *BookController) CreateBook(ctx *gin.Context) {
	var input services.BookInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		respondWithBindError(ctx, err)
		return
	}

	book, err := c.catalog.Create(ctx.Request.Context(), input)
	if err != nil {
		respondWithError(ctx, c.log, err)
		return
	}
	ctx.JSON(http.StatusCreated, book)
}

func (c *BookController) UpdateBook(ctx *gin.Context) {
	id, ok := pathID(ctx, "id", msgInvalidBookID)
	if !ok {
		return
	}

	var input services.BookInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		respondWithBindError(ctx, err)
		return
	}

	book, err := c.catalog.Update(ctx.Request.Context(), id, input)
	if err != nil {
		respondWithError(ctx, c.log, err)
		return
	}
	ctx.JSON(http.StatusOK, book)
}

func (c *BookController) DeleteBook(ctx *gin.Context) {
	id, ok := pathID(ctx, "id", msgInvalidBookID)
	if !ok {
		return
	}

	if err := c.catalog.Delete(ctx.Request.Context(), id); err != nil {
		respondWithError(ctx, c.log, err)
		return
	}
	sendJSONResponse(ctx, http.StatusOK, gin.H{"message": "Book deleted"})
}

// UploadBookImages takes a multipart form with one or more "images" files.
func (c *BookController) UploadBookImages(ctx *gin.Context) {
	id, ok := pathID(ctx, "id", msgInvalidBookID)
	if !ok {
		return
	}

	form, err := ctx.MultipartForm()
	if err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, "Invalid form data")
		return
	}

	book, failed, err := c.catalog.UploadImages(ctx.Request.Context(), id, form.File["images"])
	if err != nil {
		respondWithError(ctx, c.log, err)
		return
	}

	response := gin.H{
		"message": "Images uploaded successfully",
		"book":    book,
	}
	if len(failed) > 0 {
		c.log.WithFields(logrus.Fields{"book_id": id, "failed": failed}).Warn("Some book images failed to upload")
		response["failed"] = failed
	}
	sendJSONResponse(ctx, http.StatusOK, response)
}
