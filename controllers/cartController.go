package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/AliRajag51/bookstore-backend/middlewares"
	"github.com/AliRajag51/bookstore-backend/services"
)

const (
	msgAddedToCart = "Added to cart"
	msgCartUpdated = "Cart updated"
	msgItemRemoved = "Item removed"
	msgCartCleared = "Cart cleared"
)

type CartController struct {
	carts *services.CartService
	log   *logrus.Logger
}

func NewCartController(carts *services.CartService, log *logrus.Logger) *CartController {
	return &CartController{carts: carts, log: log}
}

type cartItemBody struct {
	BookID   any `json:"bookId"`
	Quantity any `json:"quantity"`
}

// quantity returns nil when the field is absent or not a JSON number. A
// numeric string counts as absent.
func (b cartItemBody) quantity() *float64 {
	if q, ok := services.StrictNumberFrom(b.Quantity); ok {
		return &q
	}
	return nil
}

func (c *CartController) GetCart(ctx *gin.Context) {
	cart, err := c.carts.Get(ctx.Request.Context(), middlewares.UserID(ctx))
	if err != nil {
		respondWithError(ctx, c.log, err)
		return
	}
	sendJSONResponse(ctx, http.StatusOK, gin.H{"cart": cart})
}

func (c *CartController) AddCartItem(ctx *gin.Context) {
	var body cartItemBody
	if err := ctx.ShouldBindJSON(&body); err != nil {
		respondWithBindError(ctx, err)
		return
	}

	bookID, _ := services.IDFrom(body.BookID)
	cart, err := c.carts.Add(ctx.Request.Context(), middlewares.UserID(ctx), bookID, body.quantity())
	if err != nil {
		respondWithError(ctx, c.log, err)
		return
	}
	sendJSONResponse(ctx, http.StatusOK, gin.H{"message": msgAddedToCart, "cart": cart})
}

func (c *CartController) UpdateCartItem(ctx *gin.Context) {
	bookID, ok := pathID(ctx, "bookId", msgInvalidBookID)
	if !ok {
		return
	}

	var body cartItemBody
	if err := ctx.ShouldBindJSON(&body); err != nil {
		respondWithBindError(ctx, err)
		return
	}

	cart, err := c.carts.SetQuantity(ctx.Request.Context(), middlewares.UserID(ctx), bookID, body.quantity())
	if err != nil {
		respondWithError(ctx, c.log, err)
		return
	}
	sendJSONResponse(ctx, http.StatusOK, gin.H{"message": msgCartUpdated, "cart": cart})
}

func (c *CartController) RemoveCartItem(ctx *gin.Context) {
	bookID, ok := pathID(ctx, "bookId", msgInvalidBookID)
	if !ok {
		return
	}

	cart, err := c.carts.Remove(ctx.Request.Context(), middlewares.UserID(ctx), bookID)
	if err != nil {
		respondWithError(ctx, c.log, err)
		return
	}
	sendJSONResponse(ctx, http.StatusOK, gin.H{"message": msgItemRemoved, "cart": cart})
}

func (c *CartController) ClearCart(ctx *gin.Context) {
	cart, err := c.carts.Clear(ctx.Request.Context(), middlewares.UserID(ctx))
	if err != nil {
		respondWithError(ctx, c.log, err)
		return
	}
	sendJSONResponse(ctx, http.StatusOK, gin.H{"message": msgCartCleared, "cart": cart})
}
