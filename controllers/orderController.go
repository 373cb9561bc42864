package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/AliRajag51/bookstore-backend/middlewares"
	"github.com/AliRajag51/bookstore-backend/services"
)

// IdempotencyHeader lets a client retry an order submission safely.
const IdempotencyHeader = "Idempotency-Key"

type OrderController struct {
	orders *services.OrderService
	log    *logrus.Logger
}

func NewOrderController(orders *services.OrderService, log *logrus.Logger) *OrderController {
	return &OrderController{orders: orders, log: log}
}

// CreateOrder answers 201 for a new order and 200 when the idempotency key
// matched an order placed earlier.
func (c *OrderController) CreateOrder(ctx *gin.Context) {
	var input services.PlaceOrderInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		respondWithBindError(ctx, err)
		return
	}
	input.IdempotencyKey = ctx.GetHeader(IdempotencyHeader)

	userID := middlewares.UserID(ctx)
	order, created, err := c.orders.Place(ctx.Request.Context(), userID, input)
	if err != nil {
		respondWithError(ctx, c.log, err)
		return
	}

	if !created {
		c.log.WithFields(logrus.Fields{"order_id": order.ID, "user_id": userID}).Info("Order replayed from idempotency key")
		sendJSONResponse(ctx, http.StatusOK, gin.H{"message": "Order already placed", "order": order})
		return
	}

	c.log.WithFields(logrus.Fields{
		"order_id": order.ID,
		"user_id":  userID,
		"total":    order.TotalAmount.StringFixed(2),
	}).Info("Order placed")
	sendJSONResponse(ctx, http.StatusCreated, gin.H{"message": "Order placed successfully", "order": order})
}

func (c *OrderController) GetOrders(ctx *gin.Context) {
	orders, err := c.orders.List(ctx.Request.Context(), middlewares.UserID(ctx))
	if err != nil {
		respondWithError(ctx, c.log, err)
		return
	}
	sendJSONResponse(ctx, http.StatusOK, gin.H{"orders": orders})
}

// GetOrderByID only finds orders of the calling user.
func (c *OrderController) GetOrderByID(ctx *gin.Context) {
	orderID, ok := pathID(ctx, "id", "Invalid order ID")
	if !ok {
		return
	}

	order, err := c.orders.Get(ctx.Request.Context(), middlewares.UserID(ctx), orderID)
	if err != nil {
		respondWithError(ctx, c.log, err)
		return
	}
	sendJSONResponse(ctx, http.StatusOK, gin.H{"order": order})
}
