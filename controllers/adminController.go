package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/AliRajag51/bookstore-backend/middlewares"
	"github.com/AliRajag51/bookstore-backend/models"
	"github.com/AliRajag51/bookstore-backend/services"
)

const msgInvalidUserID = "Invalid user ID"

type AdminController struct {
	users  *services.UserService
	orders *services.OrderService
	log    *logrus.Logger
}

func NewAdminController(users *services.UserService, orders *services.OrderService, log *logrus.Logger) *AdminController {
	return &AdminController{users: users, orders: orders, log: log}
}

func pageFromQuery(ctx *gin.Context) services.Page {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))
	return services.NewPage(page, limit)
}

func (c *AdminController) GetUsers(ctx *gin.Context) {
	users, meta, err := c.users.List(ctx.Request.Context(), pageFromQuery(ctx))
	if err != nil {
		respondWithError(ctx, c.log, err)
		return
	}

	public := make([]models.UserResponse, 0, len(users))
	for _, user := range users {
		public = append(public, user.Public())
	}
	sendJSONResponse(ctx, http.StatusOK, gin.H{"users": public, "metadata": meta})
}

func (c *AdminController) UpdateUser(ctx *gin.Context) {
	id, ok := pathID(ctx, "id", msgInvalidUserID)
	if !ok {
		return
	}

	var update services.UserUpdate
	if err := ctx.ShouldBindJSON(&update); err != nil {
		respondWithBindError(ctx, err)
		return
	}

	user, err := c.users.Update(ctx.Request.Context(), id, update)
	if err != nil {
		respondWithError(ctx, c.log, err)
		return
	}

	c.log.WithFields(logrus.Fields{
		"admin_id": middlewares.UserID(ctx),
		"user_id":  user.ID,
		"role":     user.Role,
		"active":   user.IsActive,
	}).Info("User updated")
	sendJSONResponse(ctx, http.StatusOK, gin.H{"user": user.Public()})
}

func (c *AdminController) DeleteUser(ctx *gin.Context) {
	id, ok := pathID(ctx, "id", msgInvalidUserID)
	if !ok {
		return
	}
	if id == middlewares.UserID(ctx) {
		sendErrorResponse(ctx, http.StatusBadRequest, "You cannot delete your own account")
		return
	}

	if err := c.users.Delete(ctx.Request.Context(), id); err != nil {
		respondWithError(ctx, c.log, err)
		return
	}

	c.log.WithFields(logrus.Fields{"admin_id": middlewares.UserID(ctx), "user_id": id}).Info("User deleted")
	sendJSONResponse(ctx, http.StatusOK, gin.H{"message": "User deleted successfully"})
}

func (c *AdminController) GetOrders(ctx *gin.Context) {
	status := models.OrderStatus(ctx.Query("status"))
	orders, meta, err := c.orders.ListAll(ctx.Request.Context(), pageFromQuery(ctx), status)
	if err != nil {
		respondWithError(ctx, c.log, err)
		return
	}
	sendJSONResponse(ctx, http.StatusOK, gin.H{"orders": orders, "metadata": meta})
}

func (c *AdminController) UpdateOrderStatus(ctx *gin.Context) {
	orderID, ok := pathID(ctx, "id", "Invalid order ID")
	if !ok {
		return
	}

	var body struct {
		Status string `json:"status" binding:"required,oneof=pending paid shipped completed cancelled"`
	}
	if err := ctx.ShouldBindJSON(&body); err != nil {
		respondWithBindError(ctx, err)
		return
	}

	order, err := c.orders.UpdateStatus(ctx.Request.Context(), orderID, models.OrderStatus(body.Status))
	if err != nil {
		respondWithError(ctx, c.log, err)
		return
	}
	sendJSONResponse(ctx, http.StatusOK, gin.H{"message": "Order status updated successfully", "order": order})
}
