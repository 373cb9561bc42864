package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/AliRajag51/bookstore-backend/middlewares"
	"github.com/AliRajag51/bookstore-backend/services"
)

const (
	msgInvalidInput        = "Invalid input"
	msgInternalServerError = "Internal server error"
)

func sendJSONResponse(ctx *gin.Context, status int, data gin.H) {
	ctx.JSON(status, data)
}

func sendErrorResponse(ctx *gin.Context, status int, message string) {
	sendJSONResponse(ctx, status, gin.H{"message": message})
}

func statusFor(kind services.Kind) int {
	switch kind {
	case services.KindValidation:
		return http.StatusBadRequest
	case services.KindAuth:
		return http.StatusUnauthorized
	case services.KindForbidden:
		return http.StatusForbidden
	case services.KindNotFound:
		return http.StatusNotFound
	case services.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondWithError writes err as {"message": ...}. Causes of server-side
// failures are logged and never sent to the client.
func respondWithError(ctx *gin.Context, log *logrus.Logger, err error) {
	var svcErr *services.Error
	if !errors.As(err, &svcErr) {
		svcErr = services.Internal(msgInternalServerError, err)
	}

	status := statusFor(svcErr.Kind)
	if status >= http.StatusInternalServerError {
		log.WithFields(logrus.Fields{
			"trace_id": middlewares.TraceID(ctx),
			"kind":     svcErr.Kind.String(),
			"path":     ctx.FullPath(),
		}).WithError(svcErr.Unwrap()).Error(svcErr.Message)
		_ = ctx.Error(err)
	}
	sendErrorResponse(ctx, status, svcErr.Message)
}

// respondWithBindError answers a failed ShouldBind call with 400. Field level
// failures are reported by field name.
func respondWithBindError(ctx *gin.Context, err error) {
	var vErrs validator.ValidationErrors
	if errors.As(err, &vErrs) && len(vErrs) > 0 {
		sendJSONResponse(ctx, http.StatusBadRequest, gin.H{
			"message": msgInvalidInput,
			"error":   fieldMessage(vErrs[0]),
		})
		return
	}
	sendErrorResponse(ctx, http.StatusBadRequest, msgInvalidInput)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " value missing"
	case "min":
		return fe.Field() + " value is less than " + fe.Param()
	case "oneof":
		return fe.Field() + " must be one of " + fe.Param()
	case "email":
		return fe.Field() + " must be a valid email"
	default:
		return fe.Field() + " is invalid"
	}
}

func pathID(ctx *gin.Context, name, message string) (uint, bool) {
	id, ok := services.ParseID(ctx.Param(name))
	if !ok {
		sendErrorResponse(ctx, http.StatusBadRequest, message)
	}
	return id, ok
}
