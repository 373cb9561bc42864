package middlewares

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	TraceHeader = "X-Trace-ID"
	traceIDKey  = "traceID"
)

// RequestLogger tags each request with a trace id and logs it once it is done.
func RequestLogger(log *logrus.Logger) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		traceID := ctx.GetHeader(TraceHeader)
		if traceID == "" {
			traceID = uuid.NewString()
		}
		ctx.Set(traceIDKey, traceID)
		ctx.Header(TraceHeader, traceID)

		start := time.Now()
		ctx.Next()

		entry := log.WithFields(logrus.Fields{
			"trace_id":    traceID,
			"method":      ctx.Request.Method,
			"path":        ctx.Request.URL.Path,
			"status":      ctx.Writer.Status(),
			"duration_ms": time.Since(start).Milliseconds(),
			"client_ip":   ctx.ClientIP(),
		})
		if len(ctx.Errors) > 0 {
			entry = entry.WithField("errors", ctx.Errors.String())
		}

		switch status := ctx.Writer.Status(); {
		case status >= 500:
			entry.Error("Request failed")
		case status >= 400:
			entry.Warn("Request rejected")
		default:
			entry.Info("Request handled")
		}
	}
}

func TraceID(ctx *gin.Context) string {
	return ctx.GetString(traceIDKey)
}
