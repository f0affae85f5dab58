package middlewares

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-Id"

func RequestID() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		id := ctx.GetHeader(requestIDHeader)

		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}

		ctx.Writer.Header().Set(requestIDHeader, id)
		ctx.Set(CtxRequestID, id)

		ctx.Next()
	}
}

func RequestLogger(log *slog.Logger) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()

		route := ctx.FullPath()
		if route == "" {
			route = ctx.Request.URL.Path // fallback (e.g. 404)
		}

		method := ctx.Request.Method

		ctx.Next()

		lat := time.Since(start)
		status := ctx.Writer.Status()

		logAttrs := []any{
			"method", method,
			"route", route,
			"status", status,
			"latency_ms", lat.Milliseconds(),
			"request_id", ctx.GetString(CtxRequestID),
		}

		level := slog.LevelInfo
		if status >= 500 {
			level = slog.LevelError
		}

		log.Log(ctx.Request.Context(), level, "http_request", logAttrs...)
	}
}
