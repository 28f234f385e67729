package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/marketly-dev/marketly/internal/types"
)

func RequestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		requestID := ctx.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		ctx.Set(types.RequestIDKey, requestID)
		ctx.Header("X-Request-ID", requestID)

		start := time.Now()
		path := ctx.Request.URL.Path

		ctx.Next()

		status := ctx.Writer.Status()
		level := slog.LevelInfo
		if status >= 500 {
			level = slog.LevelError
		} else if status >= 400 {
			level = slog.LevelWarn
		}

		logger.LogAttrs(ctx.Request.Context(), level, "HTTP request completed",
			slog.String("request_id", requestID),
			slog.String("method", ctx.Request.Method),
			slog.String("path", path),
			slog.Int("status_code", status),
			slog.Int("response_size", ctx.Writer.Size()),
			slog.Duration("duration", time.Since(start)),
			slog.String("client_ip", ctx.ClientIP()),
		)
	}
}

// Recovery turns a panic into a 500 and logs it with the request id.
func Recovery(logger *slog.Logger) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.ErrorContext(ctx.Request.Context(), "HTTP request panicked",
					"request_id", ctx.GetString(types.RequestIDKey),
					"panic", err,
				)
				ctx.AbortWithStatusJSON(500, gin.H{"error": "Internal server error"})
			}
		}()
		ctx.Next()
	}
}
