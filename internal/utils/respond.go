package utils

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/marketly-dev/marketly/internal/apperr"
	"github.com/marketly-dev/marketly/internal/types"
)

// RespondError aborts the request with the status mapped from err. Anything that is not
// an *apperr.Error is logged and reported as a 500 without detail.
func RespondError(ctx *gin.Context, err error) {
	status := apperr.StatusCode(err)

	if status >= http.StatusInternalServerError {
		slog.ErrorContext(ctx.Request.Context(), "request failed",
			"request_id", ctx.GetString(types.RequestIDKey),
			"method", ctx.Request.Method,
			"path", ctx.Request.URL.Path,
			"error", err,
		)
		ctx.AbortWithStatusJSON(status, gin.H{"error": "Internal server error"})
		return
	}

	if status == http.StatusUnauthorized {
		ctx.Header("WWW-Authenticate", "Bearer")
	}

	appErr, _ := apperr.As(err)
	ctx.AbortWithStatusJSON(status, gin.H{"error": appErr.Detail})
}
