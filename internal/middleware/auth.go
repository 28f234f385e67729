package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/marketly-dev/marketly/db"
	"github.com/marketly-dev/marketly/internal/apperr"
	"github.com/marketly-dev/marketly/internal/auth"
	"github.com/marketly-dev/marketly/internal/models"
	"github.com/marketly-dev/marketly/internal/types"
	"github.com/marketly-dev/marketly/internal/utils"
)

func AuthMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		authHeader := ctx.GetHeader("Authorization")

		if authHeader == "" {
			utils.RespondError(ctx, apperr.Unauthenticated("Not authenticated"))
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)

		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			utils.RespondError(ctx, apperr.Unauthenticated("Authorization header format must be Bearer {token}"))
			return
		}

		user, err := auth.ResolveIdentity(db.DB.WithContext(ctx.Request.Context()), parts[1])

		if err != nil {
			utils.RespondError(ctx, err)
			return
		}

		ctx.Set(types.ContextUserKey, user)
		ctx.Next()
	}
}

// RequireRole must run after AuthMiddleware.
func RequireRole(role models.Role) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		user, _ := utils.GetCurrentUser(ctx)

		if _, err := auth.RequireRole(user, role); err != nil {
			utils.RespondError(ctx, err)
			return
		}

		ctx.Next()
	}
}
