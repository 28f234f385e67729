package utils

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/marketly-dev/marketly/internal/models"
	"github.com/marketly-dev/marketly/internal/types"
)

var (
	ErrNoCurrentUser      = errors.New("no authenticated user in request context")
	ErrInvalidCurrentUser = errors.New("request context user has unexpected type")
)

// GetCurrentUser returns the user stored by the auth middleware.
func GetCurrentUser(ctx *gin.Context) (*models.User, error) {
	value, exists := ctx.Get(types.ContextUserKey)

	if !exists {
		return nil, ErrNoCurrentUser
	}

	user, ok := value.(*models.User)

	if !ok || user == nil {
		return nil, ErrInvalidCurrentUser
	}

	return user, nil
}

func GetCurrentUserID(ctx *gin.Context) (uint, error) {
	user, err := GetCurrentUser(ctx)

	if err != nil {
		return 0, err
	}

	return user.ID, nil
}
