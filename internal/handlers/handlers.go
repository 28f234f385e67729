package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/marketly-dev/marketly/db"
	"github.com/marketly-dev/marketly/internal/apperr"
	"gorm.io/gorm"
)

// conn scopes the shared pool to the request so cancellation and tracing follow it.
func conn(ctx *gin.Context) *gorm.DB {
	return db.DB.WithContext(ctx.Request.Context())
}

func invalidRequest(err error) error {
	return apperr.Wrap(apperr.KindValidation, "Invalid request", err)
}

// conflictOnDuplicate reports a unique-constraint violation as a 409 with detail.
func conflictOnDuplicate(err error, detail string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperr.Wrap(apperr.KindConflict, detail, err)
	}
	return err
}
