package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/marketly-dev/marketly/internal/apperr"
)

// GetIDParam parses a positive numeric path parameter.
func GetIDParam(ctx *gin.Context, name string) (uint, error) {
	raw := ctx.Param(name)

	if raw == "" {
		return 0, apperr.Validation(name + " is required")
	}

	id, err := strconv.ParseUint(raw, 10, 32)

	if err != nil || id == 0 {
		return 0, apperr.Validation("Invalid " + name)
	}

	return uint(id), nil
}

func optionalQuery(ctx *gin.Context, name string) (string, bool) {
	raw, ok := ctx.GetQuery(name)
	if !ok || raw == "" {
		return "", false
	}
	return raw, true
}

// QueryInt returns def when the parameter is absent.
func QueryInt(ctx *gin.Context, name string, def int) (int, error) {
	raw, ok := optionalQuery(ctx, name)
	if !ok {
		return def, nil
	}

	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperr.Validation("Invalid " + name)
	}

	return value, nil
}

func QueryUint(ctx *gin.Context, name string) (*uint, error) {
	raw, ok := optionalQuery(ctx, name)
	if !ok {
		return nil, nil
	}

	value, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return nil, apperr.Validation("Invalid " + name)
	}

	id := uint(value)
	return &id, nil
}

func QueryBool(ctx *gin.Context, name string) (*bool, error) {
	raw, ok := optionalQuery(ctx, name)
	if !ok {
		return nil, nil
	}

	value, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, apperr.Validation("Invalid " + name)
	}

	return &value, nil
}
