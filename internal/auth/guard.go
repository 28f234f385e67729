package auth

import (
	"errors"
	"fmt"

	"github.com/marketly-dev/marketly/internal/apperr"
	"github.com/marketly-dev/marketly/internal/models"
	"github.com/marketly-dev/marketly/internal/repository"
	"gorm.io/gorm"
)

const credentialsDetail = "Could not validate credentials"

// ResolveIdentity verifies an access token and loads the active user it names.
func ResolveIdentity(tx *gorm.DB, token string) (*models.User, error) {
	claims, err := VerifyAccessToken(token)
	if err != nil {
		if errors.Is(err, ErrExpiredToken) {
			return nil, apperr.Wrap(apperr.KindUnauthenticated, "Token has expired", err)
		}
		return nil, apperr.Wrap(apperr.KindUnauthenticated, credentialsDetail, err)
	}

	user, err := repository.GetUserByEmail(tx, claims.Subject, true)
	if err != nil {
		return nil, fmt.Errorf("load user %q: %w", claims.Subject, err)
	}

	if user == nil {
		return nil, apperr.Unauthenticated(credentialsDetail)
	}

	return user, nil
}

// RequireRole passes user through when it holds role.
func RequireRole(user *models.User, role models.Role) (*models.User, error) {
	if user == nil {
		return nil, apperr.Unauthenticated(credentialsDetail)
	}

	if user.Role != role {
		return nil, apperr.Forbidden(fmt.Sprintf("Only %ss can perform this action", role))
	}

	return user, nil
}
