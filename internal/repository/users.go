// Package repository holds the read-side accessors for each entity. Lookups that
// find nothing return a nil entity and a nil error.
package repository

import (
	"errors"

	"github.com/marketly-dev/marketly/internal/models"
	"gorm.io/gorm"
)

// GetUserByEmail looks a user up by email; activeOnly restricts the match to active users.
func GetUserByEmail(tx *gorm.DB, email string, activeOnly bool) (*models.User, error) {
	query := tx.Where("email = ?", email)

	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var user models.User
	if err := query.First(&user).Error; err != nil {
		return nil, notFoundAsNil(err)
	}

	return &user, nil
}

func GetUserByID(tx *gorm.DB, id uint) (*models.User, error) {
	var user models.User
	if err := tx.Where("id = ? AND is_active = ?", id, true).First(&user).Error; err != nil {
		return nil, notFoundAsNil(err)
	}

	return &user, nil
}

func notFoundAsNil(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	return err
}
