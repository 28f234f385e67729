package repository

import (
	"github.com/marketly-dev/marketly/internal/models"
	"gorm.io/gorm"
)

// ListCartLines returns the user's cart with each line's product loaded.
func ListCartLines(tx *gorm.DB, userID uint) ([]models.CartItem, error) {
	var items []models.CartItem
	err := tx.Preload("Product").
		Where("user_id = ?", userID).
		Order("id").
		Find(&items).Error
	if err != nil {
		return nil, err
	}

	return items, nil
}
