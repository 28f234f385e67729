package services

import (
	"errors"

	"github.com/marketly-dev/marketly/internal/apperr"
	"github.com/marketly-dev/marketly/internal/models"
	"github.com/marketly-dev/marketly/internal/repository"
	"gorm.io/gorm"
)

// EnsureProductAvailable gates cart mutations on an active product.
func EnsureProductAvailable(tx *gorm.DB, productID uint) (*models.Product, error) {
	product, err := repository.GetProductByID(tx, productID)
	if err != nil {
		return nil, err
	}

	if product == nil {
		return nil, apperr.NotFound("Product not found or inactive")
	}

	return product, nil
}

// FindCartLine returns the user's line for a product with the product loaded, or nil.
func FindCartLine(tx *gorm.DB, userID, productID uint) (*models.CartItem, error) {
	var item models.CartItem

	err := tx.Preload("Product").
		Where("user_id = ? AND product_id = ?", userID, productID).
		First(&item).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &item, nil
}
