package repository

import (
	"github.com/marketly-dev/marketly/internal/models"
	"gorm.io/gorm"
)

func GetCategoryByID(tx *gorm.DB, id uint) (*models.Category, error) {
	var category models.Category
	if err := tx.Where("id = ? AND is_active = ?", id, true).First(&category).Error; err != nil {
		return nil, notFoundAsNil(err)
	}

	return &category, nil
}

func ListCategories(tx *gorm.DB) ([]models.Category, error) {
	var categories []models.Category
	if err := tx.Where("is_active = ?", true).Order("id").Find(&categories).Error; err != nil {
		return nil, err
	}

	return categories, nil
}
