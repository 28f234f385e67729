package repository

import (
	"github.com/marketly-dev/marketly/internal/models"
	"gorm.io/gorm"
)

type ProductCriteria struct {
	CategoryID *uint
	SellerID   *uint
}

func GetProductByID(tx *gorm.DB, id uint) (*models.Product, error) {
	var product models.Product
	if err := tx.Where("id = ? AND is_active = ?", id, true).First(&product).Error; err != nil {
		return nil, notFoundAsNil(err)
	}

	return &product, nil
}

func ListProducts(tx *gorm.DB, criteria ProductCriteria) ([]models.Product, error) {
	query := tx.Where("is_active = ?", true)

	if criteria.CategoryID != nil {
		query = query.Where("category_id = ?", *criteria.CategoryID)
	}
	if criteria.SellerID != nil {
		query = query.Where("seller_id = ?", *criteria.SellerID)
	}

	var products []models.Product
	if err := query.Order("id").Find(&products).Error; err != nil {
		return nil, err
	}

	return products, nil
}
