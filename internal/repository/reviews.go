package repository

import (
	"github.com/marketly-dev/marketly/internal/models"
	"gorm.io/gorm"
)

type ReviewCriteria struct {
	ProductID *uint
	UserID    *uint
	// IncludeInactive also returns deactivated reviews.
	IncludeInactive bool
}

func GetReviewByID(tx *gorm.DB, id uint, activeOnly bool) (*models.Review, error) {
	query := tx.Where("id = ?", id)

	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var review models.Review
	if err := query.First(&review).Error; err != nil {
		return nil, notFoundAsNil(err)
	}

	return &review, nil
}

func ListReviews(tx *gorm.DB, criteria ReviewCriteria) ([]models.Review, error) {
	query := tx.Model(&models.Review{})

	if criteria.ProductID != nil {
		query = query.Where("product_id = ?", *criteria.ProductID)
	}
	if criteria.UserID != nil {
		query = query.Where("user_id = ?", *criteria.UserID)
	}
	if !criteria.IncludeInactive {
		query = query.Where("is_active = ?", true)
	}

	var reviews []models.Review
	if err := query.Order("id").Find(&reviews).Error; err != nil {
		return nil, err
	}

	return reviews, nil
}

// FindActiveReview returns the caller's active review for a product, if any.
func FindActiveReview(tx *gorm.DB, userID, productID uint) (*models.Review, error) {
	var review models.Review
	err := tx.Where("user_id = ? AND product_id = ? AND is_active = ?", userID, productID, true).
		First(&review).Error
	if err != nil {
		return nil, notFoundAsNil(err)
	}

	return &review, nil
}
