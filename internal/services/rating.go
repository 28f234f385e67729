package services

import (
	"database/sql"
	"errors"

	"github.com/marketly-dev/marketly/internal/apperr"
	"github.com/marketly-dev/marketly/internal/metrics"
	"github.com/marketly-dev/marketly/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LockProduct takes a row lock on the product, active or not, for the rest of the
// transaction. Review writes lock first so that concurrent recomputations for the same
// product run one after another and each sees the other's committed review.
func LockProduct(tx *gorm.DB, productID uint) (*models.Product, error) {
	var product models.Product

	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", productID).
		First(&product).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("Product not found")
	}
	if err != nil {
		return nil, err
	}

	return &product, nil
}

// RecomputeRating stores the mean grade of the product's active reviews, or 0 when it
// has none, and returns the stored value. It must run inside the transaction that
// changed the reviews.
func RecomputeRating(tx *gorm.DB, productID uint) (float64, error) {
	var avg sql.NullFloat64

	err := tx.Model(&models.Review{}).
		Select("AVG(grade)").
		Where("product_id = ? AND is_active = ?", productID, true).
		Row().
		Scan(&avg)
	if err != nil {
		return 0, err
	}

	rating := 0.0
	if avg.Valid {
		rating = avg.Float64
	}

	result := tx.Model(&models.Product{}).Where("id = ?", productID).Update("rating", rating)
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected == 0 {
		return 0, apperr.NotFound("Product not found")
	}

	metrics.RatingRecomputes.Inc()

	return rating, nil
}
