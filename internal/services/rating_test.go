package services_test

import (
	"testing"

	"github.com/marketly-dev/marketly/internal/apperr"
	"github.com/marketly-dev/marketly/internal/models"
	"github.com/marketly-dev/marketly/internal/services"
	"github.com/marketly-dev/marketly/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func addReview(t *testing.T, tx *gorm.DB, userID, productID uint, grade int) *models.Review {
	t.Helper()

	review := &models.Review{UserID: userID, ProductID: productID, Grade: grade, IsActive: true}
	require.NoError(t, tx.Create(review).Error)

	return review
}

func storedRating(t *testing.T, tx *gorm.DB, productID uint) float64 {
	t.Helper()

	var product models.Product
	require.NoError(t, tx.First(&product, productID).Error)

	return product.Rating
}

func TestRecomputeRating(t *testing.T) {
	tx := testutil.NewTestDB(t)

	seller := testutil.CreateUser(t, tx, "seller@example.com", models.RoleSeller)
	alice := testutil.CreateUser(t, tx, "alice@example.com", models.RoleBuyer)
	bob := testutil.CreateUser(t, tx, "bob@example.com", models.RoleBuyer)
	product := testutil.CreateProduct(t, tx, "Lamp", seller.ID)

	addReview(t, tx, alice.ID, product.ID, 5)
	low := addReview(t, tx, bob.ID, product.ID, 3)

	rating, err := services.RecomputeRating(tx, product.ID)
	require.NoError(t, err)
	assert.InDelta(t, 4.0, rating, 1e-9)
	assert.InDelta(t, 4.0, storedRating(t, tx, product.ID), 1e-9)

	testutil.Deactivate(t, tx, low)

	rating, err = services.RecomputeRating(tx, product.ID)
	require.NoError(t, err)
	assert.InDelta(t, 5.0, rating, 1e-9)
	assert.InDelta(t, 5.0, storedRating(t, tx, product.ID), 1e-9)
}

func TestRecomputeRatingWithoutReviews(t *testing.T) {
	tx := testutil.NewTestDB(t)

	seller := testutil.CreateUser(t, tx, "seller@example.com", models.RoleSeller)
	product := testutil.CreateProduct(t, tx, "Lamp", seller.ID)
	require.NoError(t, tx.Model(product).Update("rating", 3.5).Error)

	rating, err := services.RecomputeRating(tx, product.ID)
	require.NoError(t, err)
	assert.Zero(t, rating)
	assert.Zero(t, storedRating(t, tx, product.ID))
}

func TestRecomputeRatingMissingProduct(t *testing.T) {
	tx := testutil.NewTestDB(t)

	_, err := services.RecomputeRating(tx, 999)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestLockProduct(t *testing.T) {
	tx := testutil.NewTestDB(t)

	seller := testutil.CreateUser(t, tx, "seller@example.com", models.RoleSeller)
	product := testutil.CreateProduct(t, tx, "Lamp", seller.ID)
	testutil.Deactivate(t, tx, product)

	err := tx.Transaction(func(tx *gorm.DB) error {
		locked, err := services.LockProduct(tx, product.ID)
		require.NoError(t, err)
		assert.Equal(t, product.ID, locked.ID)
		assert.False(t, locked.IsActive)
		return nil
	})
	require.NoError(t, err)

	_, err = services.LockProduct(tx, 999)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}
