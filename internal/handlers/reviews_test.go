package handlers_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/marketly-dev/marketly/internal/models"
	"github.com/marketly-dev/marketly/internal/testutil"
	"github.com/marketly-dev/marketly/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func productRating(t *testing.T, s *testServer, productID uint) float64 {
	t.Helper()

	var product models.Product
	require.NoError(t, s.db.First(&product, productID).Error)

	return product.Rating
}

func TestReviewFlow(t *testing.T) {
	s := newTestServer(t)
	seller, sellerToken := s.user(t, "seller@example.com", models.RoleSeller)
	_, aliceToken := s.user(t, "alice@example.com", models.RoleBuyer)
	_, bobToken := s.user(t, "bob@example.com", models.RoleBuyer)
	_, adminToken := s.user(t, "admin@example.com", models.RoleAdmin)
	product := testutil.CreateProduct(t, s.db, "Lamp", seller.ID)

	w := s.json(t, http.MethodPost, "/reviews", map[string]interface{}{
		"product_id": product.ID,
		"comment":    "Lovely",
		"grade":      5,
	}, aliceToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	aliceReview := decode[types.ReviewResponse](t, w)
	assert.Equal(t, 5, aliceReview.Grade)
	assert.False(t, aliceReview.CommentDate.IsZero())
	assert.InDelta(t, 5.0, productRating(t, s, product.ID), 1e-9)

	w = s.json(t, http.MethodPost, "/reviews", map[string]interface{}{"product_id": product.ID, "grade": 3}, bobToken)
	require.Equal(t, http.StatusCreated, w.Code)
	bobReview := decode[types.ReviewResponse](t, w)
	assert.InDelta(t, 4.0, productRating(t, s, product.ID), 1e-9)

	w = s.json(t, http.MethodPost, "/reviews", map[string]interface{}{"product_id": product.ID, "grade": 1}, aliceToken)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "You already reviewed this product", errorDetail(t, w))
	assert.InDelta(t, 4.0, productRating(t, s, product.ID), 1e-9)

	w = s.json(t, http.MethodPost, "/reviews", map[string]interface{}{"product_id": product.ID, "grade": 4}, sellerToken)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Only buyers can perform this action", errorDetail(t, w))

	w = s.json(t, http.MethodDelete, fmt.Sprintf("/reviews/%d", bobReview.ID), nil, aliceToken)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.json(t, http.MethodDelete, fmt.Sprintf("/reviews/%d", bobReview.ID), nil, adminToken)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Review deleted", decode[map[string]string](t, w)["message"])
	assert.InDelta(t, 5.0, productRating(t, s, product.ID), 1e-9)

	w = s.json(t, http.MethodDelete, fmt.Sprintf("/reviews/%d", bobReview.ID), nil, adminToken)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.json(t, http.MethodGet, fmt.Sprintf("/reviews/%d", bobReview.ID), nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.json(t, http.MethodGet, fmt.Sprintf("/products/%d/reviews", product.ID), nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	listed := decode[[]types.ReviewResponse](t, w)
	require.Len(t, listed, 1)
	assert.Equal(t, aliceReview.ID, listed[0].ID)

	// once deactivated, the buyer may review again
	w = s.json(t, http.MethodPost, "/reviews", map[string]interface{}{"product_id": product.ID, "grade": 2}, bobToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.InDelta(t, 3.5, productRating(t, s, product.ID), 1e-9)

	w = s.json(t, http.MethodGet, "/reviews", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]types.ReviewResponse](t, w), 2)
}

func TestDeletingLastReviewResetsRating(t *testing.T) {
	s := newTestServer(t)
	seller, _ := s.user(t, "seller@example.com", models.RoleSeller)
	_, buyerToken := s.user(t, "buyer@example.com", models.RoleBuyer)
	_, adminToken := s.user(t, "admin@example.com", models.RoleAdmin)
	product := testutil.CreateProduct(t, s.db, "Lamp", seller.ID)

	w := s.json(t, http.MethodPost, "/reviews", map[string]interface{}{"product_id": product.ID, "grade": 4}, buyerToken)
	require.Equal(t, http.StatusCreated, w.Code)
	review := decode[types.ReviewResponse](t, w)

	w = s.json(t, http.MethodDelete, fmt.Sprintf("/reviews/%d", review.ID), nil, adminToken)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Zero(t, productRating(t, s, product.ID))
}

func TestCreateReviewRejects(t *testing.T) {
	s := newTestServer(t)
	seller, _ := s.user(t, "seller@example.com", models.RoleSeller)
	_, buyerToken := s.user(t, "buyer@example.com", models.RoleBuyer)
	retired := testutil.CreateProduct(t, s.db, "Old lamp", seller.ID)
	testutil.Deactivate(t, s.db, retired)
	product := testutil.CreateProduct(t, s.db, "Lamp", seller.ID)

	tests := []struct {
		name   string
		body   map[string]interface{}
		status int
	}{
		{"inactive product", map[string]interface{}{"product_id": retired.ID, "grade": 4}, http.StatusBadRequest},
		{"missing product", map[string]interface{}{"product_id": 999, "grade": 4}, http.StatusBadRequest},
		{"grade too high", map[string]interface{}{"product_id": product.ID, "grade": 6}, http.StatusBadRequest},
		{"grade too low", map[string]interface{}{"product_id": product.ID, "grade": 0}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.json(t, http.MethodPost, "/reviews", tt.body, buyerToken)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
		})
	}

	var count int64
	require.NoError(t, s.db.Model(&models.Review{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestActiveReviewIndexRejectsDuplicates(t *testing.T) {
	s := newTestServer(t)
	seller, _ := s.user(t, "seller@example.com", models.RoleSeller)
	buyer, _ := s.user(t, "buyer@example.com", models.RoleBuyer)
	product := testutil.CreateProduct(t, s.db, "Lamp", seller.ID)

	first := &models.Review{UserID: buyer.ID, ProductID: product.ID, Grade: 4, IsActive: true}
	require.NoError(t, s.db.Create(first).Error)

	err := s.db.Create(&models.Review{UserID: buyer.ID, ProductID: product.ID, Grade: 2, IsActive: true}).Error
	assert.Error(t, err)

	testutil.Deactivate(t, s.db, first)
	assert.NoError(t, s.db.Create(&models.Review{UserID: buyer.ID, ProductID: product.ID, Grade: 2, IsActive: true}).Error)
}

// failProductUpdates makes every UPDATE of the products table fail, such as the rating
// recomputation that follows a review write.
func failProductUpdates(t *testing.T, conn *gorm.DB) {
	t.Helper()

	const name = "marketly:fail_product_updates"

	require.NoError(t, conn.Callback().Update().Before("gorm:update").Register(name, func(tx *gorm.DB) {
		if tx.Statement.Table == "products" {
			_ = tx.AddError(errors.New("products are read-only"))
		}
	}))
	t.Cleanup(func() {
		_ = conn.Callback().Update().Remove(name)
	})
}

func TestCreateReviewRollsBackWhenRatingFails(t *testing.T) {
	s := newTestServer(t)
	seller, _ := s.user(t, "seller@example.com", models.RoleSeller)
	_, buyerToken := s.user(t, "buyer@example.com", models.RoleBuyer)
	product := testutil.CreateProduct(t, s.db, "Lamp", seller.ID)

	failProductUpdates(t, s.db)

	w := s.json(t, http.MethodPost, "/reviews", map[string]interface{}{"product_id": product.ID, "grade": 5}, buyerToken)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Internal server error", errorDetail(t, w))

	var count int64
	require.NoError(t, s.db.Model(&models.Review{}).Count(&count).Error)
	assert.Zero(t, count)
	assert.Zero(t, productRating(t, s, product.ID))
}

func TestDeleteReviewRollsBackWhenRatingFails(t *testing.T) {
	s := newTestServer(t)
	seller, _ := s.user(t, "seller@example.com", models.RoleSeller)
	_, buyerToken := s.user(t, "buyer@example.com", models.RoleBuyer)
	_, adminToken := s.user(t, "admin@example.com", models.RoleAdmin)
	product := testutil.CreateProduct(t, s.db, "Lamp", seller.ID)

	w := s.json(t, http.MethodPost, "/reviews", map[string]interface{}{"product_id": product.ID, "grade": 4}, buyerToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	review := decode[types.ReviewResponse](t, w)

	failProductUpdates(t, s.db)

	w = s.json(t, http.MethodDelete, fmt.Sprintf("/reviews/%d", review.ID), nil, adminToken)
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var stored models.Review
	require.NoError(t, s.db.First(&stored, review.ID).Error)
	assert.True(t, stored.IsActive)
	assert.InDelta(t, 4.0, productRating(t, s, product.ID), 1e-9)
}
