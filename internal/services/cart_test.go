package services_test

import (
	"testing"

	"github.com/marketly-dev/marketly/internal/apperr"
	"github.com/marketly-dev/marketly/internal/models"
	"github.com/marketly-dev/marketly/internal/services"
	"github.com/marketly-dev/marketly/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureProductAvailable(t *testing.T) {
	tx := testutil.NewTestDB(t)

	seller := testutil.CreateUser(t, tx, "seller@example.com", models.RoleSeller)
	active := testutil.CreateProduct(t, tx, "Mug", seller.ID)
	retired := testutil.CreateProduct(t, tx, "Old mug", seller.ID)
	testutil.Deactivate(t, tx, retired)

	product, err := services.EnsureProductAvailable(tx, active.ID)
	require.NoError(t, err)
	assert.Equal(t, "Mug", product.Name)

	for _, id := range []uint{retired.ID, 999} {
		_, err := services.EnsureProductAvailable(tx, id)
		require.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
		assert.Equal(t, "Product not found or inactive", err.Error())
	}
}

func TestFindCartLine(t *testing.T) {
	tx := testutil.NewTestDB(t)

	seller := testutil.CreateUser(t, tx, "seller@example.com", models.RoleSeller)
	buyer := testutil.CreateUser(t, tx, "buyer@example.com", models.RoleBuyer)
	other := testutil.CreateUser(t, tx, "other@example.com", models.RoleBuyer)
	product := testutil.CreateProduct(t, tx, "Mug", seller.ID)

	require.NoError(t, tx.Create(&models.CartItem{UserID: buyer.ID, ProductID: product.ID, Quantity: 2}).Error)

	line, err := services.FindCartLine(tx, buyer.ID, product.ID)
	require.NoError(t, err)
	require.NotNil(t, line)
	assert.Equal(t, 2, line.Quantity)
	require.NotNil(t, line.Product)
	assert.Equal(t, "Mug", line.Product.Name)

	line, err = services.FindCartLine(tx, other.ID, product.ID)
	require.NoError(t, err)
	assert.Nil(t, line)
}
