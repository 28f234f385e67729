//go:build integration
// +build integration

package catalog

import (
	"testing"

	"github.com/marketly-dev/marketly/internal/models"
	"github.com/marketly-dev/marketly/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFullTextSearch(t *testing.T) {
	conn := testutil.NewPostgresDB(t)
	seller := testutil.CreateUser(t, conn, "seller@example.com", models.RoleSeller)

	red := testutil.CreateProduct(t, conn, "Red leather wallet", seller.ID, testutil.WithDescription("Slim bifold"))
	testutil.CreateProduct(t, conn, "Blue cotton wallet", seller.ID, testutil.WithDescription("Washable"))
	belt := testutil.CreateProduct(t, conn, "Belt", seller.ID, testutil.WithDescription("Full grain leather"), testutil.WithStock(0))
	satchel := testutil.CreateProduct(t, conn, "Leather satchel", seller.ID, testutil.WithDescription("Leather strap, leather lining"))

	t.Run("hard predicate", func(t *testing.T) {
		page, err := CountAndFetch(conn, Filters{Search: "cotton"}, 1, 20)
		require.NoError(t, err)
		require.Len(t, page.Items, 1)
		assert.EqualValues(t, 1, page.Total)
		assert.Equal(t, "Blue cotton wallet", page.Items[0].Name)
	})

	t.Run("rank order", func(t *testing.T) {
		page, err := CountAndFetch(conn, Filters{Search: "leather"}, 1, 20)
		require.NoError(t, err)
		assert.EqualValues(t, 3, page.Total)
		require.Len(t, page.Items, 3)
		// title matches outrank description-only matches
		assert.Equal(t, satchel.ID, page.Items[0].ID)
		assert.Equal(t, red.ID, page.Items[1].ID)
		assert.Equal(t, belt.ID, page.Items[2].ID)
	})

	t.Run("total respects search and filters", func(t *testing.T) {
		inStock := true
		page, err := CountAndFetch(conn, Filters{Search: "leather", InStock: &inStock}, 1, 1)
		require.NoError(t, err)
		assert.EqualValues(t, 2, page.Total)
		assert.Len(t, page.Items, 1)
	})

	t.Run("blank search lists everything", func(t *testing.T) {
		page, err := CountAndFetch(conn, Filters{Search: " \t "}, 1, 20)
		require.NoError(t, err)
		assert.EqualValues(t, 4, page.Total)
		assert.Equal(t, red.ID, page.Items[0].ID)
	})
}
