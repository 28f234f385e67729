// Package testutil provides an in-memory database and fixtures for package tests.
package testutil

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/marketly-dev/marketly/db"
	"github.com/marketly-dev/marketly/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const DefaultPassword = "correct-horse-battery"

// NewTestDB opens a migrated in-memory SQLite database and installs it as db.DB
// for the duration of the test.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(":memory:"), db.Config())
	require.NoError(t, err)

	sqlDB, err := conn.DB()
	require.NoError(t, err)
	// every connection to :memory: is a separate database
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.Migrate(conn))

	previous := db.DB
	db.DB = conn
	t.Cleanup(func() {
		db.DB = previous
		_ = sqlDB.Close()
	})

	return conn
}

func CreateUser(t *testing.T, tx *gorm.DB, email string, role models.Role) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.MinCost)
	require.NoError(t, err)

	user := &models.User{
		Email:          email,
		HashedPassword: string(hash),
		Role:           role,
		IsActive:       true,
	}
	require.NoError(t, tx.Create(user).Error)

	return user
}

func CreateCategory(t *testing.T, tx *gorm.DB, name string, parentID *uint) *models.Category {
	t.Helper()

	category := &models.Category{Name: name, ParentID: parentID, IsActive: true}
	require.NoError(t, tx.Create(category).Error)

	return category
}

type ProductOption func(*models.Product)

func WithCategory(id uint) ProductOption {
	return func(p *models.Product) { p.CategoryID = &id }
}

func WithStock(stock int) ProductOption {
	return func(p *models.Product) { p.Stock = stock }
}

func WithPrice(price string) ProductOption {
	return func(p *models.Product) { p.Price = decimal.RequireFromString(price) }
}

func WithDescription(description string) ProductOption {
	return func(p *models.Product) { p.Description = description }
}

func CreateProduct(t *testing.T, tx *gorm.DB, name string, sellerID uint, opts ...ProductOption) *models.Product {
	t.Helper()

	product := &models.Product{
		Name:     name,
		Price:    decimal.NewFromInt(10),
		Stock:    5,
		IsActive: true,
		SellerID: sellerID,
	}
	for _, opt := range opts {
		opt(product)
	}
	require.NoError(t, tx.Create(product).Error)

	return product
}

// Deactivate flips is_active to false on any soft-deletable model.
func Deactivate(t *testing.T, tx *gorm.DB, model interface{}) {
	t.Helper()

	require.NoError(t, tx.Model(model).Update("is_active", false).Error)
}
