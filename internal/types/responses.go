package types

import (
	"time"

	"github.com/marketly-dev/marketly/internal/models"
	"github.com/shopspring/decimal"
)

type UserResponse struct {
	ID       uint        `json:"id"`
	Email    string      `json:"email"`
	Role     models.Role `json:"role"`
	IsActive bool        `json:"is_active"`
}

type CategoryResponse struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	ParentID *uint  `json:"parent_id"`
	IsActive bool   `json:"is_active"`
}

type ProductResponse struct {
	ID          uint            `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Rating      float64         `json:"rating"`
	ImageURL    *string         `json:"image_url"`
	Stock       int             `json:"stock"`
	CategoryID  *uint           `json:"category_id"`
	SellerID    uint            `json:"seller_id"`
	IsActive    bool            `json:"is_active"`
}

type ProductListResponse struct {
	Items    []ProductResponse `json:"items"`
	Total    int64             `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
}

type ReviewResponse struct {
	ID          uint      `json:"id"`
	UserID      uint      `json:"user_id"`
	ProductID   uint      `json:"product_id"`
	Comment     *string   `json:"comment"`
	CommentDate time.Time `json:"comment_date"`
	Grade       int       `json:"grade"`
	IsActive    bool      `json:"is_active"`
}

type CartItemResponse struct {
	ID       uint            `json:"id"`
	Quantity int             `json:"quantity"`
	Product  ProductResponse `json:"product"`
}

type CartResponse struct {
	UserID        uint               `json:"user_id"`
	Items         []CartItemResponse `json:"items"`
	TotalQuantity int                `json:"total_quantity"`
	TotalPrice    decimal.Decimal    `json:"total_price"`
}

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type"`
}

func NewUserResponse(user *models.User) UserResponse {
	return UserResponse{
		ID:       user.ID,
		Email:    user.Email,
		Role:     user.Role,
		IsActive: user.IsActive,
	}
}

func NewCategoryResponse(category *models.Category) CategoryResponse {
	return CategoryResponse{
		ID:       category.ID,
		Name:     category.Name,
		ParentID: category.ParentID,
		IsActive: category.IsActive,
	}
}

func NewCategoryResponses(categories []models.Category) []CategoryResponse {
	response := make([]CategoryResponse, 0, len(categories))
	for i := range categories {
		response = append(response, NewCategoryResponse(&categories[i]))
	}
	return response
}

func NewProductResponse(product *models.Product) ProductResponse {
	return ProductResponse{
		ID:          product.ID,
		Name:        product.Name,
		Description: product.Description,
		Price:       product.Price,
		Rating:      product.Rating,
		ImageURL:    product.ImageURL,
		Stock:       product.Stock,
		CategoryID:  product.CategoryID,
		SellerID:    product.SellerID,
		IsActive:    product.IsActive,
	}
}

func NewProductResponses(products []models.Product) []ProductResponse {
	response := make([]ProductResponse, 0, len(products))
	for i := range products {
		response = append(response, NewProductResponse(&products[i]))
	}
	return response
}

func NewReviewResponse(review *models.Review) ReviewResponse {
	return ReviewResponse{
		ID:          review.ID,
		UserID:      review.UserID,
		ProductID:   review.ProductID,
		Comment:     review.Comment,
		CommentDate: review.CommentDate,
		Grade:       review.Grade,
		IsActive:    review.IsActive,
	}
}

func NewReviewResponses(reviews []models.Review) []ReviewResponse {
	response := make([]ReviewResponse, 0, len(reviews))
	for i := range reviews {
		response = append(response, NewReviewResponse(&reviews[i]))
	}
	return response
}

// NewCartResponse totals the lines; every line must have its Product loaded.
func NewCartResponse(userID uint, lines []models.CartItem) CartResponse {
	cart := CartResponse{
		UserID:     userID,
		Items:      make([]CartItemResponse, 0, len(lines)),
		TotalPrice: decimal.Zero,
	}

	for _, line := range lines {
		cart.Items = append(cart.Items, CartItemResponse{
			ID:       line.ID,
			Quantity: line.Quantity,
			Product:  NewProductResponse(line.Product),
		})
		cart.TotalQuantity += line.Quantity
		cart.TotalPrice = cart.TotalPrice.Add(line.Product.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}

	return cart
}
