package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/marketly-dev/marketly/internal/apperr"
	"github.com/marketly-dev/marketly/internal/catalog"
	"github.com/marketly-dev/marketly/internal/models"
	"github.com/marketly-dev/marketly/internal/repository"
	"github.com/marketly-dev/marketly/internal/services"
	"github.com/marketly-dev/marketly/internal/storage"
	"github.com/marketly-dev/marketly/internal/types"
	"github.com/marketly-dev/marketly/internal/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ProductRequest struct {
	Name        string           `json:"name" binding:"required,min=3,max=100"`
	Description string           `json:"description" binding:"max=500"`
	Price       *decimal.Decimal `json:"price" binding:"required"`
	Stock       int              `json:"stock" binding:"min=0"`
	CategoryID  uint             `json:"category_id" binding:"required"`
}

func (r ProductRequest) validate() error {
	if r.Price.IsNegative() {
		return apperr.Validation("price must not be negative")
	}
	return nil
}

func queryDecimal(ctx *gin.Context, name string) (*decimal.Decimal, error) {
	raw := ctx.Query(name)
	if raw == "" {
		return nil, nil
	}

	value, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, apperr.Validation("Invalid " + name)
	}

	return &value, nil
}

func parseFilters(ctx *gin.Context) (catalog.Filters, error) {
	var (
		filters catalog.Filters
		err     error
	)

	if filters.CategoryID, err = utils.QueryUint(ctx, "category_id"); err != nil {
		return filters, err
	}
	if filters.SellerID, err = utils.QueryUint(ctx, "seller_id"); err != nil {
		return filters, err
	}
	if filters.MinPrice, err = queryDecimal(ctx, "min_price"); err != nil {
		return filters, err
	}
	if filters.MaxPrice, err = queryDecimal(ctx, "max_price"); err != nil {
		return filters, err
	}
	if filters.InStock, err = utils.QueryBool(ctx, "in_stock"); err != nil {
		return filters, err
	}
	filters.Search = ctx.Query("search")

	return filters, nil
}

func ListProducts(ctx *gin.Context) {
	filters, err := parseFilters(ctx)

	if err != nil {
		utils.RespondError(ctx, err)
		return
	}

	page, err := utils.QueryInt(ctx, "page", 1)

	if err != nil {
		utils.RespondError(ctx, err)
		return
	}

	pageSize, err := utils.QueryInt(ctx, "page_size", catalog.DefaultPageSize)

	if err != nil {
		utils.RespondError(ctx, err)
		return
	}

	result, err := catalog.CountAndFetch(conn(ctx), filters, page, pageSize)

	if err != nil {
		utils.RespondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, types.ProductListResponse{
		Items:    types.NewProductResponses(result.Items),
		Total:    result.Total,
		Page:     result.Page,
		PageSize: result.PageSize,
	})
}

func GetProduct(ctx *gin.Context) {
	productID, err := utils.GetIDParam(ctx, "id")

	if err != nil {
		utils.RespondError(ctx, err)
		return
	}

	tx := conn(ctx)

	product, err := repository.GetProductByID(tx, productID)

	if err != nil {
		utils.RespondError(ctx, err)
		return
	}

	if product == nil {
		utils.RespondError(ctx, apperr.NotFound("Product not found"))
		return
	}

	if product.CategoryID != nil {
		category, err := repository.GetCategoryByID(tx, *product.CategoryID)

		if err != nil {
			utils.RespondError(ctx, err)
			return
		}

		if category == nil {
			utils.RespondError(ctx, apperr.Validation("Category not found"))
			return
		}
	}

	ctx.JSON(http.StatusOK, types.NewProductResponse(product))
}

func GetProductsByCategory(ctx *gin.Context) {
	categoryID, err := utils.GetIDParam(ctx, "id")

	if err != nil {
		utils.RespondError(ctx, err)
		return
	}

	tx := conn(ctx)

	category, err := repository.GetCategoryByID(tx, categoryID)

	if err != nil {
		utils.RespondError(ctx, err)
		return
	}

	if category == nil {
		utils.RespondError(ctx, apperr.NotFound("Category not found"))
		return
	}

	products, err := repository.ListProducts(tx, repository.ProductCriteria{CategoryID: &categoryID})

	if err != nil {
		utils.RespondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, types.NewProductResponses(products))
}

func ensureCategory(tx *gorm.DB, categoryID uint) error {
	category, err := repository.GetCategoryByID(tx, categoryID)
	if err != nil {
		return err
	}
	if category == nil {
		return apperr.Validation("Category not found or inactive")
	}
	return nil
}

// ownedProduct loads an active product and checks that seller owns it.
func ownedProduct(tx *gorm.DB, productID uint, seller *models.User, notFound, forbidden string) (*models.Product, error) {
	product, err := repository.GetProductByID(tx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apperr.NotFound(notFound)
	}
	if product.SellerID != seller.ID {
		return nil, apperr.Forbidden(forbidden)
	}
	return product, nil
}

func CreateProduct(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		utils.RespondError(ctx, apperr.Unauthenticated("Not authenticated"))
		return
	}

	var body ProductRequest

	if err := ctx.ShouldBindJSON(&body); err != nil {
		utils.RespondError(ctx, invalidRequest(err))
		return
	}

	if err := body.validate(); err != nil {
		utils.RespondError(ctx, err)
		return
	}

	product := models.Product{
		Name:        strings.TrimSpace(body.Name),
		Description: body.Description,
		Price:       *body.Price,
		Stock:       body.Stock,
		CategoryID:  &body.CategoryID,
		SellerID:    currentUser.ID,
		IsActive:    true,
	}

	err = conn(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureCategory(tx, body.CategoryID); err != nil {
			return err
		}

		return tx.Create(&product).Error
	})

	if err != nil {
		utils.RespondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, types.NewProductResponse(&product))
}

func UpdateProduct(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		utils.RespondError(ctx, apperr.Unauthenticated("Not authenticated"))
		return
	}

	productID, err := utils.GetIDParam(ctx, "id")

	if err != nil {
		utils.RespondError(ctx, err)
		return
	}

	var body ProductRequest

	if err := ctx.ShouldBindJSON(&body); err != nil {
		utils.RespondError(ctx, invalidRequest(err))
		return
	}

	if err := body.validate(); err != nil {
		utils.RespondError(ctx, err)
		return
	}

	var product *models.Product

	err = conn(ctx).Transaction(func(tx *gorm.DB) error {
		product, err = ownedProduct(tx, productID, currentUser, "Product not found", "You can only update your own products")
		if err != nil {
			return err
		}

		if err := ensureCategory(tx, body.CategoryID); err != nil {
			return err
		}

		updates := map[string]interface{}{
			"name":        strings.TrimSpace(body.Name),
			"description": body.Description,
			"price":       *body.Price,
			"stock":       body.Stock,
			"category_id": body.CategoryID,
		}

		if err := tx.Model(product).Updates(updates).Error; err != nil {
			return err
		}

		return tx.First(product, productID).Error
	})

	if err != nil {
		utils.RespondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, types.NewProductResponse(product))
}

func DeleteProduct(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		utils.RespondError(ctx, apperr.Unauthenticated("Not authenticated"))
		return
	}

	productID, err := utils.GetIDParam(ctx, "id")

	if err != nil {
		utils.RespondError(ctx, err)
		return
	}

	var product *models.Product

	err = conn(ctx).Transaction(func(tx *gorm.DB) error {
		product, err = ownedProduct(tx, productID, currentUser, "Product not found or inactive", "You can only delete your own products")
		if err != nil {
			return err
		}

		if err := tx.Model(product).Update("is_active", false).Error; err != nil {
			return err
		}
		product.IsActive = false

		return nil
	})

	if err != nil {
		utils.RespondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, types.NewProductResponse(product))
}

const (
	uploadNotFound  = "Product not found"
	uploadForbidden = "You can only update your own products"
)

// UploadProductImage replaces a product's image with the multipart field "image".
func UploadProductImage(store storage.Store) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		currentUser, err := utils.GetCurrentUser(ctx)

		if err != nil {
			utils.RespondError(ctx, apperr.Unauthenticated("Not authenticated"))
			return
		}

		productID, err := utils.GetIDParam(ctx, "id")

		if err != nil {
			utils.RespondError(ctx, err)
			return
		}

		file, err := ctx.FormFile("image")

		if err != nil {
			utils.RespondError(ctx, apperr.Wrap(apperr.KindValidation, "Image file is required", err))
			return
		}

		if _, err := ownedProduct(conn(ctx), productID, currentUser, uploadNotFound, uploadForbidden); err != nil {
			utils.RespondError(ctx, err)
			return
		}

		imageURL, err := services.SaveProductImage(ctx.Request.Context(), store, file)

		if err != nil {
			utils.RespondError(ctx, err)
			return
		}

		var product *models.Product

		// the row lock keeps concurrent uploads from both replacing the same previous image
		err = conn(ctx).Transaction(func(tx *gorm.DB) error {
			locked, err := services.LockProduct(tx, productID)
			if apperr.IsKind(err, apperr.KindNotFound) || (err == nil && !locked.IsActive) {
				return apperr.NotFound(uploadNotFound)
			}
			if err != nil {
				return err
			}
			if locked.SellerID != currentUser.ID {
				return apperr.Forbidden(uploadForbidden)
			}

			if err := tx.Model(&models.Product{}).Where("id = ?", locked.ID).Update("image_url", imageURL).Error; err != nil {
				return err
			}

			product = locked
			return nil
		})

		if err != nil {
			if rmErr := services.RemoveProductImage(ctx.Request.Context(), store, &imageURL); rmErr != nil {
				slog.Warn("failed to remove orphaned product image", "url", imageURL, "error", rmErr)
			}
			utils.RespondError(ctx, err)
			return
		}

		previous := product.ImageURL
		product.ImageURL = &imageURL

		if err := services.RemoveProductImage(ctx.Request.Context(), store, previous); err != nil {
			slog.Warn("failed to remove previous product image", "product_id", product.ID, "url", *previous, "error", err)
		}

		ctx.JSON(http.StatusOK, types.NewProductResponse(product))
	}
}
