package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/marketly-dev/marketly/internal/apperr"
	"github.com/marketly-dev/marketly/internal/models"
	"github.com/marketly-dev/marketly/internal/repository"
	"github.com/marketly-dev/marketly/internal/services"
	"github.com/marketly-dev/marketly/internal/types"
	"github.com/marketly-dev/marketly/internal/utils"
	"gorm.io/gorm"
)

type AddCartItemRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  *int `json:"quantity"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" binding:"required,min=1"`
}

func checkStock(product *models.Product, quantity int) error {
	if quantity > product.Stock {
		return apperr.Validation("Not enough stock for this product")
	}
	return nil
}

func cartLineResponse(line *models.CartItem) types.CartItemResponse {
	return types.CartItemResponse{
		ID:       line.ID,
		Quantity: line.Quantity,
		Product:  types.NewProductResponse(line.Product),
	}
}

func GetCart(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		utils.RespondError(ctx, apperr.Unauthenticated("Not authenticated"))
		return
	}

	lines, err := repository.ListCartLines(conn(ctx), userID)

	if err != nil {
		utils.RespondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, types.NewCartResponse(userID, lines))
}

// AddCartItem adds quantity (default 1) to the caller's line for the product, creating
// the line if needed.
func AddCartItem(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		utils.RespondError(ctx, apperr.Unauthenticated("Not authenticated"))
		return
	}

	var body AddCartItemRequest

	if err := ctx.ShouldBindJSON(&body); err != nil {
		utils.RespondError(ctx, invalidRequest(err))
		return
	}

	quantity := 1
	if body.Quantity != nil {
		quantity = *body.Quantity
	}

	if quantity < 1 {
		utils.RespondError(ctx, apperr.Validation("quantity must be at least 1"))
		return
	}

	var line *models.CartItem

	err = conn(ctx).Transaction(func(tx *gorm.DB) error {
		product, err := services.EnsureProductAvailable(tx, body.ProductID)
		if err != nil {
			return err
		}

		line, err = services.FindCartLine(tx, userID, body.ProductID)
		if err != nil {
			return err
		}

		if line == nil {
			if err := checkStock(product, quantity); err != nil {
				return err
			}
			line = &models.CartItem{UserID: userID, ProductID: product.ID, Quantity: quantity}
			if err := tx.Create(line).Error; err != nil {
				return conflictOnDuplicate(err, "Product is already in the cart")
			}
			line.Product = product
			return nil
		}

		if err := checkStock(product, line.Quantity+quantity); err != nil {
			return err
		}
		line.Quantity += quantity
		line.Product = product

		return tx.Model(&models.CartItem{}).Where("id = ?", line.ID).Update("quantity", line.Quantity).Error
	})

	if err != nil {
		utils.RespondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, cartLineResponse(line))
}

func UpdateCartItem(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		utils.RespondError(ctx, apperr.Unauthenticated("Not authenticated"))
		return
	}

	productID, err := utils.GetIDParam(ctx, "product_id")

	if err != nil {
		utils.RespondError(ctx, err)
		return
	}

	var body UpdateCartItemRequest

	if err := ctx.ShouldBindJSON(&body); err != nil {
		utils.RespondError(ctx, invalidRequest(err))
		return
	}

	var line *models.CartItem

	err = conn(ctx).Transaction(func(tx *gorm.DB) error {
		product, err := services.EnsureProductAvailable(tx, productID)
		if err != nil {
			return err
		}

		line, err = services.FindCartLine(tx, userID, productID)
		if err != nil {
			return err
		}
		if line == nil {
			return apperr.NotFound("Cart item not found")
		}

		if err := checkStock(product, body.Quantity); err != nil {
			return err
		}
		line.Quantity = body.Quantity
		line.Product = product

		return tx.Model(&models.CartItem{}).Where("id = ?", line.ID).Update("quantity", body.Quantity).Error
	})

	if err != nil {
		utils.RespondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, cartLineResponse(line))
}

func RemoveCartItem(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		utils.RespondError(ctx, apperr.Unauthenticated("Not authenticated"))
		return
	}

	productID, err := utils.GetIDParam(ctx, "product_id")

	if err != nil {
		utils.RespondError(ctx, err)
		return
	}

	result := conn(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&models.CartItem{})

	if result.Error != nil {
		utils.RespondError(ctx, result.Error)
		return
	}

	if result.RowsAffected == 0 {
		utils.RespondError(ctx, apperr.NotFound("Cart item not found"))
		return
	}

	ctx.Status(http.StatusNoContent)
}

func ClearCart(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		utils.RespondError(ctx, apperr.Unauthenticated("Not authenticated"))
		return
	}

	if err := conn(ctx).Where("user_id = ?", userID).Delete(&models.CartItem{}).Error; err != nil {
		utils.RespondError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}
