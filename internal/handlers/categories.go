package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/marketly-dev/marketly/internal/apperr"
	"github.com/marketly-dev/marketly/internal/models"
	"github.com/marketly-dev/marketly/internal/repository"
	"github.com/marketly-dev/marketly/internal/types"
	"github.com/marketly-dev/marketly/internal/utils"
	"gorm.io/gorm"
)

type CategoryRequest struct {
	Name     string `json:"name" binding:"required,min=3,max=50"`
	ParentID *uint  `json:"parent_id"`
}

func ListCategories(ctx *gin.Context) {
	categories, err := repository.ListCategories(conn(ctx))

	if err != nil {
		utils.RespondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, types.NewCategoryResponses(categories))
}

func CreateCategory(ctx *gin.Context) {
	var body CategoryRequest

	if err := ctx.ShouldBindJSON(&body); err != nil {
		utils.RespondError(ctx, invalidRequest(err))
		return
	}

	category := models.Category{
		Name:     strings.TrimSpace(body.Name),
		ParentID: body.ParentID,
		IsActive: true,
	}

	err := conn(ctx).Transaction(func(tx *gorm.DB) error {
		if body.ParentID != nil {
			parent, err := repository.GetCategoryByID(tx, *body.ParentID)
			if err != nil {
				return err
			}
			if parent == nil {
				return apperr.Validation("Parent category not found")
			}
		}

		return tx.Create(&category).Error
	})

	if err != nil {
		utils.RespondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, types.NewCategoryResponse(&category))
}

func UpdateCategory(ctx *gin.Context) {
	categoryID, err := utils.GetIDParam(ctx, "id")

	if err != nil {
		utils.RespondError(ctx, err)
		return
	}

	var body CategoryRequest

	if err := ctx.ShouldBindJSON(&body); err != nil {
		utils.RespondError(ctx, invalidRequest(err))
		return
	}

	var category *models.Category

	err = conn(ctx).Transaction(func(tx *gorm.DB) error {
		category, err = repository.GetCategoryByID(tx, categoryID)
		if err != nil {
			return err
		}
		if category == nil {
			return apperr.NotFound("Category not found")
		}

		if body.ParentID != nil {
			if err := validateParent(tx, categoryID, *body.ParentID); err != nil {
				return err
			}
		}

		updates := map[string]interface{}{
			"name":      strings.TrimSpace(body.Name),
			"parent_id": body.ParentID,
		}

		if err := tx.Model(category).Updates(updates).Error; err != nil {
			return err
		}

		return tx.First(category, categoryID).Error
	})

	if err != nil {
		utils.RespondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, types.NewCategoryResponse(category))
}

func DeleteCategory(ctx *gin.Context) {
	categoryID, err := utils.GetIDParam(ctx, "id")

	if err != nil {
		utils.RespondError(ctx, err)
		return
	}

	var category *models.Category

	err = conn(ctx).Transaction(func(tx *gorm.DB) error {
		category, err = repository.GetCategoryByID(tx, categoryID)
		if err != nil {
			return err
		}
		if category == nil {
			return apperr.NotFound("Category not found")
		}

		if err := tx.Model(category).Update("is_active", false).Error; err != nil {
			return err
		}
		category.IsActive = false

		return nil
	})

	if err != nil {
		utils.RespondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, types.NewCategoryResponse(category))
}

// validateParent rejects a parent that is missing, inactive, the category itself or one
// of its descendants.
func validateParent(tx *gorm.DB, categoryID, parentID uint) error {
	parent, err := repository.GetCategoryByID(tx, parentID)
	if err != nil {
		return err
	}
	if parent == nil {
		return apperr.Validation("Parent category not found")
	}
	if parent.ID == categoryID {
		return apperr.Validation("Category can't be its own parent")
	}

	seen := map[uint]bool{parent.ID: true}
	next := parent.ParentID

	for next != nil {
		if *next == categoryID {
			return apperr.Validation("Category can't be moved under its own descendant")
		}
		if seen[*next] {
			return nil
		}
		seen[*next] = true

		var ancestor models.Category
		err := tx.Select("id", "parent_id").Where("id = ?", *next).First(&ancestor).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		next = ancestor.ParentID
	}

	return nil
}
