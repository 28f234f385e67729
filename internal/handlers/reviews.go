package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/marketly-dev/marketly/internal/apperr"
	"github.com/marketly-dev/marketly/internal/models"
	"github.com/marketly-dev/marketly/internal/repository"
	"github.com/marketly-dev/marketly/internal/services"
	"github.com/marketly-dev/marketly/internal/types"
	"github.com/marketly-dev/marketly/internal/utils"
	"gorm.io/gorm"
)

type CreateReviewRequest struct {
	ProductID uint    `json:"product_id" binding:"required"`
	Comment   *string `json:"comment"`
	Grade     int     `json:"grade" binding:"required,min=1,max=5"`
}

const duplicateReviewDetail = "You already reviewed this product"

func ListReviews(ctx *gin.Context) {
	reviews, err := repository.ListReviews(conn(ctx), repository.ReviewCriteria{})

	if err != nil {
		utils.RespondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, types.NewReviewResponses(reviews))
}

func ListProductReviews(ctx *gin.Context) {
	productID, err := utils.GetIDParam(ctx, "id")

	if err != nil {
		utils.RespondError(ctx, err)
		return
	}

	reviews, err := repository.ListReviews(conn(ctx), repository.ReviewCriteria{ProductID: &productID})

	if err != nil {
		utils.RespondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, types.NewReviewResponses(reviews))
}

func GetReview(ctx *gin.Context) {
	reviewID, err := utils.GetIDParam(ctx, "id")

	if err != nil {
		utils.RespondError(ctx, err)
		return
	}

	review, err := repository.GetReviewByID(conn(ctx), reviewID, true)

	if err != nil {
		utils.RespondError(ctx, err)
		return
	}

	if review == nil {
		utils.RespondError(ctx, apperr.NotFound("Review not found"))
		return
	}

	ctx.JSON(http.StatusOK, types.NewReviewResponse(review))
}

// CreateReview writes the review and the product's new rating in one transaction. The
// product row lock orders concurrent reviews of the same product.
func CreateReview(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		utils.RespondError(ctx, apperr.Unauthenticated("Not authenticated"))
		return
	}

	var body CreateReviewRequest

	if err := ctx.ShouldBindJSON(&body); err != nil {
		utils.RespondError(ctx, invalidRequest(err))
		return
	}

	review := models.Review{
		UserID:      currentUser.ID,
		ProductID:   body.ProductID,
		Comment:     body.Comment,
		CommentDate: time.Now().UTC(),
		Grade:       body.Grade,
		IsActive:    true,
	}

	err = conn(ctx).Transaction(func(tx *gorm.DB) error {
		product, err := services.LockProduct(tx, body.ProductID)
		if apperr.IsKind(err, apperr.KindNotFound) || (err == nil && !product.IsActive) {
			return apperr.Validation("Product not found or inactive")
		}
		if err != nil {
			return err
		}

		existing, err := repository.FindActiveReview(tx, currentUser.ID, body.ProductID)
		if err != nil {
			return err
		}
		if existing != nil {
			return apperr.Conflict(duplicateReviewDetail)
		}

		if err := tx.Create(&review).Error; err != nil {
			return conflictOnDuplicate(err, duplicateReviewDetail)
		}

		_, err = services.RecomputeRating(tx, body.ProductID)
		return err
	})

	if err != nil {
		utils.RespondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, types.NewReviewResponse(&review))
}

func DeleteReview(ctx *gin.Context) {
	reviewID, err := utils.GetIDParam(ctx, "id")

	if err != nil {
		utils.RespondError(ctx, err)
		return
	}

	notFound := apperr.NotFound("Review not found or inactive")

	err = conn(ctx).Transaction(func(tx *gorm.DB) error {
		review, err := repository.GetReviewByID(tx, reviewID, true)
		if err != nil {
			return err
		}
		if review == nil {
			return notFound
		}

		if _, err := services.LockProduct(tx, review.ProductID); err != nil {
			return err
		}

		// a concurrent delete may have won the lock
		result := tx.Model(&models.Review{}).
			Where("id = ? AND is_active = ?", reviewID, true).
			Update("is_active", false)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return notFound
		}

		_, err = services.RecomputeRating(tx, review.ProductID)
		return err
	})

	if err != nil {
		utils.RespondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Review deleted"})
}
