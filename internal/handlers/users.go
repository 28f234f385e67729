package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/marketly-dev/marketly/internal/apperr"
	"github.com/marketly-dev/marketly/internal/auth"
	"github.com/marketly-dev/marketly/internal/models"
	"github.com/marketly-dev/marketly/internal/repository"
	"github.com/marketly-dev/marketly/internal/types"
	"github.com/marketly-dev/marketly/internal/utils"
)

type CreateUserRequest struct {
	Email    string      `json:"email" binding:"required,email"`
	Password string      `json:"password" binding:"required,min=8,max=72"`
	Role     models.Role `json:"role" binding:"omitempty,oneof=buyer seller"`
}

type LoginUserRequest struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" form:"refresh_token"`
}

const (
	emailTakenDetail      = "Email already registered"
	badCredentialsDetail  = "Incorrect email or password"
	badRefreshTokenDetail = "Could not validate refresh token"
	bearerTokenType       = "bearer"
)

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func CreateUser(ctx *gin.Context) {
	var body CreateUserRequest

	if err := ctx.ShouldBindJSON(&body); err != nil {
		utils.RespondError(ctx, invalidRequest(err))
		return
	}

	body.Email = normalizeEmail(body.Email)
	if body.Role == "" {
		body.Role = models.RoleBuyer
	}

	existingUser, err := repository.GetUserByEmail(conn(ctx), body.Email, false)

	if err != nil {
		utils.RespondError(ctx, err)
		return
	}

	if existingUser != nil {
		utils.RespondError(ctx, apperr.Conflict(emailTakenDetail))
		return
	}

	passwordHash, err := auth.HashPassword(body.Password)

	if err != nil {
		utils.RespondError(ctx, err)
		return
	}

	newUser := models.User{
		Email:          body.Email,
		HashedPassword: passwordHash,
		Role:           body.Role,
		IsActive:       true,
	}

	if err := conn(ctx).Create(&newUser).Error; err != nil {
		utils.RespondError(ctx, conflictOnDuplicate(err, emailTakenDetail))
		return
	}

	ctx.JSON(http.StatusCreated, types.NewUserResponse(&newUser))
}

func LoginUser(ctx *gin.Context) {
	var form LoginUserRequest

	if err := ctx.ShouldBind(&form); err != nil {
		utils.RespondError(ctx, invalidRequest(err))
		return
	}

	user, err := repository.GetUserByEmail(conn(ctx), normalizeEmail(form.Username), true)

	if err != nil {
		utils.RespondError(ctx, err)
		return
	}

	if user == nil || !auth.VerifyPassword(form.Password, user.HashedPassword) {
		utils.RespondError(ctx, apperr.Unauthenticated(badCredentialsDetail))
		return
	}

	identity := auth.Identity{Email: user.Email, Role: user.Role, UserID: user.ID}

	accessToken, err := auth.CreateAccessToken(identity)

	if err != nil {
		utils.RespondError(ctx, err)
		return
	}

	refreshToken, err := auth.CreateRefreshToken(identity)

	if err != nil {
		utils.RespondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, types.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    bearerTokenType,
	})
}

// RefreshToken accepts the refresh token from a JSON or form body, or the query string.
func RefreshToken(ctx *gin.Context) {
	var body RefreshTokenRequest

	// an empty body, or one in another format, falls through to the query string
	if ctx.Request.ContentLength != 0 {
		switch ctx.ContentType() {
		case binding.MIMEJSON, binding.MIMEPOSTForm, binding.MIMEMultipartPOSTForm:
			if err := ctx.ShouldBind(&body); err != nil && !errors.Is(err, io.EOF) {
				utils.RespondError(ctx, invalidRequest(err))
				return
			}
		}
	}

	if body.RefreshToken == "" {
		body.RefreshToken = ctx.Query("refresh_token")
	}

	if body.RefreshToken == "" {
		utils.RespondError(ctx, apperr.Validation("refresh_token is required"))
		return
	}

	claims, err := auth.VerifyRefreshToken(body.RefreshToken)

	if err != nil {
		utils.RespondError(ctx, apperr.Wrap(apperr.KindUnauthenticated, badRefreshTokenDetail, err))
		return
	}

	user, err := repository.GetUserByEmail(conn(ctx), claims.Subject, true)

	if err != nil {
		utils.RespondError(ctx, err)
		return
	}

	if user == nil {
		utils.RespondError(ctx, apperr.Unauthenticated(badRefreshTokenDetail))
		return
	}

	accessToken, err := auth.CreateAccessToken(auth.Identity{Email: user.Email, Role: user.Role, UserID: user.ID})

	if err != nil {
		utils.RespondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, types.TokenResponse{
		AccessToken: accessToken,
		TokenType:   bearerTokenType,
	})
}

func Me(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		utils.RespondError(ctx, apperr.Unauthenticated("Not authenticated"))
		return
	}

	ctx.JSON(http.StatusOK, types.NewUserResponse(currentUser))
}
