package handlers

import (
	"errors"
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/storeratings/ratehub/db"
	"github.com/storeratings/ratehub/internal/apperr"
	"github.com/storeratings/ratehub/internal/auth"
	"github.com/storeratings/ratehub/internal/authz"
	"github.com/storeratings/ratehub/internal/logger"
	"github.com/storeratings/ratehub/internal/middleware"
	"github.com/storeratings/ratehub/internal/models"
	"github.com/storeratings/ratehub/internal/types"
)

type RegisterRequest struct {
	Name     string `json:"name" binding:"required,min=20,max=60"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Address  string `json:"address" binding:"required,max=400"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type UpdatePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

var (
	uppercaseRe = regexp.MustCompile(`[A-Z]`)
	specialRe   = regexp.MustCompile(`[!@#$%^&*(),.?":{}|<>]`)
)

func validatePassword(password string) error {
	if len(password) < 8 || len(password) > 16 {
		return apperr.Validation("password", "must be between 8 and 16 characters")
	}

	if !uppercaseRe.MatchString(password) {
		return apperr.Validation("password", "must contain at least one uppercase letter")
	}

	if !specialRe.MatchString(password) {
		return apperr.Validation("password", "must contain at least one special character")
	}

	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func Register(ctx *gin.Context) {
	var req RegisterRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := validatePassword(req.Password); err != nil {
		respondError(ctx, err)
		return
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)

	if err != nil {
		respondError(ctx, err)
		return
	}

	newUser := models.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        normalizeEmail(req.Email),
		PasswordHash: string(passwordHash),
		Address:      strings.TrimSpace(req.Address),
		Role:         string(authz.RoleUser),
	}

	// The unique index on email is the authoritative duplicate check.
	if err := db.DB.Create(&newUser).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			respondError(ctx, apperr.DuplicateEmail())
			return
		}
		respondError(ctx, err)
		return
	}

	logger.Info("user registered", "user_id", newUser.ID)

	ctx.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"user_id": newUser.ID,
	})
}

func Login(ctx *gin.Context) {
	var req LoginRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User

	err := db.DB.Where("email = ?", normalizeEmail(req.Email)).First(&user).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		respondError(ctx, err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	token, expiresAt, err := auth.Issue(user.ID, user.Email, user.Role)

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"token":      token,
		"expires_at": expiresAt,
		"user": types.UserResponse{
			ID:      user.ID,
			Name:    user.Name,
			Email:   user.Email,
			Address: user.Address,
			Role:    user.Role,
		},
	})
}

// Logout is a stateless acknowledgment; the client discards the token.
func Logout(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"message": "Logout successful"})
}

func Profile(ctx *gin.Context) {
	currentUser, err := middleware.CurrentUser(ctx)

	if err != nil {
		respondError(ctx, apperr.MissingToken())
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"user": types.UserResponse{
			ID:      currentUser.ID,
			Name:    currentUser.Name,
			Email:   currentUser.Email,
			Address: currentUser.Address,
			Role:    string(currentUser.Role),
		},
	})
}

func UpdatePassword(ctx *gin.Context) {
	currentUser, err := middleware.CurrentUser(ctx)

	if err != nil {
		respondError(ctx, apperr.MissingToken())
		return
	}

	var req UpdatePasswordRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := validatePassword(req.NewPassword); err != nil {
		respondError(ctx, err)
		return
	}

	var user models.User

	if err := db.DB.First(&user, currentUser.ID).Error; err != nil {
		respondError(ctx, err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		respondError(ctx, apperr.Validation("current_password", "is incorrect"))
		return
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)

	if err != nil {
		respondError(ctx, err)
		return
	}

	if err := db.DB.Model(&user).Update("password_hash", string(passwordHash)).Error; err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Password updated successfully"})
}
