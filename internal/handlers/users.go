package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/storeratings/ratehub/db"
	"github.com/storeratings/ratehub/internal/apperr"
	"github.com/storeratings/ratehub/internal/middleware"
	"github.com/storeratings/ratehub/internal/models"
	"github.com/storeratings/ratehub/internal/ratings"
	"github.com/storeratings/ratehub/internal/stores"
)

type UpdateProfileRequest struct {
	Name    string `json:"name" binding:"omitempty,min=20,max=60"`
	Address string `json:"address" binding:"omitempty,max=400"`
}

func UpdateProfile(ctx *gin.Context) {
	currentUser, err := middleware.CurrentUser(ctx)

	if err != nil {
		respondError(ctx, apperr.MissingToken())
		return
	}

	var req UpdateProfileRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates := make(map[string]interface{})

	if req.Name != "" {
		updates["name"] = strings.TrimSpace(req.Name)
	}

	if req.Address != "" {
		updates["address"] = strings.TrimSpace(req.Address)
	}

	if len(updates) == 0 {
		respondError(ctx, apperr.Validation("profile", "no valid fields to update"))
		return
	}

	if err := db.DB.Model(&models.User{}).Where("id = ?", currentUser.ID).Updates(updates).Error; err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Profile updated successfully"})
}

// MyRatings returns the caller's rating history with the rated stores.
func MyRatings(ctx *gin.Context) {
	currentUser, err := middleware.CurrentUser(ctx)

	if err != nil {
		respondError(ctx, apperr.MissingToken())
		return
	}

	history, err := ratings.NewLedger(db.DB).HistoryFor(currentUser.ID)

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"ratings": history})
}

// MyStore returns the store registered to the calling store owner.
func MyStore(ctx *gin.Context) {
	currentUser, err := middleware.CurrentUser(ctx)

	if err != nil {
		respondError(ctx, apperr.MissingToken())
		return
	}

	summary, err := stores.NewResolver(db.DB).OwnedBy(currentUser.ID)

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"store": summary})
}
