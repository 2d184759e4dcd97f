package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/storeratings/ratehub/db"
	"github.com/storeratings/ratehub/internal/apperr"
	"github.com/storeratings/ratehub/internal/authz"
	"github.com/storeratings/ratehub/internal/logger"
	"github.com/storeratings/ratehub/internal/middleware"
	"github.com/storeratings/ratehub/internal/ratings"
	"github.com/storeratings/ratehub/internal/stores"
)

type SubmitRatingRequest struct {
	StoreID uint   `json:"store_id" binding:"required"`
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment" binding:"omitempty,max=1000"`
}

type UpdateRatingRequest struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment" binding:"omitempty,max=1000"`
}

func SubmitRating(ctx *gin.Context) {
	currentUser, err := middleware.CurrentUser(ctx)

	if err != nil {
		respondError(ctx, apperr.MissingToken())
		return
	}

	var req SubmitRatingRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rating, err := ratings.NewLedger(db.DB).Submit(currentUser.ID, req.StoreID, req.Rating, req.Comment)

	if err != nil {
		respondError(ctx, err)
		return
	}

	logger.Info("rating submitted", "rating_id", rating.ID, "store_id", req.StoreID)

	ctx.JSON(http.StatusCreated, gin.H{
		"message":   "Rating submitted successfully",
		"rating_id": rating.ID,
	})
}

func UpdateRating(ctx *gin.Context) {
	currentUser, err := middleware.CurrentUser(ctx)

	if err != nil {
		respondError(ctx, apperr.MissingToken())
		return
	}

	ratingID, err := parseIDParam(ctx, "id")

	if err != nil {
		respondError(ctx, err)
		return
	}

	var req UpdateRatingRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := ratings.NewLedger(db.DB).Update(ratingID, currentUser.ID, req.Rating, req.Comment); err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Rating updated successfully"})
}

func DeleteRating(ctx *gin.Context) {
	currentUser, err := middleware.CurrentUser(ctx)

	if err != nil {
		respondError(ctx, apperr.MissingToken())
		return
	}

	ratingID, err := parseIDParam(ctx, "id")

	if err != nil {
		respondError(ctx, err)
		return
	}

	if err := ratings.NewLedger(db.DB).Delete(ratingID, currentUser.ID); err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Rating deleted successfully"})
}

// MyStoreRating returns the caller's own rating for a store, null when the
// caller has not rated it.
func MyStoreRating(ctx *gin.Context) {
	currentUser, err := middleware.CurrentUser(ctx)

	if err != nil {
		respondError(ctx, apperr.MissingToken())
		return
	}

	storeID, err := parseIDParam(ctx, "id")

	if err != nil {
		respondError(ctx, err)
		return
	}

	rating, err := ratings.NewLedger(db.DB).ForUserAndStore(currentUser.ID, storeID)

	if err != nil {
		respondError(ctx, err)
		return
	}

	if rating == nil {
		ctx.JSON(http.StatusOK, gin.H{"rating": nil})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"rating": gin.H{
		"id":         rating.ID,
		"rating":     rating.Score,
		"comment":    rating.Comment,
		"created_at": rating.CreatedAt,
		"updated_at": rating.UpdatedAt,
	}})
}

// StoreRatings lists every rating for a store the caller owns. The role
// allow-list is enforced by middleware; the ownership rule needs the resolved
// owner and is applied here through the same gate.
func StoreRatings(ctx *gin.Context) {
	currentUser, err := middleware.CurrentUser(ctx)

	if err != nil {
		respondError(ctx, apperr.MissingToken())
		return
	}

	storeID, err := parseIDParam(ctx, "id")

	if err != nil {
		respondError(ctx, err)
		return
	}

	ownerID, err := stores.NewResolver(db.DB).OwnerOf(storeID)

	if err != nil {
		respondError(ctx, err)
		return
	}

	caller := authz.Caller{ID: currentUser.ID, Role: currentUser.Role}
	resource := &authz.Resource{StoreOwnerID: ownerID}

	if err := authz.Authorize(caller, authz.PermViewStoreRatings, resource); err != nil {
		respondError(ctx, err)
		return
	}

	all, err := ratings.NewLedger(db.DB).ForStore(storeID, 0)

	if err != nil {
		respondError(ctx, err)
		return
	}

	if all == nil {
		all = []ratings.StoreRating{}
	}

	ctx.JSON(http.StatusOK, gin.H{"ratings": all})
}
