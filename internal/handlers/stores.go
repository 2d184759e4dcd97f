package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/storeratings/ratehub/db"
	"github.com/storeratings/ratehub/internal/apperr"
	"github.com/storeratings/ratehub/internal/middleware"
	"github.com/storeratings/ratehub/internal/ratings"
	"github.com/storeratings/ratehub/internal/stores"
)

func parseIDParam(ctx *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(ctx.Param(name), 10, 32)

	if err != nil {
		return 0, apperr.Validation(name, "must be a positive integer")
	}

	return uint(id), nil
}

func listParamsFrom(ctx *gin.Context) stores.ListParams {
	return stores.ListParams{
		Search:    ctx.Query("search"),
		Name:      ctx.Query("name"),
		Address:   ctx.Query("address"),
		SortBy:    ctx.DefaultQuery("sortBy", "name"),
		SortOrder: ctx.DefaultQuery("sortOrder", "asc"),
	}
}

// ListStores returns every store with its aggregate score and the caller's
// own rating.
func ListStores(ctx *gin.Context) {
	currentUser, err := middleware.CurrentUser(ctx)

	if err != nil {
		respondError(ctx, apperr.MissingToken())
		return
	}

	summaries, err := stores.NewResolver(db.DB).List(currentUser.ID, listParamsFrom(ctx))

	if err != nil {
		respondError(ctx, err)
		return
	}

	if summaries == nil {
		summaries = []stores.Summary{}
	}

	ctx.JSON(http.StatusOK, gin.H{"stores": summaries})
}

// GetStore returns one store with its aggregates and the ten newest ratings.
func GetStore(ctx *gin.Context) {
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

	summary, err := stores.NewResolver(db.DB).Get(currentUser.ID, storeID)

	if err != nil {
		respondError(ctx, err)
		return
	}

	recent, err := ratings.NewLedger(db.DB).ForStore(storeID, 10)

	if err != nil {
		respondError(ctx, err)
		return
	}

	if recent == nil {
		recent = []ratings.StoreRating{}
	}

	ctx.JSON(http.StatusOK, gin.H{
		"store":          summary,
		"recent_ratings": recent,
	})
}

// OwnerStore returns the calling store owner's store with every rating it has
// received.
func OwnerStore(ctx *gin.Context) {
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

	ledger := ratings.NewLedger(db.DB)

	all, err := ledger.ForStore(summary.ID, 0)

	if err != nil {
		respondError(ctx, err)
		return
	}

	if all == nil {
		all = []ratings.StoreRating{}
	}

	// Recomputed from the current rows, so the owner view never shows a
	// drifted average.
	agg, err := ledger.AggregateFor(summary.ID)

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"store":     summary,
		"aggregate": agg,
		"ratings":   all,
	})
}
