package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/storeratings/ratehub/internal/apperr"
	"github.com/storeratings/ratehub/internal/logger"
)

func respondError(ctx *gin.Context, err error) {
	var apiErr *apperr.Error

	if errors.As(err, &apiErr) {
		if apiErr.Status >= http.StatusInternalServerError {
			logger.Error("request failed", "code", apiErr.Code, "error", apiErr)
		}

		ctx.JSON(apiErr.Status, gin.H{"error": apiErr.Public()})
		return
	}

	logger.Error("unexpected error", "error", err)
	ctx.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}
