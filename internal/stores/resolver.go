package stores

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/storeratings/ratehub/internal/apperr"
	"github.com/storeratings/ratehub/internal/models"
)

// Resolver answers ownership questions and serves the store read side
// (listing, search, per-store aggregates).
type Resolver struct {
	db *gorm.DB
}

func NewResolver(db *gorm.DB) *Resolver {
	return &Resolver{db: db}
}

// IsOwner reports whether userID is the registered owner of storeID. A store
// with no owner denies ownership to everyone.
func (r *Resolver) IsOwner(userID, storeID uint) (bool, error) {
	var count int64

	err := r.db.Model(&models.Store{}).
		Where("id = ? AND owner_id = ?", storeID, userID).
		Count(&count).Error

	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// OwnerOf returns the registered owner of a store, nil when unowned.
func (r *Resolver) OwnerOf(storeID uint) (*uint, error) {
	var store models.Store

	if err := r.db.Select("id", "owner_id").First(&store, storeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("store not found")
		}
		return nil, err
	}

	return store.OwnerID, nil
}

type Summary struct {
	ID            uint      `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Address       string    `json:"address"`
	CreatedAt     time.Time `json:"created_at"`
	OwnerName     string    `json:"owner_name"`
	AverageRating float64   `json:"average_rating"`
	TotalRatings  int64     `json:"total_ratings"`
	UserRating    *int      `json:"user_rating,omitempty"`
}

type ListParams struct {
	Search    string
	Name      string
	Address   string
	SortBy    string
	SortOrder string
}

// Sortable fields are a fixed allow-list mapped to safe column expressions;
// caller-supplied identifiers are never interpolated into a query.
var sortColumns = map[string]string{
	"name":           "stores.name",
	"email":          "stores.email",
	"address":        "stores.address",
	"average_rating": "average_rating",
	"created_at":     "stores.created_at",
}

func orderClause(sortBy, sortOrder string) string {
	column, ok := sortColumns[sortBy]

	if !ok {
		column = "stores.name"
	}

	direction := "ASC"

	if sortOrder == "desc" || sortOrder == "DESC" {
		direction = "DESC"
	}

	return column + " " + direction
}

const summaryColumns = `stores.id, stores.name, stores.email, stores.address, stores.created_at,
	COALESCE(owners.name, '') AS owner_name,
	COALESCE(AVG(ratings.score), 0) AS average_rating,
	COUNT(ratings.id) AS total_ratings`

const summaryGroup = "stores.id, stores.name, stores.email, stores.address, stores.created_at, owners.name"

// List returns store summaries with their aggregates and the caller's own
// rating for each store.
func (r *Resolver) List(callerID uint, p ListParams) ([]Summary, error) {
	query := r.db.Table("stores").
		Select(summaryColumns+`,
	(SELECT r2.score FROM ratings r2 WHERE r2.user_id = ? AND r2.store_id = stores.id LIMIT 1) AS user_rating`, callerID).
		Joins("LEFT JOIN ratings ON ratings.store_id = stores.id").
		Joins("LEFT JOIN users owners ON owners.id = stores.owner_id")

	if p.Search != "" {
		pattern := "%" + p.Search + "%"
		query = query.Where("stores.name LIKE ? OR stores.address LIKE ?", pattern, pattern)
	}

	if p.Name != "" {
		query = query.Where("stores.name LIKE ?", "%"+p.Name+"%")
	}

	if p.Address != "" {
		query = query.Where("stores.address LIKE ?", "%"+p.Address+"%")
	}

	var summaries []Summary

	err := query.Group(summaryGroup).
		Order(orderClause(p.SortBy, p.SortOrder)).
		Scan(&summaries).Error

	if err != nil {
		return nil, err
	}

	return summaries, nil
}

// Get returns a single store summary with the caller's own rating.
func (r *Resolver) Get(callerID, storeID uint) (*Summary, error) {
	var summary Summary

	err := r.db.Table("stores").
		Select(summaryColumns+`,
	(SELECT r2.score FROM ratings r2 WHERE r2.user_id = ? AND r2.store_id = stores.id LIMIT 1) AS user_rating`, callerID).
		Joins("LEFT JOIN ratings ON ratings.store_id = stores.id").
		Joins("LEFT JOIN users owners ON owners.id = stores.owner_id").
		Where("stores.id = ?", storeID).
		Group(summaryGroup).
		Scan(&summary).Error

	if err != nil {
		return nil, err
	}

	if summary.ID == 0 {
		return nil, apperr.NotFound("store not found")
	}

	return &summary, nil
}

// OwnedBy returns the summary of the store registered to userID.
func (r *Resolver) OwnedBy(userID uint) (*Summary, error) {
	var summary Summary

	err := r.db.Table("stores").
		Select(summaryColumns).
		Joins("LEFT JOIN ratings ON ratings.store_id = stores.id").
		Joins("LEFT JOIN users owners ON owners.id = stores.owner_id").
		Where("stores.owner_id = ?", userID).
		Group(summaryGroup).
		Scan(&summary).Error

	if err != nil {
		return nil, err
	}

	if summary.ID == 0 {
		return nil, apperr.NotFound("no store found for this user")
	}

	return &summary, nil
}

// AdminList returns paginated store summaries for the admin listing, along
// with the total row count.
func (r *Resolver) AdminList(p ListParams, page, limit int) ([]Summary, int64, error) {
	if page < 1 {
		page = 1
	}

	if limit < 1 || limit > 100 {
		limit = 20
	}

	base := r.db.Model(&models.Store{})

	if p.Search != "" {
		pattern := "%" + p.Search + "%"
		base = base.Where("stores.name LIKE ? OR stores.email LIKE ? OR stores.address LIKE ?", pattern, pattern, pattern)
	}

	var total int64

	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := r.db.Table("stores").
		Select(summaryColumns).
		Joins("LEFT JOIN ratings ON ratings.store_id = stores.id").
		Joins("LEFT JOIN users owners ON owners.id = stores.owner_id")

	if p.Search != "" {
		pattern := "%" + p.Search + "%"
		query = query.Where("stores.name LIKE ? OR stores.email LIKE ? OR stores.address LIKE ?", pattern, pattern, pattern)
	}

	var summaries []Summary

	err := query.Group(summaryGroup).
		Order(orderClause(p.SortBy, p.SortOrder)).
		Limit(limit).
		Offset((page - 1) * limit).
		Scan(&summaries).Error

	if err != nil {
		return nil, 0, err
	}

	return summaries, total, nil
}
