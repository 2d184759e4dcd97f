package ratings

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/storeratings/ratehub/internal/apperr"
	"github.com/storeratings/ratehub/internal/models"
)

// Ledger owns the one-rating-per-(user, store) invariant and the on-demand
// aggregate computation.
type Ledger struct {
	db *gorm.DB
}

func NewLedger(db *gorm.DB) *Ledger {
	return &Ledger{db: db}
}

// Submit records a new rating. The composite unique index on
// (user_id, store_id) is the authoritative duplicate check: a violation raised
// by the insert itself is translated to DuplicateRating, which closes the race
// between concurrent submissions for the same pair.
func (l *Ledger) Submit(userID, storeID uint, score int, comment string) (*models.Rating, error) {
	if score < 1 || score > 5 {
		return nil, apperr.Validation("rating", "must be between 1 and 5")
	}

	var store models.Store

	if err := l.db.Select("id").First(&store, storeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("store not found")
		}
		return nil, err
	}

	rating := models.Rating{
		UserID:  userID,
		StoreID: storeID,
		Score:   score,
		Comment: comment,
	}

	if err := l.db.Create(&rating).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.DuplicateRating()
		}
		return nil, err
	}

	return &rating, nil
}

// Update rewrites the caller's own rating. A rating that does not exist and a
// rating owned by someone else are indistinguishable to the caller.
func (l *Ledger) Update(ratingID, callerID uint, score int, comment string) error {
	if score < 1 || score > 5 {
		return apperr.Validation("rating", "must be between 1 and 5")
	}

	var rating models.Rating

	err := l.db.Where("id = ? AND user_id = ?", ratingID, callerID).First(&rating).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("rating not found")
		}
		return err
	}

	updates := map[string]interface{}{
		"score":   score,
		"comment": comment,
	}

	return l.db.Model(&rating).Updates(updates).Error
}

// Delete removes the caller's own rating, with the same ownership rule as
// Update.
func (l *Ledger) Delete(ratingID, callerID uint) error {
	result := l.db.Where("id = ? AND user_id = ?", ratingID, callerID).Delete(&models.Rating{})

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return apperr.NotFound("rating not found")
	}

	return nil
}

type Aggregate struct {
	Count   int64   `json:"count"`
	Average float64 `json:"average"`
}

// AggregateFor recomputes count and average from the current rows at read
// time, so the reported average never drifts from the underlying ratings.
// Average is 0 when there are no ratings; rounding is left to display.
func (l *Ledger) AggregateFor(storeID uint) (Aggregate, error) {
	var agg Aggregate

	err := l.db.Model(&models.Rating{}).
		Select("COUNT(*) AS count, COALESCE(AVG(score), 0) AS average").
		Where("store_id = ?", storeID).
		Scan(&agg).Error

	if err != nil {
		return Aggregate{}, err
	}

	return agg, nil
}

type StoreRating struct {
	ID        uint      `json:"id"`
	Score     int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	UserName  string    `json:"user_name"`
	UserRole  string    `json:"user_role"`
}

// ForStore lists a store's ratings, newest first, with the rater's name and
// role.
func (l *Ledger) ForStore(storeID uint, limit int) ([]StoreRating, error) {
	query := l.db.Table("ratings").
		Select(`ratings.id, ratings.score, ratings.comment, ratings.created_at, ratings.updated_at,
	users.name AS user_name, users.role AS user_role`).
		Joins("JOIN users ON users.id = ratings.user_id").
		Where("ratings.store_id = ?", storeID).
		Order("ratings.created_at DESC")

	if limit > 0 {
		query = query.Limit(limit)
	}

	var out []StoreRating

	if err := query.Scan(&out).Error; err != nil {
		return nil, err
	}

	return out, nil
}

// ForUserAndStore returns the caller's rating for a store, nil when the
// caller has not rated it.
func (l *Ledger) ForUserAndStore(userID, storeID uint) (*models.Rating, error) {
	var rating models.Rating

	err := l.db.Where("user_id = ? AND store_id = ?", userID, storeID).First(&rating).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &rating, nil
}

type HistoryEntry struct {
	ID           uint      `json:"id"`
	Score        int       `json:"rating"`
	Comment      string    `json:"comment"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	StoreID      uint      `json:"store_id"`
	StoreName    string    `json:"store_name"`
	StoreAddress string    `json:"store_address"`
}

// HistoryFor lists every rating the user has authored, newest first, with the
// rated store's name and address.
func (l *Ledger) HistoryFor(userID uint) ([]HistoryEntry, error) {
	var out []HistoryEntry

	err := l.db.Table("ratings").
		Select(`ratings.id, ratings.score, ratings.comment, ratings.created_at, ratings.updated_at,
	stores.id AS store_id, stores.name AS store_name, stores.address AS store_address`).
		Joins("JOIN stores ON stores.id = ratings.store_id").
		Where("ratings.user_id = ?", userID).
		Order("ratings.created_at DESC").
		Scan(&out).Error

	if err != nil {
		return nil, err
	}

	return out, nil
}
