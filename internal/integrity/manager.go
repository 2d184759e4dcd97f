package integrity

import (
	"errors"

	"gorm.io/gorm"

	"github.com/storeratings/ratehub/internal/apperr"
	"github.com/storeratings/ratehub/internal/models"
)

// Manager applies the cascade rules for entity deletion. Each delete runs in
// one transaction: the principal row and all dependent cascades commit
// together or not at all. The schema-level constraints (CASCADE, SET NULL)
// remain the backstop.
type Manager struct {
	db *gorm.DB
}

func NewManager(db *gorm.DB) *Manager {
	return &Manager{db: db}
}

// DeleteUser removes a user, every rating they authored, and clears the owner
// reference on any store they own. The store itself survives.
func (m *Manager) DeleteUser(userID uint) error {
	return m.db.Transaction(func(tx *gorm.DB) error {
		var user models.User

		if err := tx.First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("user not found")
			}
			return err
		}

		if err := tx.Where("user_id = ?", userID).Delete(&models.Rating{}).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.Store{}).Where("owner_id = ?", userID).Update("owner_id", nil).Error; err != nil {
			return err
		}

		return tx.Delete(&user).Error
	})
}

// DeleteStore removes a store and every rating referencing it.
func (m *Manager) DeleteStore(storeID uint) error {
	return m.db.Transaction(func(tx *gorm.DB) error {
		var store models.Store

		if err := tx.First(&store, storeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("store not found")
			}
			return err
		}

		if err := tx.Where("store_id = ?", storeID).Delete(&models.Rating{}).Error; err != nil {
			return err
		}

		return tx.Delete(&store).Error
	})
}
