package db

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/storeratings/ratehub/internal/authz"
	"github.com/storeratings/ratehub/internal/models"
)

var DB *gorm.DB

func ConnectDatabase(dsn string) error {
	var err error

	// TranslateError surfaces unique constraint violations as
	// gorm.ErrDuplicatedKey, which the rating ledger relies on.
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})

	if err != nil {
		return err
	}

	return nil
}

func MigrateDatabase() error {
	models := []interface{}{
		&models.User{},
		&models.Store{},
		&models.Rating{},
	}

	migrator := DB.Migrator()

	for _, model := range models {
		if !migrator.HasTable(model) {
			if err := DB.AutoMigrate(model); err != nil {
				return err
			}
		}
	}

	return nil
}

// SeedAdmin creates the bootstrap admin account when no admin exists yet.
// A blank password disables seeding.
func SeedAdmin(name, email, password, address string) error {
	if password == "" {
		return nil
	}

	var existing models.User

	err := DB.Where("role = ?", string(authz.RoleAdmin)).First(&existing).Error

	if err == nil {
		return nil
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

	if err != nil {
		return err
	}

	admin := models.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(passwordHash),
		Address:      address,
		Role:         string(authz.RoleAdmin),
	}

	return DB.Create(&admin).Error
}
