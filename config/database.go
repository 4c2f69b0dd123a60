package config

import (
	"fmt"

	"github.com/shopstream/user-service/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

// InitDB initializes the database connection and migrates the schema.
// TranslateError lets repositories detect unique-constraint violations as
// gorm.ErrDuplicatedKey instead of matching raw driver codes.
func InitDB(config *Config) error {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		config.DBHost, config.DBPort, config.DBUser, config.DBPassword, config.DBName)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %v", err)
	}

	DB = db

	// The uniqueIndex on users.email is the authoritative guard against
	// concurrent check-then-insert races.
	if err := DB.AutoMigrate(
		&models.User{},
		&models.Address{},
	); err != nil {
		return fmt.Errorf("failed to migrate database: %v", err)
	}

	// At most one default address per user, enforced at commit. The
	// clear-then-set transactions rely on this index the same way the
	// email check relies on the unique index above: two racing commits
	// cannot both land a default.
	if err := DB.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_addresses_user_default ON addresses (user_id) WHERE is_default`,
	).Error; err != nil {
		return fmt.Errorf("failed to create default-address index: %v", err)
	}

	return nil
}
