// File: internal/database/database.go
package database

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/iyunix/go-linksports/internal/domain"
)

// Open connects to the configured driver. sqlite takes a file path (or
// ":memory:"), postgres takes a DSN.
func Open(driver, dsn string, silent bool) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite", "":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	gormCfg := &gorm.Config{TranslateError: true}
	if silent {
		gormCfg.Logger = logger.Default.LogMode(logger.Silent)
	}
	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}

	if driver != "postgres" {
		// one writer at a time; also keeps ":memory:" on a single connection
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
		if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
			return nil, err
		}
	}
	return db, nil
}

// Migrate creates or updates every table the application uses.
func Migrate(db *gorm.DB) error {
	if err := db.SetupJoinTable(&domain.Sport{}, "Attributes", &domain.SportAttributeMapping{}); err != nil {
		return fmt.Errorf("failed to set up sport attribute join table: %w", err)
	}
	err := db.AutoMigrate(
		&domain.User{},
		&domain.UserContact{},
		&domain.Profile{},
		&domain.Connection{},
		&domain.Post{},
		&domain.Like{},
		&domain.Comment{},
		&domain.Sport{},
		&domain.SportAttribute{},
		&domain.SportAttributeMapping{},
		&domain.UserSport{},
		&domain.AuditLog{},
	)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	if err := db.Exec(lowerUsernameIndex).Error; err != nil {
		return fmt.Errorf("failed to create username index: %w", err)
	}
	return nil
}

// Usernames are unique regardless of case, including rows written without
// going through NormalizeUsername.
const lowerUsernameIndex = `CREATE UNIQUE INDEX IF NOT EXISTS idx_users_lower_username ON users (lower(username))`
