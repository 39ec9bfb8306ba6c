package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	purchasemodels "exchange-backend/internal/features/purchase/models"
	tokenmodels "exchange-backend/internal/features/token/models"
	usermodels "exchange-backend/internal/features/user/models"
)

// Open connects to PostgreSQL through GORM.
func Open(dsn string, debug bool) (*gorm.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("empty postgres DSN")
	}

	level := gormlogger.Warn
	if debug {
		level = gormlogger.Info
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return db, nil
}

// Migrate runs schema auto-migration for every persisted model.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&usermodels.User{},
		&purchasemodels.Transaction{},
		&purchasemodels.PropPurchase{},
		&tokenmodels.DepositToken{},
		&tokenmodels.ListedToken{},
	); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// HealthCheck pings the underlying connection.
func HealthCheck(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
