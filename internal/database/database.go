package database

import (
	"time"

	"github.com/Doscoding187/real-estate-portal-sub005/internal/config"
	applog "github.com/Doscoding187/real-estate-portal-sub005/internal/logger"
	"github.com/Doscoding187/real-estate-portal-sub005/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type DB struct {
	*gorm.DB
}

func Connect(cfg *config.Config) (*DB, error) {
	log := applog.GetLogger("database")

	logLevel := logger.Silent
	if cfg.ServerEnv == "development" {
		logLevel = logger.Info
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logLevel),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, err
	}

	// Register metrics plugin for Prometheus
	if err := db.Use(&MetricsPlugin{}); err != nil {
		log.Warnw("Failed to register metrics plugin", "error", err)
	} else {
		log.Info("Database metrics plugin registered")
	}

	// Configure connection pool
	sqlDB, err := db.DB()
	if err == nil {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxLifetime(5 * time.Minute)
		log.Info("Database connection pool configured")
	}

	return &DB{db}, nil
}

// Migrate runs AutoMigrate for all models
// Note: Errors are logged but not fatal - the legacy portal schema is compatible
func Migrate(db *DB) error {
	err := db.AutoMigrate(
		// Location hierarchy
		&models.Province{},
		&models.City{},
		&models.Suburb{},

		// Listings
		&models.Property{},
		&models.PropertyImage{},
	)
	if err != nil {
		// Log migration errors but don't fail - the legacy schema may have
		// different constraint names
		applog.GetLogger("database").Warnw("AutoMigrate warning (non-fatal)", "error", err)
	}
	return nil
}
