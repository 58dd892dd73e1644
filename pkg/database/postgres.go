package database

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/eventsdhaka/discovery/internal/models"
)

// Indexes AutoMigrate cannot express.
var indexes = []string{
	`CREATE INDEX IF NOT EXISTS idx_events_public
		ON events (start_date)
		WHERE deleted_at IS NULL AND status = 'published'`,
	`CREATE INDEX IF NOT EXISTS idx_events_title_lower
		ON events (lower(title))`,
	`CREATE INDEX IF NOT EXISTS idx_reminders_active
		ON reminders (id)
		WHERE deleted_at IS NULL`,
}

func NewPostgresDB(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Warn),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)
	sqlDB.SetConnMaxIdleTime(1 * time.Minute)

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Organizer{},
		&models.Event{},
		&models.SavedEvent{},
		&models.Reminder{},
		&models.EventReport{},
		&models.EventClick{},
	); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}

	for _, stmt := range indexes {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	return nil
}
