package database

import (
	"fmt"
	"time"

	"github.com/vladimiradmaev/fluid-helper/internal/config"
	"github.com/vladimiradmaev/fluid-helper/internal/database/migrations"
	"github.com/vladimiradmaev/fluid-helper/internal/logger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type FluidLog struct {
	ID         uint      `gorm:"primaryKey"`
	CreatedAt  time.Time
	OccurredAt time.Time `gorm:"not null"`
	DayKey     string    `gorm:"size:10;not null"`
	EntryType  string    `gorm:"size:16;not null"`
	FluidType  string    `gorm:"size:32;not null"`
	AmountMl   *float64  // nil only for poop
	Notes      string
	Source     string `gorm:"size:16"`
	BatchID    string `gorm:"size:36"`
}

type WellnessCheck struct {
	ID         uint      `gorm:"primaryKey"`
	CreatedAt  time.Time
	OccurredAt time.Time `gorm:"not null"`
	DayKey     string    `gorm:"size:10;not null"`
	CheckTime  string    `gorm:"size:8;not null"`
	Appetite   *int
	Energy     *int
	Mood       *int
	Cyanosis   *int
	BatchID    string `gorm:"size:36"`
}

type GagEvent struct {
	ID         uint      `gorm:"primaryKey"`
	CreatedAt  time.Time
	OccurredAt time.Time `gorm:"not null"`
	DayKey     string    `gorm:"size:10;not null"`
	BatchID    string    `gorm:"size:36"`
}

// WeightEntry holds at most one row per date
type WeightEntry struct {
	ID        uint   `gorm:"primaryKey"`
	Date      string `gorm:"column:entry_date;size:10;uniqueIndex;not null"`
	WeightKg  float64
	Notes     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Setting struct {
	Key       string `gorm:"column:setting_key;primaryKey;size:64"`
	Value     string `gorm:"not null"`
	UpdatedAt time.Time
}

// Models lists every table owned by the service
func Models() []interface{} {
	return []interface{}{&FluidLog{}, &WellnessCheck{}, &GagEvent{}, &WeightEntry{}, &Setting{}}
}

// NewPostgresDB connects to postgres and brings the schema up to date
func NewPostgresDB(cfg config.DBConfig) (*gorm.DB, error) {
	db, err := Open(postgres.Open(cfg.DSN()))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get connection pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	logger.Info("Database connection established and migrations completed", "host", cfg.Host, "db", cfg.DBName)
	return db, nil
}

// Open opens a database with the given dialector and migrates it
func Open(dialector gorm.Dialector) (*gorm.DB, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, err
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates the tables and runs the SQL migrations on top of them
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to auto-migrate database: %w", err)
	}
	if err := migrations.LoadSQLMigrations(); err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}
	if err := migrations.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}
