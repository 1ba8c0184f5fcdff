// Package storage persists users, departments and complaints and publishes
// complaint events.
package storage

import (
	"civicdesk/backend/internal/models"
	"fmt"
	"regexp"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var kvPairRegex = regexp.MustCompile(`(?i)\b(host|user|password|dbname|port|sslmode)=`)

// Dialector picks a gorm driver from a connection string. Accepted forms:
// postgres:// or postgresql:// URLs, lib/pq key=value lists, and sqlite:
// (sqlite://path, file:..., *.db, :memory:).
func Dialector(dsn string) (gorm.Dialector, error) {
	s := strings.Trim(strings.TrimSpace(dsn), "\"'")
	lower := strings.ToLower(s)
	switch {
	case s == "":
		return nil, fmt.Errorf("empty database connection string")
	case strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"):
		return postgres.Open(s), nil
	case kvPairRegex.MatchString(s):
		if !strings.Contains(lower, "sslmode=") {
			s += " sslmode=disable"
		}
		return postgres.Open(strings.Join(strings.Fields(s), " ")), nil
	case strings.HasPrefix(lower, "sqlite://"):
		return sqlite.Open(s[len("sqlite://"):]), nil
	case strings.HasPrefix(lower, "file:"), strings.HasSuffix(lower, ".db"), s == ":memory:":
		return sqlite.Open(s), nil
	}
	return nil, fmt.Errorf("unsupported database connection string")
}

// Open connects to the database described by dsn and runs migrations.
func Open(dsn string) (*gorm.DB, error) {
	dialector, err := Dialector(dsn)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates or updates the tables for every model.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Department{},
		&models.Complaint{},
	); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}
