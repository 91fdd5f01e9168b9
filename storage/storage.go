// Package storage is the durable system of record: group settings,
// membership rows, restriction records and the community features'
// tables, all behind a single GORM/SQLite handle safe for concurrent
// use.
package storage

import (
	"errors"
	"fmt"
	"log/slog"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrAlreadyExists = errors.New("record already exists")
	ErrPollClosed    = errors.New("poll already closed")
)

type Storage struct {
	db *gorm.DB
}

func New(dbPath string) (*Storage, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{})
	if err != nil {
		slog.Error("storage: Failed to connect to database", "error", err, "path", dbPath)
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	s := &Storage{db: db}
	if err := s.migrate(); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Storage) migrate() error {
	err := s.db.AutoMigrate(
		&Group{},
		&Membership{},
		&UserMute{},
		&GroupLockdown{},
		&Message{},
		&ShortURL{},
		&Poll{},
		&PollResponse{},
		&Event{},
		&EventRSVP{},
	)
	if err != nil {
		slog.Error("storage: Failed to migrate database", "error", err)
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	return nil
}
