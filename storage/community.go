package storage

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const shortCodeAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

const shortCodeLength = 6

// LogMessage appends a group message to the log.
func (s *Storage) LogMessage(groupID, userID int64, content string) error {
	msg := Message{
		GroupID: groupID,
		UserID:  userID,
		Content: content,
		SentAt:  time.Now(),
	}

	result := s.db.Create(&msg)
	if result.Error != nil {
		slog.Error("storage: Failed to log message", "error", result.Error,
			"group_id", groupID, "user_id", userID)
		return fmt.Errorf("failed to log message: %w", result.Error)
	}
	return nil
}

// CreateShortURL stores the URL under a fresh random code and returns
// the code. A code collision makes the insert a no-op, in which case a
// new code is tried.
func (s *Storage) CreateShortURL(originalURL string, createdBy int64) (string, error) {
	for attempt := 0; attempt < 5; attempt++ {
		row := ShortURL{
			ShortCode:   randomShortCode(shortCodeLength),
			OriginalURL: originalURL,
			CreatedBy:   createdBy,
		}

		result := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
		if result.Error != nil {
			slog.Error("storage: Failed to store short URL", "error", result.Error, "created_by", createdBy)
			return "", fmt.Errorf("failed to store short url: %w", result.Error)
		}
		if result.RowsAffected == 1 {
			return row.ShortCode, nil
		}
	}
	return "", ErrAlreadyExists
}

// GetShortURL resolves a code back to its record.
func (s *Storage) GetShortURL(code string) (*ShortURL, error) {
	var row ShortURL
	result := s.db.Where("short_code = ?", code).First(&row)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		slog.Error("storage: Failed to get short URL", "error", result.Error, "code", code)
		return nil, fmt.Errorf("failed to get short url: %w", result.Error)
	}
	return &row, nil
}

func randomShortCode(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = shortCodeAlphabet[rand.Intn(len(shortCodeAlphabet))]
	}
	return string(b)
}
