package storage

import (
	"errors"
	"fmt"
	"log/slog"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EnsureGroup creates the group record on first sight and returns the
// current row. The insert is ON CONFLICT DO NOTHING over the unique
// telegram_id index, so concurrent calls create at most one row.
func (s *Storage) EnsureGroup(telegramID int64, title string) (*Group, error) {
	group := Group{
		TelegramID: telegramID,
		Title:      title,
	}

	result := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&group)
	if result.Error != nil {
		slog.Error("storage: Failed to ensure group", "error", result.Error, "telegram_id", telegramID)
		return nil, fmt.Errorf("failed to ensure group: %w", result.Error)
	}

	return s.GetGroup(telegramID)
}

// GetGroup retrieves a group by its Telegram chat ID.
func (s *Storage) GetGroup(telegramID int64) (*Group, error) {
	var group Group
	result := s.db.Where("telegram_id = ?", telegramID).First(&group)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		slog.Error("storage: Failed to get group", "error", result.Error, "telegram_id", telegramID)
		return nil, fmt.Errorf("failed to get group: %w", result.Error)
	}
	return &group, nil
}

// SetRules replaces the group's rules text.
func (s *Storage) SetRules(telegramID int64, rules string) error {
	result := s.db.Model(&Group{}).Where("telegram_id = ?", telegramID).Update("rules", rules)
	if result.Error != nil {
		slog.Error("storage: Failed to set rules", "error", result.Error, "telegram_id", telegramID)
		return fmt.Errorf("failed to set rules: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetWelcome replaces the group's welcome message template.
func (s *Storage) SetWelcome(telegramID int64, welcome string) error {
	result := s.db.Model(&Group{}).Where("telegram_id = ?", telegramID).Update("welcome_message", welcome)
	if result.Error != nil {
		slog.Error("storage: Failed to set welcome message", "error", result.Error, "telegram_id", telegramID)
		return fmt.Errorf("failed to set welcome message: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
