package storage

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Restrictions are records, not timers. The platform enforces expiry on
// its own side; this table is the bot's authoritative ledger, and expiry
// is evaluated lazily whenever a mute is queried.

// Mute records or refreshes a user mute ending at until. The upsert
// keeps at most one active row per (group,user).
func (s *Storage) Mute(groupID, userID int64, until time.Time) error {
	mute := UserMute{
		GroupID:   groupID,
		UserID:    userID,
		ExpiresAt: until,
	}

	result := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "group_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"expires_at", "updated_at"}),
	}).Create(&mute)
	if result.Error != nil {
		slog.Error("storage: Failed to record mute", "error", result.Error,
			"group_id", groupID, "user_id", userID, "until", until)
		return fmt.Errorf("failed to record mute: %w", result.Error)
	}
	return nil
}

// Unmute clears the mute record regardless of whether it already
// expired. ErrNotFound when no record exists.
func (s *Storage) Unmute(groupID, userID int64) error {
	result := s.db.Where("group_id = ? AND user_id = ?", groupID, userID).Delete(&UserMute{})
	if result.Error != nil {
		slog.Error("storage: Failed to clear mute", "error", result.Error,
			"group_id", groupID, "user_id", userID)
		return fmt.Errorf("failed to clear mute: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// IsMuted reports whether an unexpired mute exists at the given instant.
// An expired row found here is deleted opportunistically; correctness
// does not depend on that cleanup happening.
func (s *Storage) IsMuted(groupID, userID int64, at time.Time) (bool, error) {
	var mute UserMute
	result := s.db.Where("group_id = ? AND user_id = ?", groupID, userID).First(&mute)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return false, nil
		}
		slog.Error("storage: Failed to check mute", "error", result.Error,
			"group_id", groupID, "user_id", userID)
		return false, fmt.Errorf("failed to check mute: %w", result.Error)
	}

	if !at.Before(mute.ExpiresAt) {
		if err := s.db.Delete(&UserMute{}, mute.ID).Error; err != nil {
			slog.Warn("storage: Failed to clean up expired mute", "error", err,
				"group_id", groupID, "user_id", userID)
		}
		return false, nil
	}
	return true, nil
}

// SetLockdown sets or clears the group-wide lockdown marker. Both
// directions are idempotent.
func (s *Storage) SetLockdown(groupID int64, enabled bool) error {
	if enabled {
		lock := GroupLockdown{GroupID: groupID}
		result := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&lock)
		if result.Error != nil {
			slog.Error("storage: Failed to enable lockdown", "error", result.Error, "group_id", groupID)
			return fmt.Errorf("failed to enable lockdown: %w", result.Error)
		}
		return nil
	}

	result := s.db.Where("group_id = ?", groupID).Delete(&GroupLockdown{})
	if result.Error != nil {
		slog.Error("storage: Failed to disable lockdown", "error", result.Error, "group_id", groupID)
		return fmt.Errorf("failed to disable lockdown: %w", result.Error)
	}
	return nil
}

// IsLockedDown reports whether the group is currently locked down.
func (s *Storage) IsLockedDown(groupID int64) (bool, error) {
	var count int64
	result := s.db.Model(&GroupLockdown{}).Where("group_id = ?", groupID).Count(&count)
	if result.Error != nil {
		slog.Error("storage: Failed to check lockdown", "error", result.Error, "group_id", groupID)
		return false, fmt.Errorf("failed to check lockdown: %w", result.Error)
	}
	return count > 0, nil
}
