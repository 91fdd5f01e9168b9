package storage

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EnsureMembership creates the (group,user) record with member defaults
// if it does not exist yet and returns the current row. Safe under
// concurrent calls for the same pair: the insert is ON CONFLICT DO
// NOTHING over the composite unique index, so at most one row wins and
// an existing row is never modified.
func (s *Storage) EnsureMembership(groupID, userID int64, username string) (*Membership, error) {
	member := Membership{
		GroupID:  groupID,
		UserID:   userID,
		Username: username,
		Role:     "member",
		JoinedAt: time.Now(),
	}

	result := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&member)
	if result.Error != nil {
		slog.Error("storage: Failed to ensure membership", "error", result.Error,
			"group_id", groupID, "user_id", userID)
		return nil, fmt.Errorf("failed to ensure membership: %w", result.Error)
	}

	return s.GetMembership(groupID, userID)
}

// GetMembership retrieves the membership row for a (group,user) pair.
func (s *Storage) GetMembership(groupID, userID int64) (*Membership, error) {
	var member Membership
	result := s.db.Where("group_id = ? AND user_id = ?", groupID, userID).First(&member)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		slog.Error("storage: Failed to get membership", "error", result.Error,
			"group_id", groupID, "user_id", userID)
		return nil, fmt.Errorf("failed to get membership: %w", result.Error)
	}
	return &member, nil
}

// SetRole stores a new role for the member.
func (s *Storage) SetRole(groupID, userID int64, role string) error {
	result := s.db.Model(&Membership{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Update("role", role)
	if result.Error != nil {
		slog.Error("storage: Failed to set role", "error", result.Error,
			"group_id", groupID, "user_id", userID, "role", role)
		return fmt.Errorf("failed to set role: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// IncrementWarnings adds one warning and returns the member's own
// post-increment count. Update and read-back run in one transaction:
// concurrent warns each see the count their increment produced, so
// every count between two totals is handed to exactly one caller.
func (s *Storage) IncrementWarnings(groupID, userID int64) (int, error) {
	var count int
	err := s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&Membership{}).
			Where("group_id = ? AND user_id = ?", groupID, userID).
			UpdateColumn("warnings", gorm.Expr("warnings + ?", 1))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}

		var member Membership
		if err := tx.Where("group_id = ? AND user_id = ?", groupID, userID).First(&member).Error; err != nil {
			return err
		}
		count = member.Warnings
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return 0, ErrNotFound
		}
		slog.Error("storage: Failed to increment warnings", "error", err,
			"group_id", groupID, "user_id", userID)
		return 0, fmt.Errorf("failed to increment warnings: %w", err)
	}
	return count, nil
}

// ResetWarnings zeroes the member's warning counter.
func (s *Storage) ResetWarnings(groupID, userID int64) error {
	result := s.db.Model(&Membership{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		UpdateColumn("warnings", 0)
	if result.Error != nil {
		slog.Error("storage: Failed to reset warnings", "error", result.Error,
			"group_id", groupID, "user_id", userID)
		return fmt.Errorf("failed to reset warnings: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// AddPoint awards one activity point to the member.
func (s *Storage) AddPoint(groupID, userID int64) error {
	result := s.db.Model(&Membership{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		UpdateColumn("points", gorm.Expr("points + ?", 1))
	if result.Error != nil {
		slog.Error("storage: Failed to add point", "error", result.Error,
			"group_id", groupID, "user_id", userID)
		return fmt.Errorf("failed to add point: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
