package storage

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CreateEvent stores a scheduled event and returns its ID.
func (s *Storage) CreateEvent(groupID int64, title string, scheduledTime time.Time, description string, createdBy int64) (uint, error) {
	event := Event{
		GroupID:       groupID,
		Title:         title,
		ScheduledTime: scheduledTime,
		Description:   description,
		CreatedBy:     createdBy,
	}

	result := s.db.Create(&event)
	if result.Error != nil {
		slog.Error("storage: Failed to create event", "error", result.Error, "group_id", groupID)
		return 0, fmt.Errorf("failed to create event: %w", result.Error)
	}
	return event.ID, nil
}

// GetEvent retrieves an event by ID.
func (s *Storage) GetEvent(eventID uint) (*Event, error) {
	var event Event
	result := s.db.First(&event, eventID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		slog.Error("storage: Failed to get event", "error", result.Error, "event_id", eventID)
		return nil, fmt.Errorf("failed to get event: %w", result.Error)
	}
	return &event, nil
}

// UpsertRSVP records or replaces the user's answer for the event.
func (s *Storage) UpsertRSVP(eventID uint, userID int64, status string) error {
	rsvp := EventRSVP{
		EventID: eventID,
		UserID:  userID,
		Status:  status,
	}

	result := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "event_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "updated_at"}),
	}).Create(&rsvp)
	if result.Error != nil {
		slog.Error("storage: Failed to record RSVP", "error", result.Error,
			"event_id", eventID, "user_id", userID)
		return fmt.Errorf("failed to record rsvp: %w", result.Error)
	}
	return nil
}

// UpcomingEvents lists the group's events scheduled at or after now,
// soonest first.
func (s *Storage) UpcomingEvents(groupID int64, now time.Time) ([]Event, error) {
	var events []Event
	result := s.db.Where("group_id = ? AND scheduled_time >= ?", groupID, now).
		Order("scheduled_time asc").
		Find(&events)
	if result.Error != nil {
		slog.Error("storage: Failed to list upcoming events", "error", result.Error, "group_id", groupID)
		return nil, fmt.Errorf("failed to list upcoming events: %w", result.Error)
	}
	return events, nil
}
