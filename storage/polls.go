package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"gorm.io/gorm"
)

// CreatePoll stores a poll and returns its ID. Options are serialized
// as a JSON array alongside the question.
func (s *Storage) CreatePoll(groupID int64, question string, options []string) (uint, error) {
	encoded, err := json.Marshal(options)
	if err != nil {
		return 0, fmt.Errorf("failed to encode poll options: %w", err)
	}

	poll := Poll{
		GroupID:  groupID,
		Question: question,
		Options:  string(encoded),
		IsActive: true,
	}

	result := s.db.Create(&poll)
	if result.Error != nil {
		slog.Error("storage: Failed to create poll", "error", result.Error, "group_id", groupID)
		return 0, fmt.Errorf("failed to create poll: %w", result.Error)
	}
	return poll.ID, nil
}

// GetPoll retrieves a poll and its decoded option list.
func (s *Storage) GetPoll(pollID uint) (*Poll, []string, error) {
	var poll Poll
	result := s.db.First(&poll, pollID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNotFound
		}
		slog.Error("storage: Failed to get poll", "error", result.Error, "poll_id", pollID)
		return nil, nil, fmt.Errorf("failed to get poll: %w", result.Error)
	}

	var options []string
	if err := json.Unmarshal([]byte(poll.Options), &options); err != nil {
		return nil, nil, fmt.Errorf("failed to decode poll options: %w", err)
	}
	return &poll, options, nil
}

// RecordVote appends a vote for the given option.
func (s *Storage) RecordVote(pollID uint, userID int64, option string) error {
	vote := PollResponse{
		PollID:         pollID,
		UserID:         userID,
		SelectedOption: option,
	}

	result := s.db.Create(&vote)
	if result.Error != nil {
		slog.Error("storage: Failed to record vote", "error", result.Error,
			"poll_id", pollID, "user_id", userID)
		return fmt.Errorf("failed to record vote: %w", result.Error)
	}
	return nil
}

// ClosePoll marks the poll inactive and returns its options in creation
// order together with the per-option vote tally. Votes for options that
// were never part of the poll are ignored. Closing an already-closed
// poll fails with ErrPollClosed.
func (s *Storage) ClosePoll(pollID uint) ([]string, map[string]int, error) {
	poll, options, err := s.GetPoll(pollID)
	if err != nil {
		return nil, nil, err
	}
	if !poll.IsActive {
		return nil, nil, ErrPollClosed
	}

	result := s.db.Model(&Poll{}).Where("id = ?", pollID).Update("is_active", false)
	if result.Error != nil {
		slog.Error("storage: Failed to close poll", "error", result.Error, "poll_id", pollID)
		return nil, nil, fmt.Errorf("failed to close poll: %w", result.Error)
	}

	var responses []PollResponse
	if err := s.db.Where("poll_id = ?", pollID).Find(&responses).Error; err != nil {
		slog.Error("storage: Failed to load poll responses", "error", err, "poll_id", pollID)
		return nil, nil, fmt.Errorf("failed to load poll responses: %w", err)
	}

	tally := make(map[string]int, len(options))
	for _, opt := range options {
		tally[opt] = 0
	}
	for _, resp := range responses {
		if _, ok := tally[resp.SelectedOption]; ok {
			tally[resp.SelectedOption]++
		}
	}
	return options, tally, nil
}
