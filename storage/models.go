package storage

import (
	"time"

	"gorm.io/gorm"
)

// Group is the per-chat record: platform identity plus the free-text
// rules and welcome template admins can set.
type Group struct {
	gorm.Model
	TelegramID     int64 `gorm:"uniqueIndex"`
	Title          string
	Rules          string
	WelcomeMessage string
}

// Membership is the per-(group,user) system of record for moderation.
// Exactly one row per pair, created lazily with member defaults.
type Membership struct {
	gorm.Model
	GroupID  int64 `gorm:"uniqueIndex:idx_group_user"`
	UserID   int64 `gorm:"uniqueIndex:idx_group_user"`
	Username string
	Role     string `gorm:"default:member"`
	Warnings int
	Points   int
	JoinedAt time.Time
}

// UserMute is an active time-bound send restriction on one member, at
// most one per (group,user). Expiry is evaluated lazily on read; no
// timer watches this table. Rows are hard-deleted on unmute, so there is
// no soft-delete column to block re-muting through the unique index.
type UserMute struct {
	ID        uint  `gorm:"primarykey"`
	GroupID   int64 `gorm:"uniqueIndex:idx_mute_group_user"`
	UserID    int64 `gorm:"uniqueIndex:idx_mute_group_user"`
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// GroupLockdown marks a group-wide send restriction. No automatic
// expiry; it is explicitly toggled off, which hard-deletes the row.
type GroupLockdown struct {
	ID        uint  `gorm:"primarykey"`
	GroupID   int64 `gorm:"uniqueIndex"`
	CreatedAt time.Time
}

// Message logs group messages for points and later analytics.
type Message struct {
	gorm.Model
	GroupID int64 `gorm:"index"`
	UserID  int64 `gorm:"index"`
	Content string
	SentAt  time.Time
}

// ShortURL maps a generated short code to its original URL.
type ShortURL struct {
	gorm.Model
	ShortCode   string `gorm:"uniqueIndex"`
	OriginalURL string
	CreatedBy   int64
}

// Poll is a group poll. Options are stored as a JSON array of strings.
type Poll struct {
	gorm.Model
	GroupID  int64 `gorm:"index"`
	Question string
	Options  string
	IsActive bool `gorm:"default:true"`
}

// PollResponse records a single vote on a poll.
type PollResponse struct {
	gorm.Model
	PollID         uint `gorm:"index"`
	UserID         int64
	SelectedOption string
}

// Event is a scheduled group event members can RSVP to.
type Event struct {
	gorm.Model
	GroupID       int64 `gorm:"index"`
	Title         string
	ScheduledTime time.Time
	Description   string
	CreatedBy     int64
}

// EventRSVP records a member's yes/no/maybe answer, one row per
// (event,user) kept current by upsert.
type EventRSVP struct {
	gorm.Model
	EventID uint  `gorm:"uniqueIndex:idx_event_user"`
	UserID  int64 `gorm:"uniqueIndex:idx_event_user"`
	Status  string
}
