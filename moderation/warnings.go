package moderation

import (
	"errors"
	"fmt"

	"telegram-group-manager-bot/storage"
)

// warnThreshold is the warning count at which escalation fires.
// Escalation triggers exactly at the threshold, so a count carried past
// it never fires twice.
const warnThreshold = 3

// WarningResult reports the outcome of recording one warning.
type WarningResult struct {
	Count     int
	Escalated bool
}

// WarningLedger accumulates warnings on membership records and signals
// escalation. It never enforces anything itself; the service decides
// what an escalation leads to.
type WarningLedger struct {
	store Store
}

func NewWarningLedger(store Store) *WarningLedger {
	return &WarningLedger{store: store}
}

// Warn records one warning against the member and reports whether the
// new count reached the escalation threshold. Warning a user with no
// membership record fails with ErrUnknownMember.
func (l *WarningLedger) Warn(groupID, userID int64) (WarningResult, error) {
	count, err := l.store.IncrementWarnings(groupID, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return WarningResult{}, ErrUnknownMember
		}
		return WarningResult{}, fmt.Errorf("recording warning: %w", err)
	}
	return WarningResult{Count: count, Escalated: count == warnThreshold}, nil
}
