package domain

import "time"

// ScheduledMessage represents a pending or completed send
type ScheduledMessage struct {
	CardID          string // store-assigned identifier
	RecipientName   string
	RecipientUserID string // empty if the contact had no channel ID
	SenderUserID    string
	Message         string
	CreatedAt       string // ISO-8601, string compare is chronological
	Due             string // store due timestamp (RFC3339), empty if unset
}

// DueTime parses the due timestamp. ok is false for an absent or
// unparsable due field, which the sweep must skip.
func (m *ScheduledMessage) DueTime() (time.Time, bool) {
	if m.Due == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, m.Due)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// IsDue reports whether the message should be delivered at the given time
func (m *ScheduledMessage) IsDue(now time.Time) bool {
	due, ok := m.DueTime()
	if !ok {
		return false
	}
	return !due.After(now)
}
