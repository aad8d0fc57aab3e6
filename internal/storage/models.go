package storage

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Profile is a journaling user as persisted. Age is nullable because
// onboarding doesn't require it.
type Profile struct {
	ID          string
	DisplayName string
	City        string
	Age         *int
	Interests   string // JSON array stored as text
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// EmotionRecord is one classified turn as persisted. Reads return rows
// most-recent-last; the scorer's last-3 slicing depends on that.
type EmotionRecord struct {
	ID         string
	ProfileID  string
	SessionID  string
	Emotion    string
	Intensity  float64
	Confidence float64
	Provenance string
	Reasoning  string
	CreatedAt  time.Time
}
