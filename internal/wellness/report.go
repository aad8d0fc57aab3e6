package wellness

import (
	"errors"

	"github.com/kalambet/murmur/internal/emotion"
)

// ErrEmptySession is returned when asked to summarize a session with zero
// turns. A real session always has at least one; silently reporting a
// score of 0 would be worse than failing.
var ErrEmptySession = errors.New("session has no emotion entries")

// Geolocation optionally biases place suggestions.
type Geolocation struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Tone classifies the report's message register by wellness score.
type Tone string

const (
	ToneAffirming Tone = "affirming"
	ToneSteady    Tone = "steady"
	ToneConcerned Tone = "concerned"
	ToneUrgent    Tone = "urgent"
)

// Recommendation is one entry in a recommendation bucket.
type Recommendation struct {
	Icon        string `json:"icon"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Urgent      bool   `json:"urgent,omitempty"`
}

// Recommendations groups entries by cadence. Professional is populated
// only for low wellness scores.
type Recommendations struct {
	Immediate    []Recommendation `json:"immediate"`
	Daily        []Recommendation `json:"daily"`
	Weekly       []Recommendation `json:"weekly"`
	Professional []Recommendation `json:"professional"`
}

// Place is one suggested real-world location.
type Place struct {
	Icon        string `json:"icon"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Type        string `json:"type"`
	Address     string `json:"address,omitempty"`
	Distance    string `json:"distance,omitempty"`
}

// Community is one suggested peer group.
type Community struct {
	Icon        string `json:"icon"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Report is the end-of-session summary. Computed exactly once per
// completed session and handed to the caller; never retained here.
type Report struct {
	WellnessScore   int             `json:"wellness_score"`
	DominantEmotion emotion.Emotion `json:"dominant_emotion"`
	Tone            Tone            `json:"tone"`
	Message         string          `json:"message"`
	Recommendations Recommendations `json:"recommendations"`
	Places          []Place         `json:"places"`
	Communities     []Community     `json:"communities"`
}
