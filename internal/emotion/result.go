package emotion

import "errors"

// ErrInvalidInput is returned when classification input is empty or
// whitespace-only. It is the only caller-visible classification failure.
var ErrInvalidInput = errors.New("classification input is empty")

// Emotion is one of the fixed labels the engine can produce. Scoring tables
// elsewhere are keyed by these values, so the set is closed: an unknown label
// normalizes to Neutral.
type Emotion string

const (
	Happy    Emotion = "happy"
	Sad      Emotion = "sad"
	Angry    Emotion = "angry"
	Anxious  Emotion = "anxious"
	Calm     Emotion = "calm"
	Neutral  Emotion = "neutral"
	Excited  Emotion = "excited"
	Peaceful Emotion = "peaceful"
)

// All lists every valid emotion label.
var All = []Emotion{Happy, Sad, Angry, Anxious, Calm, Neutral, Excited, Peaceful}

// Valid reports whether e is a member of the closed label set.
func (e Emotion) Valid() bool {
	for _, v := range All {
		if e == v {
			return true
		}
	}
	return false
}

// Normalize maps an arbitrary label to a member of the closed set,
// falling back to Neutral for anything unrecognized.
func Normalize(label string) Emotion {
	e := Emotion(label)
	if e.Valid() {
		return e
	}
	return Neutral
}

// Provenance identifies which path produced a Result.
const (
	ProvenanceRemote    = "remote"
	ProvenanceLexicon   = "lexicon"
	ProvenanceFused     = "fused"
	ProvenanceAudioMock = "audio-mock"
)

// Result is the normalized output of any classification step.
// Intensity and Confidence are always within [0,1].
type Result struct {
	Emotion    Emotion  `json:"emotion"`
	Intensity  float64  `json:"intensity"`
	Confidence float64  `json:"confidence"`
	Provenance string   `json:"provenance"`
	Reasoning  string   `json:"reasoning,omitempty"`
	Triggers   []string `json:"triggers,omitempty"`
}

// normalize enforces the Result invariants in place: clamped numeric
// fields and a closed-set emotion label.
func (r *Result) normalize() {
	r.Emotion = Normalize(string(r.Emotion))
	r.Intensity = clamp01(r.Intensity)
	r.Confidence = clamp01(r.Confidence)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
