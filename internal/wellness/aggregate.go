package wellness

import (
	"context"
	"log/slog"
	"math"

	"github.com/kalambet/murmur/internal/emotion"
)

// neutralMidpoint is the score a zero-intensity entry blends toward.
const neutralMidpoint = 60.0

// baseScores maps emotion labels to their wellness base score. Keyed by
// string rather than emotion.Emotion: transcripts aggregated from older
// records can carry labels that predate the closed set, and those score
// as neutral rather than aborting the session.
var baseScores = map[string]float64{
	"happy":    90,
	"excited":  85,
	"calm":     80,
	"peaceful": 85,
	"hopeful":  75,
	"neutral":  60,
	"confused": 45,
	"anxious":  35,
	"sad":      30,
	"angry":    25,
	"stressed": 30,
}

// Options adjust report generation. Geo biases place suggestions;
// Transcript (the session's concatenated answer text) feeds the
// community keyword rules.
type Options struct {
	Geo        *Geolocation
	Transcript string
}

// Aggregator reduces a session's emotion history into a Report.
type Aggregator struct {
	places PlaceSuggester
}

// NewAggregator creates an Aggregator using the given place suggester.
// Pass nil to use the static per-emotion lists only.
func NewAggregator(places PlaceSuggester) *Aggregator {
	if places == nil {
		places = StaticPlaces{}
	}
	return &Aggregator{places: places}
}

// Summarize computes the end-of-session Report from the ordered emotion
// history (most-recent-last). The only failure is an empty history.
func (a *Aggregator) Summarize(ctx context.Context, entries []emotion.Result, opts Options) (Report, error) {
	if len(entries) == 0 {
		return Report{}, ErrEmptySession
	}

	score := wellnessScore(entries)
	dominant := dominantEmotion(entries)
	tone, message := toneFor(score)

	places, err := a.places.Suggest(ctx, dominant, opts.Geo)
	if err != nil {
		// Suggesters are expected to fall back internally; this is a
		// last-resort guard so a report always carries places.
		slog.Warn("place suggestion failed, using static list", "error", err)
		places = staticPlacesFor(dominant)
	}

	return Report{
		WellnessScore:   score,
		DominantEmotion: dominant,
		Tone:            tone,
		Message:         message,
		Recommendations: buildRecommendations(dominant, score),
		Places:          places,
		Communities:     buildCommunities(opts.Transcript, dominant),
	}, nil
}

// wellnessScore blends each entry's base score toward the neutral
// midpoint proportionally to intensity, then averages and clamps.
func wellnessScore(entries []emotion.Result) int {
	sum := 0.0
	for _, e := range entries {
		base, ok := baseScores[string(e.Emotion)]
		if !ok {
			base = neutralMidpoint
		}
		sum += base*e.Intensity + neutralMidpoint*(1-e.Intensity)
	}
	avg := sum / float64(len(entries))
	score := int(math.Round(avg))
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// dominantEmotion is the mode of the emotion labels, ties broken by
// first occurrence in session order. Unknown labels count as neutral.
func dominantEmotion(entries []emotion.Result) emotion.Emotion {
	counts := make(map[emotion.Emotion]int)
	var order []emotion.Emotion
	for _, e := range entries {
		label := emotion.Normalize(string(e.Emotion))
		if counts[label] == 0 {
			order = append(order, label)
		}
		counts[label]++
	}

	dominant := order[0]
	for _, label := range order[1:] {
		if counts[label] > counts[dominant] {
			dominant = label
		}
	}
	return dominant
}

// toneFor maps a wellness score to its message tier.
func toneFor(score int) (Tone, string) {
	switch {
	case score >= 70:
		return ToneAffirming, "You sound like you're in a good place. Keep doing what works for you."
	case score >= 50:
		return ToneSteady, "You're holding steady. A few small habits could lift the week ahead."
	case score >= 30:
		return ToneConcerned, "This sounded like a heavy session. Be gentle with yourself, and lean on the suggestions below."
	default:
		return ToneUrgent, "You've been carrying a lot. Please consider reaching out to someone today — you don't have to do this alone."
	}
}
