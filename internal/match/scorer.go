package match

import (
	"fmt"
	"math"
	"strings"

	"github.com/kalambet/murmur/internal/emotion"
)

// Factor names the compatibility sub-scores.
type Factor string

const (
	FactorLocation  Factor = "location"
	FactorMood      Factor = "mood"
	FactorInterests Factor = "interests"
	FactorAge       Factor = "age"
	FactorActivity  Factor = "activity"
)

// Profile is the slice of a user profile the scorer reads. History is
// most-recent-last; EntryCount is the user's total journal entry count
// for the activity factor.
type Profile struct {
	ID         string           `json:"id"`
	City       string           `json:"city"`
	Age        *int             `json:"age,omitempty"`
	Interests  []string         `json:"interests"`
	History    []emotion.Result `json:"history"`
	EntryCount int              `json:"entry_count"`
}

// Tier buckets a total score for display.
type Tier string

const (
	TierExcellent Tier = "Excellent"
	TierGreat     Tier = "Great"
	TierGood      Tier = "Good"
	TierFair      Tier = "Fair"
	TierLimited   Tier = "Limited"
)

// Score is the full output of a compatibility comparison. Recomputed on
// every request, never persisted.
type Score struct {
	Total     float64            `json:"total"`
	Breakdown map[Factor]float64 `json:"breakdown"`
	Reasoning []string           `json:"reasoning"`
	Tier      Tier               `json:"compatibility_tier"`
}

// Weights is the convex combination over factors. The values must sum to
// 1.0: there is exactly one canonical table, shared by every caller, so
// the per-call-site weight drift the old scorer accumulated cannot recur.
type Weights map[Factor]float64

// DefaultWeights returns the canonical factor weights.
func DefaultWeights() Weights {
	return Weights{
		FactorLocation:  0.40,
		FactorMood:      0.35,
		FactorInterests: 0.15,
		FactorAge:       0.05,
		FactorActivity:  0.05,
	}
}

// Scorer computes pairwise compatibility. Pure and deterministic: no
// I/O, no randomness, identical inputs give identical output.
type Scorer struct {
	weights Weights
}

// NewScorer creates a Scorer with the given weights, which must cover all
// five factors and sum to 1.0. Pass nil for DefaultWeights.
func NewScorer(w Weights) (*Scorer, error) {
	if w == nil {
		w = DefaultWeights()
	}
	sum := 0.0
	for _, f := range []Factor{FactorLocation, FactorMood, FactorInterests, FactorAge, FactorActivity} {
		weight, ok := w[f]
		if !ok {
			return nil, fmt.Errorf("weights missing factor %q", f)
		}
		if weight < 0 {
			return nil, fmt.Errorf("weight for %q is negative", f)
		}
		sum += weight
	}
	if math.Abs(sum-1.0) > 1e-9 {
		return nil, fmt.Errorf("weights sum to %v, want 1.0", sum)
	}
	return &Scorer{weights: w}, nil
}

// Score compares two profiles. Every factor has a documented default for
// missing inputs, so this never fails for well-formed profiles, and every
// factor is symmetric in its arguments. The total combines only the
// factors both profiles supply inputs for, with the weights renormalized
// over that subset, so a profile matched against itself totals 1.0 exactly
// no matter how sparse it is.
func (s *Scorer) Score(a, b Profile) Score {
	breakdown := map[Factor]float64{
		FactorLocation:  locationScore(a.City, b.City),
		FactorMood:      moodScore(a.History, b.History),
		FactorInterests: interestScore(a.Interests, b.Interests),
		FactorAge:       ageScore(a.Age, b.Age),
		FactorActivity:  activityScore(a.EntryCount, b.EntryCount),
	}
	active := map[Factor]bool{
		FactorLocation:  strings.TrimSpace(a.City) != "" && strings.TrimSpace(b.City) != "",
		FactorMood:      len(a.History) > 0 && len(b.History) > 0,
		FactorInterests: len(normalizeTags(a.Interests)) > 0 && len(normalizeTags(b.Interests)) > 0,
		FactorAge:       a.Age != nil && b.Age != nil,
		FactorActivity:  a.EntryCount > 0 || b.EntryCount > 0,
	}

	total, weightSum := 0.0, 0.0
	for factor, score := range breakdown {
		if !active[factor] {
			continue
		}
		total += score * s.weights[factor]
		weightSum += s.weights[factor]
	}
	if weightSum > 0 {
		total /= weightSum
	} else {
		// Nothing comparable on either side: score the defaults under
		// the full weight table.
		for factor, score := range breakdown {
			total += score * s.weights[factor]
		}
	}

	return Score{
		Total:     total,
		Breakdown: breakdown,
		Reasoning: buildReasoning(breakdown),
		Tier:      tierFor(total),
	}
}

// tierFor buckets total at the 0.8/0.6/0.4/0.2 breakpoints.
func tierFor(total float64) Tier {
	switch {
	case total >= 0.8:
		return TierExcellent
	case total >= 0.6:
		return TierGreat
	case total >= 0.4:
		return TierGood
	case total >= 0.2:
		return TierFair
	default:
		return TierLimited
	}
}
