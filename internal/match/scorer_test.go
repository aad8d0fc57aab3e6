package match

import (
	"math"
	"reflect"
	"testing"

	"github.com/kalambet/murmur/internal/emotion"
)

func intPtr(v int) *int { return &v }

func fullProfile(id string) Profile {
	return Profile{
		ID:        id,
		City:      "San Francisco",
		Age:       intPtr(31),
		Interests: []string{"hiking", "jazz", "cooking"},
		History: []emotion.Result{
			{Emotion: emotion.Calm, Intensity: 0.5, Confidence: 0.8},
			{Emotion: emotion.Happy, Intensity: 0.7, Confidence: 0.8},
			{Emotion: emotion.Happy, Intensity: 0.6, Confidence: 0.9},
		},
		EntryCount: 12,
	}
}

func TestScore_SelfMatchIsOne(t *testing.T) {
	s, err := NewScorer(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p := fullProfile("a")
	got := s.Score(p, p)
	if math.Abs(got.Total-1.0) > 1e-9 {
		t.Errorf("Total = %v, want exactly 1.0 for self match", got.Total)
	}
	if got.Tier != TierExcellent {
		t.Errorf("Tier = %q, want Excellent", got.Tier)
	}
}

func TestScore_SparseSelfMatchIsOne(t *testing.T) {
	s, _ := NewScorer(nil)
	p := Profile{ID: "sparse", City: "Lisbon"}

	got := s.Score(p, p)
	if math.Abs(got.Total-1.0) > 1e-9 {
		t.Errorf("Total = %v, want exactly 1.0 for sparse self match", got.Total)
	}
}

func TestScore_Symmetric(t *testing.T) {
	s, _ := NewScorer(nil)
	a := fullProfile("a")
	b := Profile{
		ID:        "b",
		City:      "Oakland",
		Age:       intPtr(40),
		Interests: []string{"jazz", "climbing"},
		History: []emotion.Result{
			{Emotion: emotion.Sad, Intensity: 0.6, Confidence: 0.7},
			{Emotion: emotion.Anxious, Intensity: 0.5, Confidence: 0.7},
		},
		EntryCount: 4,
	}

	ab := s.Score(a, b)
	ba := s.Score(b, a)
	if math.Abs(ab.Total-ba.Total) > 1e-12 {
		t.Errorf("Total asymmetric: %v vs %v", ab.Total, ba.Total)
	}
	if !reflect.DeepEqual(ab.Breakdown, ba.Breakdown) {
		t.Errorf("Breakdown asymmetric: %v vs %v", ab.Breakdown, ba.Breakdown)
	}
}

func TestScore_CloseProfilesAreExcellent(t *testing.T) {
	s, _ := NewScorer(nil)
	a := fullProfile("a")
	b := fullProfile("b")
	b.Age = intPtr(31)

	got := s.Score(a, b)
	if got.Total < 0.9 {
		t.Errorf("Total = %v, want >= 0.9 for near-identical profiles", got.Total)
	}
	if got.Tier != TierExcellent {
		t.Errorf("Tier = %q, want Excellent", got.Tier)
	}
}

func TestScore_MissingFieldDefaults(t *testing.T) {
	s, _ := NewScorer(nil)
	sparse := Profile{ID: "sparse"}
	full := fullProfile("full")

	got := s.Score(sparse, full)
	if got.Breakdown[FactorLocation] != defaultLocationScore {
		t.Errorf("location = %v, want default %v", got.Breakdown[FactorLocation], defaultLocationScore)
	}
	if got.Breakdown[FactorMood] != defaultMoodScore {
		t.Errorf("mood = %v, want default %v", got.Breakdown[FactorMood], defaultMoodScore)
	}
	if got.Breakdown[FactorInterests] != defaultInterestScore {
		t.Errorf("interests = %v, want default %v", got.Breakdown[FactorInterests], defaultInterestScore)
	}
	if got.Breakdown[FactorAge] != defaultAgeScore {
		t.Errorf("age = %v, want default %v", got.Breakdown[FactorAge], defaultAgeScore)
	}
	if got.Breakdown[FactorActivity] != 0 {
		t.Errorf("activity = %v, want 0 (0-of-12 entries)", got.Breakdown[FactorActivity])
	}
}

func TestScore_Deterministic(t *testing.T) {
	s, _ := NewScorer(nil)
	a := fullProfile("a")
	b := fullProfile("b")
	b.City = "Berkeley"

	first := s.Score(a, b)
	second := s.Score(a, b)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated scoring differs: %+v vs %+v", first, second)
	}
}

func TestScore_BreakdownBounds(t *testing.T) {
	s, _ := NewScorer(nil)
	a := fullProfile("a")
	b := Profile{ID: "b", City: "Tokyo", Age: intPtr(75), Interests: []string{"chess"},
		History: []emotion.Result{{Emotion: emotion.Angry}}, EntryCount: 900}

	got := s.Score(a, b)
	for factor, v := range got.Breakdown {
		if v < 0 || v > 1 {
			t.Errorf("breakdown[%s] = %v, want in [0,1]", factor, v)
		}
	}
	if got.Total < 0 || got.Total > 1 {
		t.Errorf("Total = %v, want in [0,1]", got.Total)
	}
}

func TestNewScorer_RejectsBadWeights(t *testing.T) {
	_, err := NewScorer(Weights{
		FactorLocation:  0.5,
		FactorMood:      0.5,
		FactorInterests: 0.5,
		FactorAge:       0.5,
		FactorActivity:  0.5,
	})
	if err == nil {
		t.Error("want error for weights summing past 1.0")
	}

	_, err = NewScorer(Weights{FactorLocation: 1.0})
	if err == nil {
		t.Error("want error for missing factors")
	}
}

func TestTierBreakpoints(t *testing.T) {
	cases := []struct {
		total float64
		want  Tier
	}{
		{0.95, TierExcellent},
		{0.8, TierExcellent},
		{0.79, TierGreat},
		{0.6, TierGreat},
		{0.45, TierGood},
		{0.25, TierFair},
		{0.1, TierLimited},
	}
	for _, c := range cases {
		if got := tierFor(c.total); got != c.want {
			t.Errorf("tierFor(%v) = %q, want %q", c.total, got, c.want)
		}
	}
}
