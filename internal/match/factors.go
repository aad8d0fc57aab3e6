package match

import (
	"strings"

	"github.com/kalambet/murmur/internal/emotion"
)

// moodHistoryWindow is how many of the most recent emotion entries feed
// the mood factor. Histories are most-recent-last.
const moodHistoryWindow = 3

// Default sub-scores when a factor's inputs are missing. Documented
// fallbacks, never errors: scoring must not throw for sparse profiles.
const (
	defaultLocationScore = 0.1
	defaultMoodScore     = 0.2
	defaultInterestScore = 0.1
	defaultAgeScore      = 0.5
	defaultActivityScore = 0.5
)

// locationScore compares two city strings. Exact case-insensitive match
// scores 1.0; otherwise character-bigram Jaccard similarity is bucketed.
func locationScore(cityA, cityB string) float64 {
	a := strings.ToLower(strings.TrimSpace(cityA))
	b := strings.ToLower(strings.TrimSpace(cityB))
	if a == "" || b == "" {
		return defaultLocationScore
	}
	if a == b {
		return 1.0
	}
	sim := bigramJaccard(a, b)
	switch {
	case sim > 0.8:
		return 0.8
	case sim > 0.6:
		return 0.5
	default:
		return 0.1
	}
}

// bigramJaccard computes Jaccard similarity over character bigrams.
func bigramJaccard(a, b string) float64 {
	setA := bigrams(a)
	setB := bigrams(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}
	intersection := 0
	for g := range setA {
		if _, ok := setB[g]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	return float64(intersection) / float64(union)
}

func bigrams(s string) map[string]struct{} {
	runes := []rune(s)
	set := make(map[string]struct{})
	for i := 0; i+1 < len(runes); i++ {
		set[string(runes[i:i+2])] = struct{}{}
	}
	return set
}

// moodScore compares the two users' recent moods: average the similarity
// vectors over each user's last three entries and take cosine similarity,
// clamped to [0,1].
func moodScore(histA, histB []emotion.Result) float64 {
	if len(histA) == 0 || len(histB) == 0 {
		return defaultMoodScore
	}
	va := averageMoodVector(tail(histA, moodHistoryWindow))
	vb := averageMoodVector(tail(histB, moodHistoryWindow))
	sim := cosineSimilarity(va, vb)
	if sim < 0 {
		return 0
	}
	if sim > 1 {
		return 1
	}
	return sim
}

// tail returns the last n elements of history (all of it when shorter).
func tail(history []emotion.Result, n int) []emotion.Result {
	if len(history) <= n {
		return history
	}
	return history[len(history)-n:]
}

// interestScore is the Jaccard similarity of the case-insensitive
// interest-tag sets.
func interestScore(interestsA, interestsB []string) float64 {
	setA := normalizeTags(interestsA)
	setB := normalizeTags(interestsB)
	if len(setA) == 0 || len(setB) == 0 {
		return defaultInterestScore
	}
	intersection := 0
	for tag := range setA {
		if _, ok := setB[tag]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	return float64(intersection) / float64(union)
}

func normalizeTags(tags []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			set[t] = struct{}{}
		}
	}
	return set
}

// ageScore buckets the absolute age difference.
func ageScore(ageA, ageB *int) float64 {
	if ageA == nil || ageB == nil {
		return defaultAgeScore
	}
	diff := *ageA - *ageB
	if diff < 0 {
		diff = -diff
	}
	switch {
	case diff <= 3:
		return 1.0
	case diff <= 7:
		return 0.8
	case diff <= 12:
		return 0.6
	case diff <= 18:
		return 0.4
	default:
		return 0.2
	}
}

// activityScore is the ratio of the smaller entry-history length to the
// larger, so users journaling at similar rates score high.
func activityScore(countA, countB int) float64 {
	if countA == 0 && countB == 0 {
		return defaultActivityScore
	}
	min, max := countA, countB
	if min > max {
		min, max = max, min
	}
	return float64(min) / float64(max)
}
