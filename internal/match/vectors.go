package match

import (
	"math"

	"github.com/kalambet/murmur/internal/emotion"
)

// moodDims is the dimensionality of the per-emotion similarity vectors.
const moodDims = 6

// moodVectors places each emotion in a fixed 6-dimensional space
// (positive valence, negative valence, arousal, stillness, tension,
// serenity). Near emotions like calm and peaceful sit close together;
// opposed ones like happy and sad are near-orthogonal.
var moodVectors = map[emotion.Emotion][moodDims]float64{
	emotion.Happy:    {1.0, 0.0, 0.8, 0.1, 0.0, 0.3},
	emotion.Excited:  {0.9, 0.0, 1.0, 0.0, 0.1, 0.1},
	emotion.Sad:      {0.0, 1.0, 0.1, 0.8, 0.3, 0.1},
	emotion.Angry:    {0.0, 0.9, 0.9, 0.0, 1.0, 0.0},
	emotion.Anxious:  {0.1, 0.7, 0.8, 0.1, 0.9, 0.0},
	emotion.Calm:     {0.5, 0.1, 0.0, 0.9, 0.0, 1.0},
	emotion.Peaceful: {0.6, 0.0, 0.0, 1.0, 0.0, 0.9},
	emotion.Neutral:  {0.4, 0.4, 0.3, 0.4, 0.2, 0.4},
}

// moodVector returns the similarity vector for e, falling back to the
// neutral vector for anything outside the table.
func moodVector(e emotion.Emotion) [moodDims]float64 {
	if v, ok := moodVectors[e]; ok {
		return v
	}
	return moodVectors[emotion.Neutral]
}

// averageMoodVector averages the vectors for the given results.
func averageMoodVector(history []emotion.Result) [moodDims]float64 {
	var sum [moodDims]float64
	for _, r := range history {
		v := moodVector(r.Emotion)
		for i := range sum {
			sum[i] += v[i]
		}
	}
	n := float64(len(history))
	for i := range sum {
		sum[i] /= n
	}
	return sum
}

// cosineSimilarity computes the cosine of the angle between a and b,
// returning 0 when either vector is zero.
func cosineSimilarity(a, b [moodDims]float64) float64 {
	var dot, normA, normB float64
	for i := 0; i < moodDims; i++ {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
