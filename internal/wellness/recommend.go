package wellness

import "github.com/kalambet/murmur/internal/emotion"

// Professional-help thresholds.
const (
	professionalScoreCutoff = 60
	urgentScoreCutoff       = 40
)

// immediateRules keys the immediate bucket on the session's dominant
// emotion.
var immediateRules = map[emotion.Emotion][]Recommendation{
	emotion.Anxious: {
		{Icon: "🫁", Title: "Box breathing", Description: "Four counts in, hold four, four out. Three minutes is enough to downshift."},
		{Icon: "🚶", Title: "Short walk", Description: "Ten minutes outside, no phone. Let the pace settle your thoughts."},
	},
	emotion.Sad: {
		{Icon: "☀️", Title: "Get some sunlight", Description: "Even a few minutes by a bright window helps regulate mood."},
		{Icon: "🎵", Title: "Put on music you love", Description: "One familiar album, start to finish."},
	},
	emotion.Angry: {
		{Icon: "📓", Title: "Write it out", Description: "Put the unsent letter in your journal. Nobody else reads it."},
		{Icon: "🏃", Title: "Burn it off", Description: "Hard exercise for twenty minutes gives the anger somewhere to go."},
	},
	emotion.Happy: {
		{Icon: "📸", Title: "Capture the moment", Description: "Note what made today good while it's fresh — future you will want it."},
	},
	emotion.Excited: {
		{Icon: "🗒️", Title: "Channel the energy", Description: "Sketch the next step on whatever you're excited about."},
	},
	emotion.Calm: {
		{Icon: "🧘", Title: "Stay with it", Description: "Five quiet minutes noticing what helped you get here."},
	},
	emotion.Peaceful: {
		{Icon: "🧘", Title: "Stay with it", Description: "Five quiet minutes noticing what helped you get here."},
	},
	emotion.Neutral: {
		{Icon: "✅", Title: "Quick check-in", Description: "Name one thing you want from tomorrow, however small."},
	},
}

// dailyFixed and weeklyFixed are emotion-independent.
var dailyFixed = []Recommendation{
	{Icon: "🙏", Title: "Gratitude practice", Description: "Three specific things, written down, same time each day."},
	{Icon: "🧘", Title: "Mindfulness minute", Description: "One minute of attention on your breath before the first screen of the day."},
}

var weeklyFixed = []Recommendation{
	{Icon: "👥", Title: "Social connection", Description: "One unhurried conversation with someone who matters to you."},
	{Icon: "🎨", Title: "Creative expression", Description: "An hour of making something — words, food, sound, anything."},
}

var professionalBase = Recommendation{
	Icon: "🩺", Title: "Talk to a professional",
	Description: "A counselor or therapist can help you work through recurring low moods.",
}

var crisisLine = Recommendation{
	Icon: "📞", Title: "Crisis support is available",
	Description: "If things feel unmanageable, call or text a crisis line now. You deserve immediate support.",
	Urgent:      true,
}

// buildRecommendations assembles all four buckets from the dominant
// emotion and the wellness score.
func buildRecommendations(dominant emotion.Emotion, score int) Recommendations {
	immediate, ok := immediateRules[dominant]
	if !ok {
		immediate = immediateRules[emotion.Neutral]
	}

	recs := Recommendations{
		Immediate: immediate,
		Daily:     dailyFixed,
		Weekly:    weeklyFixed,
	}

	if score < professionalScoreCutoff {
		recs.Professional = append(recs.Professional, professionalBase)
		if score < urgentScoreCutoff {
			recs.Professional = append(recs.Professional, crisisLine)
		}
	}

	return recs
}
