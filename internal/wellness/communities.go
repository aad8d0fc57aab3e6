package wellness

import (
	"strings"

	"github.com/kalambet/murmur/internal/emotion"
)

// themeRule maps transcript keywords to a community suggestion.
// Communities are pure rules, no remote call.
type themeRule struct {
	keywords  []string
	community Community
}

var themeRules = []themeRule{
	{
		keywords: []string{"work", "job", "boss", "deadline", "office", "career"},
		community: Community{Icon: "💼", Name: "Work-stress circle",
			Description: "Peers who talk through workload, deadlines, and difficult managers."},
	},
	{
		keywords: []string{"family", "parent", "parents", "kid", "kids", "mom", "dad", "sibling"},
		community: Community{Icon: "🏠", Name: "Family support group",
			Description: "A space for navigating family dynamics and caregiving."},
	},
	{
		keywords: []string{"creative", "art", "music", "writing", "paint", "song"},
		community: Community{Icon: "🎨", Name: "Creative journaling collective",
			Description: "People who process their weeks through making things."},
	},
	{
		keywords: []string{"sleep", "tired", "insomnia", "exhausted"},
		community: Community{Icon: "😴", Name: "Rest and recovery group",
			Description: "Swapping what actually helps with sleep and burnout."},
	},
}

// emotionCommunities adds one suggestion keyed on the dominant emotion.
var emotionCommunities = map[emotion.Emotion]Community{
	emotion.Anxious: {Icon: "🧘", Name: "Mindfulness practice group",
		Description: "Guided sessions for quieting an overactive mind."},
	emotion.Sad: {Icon: "🤝", Name: "Peer listening circle",
		Description: "Low-pressure conversations with people who get it."},
	emotion.Angry: {Icon: "🏃", Name: "Movement and release club",
		Description: "Channeling frustration into runs, lifts, and long walks."},
	emotion.Happy: {Icon: "🙏", Name: "Gratitude exchange",
		Description: "Sharing the good weeks makes them count double."},
	emotion.Excited: {Icon: "🚀", Name: "Builders and starters meetup",
		Description: "People turning bursts of energy into projects."},
}

// buildCommunities scans the session transcript for theme keywords, then
// adds an emotion-keyed suggestion. Order: themes in rule order, emotion
// suggestion last.
func buildCommunities(transcript string, dominant emotion.Emotion) []Community {
	var out []Community
	lower := strings.ToLower(transcript)

	for _, rule := range themeRules {
		for _, kw := range rule.keywords {
			if containsWord(lower, kw) {
				out = append(out, rule.community)
				break
			}
		}
	}

	if c, ok := emotionCommunities[dominant]; ok {
		out = append(out, c)
	}

	if len(out) == 0 {
		out = append(out, Community{Icon: "💬", Name: "Open journaling circle",
			Description: "A general space to share whatever the week brought."})
	}
	if len(out) > 3 {
		out = out[:3]
	}
	return out
}

// containsWord reports whether lower contains kw as a whole word.
func containsWord(lower, kw string) bool {
	idx := 0
	for {
		i := strings.Index(lower[idx:], kw)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(kw)
		beforeOK := start == 0 || !isWordChar(lower[start-1])
		afterOK := end == len(lower) || !isWordChar(lower[end])
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
	}
}

func isWordChar(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= '0' && b <= '9'
}
