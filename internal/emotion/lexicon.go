package emotion

import (
	"context"
	"fmt"
	"strings"
	"unicode"
)

// Family is one emotion's keyword set. Families are matched independently;
// declaration order breaks ties (earlier wins).
type Family struct {
	Emotion  Emotion
	Keywords []string
}

// Lexicon is the immutable table a LexiconClassifier scores against.
// It is injected at construction so the classification logic stays a pure
// function of (input, table) and the tables stay independently testable.
type Lexicon struct {
	families []Family
	sets     []map[string]struct{}
}

// NewLexicon builds a Lexicon from the given families.
func NewLexicon(families []Family) *Lexicon {
	sets := make([]map[string]struct{}, len(families))
	for i, f := range families {
		set := make(map[string]struct{}, len(f.Keywords))
		for _, kw := range f.Keywords {
			set[strings.ToLower(kw)] = struct{}{}
		}
		sets[i] = set
	}
	return &Lexicon{families: families, sets: sets}
}

// DefaultLexicon returns the built-in keyword tables. Neutral has no
// family: it is the no-match fallback. Peaceful likewise has no keywords
// and is only reachable via the remote path, audio input, or fusion.
func DefaultLexicon() *Lexicon {
	return NewLexicon([]Family{
		{Happy, []string{
			"happy", "joy", "joyful", "glad", "cheerful", "delighted",
			"content", "pleased", "thrilled", "blessed", "sunny",
		}},
		{Sad, []string{
			"sad", "unhappy", "depressed", "down", "miserable", "gloomy",
			"heartbroken", "lonely", "grief", "crying", "tearful", "hopeless",
		}},
		{Angry, []string{
			"angry", "mad", "furious", "annoyed", "irritated", "frustrated",
			"rage", "outraged", "resentful", "fed",
		}},
		{Anxious, []string{
			"anxious", "worried", "nervous", "afraid", "scared", "panicked",
			"overwhelmed", "stressed", "uneasy", "tense", "dread", "restless",
		}},
		{Calm, []string{
			"calm", "relaxed", "serene", "peaceful", "tranquil", "settled",
			"centered", "grounded", "quiet", "still", "rested",
		}},
		{Excited, []string{
			"excited", "thrilled", "eager", "pumped", "energized", "ecstatic",
			"exhilarated", "hyped", "stoked", "buzzing",
		}},
	})
}

// LexiconClassifier is the deterministic fallback classifier. It never
// fails and has no external dependencies.
type LexiconClassifier struct {
	lexicon *Lexicon
}

// NewLexiconClassifier creates a classifier over the given table.
// Pass nil to use the built-in DefaultLexicon.
func NewLexiconClassifier(lex *Lexicon) *LexiconClassifier {
	if lex == nil {
		lex = DefaultLexicon()
	}
	return &LexiconClassifier{lexicon: lex}
}

func (c *LexiconClassifier) Name() string { return ProvenanceLexicon }

// Classify scores text against the keyword families. The family with the
// most whole-word matches wins, ties keeping the first-declared family.
// With zero keyword matches the additive sentiment score decides:
// negation or negative polarity classifies as sad, strongly positive as
// happy, everything else as neutral.
func (c *LexiconClassifier) Classify(_ context.Context, text string) (Result, error) {
	if strings.TrimSpace(text) == "" {
		return Result{}, ErrInvalidInput
	}

	tokens := tokenize(text)
	if len(tokens) == 0 {
		// Punctuation-only input: nothing to score.
		return Result{
			Emotion:    Neutral,
			Confidence: 0.4,
			Provenance: ProvenanceLexicon,
			Reasoning:  "no scorable tokens",
		}, nil
	}
	sentiment := sentimentScore(tokens)

	bestIdx := -1
	bestCount := 0
	var bestTriggers []string
	for i, set := range c.lexicon.sets {
		count := 0
		var triggers []string
		for _, t := range tokens {
			if _, ok := set[t]; ok {
				count++
				triggers = append(triggers, t)
			}
		}
		if count > bestCount {
			bestIdx = i
			bestCount = count
			bestTriggers = triggers
		}
	}

	abs := sentiment
	if abs < 0 {
		abs = -abs
	}

	r := Result{
		Provenance: ProvenanceLexicon,
		Intensity:  float64(bestCount)/float64(len(tokens))*10 + float64(abs)/10,
	}

	if bestCount > 0 {
		r.Emotion = c.lexicon.families[bestIdx].Emotion
		r.Confidence = 0.7 + 0.1*float64(bestCount)
		if r.Confidence > 0.9 {
			r.Confidence = 0.9
		}
		r.Triggers = bestTriggers
		r.Reasoning = fmt.Sprintf("matched %d %s keyword(s)", bestCount, r.Emotion)
	} else {
		switch {
		case sentiment < 0 || hasNegation(tokens):
			r.Emotion = Sad
			r.Reasoning = "no keyword match; negative or negated phrasing"
		case sentiment > 3:
			r.Emotion = Happy
			r.Reasoning = "no keyword match; strongly positive phrasing"
		default:
			r.Emotion = Neutral
			r.Reasoning = "no keyword match; neutral phrasing"
		}
		r.Confidence = 0.4 + 0.05*float64(abs)
		if r.Confidence > 0.7 {
			r.Confidence = 0.7
		}
	}

	r.normalize()
	return r, nil
}

// tokenize lowercases and splits on whitespace, trimming surrounding
// punctuation so "happy," matches the keyword "happy".
func tokenize(text string) []string {
	fields := strings.Fields(strings.ToLower(text))
	tokens := fields[:0]
	for _, f := range fields {
		t := strings.TrimFunc(f, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsNumber(r)
		})
		// Apostrophes are dropped entirely so "don't" matches "dont".
		t = strings.ReplaceAll(t, "'", "")
		if t != "" {
			tokens = append(tokens, t)
		}
	}
	return tokens
}
