package emotion

import "strings"

// Polarity word lists for the additive sentiment score: +1 per positive
// word, -1 per negative word. Kept small: the sentiment score is only a
// secondary signal behind the keyword families.
var positiveWords = map[string]struct{}{
	"good": {}, "great": {}, "wonderful": {}, "amazing": {}, "love": {},
	"loved": {}, "beautiful": {}, "best": {}, "better": {}, "nice": {},
	"enjoy": {}, "enjoyed": {}, "fantastic": {}, "awesome": {}, "pleasant": {},
	"grateful": {}, "thankful": {}, "proud": {}, "fun": {}, "laugh": {},
	"laughed": {}, "smile": {}, "smiled": {}, "win": {}, "won": {},
	"success": {}, "bright": {}, "warm": {}, "kind": {}, "sweet": {},
}

var negativeWords = map[string]struct{}{
	"bad": {}, "terrible": {}, "awful": {}, "horrible": {}, "hate": {},
	"hated": {}, "worst": {}, "worse": {}, "ugly": {}, "pain": {},
	"painful": {}, "hurt": {}, "hurts": {}, "cry": {}, "cried": {},
	"fail": {}, "failed": {}, "failure": {}, "wrong": {}, "broken": {},
	"sick": {}, "tired": {}, "exhausted": {}, "alone": {}, "dark": {},
	"cold": {}, "hard": {}, "difficult": {}, "problem": {}, "problems": {},
}

// negationWords are whole-word negation markers.
var negationWords = map[string]struct{}{
	"not": {}, "never": {}, "no": {}, "cannot": {}, "cant": {},
	"dont": {}, "wont": {}, "didnt": {}, "isnt": {}, "nothing": {},
}

// sentimentScore returns the additive polarity score over the tokens:
// +1 per positive word, -1 per negative word.
func sentimentScore(tokens []string) int {
	score := 0
	for _, t := range tokens {
		if _, ok := positiveWords[t]; ok {
			score++
		}
		if _, ok := negativeWords[t]; ok {
			score--
		}
	}
	return score
}

// hasNegation reports whether any token is a negation marker or carries a
// negation prefix ("un-", "dis-"). The prefix check is coarse on purpose:
// it mirrors how the journaling product has always treated negated text,
// and downstream scoring expects that behavior.
func hasNegation(tokens []string) bool {
	for _, t := range tokens {
		if _, ok := negationWords[t]; ok {
			return true
		}
		if len(t) > 4 && (strings.HasPrefix(t, "un") || strings.HasPrefix(t, "dis")) {
			return true
		}
	}
	return false
}
