package match

// Materiality thresholds: a factor is only worth mentioning in generated
// reasoning when its sub-score clears the cutoff.
type reasonRule struct {
	factor    Factor
	threshold float64
	clause    string
}

// reasonRules are checked in order, so the reasoning list is stable for
// identical breakdowns.
var reasonRules = []reasonRule{
	{FactorLocation, 0.8, "lives in your city"},
	{FactorLocation, 0.4, "lives nearby"},
	{FactorMood, 0.7, "has very similar recent moods"},
	{FactorMood, 0.5, "has been in a compatible headspace lately"},
	{FactorInterests, 0.5, "shares several of your interests"},
	{FactorInterests, 0.2, "shares some of your interests"},
	{FactorAge, 0.7, "is close to your age"},
	{FactorActivity, 0.7, "journals about as often as you do"},
}

const neutralClause = "could bring a fresh perspective"

// buildReasoning collects the strongest matched clause per factor.
// Zero matches yields a single neutral filler clause.
func buildReasoning(breakdown map[Factor]float64) []string {
	var clauses []string
	seen := make(map[Factor]bool)
	for _, rule := range reasonRules {
		if seen[rule.factor] {
			continue
		}
		if breakdown[rule.factor] > rule.threshold {
			clauses = append(clauses, rule.clause)
			seen[rule.factor] = true
		}
	}
	if len(clauses) == 0 {
		return []string{neutralClause}
	}
	return clauses
}

// JoinClauses renders a reasoning list as a grammatical English list:
// "X", "X and Y", "X, Y, and Z".
func JoinClauses(clauses []string) string {
	switch len(clauses) {
	case 0:
		return neutralClause
	case 1:
		return clauses[0]
	case 2:
		return clauses[0] + " and " + clauses[1]
	default:
		out := ""
		for i, c := range clauses {
			switch {
			case i == len(clauses)-1:
				out += "and " + c
			default:
				out += c + ", "
			}
		}
		return out
	}
}
