package engine

import (
	"github.com/bouncer-bot/bouncer/bouncer/platform"
)

type ProfileRuleFunc func(c *ProfileContext, profile *platform.Profile) error

// Holds the configured heuristic rules and the scoring policy, and helps
// dispatch profile evaluation to the rules. Rules are evaluated
// independently; the score is a weighted sum over the triggered flag set, so
// adding flags can never lower a score (all weights are non-negative).
type RuleSet struct {
	ProfileRules []ProfileRuleFunc

	// Weight per flag name; flags without an entry count as defaultFlagWeight.
	// Negative weights are clamped to zero to keep scoring monotonic.
	Weights map[string]int

	// Pre-screening predicate applied to the raw member list before any
	// profile fetch during roster preparation. nil means every member is
	// evaluated.
	PreScreen func(member platform.Member) bool
}

const defaultFlagWeight = 1

// Executes all profile rules. Only dispatches execution, does no de-dupe or
// pre/post processing.
func (r *RuleSet) CallProfileRules(c *ProfileContext) error {
	for _, f := range r.ProfileRules {
		if err := f(c, &c.Profile); err != nil {
			return err
		}
	}
	return nil
}

// Score computes the aggregate risk score for a flag set. Deterministic, and
// monotonic in the flag set: a superset of flags always scores at least as
// high.
func (r *RuleSet) Score(flags []string) int {
	seen := make(map[string]bool, len(flags))
	total := 0
	for _, f := range flags {
		if seen[f] {
			continue
		}
		seen[f] = true
		w, ok := r.Weights[f]
		if !ok {
			w = defaultFlagWeight
		}
		if w < 0 {
			w = 0
		}
		total += w
	}
	return total
}
