package rules

import (
	"github.com/bouncer-bot/bouncer/bouncer/engine"
)

// Weight per flag; flags not listed score 1. Tunable policy, not an
// invariant; keep every weight non-negative so scores stay monotonic in the
// flag set.
func DefaultWeights() map[string]int {
	return map[string]int{
		"default-avatar":     1,
		"no-roles":           1,
		"new-account":        1,
		"very-new-account":   2,
		"spam-username":      2,
		"invite-username":    2,
		"invisible-username": 2,
	}
}

func DefaultRules() engine.RuleSet {
	return engine.RuleSet{
		ProfileRules: []engine.ProfileRuleFunc{
			DefaultAvatarRule,
			NoRolesRule,
			AccountAgeRule,
			SpamUsernameRule,
			InviteUsernameRule,
			InvisibleUsernameRule,
		},
		Weights:   DefaultWeights(),
		PreScreen: SuspectNamePreScreen,
	}
}
