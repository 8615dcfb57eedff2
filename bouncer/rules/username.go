package rules

import (
	"regexp"
	"strings"

	"github.com/bouncer-bot/bouncer/bouncer/engine"
	"github.com/bouncer-bot/bouncer/bouncer/platform"
)

// "FirstnameLastname1234" style generated names, or plain word + long digit
// run. Matches the bulk of the spam accounts this bot was written for.
var spamUsernamePattern = regexp.MustCompile(`^(?:[A-Z][a-z]+){1,3}\d{2,}$|^[A-Za-z]+\d{4,}$`)

var _ engine.ProfileRuleFunc = SpamUsernameRule

func SpamUsernameRule(c *engine.ProfileContext, profile *platform.Profile) error {
	if spamUsernamePattern.MatchString(profile.Username) {
		c.AddFlag("spam-username")
	}
	return nil
}

var _ engine.ProfileRuleFunc = InviteUsernameRule

// usernames advertising server invites or links
func InviteUsernameRule(c *engine.ProfileContext, profile *platform.Profile) error {
	name := strings.ToLower(profile.Username)
	if strings.Contains(name, "discord.gg") || strings.Contains(name, "http://") || strings.Contains(name, "https://") {
		c.AddFlag("invite-username")
	}
	return nil
}

// zero-width and bidi-control characters used to disguise impersonation
var invisibleChars = []rune{
	'\u200b', // zero width space
	'\u200c', // zero width non-joiner
	'\u200d', // zero width joiner
	'\u2060', // word joiner
	'\u202e', // right-to-left override
	'\ufeff', // zero width no-break space
}

var _ engine.ProfileRuleFunc = InvisibleUsernameRule

func InvisibleUsernameRule(c *engine.ProfileContext, profile *platform.Profile) error {
	for _, r := range invisibleChars {
		if strings.ContainsRune(profile.Username, r) {
			c.AddFlag("invisible-username")
			break
		}
	}
	return nil
}

// SuspectNamePreScreen is the roster-preparation predicate: only members
// whose name already looks machine-generated are worth a profile fetch during
// a full-guild sweep. Join-time evaluation does not use this; every joining
// member is scored.
func SuspectNamePreScreen(member platform.Member) bool {
	return spamUsernamePattern.MatchString(member.Username)
}
