package rules

import (
	"time"

	"github.com/bouncer-bot/bouncer/bouncer/engine"
	"github.com/bouncer-bot/bouncer/bouncer/platform"
)

var _ engine.ProfileRuleFunc = DefaultAvatarRule

// accounts that never bothered to set an avatar
func DefaultAvatarRule(c *engine.ProfileContext, profile *platform.Profile) error {
	if profile.HasDefaultAvatar() {
		c.AddFlag("default-avatar")
	}
	return nil
}

var _ engine.ProfileRuleFunc = NoRolesRule

func NoRolesRule(c *engine.ProfileContext, profile *platform.Profile) error {
	if len(profile.RoleIDs) == 0 {
		c.AddFlag("no-roles")
	}
	return nil
}

var _ engine.ProfileRuleFunc = AccountAgeRule

// throwaway accounts tend to be created right before joining
func AccountAgeRule(c *engine.ProfileContext, profile *platform.Profile) error {
	if profile.CreatedAt.IsZero() {
		return nil
	}
	if AccountIsYoungerThan(c, 24*time.Hour) {
		c.AddFlag("new-account")
		c.AddFlag("very-new-account")
	} else if AccountIsYoungerThan(c, 7*24*time.Hour) {
		c.AddFlag("new-account")
	}
	return nil
}
