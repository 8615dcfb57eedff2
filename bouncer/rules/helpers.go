package rules

import (
	"time"

	"github.com/bouncer-bot/bouncer/bouncer/engine"
)

func AccountIsYoungerThan(c *engine.ProfileContext, d time.Duration) bool {
	if c.Profile.CreatedAt.IsZero() {
		return false
	}
	return time.Since(c.Profile.CreatedAt) < d
}
