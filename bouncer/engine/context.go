package engine

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/bouncer-bot/bouncer/bouncer/platform"
)

// The interface exposed to heuristic rules: one freshly-fetched profile plus
// a place to accumulate flags. Rules must be pure apart from AddFlag; all
// platform I/O happens before rule execution.
type ProfileContext struct {
	// Actual golang "context.Context", if needed for timeouts etc
	Ctx context.Context
	// slog logger handle, with event-specific structured fields pre-populated
	Logger *slog.Logger

	Profile platform.Profile

	effects *Effects
}

// AddFlag records a named heuristic signal against the profile under
// evaluation. Adding the same flag twice has no additional effect on the
// score.
func (c *ProfileContext) AddFlag(val string) {
	c.effects.AddFlag(val)
}

// Flags returns the de-duplicated, sorted flag set accumulated so far.
func (c *ProfileContext) Flags() []string {
	return c.effects.Flags()
}

// Flag side effects accumulated during rule execution.
type Effects struct {
	mu    sync.Mutex
	flags []string
}

func (e *Effects) AddFlag(val string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, v := range e.flags {
		if v == val {
			return
		}
	}
	e.flags = append(e.flags, val)
}

func (e *Effects) Flags() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, len(e.flags))
	copy(out, e.flags)
	sort.Strings(out)
	return out
}

func NewProfileContext(ctx context.Context, logger *slog.Logger, profile platform.Profile) *ProfileContext {
	return &ProfileContext{
		Ctx:     ctx,
		Logger:  logger.With("user", profile.UserID, "tag", profile.Tag()),
		Profile: profile,
		effects: &Effects{},
	}
}
