package engine

import (
	"fmt"
	"strconv"
	"strings"
)

const emptyRosterReply = "The suspect list is empty. Run `prepare` first."

func (e *Engine) handlePing(c *CommandContext) error {
	return c.Reply("pong")
}

// prepare [threshold] — rebuild the suspect roster for the current guild.
// A missing or unparseable threshold falls back to the default.
func (e *Engine) handlePrepare(c *CommandContext) error {
	threshold := e.Config.QuarantineThreshold
	if len(c.Args) > 1 {
		if v, err := strconv.Atoi(c.Args[1]); err == nil {
			threshold = v
		}
	}
	roster, err := e.PrepareRoster(c.Ctx, c.Message.GuildID, threshold)
	if err != nil {
		return err
	}
	c.Logger.Info("roster prepared", "guild", c.Message.GuildID, "threshold", threshold, "suspects", len(roster))
	if len(roster) == 0 {
		return c.Reply(fmt.Sprintf("No suspects found at threshold %d.", threshold))
	}
	return c.Reply(fmt.Sprintf("Prepared %d suspect(s) at threshold %d:\n%s",
		len(roster), threshold, renderRoster(roster)))
}

func (e *Engine) handleList(c *CommandContext) error {
	roster := e.rosters.show(c.Message.GuildID)
	if len(roster) == 0 {
		return c.Reply(emptyRosterReply)
	}
	return c.Reply(renderRoster(roster))
}

// spare <idx[,idx...]> — drop the given indices from the roster without
// touching the members themselves.
func (e *Engine) handleSpare(c *CommandContext) error {
	indices := parseIndices(c.Args[1:])
	removed, ok := e.rosters.spare(c.Message.GuildID, indices)
	if !ok {
		return c.Reply("Nothing to spare. " + emptyRosterReply)
	}
	remaining := len(e.rosters.show(c.Message.GuildID))
	return c.Reply(fmt.Sprintf("Spared %d suspect(s), %d remaining. Run `list` to see updated indices.", removed, remaining))
}

// kick — drain the roster and remove every surviving suspect from the guild.
func (e *Engine) handleKick(c *CommandContext) error {
	drained := e.rosters.drain(c.Message.GuildID)
	if len(drained) == 0 {
		return c.Reply(emptyRosterReply)
	}
	removed := 0
	for _, cand := range drained {
		err := e.Platform.RemoveMember(c.Ctx, c.Message.GuildID, cand.UserID, "removed from suspect list")
		if err != nil {
			// member may have left on their own since prepare
			c.Logger.Warn("failed to remove suspect", "err", err, "user", cand.UserID)
			continue
		}
		removed++
	}
	return c.Reply(fmt.Sprintf("Kicked %d of %d suspect(s).", removed, len(drained)))
}

// verify <code> — DM-only redemption path.
func (e *Engine) handleVerify(c *CommandContext) error {
	code := ""
	if len(c.Args) > 1 {
		code = c.Args[1]
	}
	result, err := e.Redeem(c.Ctx, c.Message.AuthorID, code)
	if err != nil {
		return err
	}
	return c.Reply(result.Reply())
}

// parseIndices flattens space- and comma-separated tokens into 0-based
// indices, silently skipping anything non-numeric.
func parseIndices(args []string) []int {
	var out []int
	for _, arg := range args {
		for _, part := range strings.Split(arg, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			idx, err := strconv.Atoi(part)
			if err != nil {
				continue
			}
			out = append(out, idx)
		}
	}
	return out
}

func renderRoster(roster []Candidate) string {
	var b strings.Builder
	for i, cand := range roster {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "[%d] %s (score %d: %s)", cand.Index, cand.Tag, cand.Score, strings.Join(cand.Flags, ", "))
	}
	return b.String()
}
