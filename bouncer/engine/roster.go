package engine

import (
	"sync"
)

// A member flagged during roster preparation. Immutable once placed; Index is
// the 0-based position assigned at the last prepare and is what moderators
// reference in spare commands. Indices are a snapshot: re-run list after any
// mutation.
type Candidate struct {
	UserID string
	Tag    string
	Flags  []string
	Score  int
	Index  int
}

// Per-guild suspect lists. Every mutation swaps the slice for a guild in a
// single step under the lock, so a racing reader sees either the old roster
// or the new one, never a half-rewritten list.
type rosterSet struct {
	mu      sync.Mutex
	rosters map[string][]Candidate
}

func newRosterSet() *rosterSet {
	return &rosterSet{
		rosters: make(map[string][]Candidate),
	}
}

// replace installs a freshly prepared roster, discarding any prior one.
func (rs *rosterSet) replace(guildID string, candidates []Candidate) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.rosters[guildID] = candidates
}

// show returns a copy of the current roster. A guild that was never prepared
// reads as empty, not as an error.
func (rs *rosterSet) show(guildID string) []Candidate {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	cur := rs.rosters[guildID]
	out := make([]Candidate, len(cur))
	copy(out, cur)
	return out
}

// spare removes the given positional indices in one atomic pass. Indices
// outside [0, len) are silently ignored. Returns the number of candidates
// removed and whether there was a non-empty roster to operate on. Survivors
// are renumbered, so moderators must re-run list before the next spare.
func (rs *rosterSet) spare(guildID string, indices []int) (int, bool) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	cur := rs.rosters[guildID]
	if len(cur) == 0 {
		return 0, false
	}
	drop := make(map[int]bool, len(indices))
	for _, idx := range indices {
		if idx >= 0 && idx < len(cur) {
			drop[idx] = true
		}
	}
	if len(drop) == 0 {
		return 0, true
	}
	next := make([]Candidate, 0, len(cur)-len(drop))
	for i, c := range cur {
		if !drop[i] {
			c.Index = len(next)
			next = append(next, c)
		}
	}
	rs.rosters[guildID] = next
	return len(drop), true
}

// drain returns the full current roster and clears it.
func (rs *rosterSet) drain(guildID string) []Candidate {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	cur := rs.rosters[guildID]
	delete(rs.rosters, guildID)
	return cur
}
