// Moderation workflow engine for gatekeeping new members of a chat server.
//
// This package (`github.com/bouncer-bot/bouncer/bouncer/engine`) contains the
// stateful core of the bouncer bot: joining members are scored against a set
// of heuristic rules, and members above the quarantine threshold are
// restricted pending a web-based verification step. Moderators triage the
// per-guild suspect roster with text commands (prepare, list, spare, kick),
// and restricted users redeem their verification either over DM or through
// the external web form.
//
// Heuristic rules live in `bouncer/rules`; see `cmd/bouncer` for a daemon
// built on this package.
package engine
