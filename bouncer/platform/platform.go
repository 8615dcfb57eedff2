package platform

import (
	"context"
	"errors"
	"time"
)

// Returned by lookup methods when the platform has no such user, member, or
// guild. Callers distinguish this from transport failures.
var ErrNotFound = errors.New("platform: not found")

// Full user profile as the platform reports it. Everything the heuristic
// rules look at lives here; the gateway adapter is responsible for filling
// in as much as it can.
type Profile struct {
	UserID        string
	Username      string
	Discriminator string
	// empty when the account still uses a platform-assigned default avatar
	AvatarHash string
	RoleIDs    []string
	CreatedAt  time.Time
	Bot        bool
}

func (p *Profile) Tag() string {
	if p.Discriminator == "" {
		return p.Username
	}
	return p.Username + "#" + p.Discriminator
}

func (p *Profile) HasDefaultAvatar() bool {
	return p.AvatarHash == ""
}

// Guild membership entry, as returned by a full member-list fetch.
type Member struct {
	UserID   string
	GuildID  string
	Username string
	Tag      string
}

// Inbound chat message, with the gateway-level framing already stripped away.
type Message struct {
	GuildID   string
	ChannelID string
	AuthorID  string
	AuthorTag string
	Content   string
	// true for direct messages; GuildID is empty in that case
	Direct bool
}

// Client is the surface the moderation engine needs from the chat platform.
// The actual gateway connection (login, event delivery, rate limiting) lives
// behind this interface and is out of scope for the core.
type Client interface {
	// FetchProfile returns the full profile for a user, or ErrNotFound.
	FetchProfile(ctx context.Context, userID string) (*Profile, error)

	// ListMembers returns the complete member list for a guild.
	ListMembers(ctx context.Context, guildID string) ([]Member, error)

	// IsMember reports whether the user currently belongs to the guild.
	IsMember(ctx context.Context, guildID, userID string) (bool, error)

	// GuildAvailable reports whether the process still has access to the
	// guild (not kicked, not deleted, gateway session holds it).
	GuildAvailable(ctx context.Context, guildID string) bool

	// RemoveMember kicks a member out of a guild.
	RemoveMember(ctx context.Context, guildID, userID, reason string) error

	// Restrict places a member in the quarantined state (platform-specific:
	// ban, timeout, or restricted role).
	Restrict(ctx context.Context, guildID, userID, reason string) error

	// Unrestrict lifts a previous Restrict for the user.
	Unrestrict(ctx context.Context, guildID, userID string) error

	// SendDirectMessage delivers a private text message to a user.
	SendDirectMessage(ctx context.Context, userID, text string) error

	// SendChannelMessage posts a text message to a guild channel.
	SendChannelMessage(ctx context.Context, channelID, text string) error
}
