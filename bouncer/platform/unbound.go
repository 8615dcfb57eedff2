package platform

import (
	"context"
	"errors"
	"log/slog"
)

var ErrUnbound = errors.New("platform: no gateway client bound")

// UnboundClient is the default client when the daemon runs without a gateway
// binding attached (verification endpoint and metrics only). Lookups fail
// with ErrUnbound; outbound actions log and drop.
type UnboundClient struct {
	Logger *slog.Logger
}

var _ Client = (*UnboundClient)(nil)

func (u *UnboundClient) FetchProfile(ctx context.Context, userID string) (*Profile, error) {
	return nil, ErrUnbound
}

func (u *UnboundClient) ListMembers(ctx context.Context, guildID string) ([]Member, error) {
	return nil, ErrUnbound
}

func (u *UnboundClient) IsMember(ctx context.Context, guildID, userID string) (bool, error) {
	return false, ErrUnbound
}

func (u *UnboundClient) GuildAvailable(ctx context.Context, guildID string) bool {
	return false
}

func (u *UnboundClient) RemoveMember(ctx context.Context, guildID, userID, reason string) error {
	u.Logger.Warn("dropping member removal, no gateway bound", "guild", guildID, "user", userID)
	return nil
}

func (u *UnboundClient) Restrict(ctx context.Context, guildID, userID, reason string) error {
	u.Logger.Warn("dropping restrict, no gateway bound", "guild", guildID, "user", userID)
	return nil
}

func (u *UnboundClient) Unrestrict(ctx context.Context, guildID, userID string) error {
	u.Logger.Warn("dropping unrestrict, no gateway bound", "guild", guildID, "user", userID)
	return nil
}

func (u *UnboundClient) SendDirectMessage(ctx context.Context, userID, text string) error {
	u.Logger.Warn("dropping direct message, no gateway bound", "user", userID)
	return nil
}

func (u *UnboundClient) SendChannelMessage(ctx context.Context, channelID, text string) error {
	u.Logger.Warn("dropping channel message, no gateway bound", "channel", channelID)
	return nil
}
