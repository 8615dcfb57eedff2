package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/bouncer-bot/bouncer/bouncer/keystore"
)

// Outcome of a redemption attempt. Everything except RedeemSuccess and
// storage errors is a user-input or collaborator condition surfaced as a
// reply, not a fault.
type RedeemResult int

const (
	RedeemSuccess RedeemResult = iota
	RedeemNoPending
	RedeemMissingCode
	RedeemWrongCode
	RedeemGuildUnavailable
	RedeemNotMember
)

func (r RedeemResult) String() string {
	switch r {
	case RedeemSuccess:
		return "success"
	case RedeemNoPending:
		return "no-pending-verification"
	case RedeemMissingCode:
		return "missing-code"
	case RedeemWrongCode:
		return "wrong-code"
	case RedeemGuildUnavailable:
		return "group-unavailable"
	case RedeemNotMember:
		return "not-a-member"
	}
	return fmt.Sprintf("unknown(%d)", int(r))
}

// Human-readable reply text for the verifying user.
func (r RedeemResult) Reply() string {
	switch r {
	case RedeemSuccess:
		return "You're verified! Your restriction has been lifted and you won't be flagged again."
	case RedeemNoPending:
		return "There is no pending verification for you."
	case RedeemMissingCode:
		return "You need to supply a verification code."
	case RedeemWrongCode:
		return "That verification code is not correct."
	case RedeemGuildUnavailable:
		return "The server you were flagged on is no longer available."
	case RedeemNotMember:
		return "You are no longer a member of the server you were flagged on."
	}
	return "Something went wrong, try again later."
}

// Redeem attempts to complete verification for a user. On success the pending
// record is deleted, the user is whitelisted, and the platform restriction is
// lifted. Idempotent under replay: once the record is gone, a second
// identical attempt reports RedeemNoPending.
//
// Also the surface consumed by the external verification web server.
func (e *Engine) Redeem(ctx context.Context, userID, code string) (RedeemResult, error) {
	logger := e.Logger.With("user", userID)

	if code == "" {
		redeemCount.WithLabelValues(RedeemMissingCode.String()).Inc()
		return RedeemMissingCode, nil
	}

	rec, err := e.Ledger.LookupByUser(ctx, userID)
	if errors.Is(err, keystore.ErrNotFound) {
		redeemCount.WithLabelValues(RedeemNoPending.String()).Inc()
		return RedeemNoPending, nil
	} else if err != nil {
		return RedeemNoPending, fmt.Errorf("looking up verification record: %w", err)
	}

	// exact string equality, no normalization
	if code != rec.Code {
		redeemCount.WithLabelValues(RedeemWrongCode.String()).Inc()
		return RedeemWrongCode, nil
	}

	if !e.Platform.GuildAvailable(ctx, rec.GuildID) {
		redeemCount.WithLabelValues(RedeemGuildUnavailable.String()).Inc()
		return RedeemGuildUnavailable, nil
	}
	member, err := e.Platform.IsMember(ctx, rec.GuildID, userID)
	if err != nil {
		return RedeemNoPending, fmt.Errorf("checking membership: %w", err)
	}
	if !member {
		redeemCount.WithLabelValues(RedeemNotMember.String()).Inc()
		return RedeemNotMember, nil
	}

	if err := e.Ledger.Revoke(ctx, rec); err != nil {
		return RedeemNoPending, fmt.Errorf("deleting verification record: %w", err)
	}
	if err := e.Ledger.Whitelist(ctx, userID); err != nil {
		return RedeemNoPending, fmt.Errorf("whitelisting user: %w", err)
	}
	if err := e.Platform.Unrestrict(ctx, rec.GuildID, userID); err != nil {
		// record is already gone and the user whitelisted; log rather than
		// fail the whole redemption
		logger.Error("failed to lift restriction after redemption", "err", err, "guild", rec.GuildID)
	}

	logger.Info("verification redeemed", "guild", rec.GuildID, "token", rec.Token)
	redeemCount.WithLabelValues(RedeemSuccess.String()).Inc()
	return RedeemSuccess, nil
}
