package engine

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bouncer-bot/bouncer/bouncer/keystore"
)

// Persisted record of a pending quarantine. Keyed by Token in the
// verification dictionary, with a user-ID index alongside. Deleted on
// successful redemption; never mutated otherwise.
type VerificationRecord struct {
	Token    string    `json:"token"`
	UserID   string    `json:"user_id"`
	Tag      string    `json:"tag"`
	GuildID  string    `json:"guild_id"`
	IssuedAt time.Time `json:"issued_at"`
	Code     string    `json:"code"`
}

// Ledger owns the verification and whitelist dictionaries. TTL of zero means
// pending records never expire.
type Ledger struct {
	Store keystore.KeyStore
	TTL   time.Duration
}

// Issue creates and persists a fresh verification record for the user. At
// most one record is live per user: a prior pending record is revoked first
// (last-write-wins on repeated bans).
func (l *Ledger) Issue(ctx context.Context, userID, tag, guildID string) (*VerificationRecord, error) {
	prior, err := l.LookupByUser(ctx, userID)
	if err != nil && !errors.Is(err, keystore.ErrNotFound) {
		return nil, fmt.Errorf("checking for prior record: %w", err)
	}
	if prior != nil {
		if err := l.Revoke(ctx, prior); err != nil {
			return nil, fmt.Errorf("revoking prior record: %w", err)
		}
	}

	code, err := newVerificationCode()
	if err != nil {
		return nil, fmt.Errorf("generating verification code: %w", err)
	}
	rec := &VerificationRecord{
		Token:    uuid.NewString(),
		UserID:   userID,
		Tag:      tag,
		GuildID:  guildID,
		IssuedAt: time.Now().UTC(),
		Code:     code,
	}
	val, err := json.Marshal(rec)
	if err != nil {
		return nil, err
	}
	if err := l.Store.Put(ctx, keystore.DictVerification, rec.Token, val); err != nil {
		return nil, fmt.Errorf("persisting verification record: %w", err)
	}
	if err := l.Store.Put(ctx, keystore.DictVerificationUser, userID, []byte(rec.Token)); err != nil {
		return nil, fmt.Errorf("persisting user index: %w", err)
	}
	return rec, nil
}

// LookupByToken returns the pending record for a ban token, or
// keystore.ErrNotFound. Expired records read as absent and are pruned.
func (l *Ledger) LookupByToken(ctx context.Context, token string) (*VerificationRecord, error) {
	val, err := l.Store.Get(ctx, keystore.DictVerification, token)
	if err != nil {
		return nil, err
	}
	var rec VerificationRecord
	if err := json.Unmarshal(val, &rec); err != nil {
		return nil, fmt.Errorf("decoding verification record: %w", err)
	}
	if l.expired(&rec) {
		if err := l.Revoke(ctx, &rec); err != nil {
			return nil, err
		}
		return nil, keystore.ErrNotFound
	}
	return &rec, nil
}

// LookupByUser returns the pending record for a user, or keystore.ErrNotFound.
func (l *Ledger) LookupByUser(ctx context.Context, userID string) (*VerificationRecord, error) {
	token, err := l.Store.Get(ctx, keystore.DictVerificationUser, userID)
	if err != nil {
		return nil, err
	}
	rec, err := l.LookupByToken(ctx, string(token))
	if errors.Is(err, keystore.ErrNotFound) {
		// dangling index entry; clean it up
		_ = l.Store.Delete(ctx, keystore.DictVerificationUser, userID)
		return nil, keystore.ErrNotFound
	}
	return rec, err
}

// Revoke deletes a record and its user index entry.
func (l *Ledger) Revoke(ctx context.Context, rec *VerificationRecord) error {
	if err := l.Store.Delete(ctx, keystore.DictVerification, rec.Token); err != nil {
		return err
	}
	return l.Store.Delete(ctx, keystore.DictVerificationUser, rec.UserID)
}

// Whitelist marks a user as exempt from future quarantine.
func (l *Ledger) Whitelist(ctx context.Context, userID string) error {
	return l.Store.Put(ctx, keystore.DictWhitelist, userID, []byte("1"))
}

func (l *Ledger) IsWhitelisted(ctx context.Context, userID string) (bool, error) {
	_, err := l.Store.Get(ctx, keystore.DictWhitelist, userID)
	if errors.Is(err, keystore.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (l *Ledger) expired(rec *VerificationRecord) bool {
	if l.TTL <= 0 {
		return false
	}
	return time.Since(rec.IssuedAt) > l.TTL
}

// 8 hex chars from a CSPRNG; the secret the user must echo back after the
// CAPTCHA step.
func newVerificationCode() (string, error) {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
