package keystore

import (
	"context"
	"errors"
)

// Logical dictionary names used by the moderation core. Each dictionary is an
// independent key space; backends must not let keys from different
// dictionaries collide.
const (
	DictVerification     = "verification"      // ban token -> VerificationRecord JSON
	DictVerificationUser = "verification-user" // user ID -> ban token
	DictWhitelist        = "whitelist"         // user ID -> "1"
)

var ErrNotFound = errors.New("keystore: key not found")

// KeyStore is the durable key/value contract the moderation core persists
// through. Implementations are conflict-free per key; no cross-key
// transactions are offered or needed.
type KeyStore interface {
	Get(ctx context.Context, dict, key string) ([]byte, error)
	Put(ctx context.Context, dict, key string, val []byte) error
	Delete(ctx context.Context, dict, key string) error
}
