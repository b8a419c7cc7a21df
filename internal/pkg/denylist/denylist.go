// Package denylist records token identifiers that must be treated as
// invalid before their natural expiry.
//
// Entries are keyed by jti and carry a TTL equal to the token's
// remaining lifetime, so the store evicts an entry exactly when the
// token it shadows would be rejected as expired anyway. Revoking an
// already-revoked or already-expired id is a no-op.
package denylist

import (
	"context"
	"time"
)

const keyPrefix = "auth:denylist:"

// Store is the minimal key-value surface the ledger needs. The
// production implementation is Redis; tests substitute an in-memory one.
type Store interface {
	// SetNX records key for ttl. Recording an existing key is a no-op.
	SetNX(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Exists(ctx context.Context, key string) (bool, error)
}

// Ledger is the process-wide revocation record, safe for concurrent use
// by many in-flight requests.
type Ledger struct {
	store Store
	now   func() time.Time
}

// New builds a ledger on top of a store. The shared Redis client
// satisfies Store directly.
func New(store Store) *Ledger {
	return &Ledger{store: store, now: time.Now}
}

// Revoke marks tokenID invalid until expiresAt. Revoking an id whose
// token has already expired is a successful no-op: the expiry check
// rejects it without the ledger's help.
func (l *Ledger) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	ttl := expiresAt.Sub(l.now())
	if ttl <= 0 {
		return nil
	}
	return l.store.SetNX(ctx, keyPrefix+tokenID, l.now().Unix(), ttl)
}

// IsRevoked reports whether tokenID has been revoked.
func (l *Ledger) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	return l.store.Exists(ctx, keyPrefix+tokenID)
}
