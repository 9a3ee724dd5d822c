package auth

import (
	"context"
	"time"
)

// Denylist records tokens revoked before their expiry, keyed by jti.
type Denylist interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// NoopDenylist keeps tokens stateless: nothing is ever revoked.
type NoopDenylist struct{}

func (NoopDenylist) Revoke(context.Context, string, time.Duration) error { return nil }

func (NoopDenylist) IsRevoked(context.Context, string) (bool, error) { return false, nil }
