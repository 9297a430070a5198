package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// TokenDenylist implements ports.TokenDenylist. Revoked refresh token ids
// live exactly as long as the token itself would have; after that the JWT
// expiry check takes over.
type TokenDenylist struct {
	client *goredis.Client
	prefix string
}

// NewTokenDenylist creates a new Redis-backed token denylist.
func NewTokenDenylist(client *goredis.Client) *TokenDenylist {
	return &TokenDenylist{
		client: client,
		prefix: "denylist:",
	}
}

// Revoke marks a refresh token id as unusable for ttl.
func (s *TokenDenylist) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if err := s.client.Set(ctx, s.prefix+tokenID, "1", ttl).Err(); err != nil {
		return fmt.Errorf("redis denylist set: %w", err)
	}
	return nil
}

// IsRevoked reports whether the token id has been revoked.
func (s *TokenDenylist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := s.client.Exists(ctx, s.prefix+tokenID).Result()
	if err != nil {
		return false, fmt.Errorf("redis denylist exists: %w", err)
	}
	return n > 0, nil
}
