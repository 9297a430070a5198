package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// OTPStore implements ports.OTPStore. Codes expire after their TTL and
// are deleted on first read, so a code can never be replayed.
type OTPStore struct {
	client *goredis.Client
	prefix string
}

// NewOTPStore creates a new Redis-backed OTP store.
func NewOTPStore(client *goredis.Client) *OTPStore {
	return &OTPStore{
		client: client,
		prefix: "otp:",
	}
}

// Set stores the verification code for a user, replacing any previous one.
func (s *OTPStore) Set(ctx context.Context, userID string, code string, ttl time.Duration) error {
	if err := s.client.Set(ctx, s.prefix+userID, code, ttl).Err(); err != nil {
		return fmt.Errorf("redis otp set: %w", err)
	}
	return nil
}

// Consume atomically fetches and deletes the code for userID.
// Returns "" when no code is stored.
func (s *OTPStore) Consume(ctx context.Context, userID string) (string, error) {
	code, err := s.client.GetDel(ctx, s.prefix+userID).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return "", nil
		}
		return "", fmt.Errorf("redis otp getdel: %w", err)
	}
	return code, nil
}
