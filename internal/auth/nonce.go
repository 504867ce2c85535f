package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"time"

	"onboarding-reminders/internal/database"
)

const noncePrefix = "dispatch:nonce:"

// NonceStore issues and consumes single-use dispatch nonces backed by
// redis, so a nonce survives process restarts but can only be spent once.
type NonceStore struct {
	redis *database.RedisClient
	ttl   time.Duration
}

// NewNonceStore creates a nonce store with the given nonce lifetime.
func NewNonceStore(redis *database.RedisClient, ttl time.Duration) *NonceStore {
	return &NonceStore{redis: redis, ttl: ttl}
}

// Issue creates a fresh nonce valid for the store's TTL.
func (s *NonceStore) Issue(ctx context.Context) (string, error) {
	buf := make([]byte, 16)
	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}
	nonce := hex.EncodeToString(buf)

	if err := s.redis.Set(ctx, noncePrefix+nonce, "1", s.ttl); err != nil {
		return "", fmt.Errorf("failed to store nonce: %w", err)
	}
	return nonce, nil
}

// Consume spends a nonce. It returns true exactly once per issued nonce;
// expired, unknown and already-spent nonces all return false.
func (s *NonceStore) Consume(ctx context.Context, nonce string) bool {
	if nonce == "" {
		return false
	}
	val, err := s.redis.GetDel(ctx, noncePrefix+nonce)
	return err == nil && val != ""
}
