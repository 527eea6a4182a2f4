package sessions

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// sessionKeyPrefix is the Redis key prefix for session records.
// Keys are derived from a SHA-256 hash of the opaque token so raw
// credentials never appear in Redis.
const sessionKeyPrefix = "session:"

// ErrSessionNotFound indicates the token maps to no live session
// (never issued, expired, or deleted at logout).
var ErrSessionNotFound = errors.New("session not found")

// record is the stored session payload.
type record struct {
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Create stores a session mapping the token to a user id with the given TTL.
func (s *Store) Create(ctx context.Context, token, userID string, ttl time.Duration) error {
	data, err := json.Marshal(record{
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	if err := s.client.Set(ctx, sessionKey(token), data, ttl).Err(); err != nil {
		return fmt.Errorf("store session: %w", err)
	}

	return nil
}

// Lookup resolves a session token to the owning user id.
// Returns ErrSessionNotFound if the session does not exist or has expired.
func (s *Store) Lookup(ctx context.Context, token string) (string, error) {
	data, err := s.client.Get(ctx, sessionKey(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrSessionNotFound
		}
		return "", fmt.Errorf("lookup session: %w", err)
	}

	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		// Corrupted entry - treat as no session
		return "", ErrSessionNotFound
	}

	return rec.UserID, nil
}

// Delete removes a session. Deleting an absent session is not an error.
func (s *Store) Delete(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, sessionKey(token)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// sessionKey derives the Redis key for a token.
func sessionKey(token string) string {
	hash := sha256.Sum256([]byte(token))
	return sessionKeyPrefix + hex.EncodeToString(hash[:16])
}
