package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"social-go/internal/models"
)

const (
	presenceKeyPrefix = "presence:status:"
	// presenceTTL bounds staleness if an instance dies before writing the
	// offline transition; readers fall back to the database after eviction.
	presenceTTL = 24 * time.Hour
)

// redisPresenceStore mirrors the latest presence status per user. It
// implements services.PresenceStore.
type redisPresenceStore struct {
	client *redis.Client
}

// NewRedisPresenceStore creates a new Redis-backed presence cache.
func NewRedisPresenceStore(client *redis.Client) *redisPresenceStore {
	return &redisPresenceStore{client: client}
}

func presenceKey(userID uint) string {
	return fmt.Sprintf("%s%d", presenceKeyPrefix, userID)
}

// SetStatus writes the user's latest status. lastActive is stored alongside
// via the key's own write time; callers needing the exact timestamp read the
// database row.
func (r *redisPresenceStore) SetStatus(ctx context.Context, userID uint, status models.UserStatus, lastActive time.Time) error {
	if err := r.client.Set(ctx, presenceKey(userID), string(status), presenceTTL).Err(); err != nil {
		return fmt.Errorf("caching presence of user %d: %w", userID, err)
	}
	return nil
}

// GetStatus returns the cached status. The second return is false on a cache
// miss, directing the caller to the database.
func (r *redisPresenceStore) GetStatus(ctx context.Context, userID uint) (models.UserStatus, bool, error) {
	val, err := r.client.Get(ctx, presenceKey(userID)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading cached presence of user %d: %w", userID, err)
	}
	return models.UserStatus(val), true, nil
}
