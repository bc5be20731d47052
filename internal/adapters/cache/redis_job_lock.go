package cache

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the lock only when the caller still holds it, so a
// slow job whose lock expired cannot release a successor's lock.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
    return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisJobLockStore implements the per-tenant single-flight lock for deletion
// jobs with SET NX and a TTL, so a crashed worker never wedges a tenant.
type RedisJobLockStore struct {
	client *redis.Client
}

func NewRedisJobLockStore(client *redis.Client) *RedisJobLockStore {
	return &RedisJobLockStore{client: client}
}

func (s *RedisJobLockStore) Acquire(ctx context.Context, tenantID string, ttl time.Duration) (string, bool, error) {
	token := uuid.NewString()
	ok, err := s.client.SetNX(ctx, lockKey(tenantID), token, ttl).Result()
	if err != nil {
		return "", false, err
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

func (s *RedisJobLockStore) Release(ctx context.Context, tenantID, token string) error {
	return releaseScript.Run(ctx, s.client, []string{lockKey(tenantID)}, token).Err()
}

func lockKey(tenantID string) string {
	return "assurance:job_lock:" + tenantID
}
