package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the lock only when it is still owned by the caller,
// so a lock that expired and was re-acquired by someone else is left alone.
const releaseScript = `
if redis.call("get", KEYS[1]) == ARGV[1] then
    return redis.call("del", KEYS[1])
end
return 0`

// Locker hands out short-lived per-user advisory locks backed by Redis.
// With a nil client every Acquire succeeds immediately: the conditional
// subscription-clear in the repository is the correctness backstop, the lock
// only prevents duplicate gateway calls.
type Locker struct {
	rdb *redis.Client
}

func NewLocker(rdb *redis.Client) *Locker {
	return &Locker{rdb: rdb}
}

func lockKey(userID int) string {
	return fmt.Sprintf("subscription:cancel:%d", userID)
}

// Acquire tries to take the cancellation lock for the user. It returns a
// release func and whether the lock was obtained. Errors talking to Redis are
// returned so the caller can decide to degrade.
func (l *Locker) Acquire(ctx context.Context, userID int, ttl time.Duration) (func(), bool, error) {
	if l == nil || l.rdb == nil {
		return func() {}, true, nil
	}

	token := uuid.NewString()
	key := lockKey(userID)

	ok, err := l.rdb.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return func() {}, false, err
	}
	if !ok {
		return func() {}, false, nil
	}

	release := func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = l.rdb.Eval(releaseCtx, releaseScript, []string{key}, token).Err()
	}
	return release, true, nil
}
