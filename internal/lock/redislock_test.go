package lock

import (
	"context"
	"testing"
	"time"
)

func TestLockKeyFormat(t *testing.T) {
	if got := lockKey(42); got != "subscription:cancel:42" {
		t.Fatalf("unexpected key %q", got)
	}
}

// Without a Redis client the locker must degrade to a no-op grant so that
// cancellation still works when the cache is down.
func TestAcquireWithoutClient(t *testing.T) {
	var l *Locker
	release, ok, err := l.Acquire(context.Background(), 1, time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("expected nil locker to grant the lock")
	}
	release()

	l = NewLocker(nil)
	release, ok, err = l.Acquire(context.Background(), 1, time.Second)
	if err != nil || !ok {
		t.Fatalf("expected grant from locker with nil client, ok=%v err=%v", ok, err)
	}
	release()
}
