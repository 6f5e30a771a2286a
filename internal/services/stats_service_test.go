package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"bilimBack/internal/models"
)

type fakeStatsCounter struct {
	users int
	subs  int
}

func (c *fakeStatsCounter) CountUsers(context.Context) (int, error)             { return c.users, nil }
func (c *fakeStatsCounter) CountActiveSubscribers(context.Context) (int, error) { return c.subs, nil }

type fakeStatsStore struct {
	mu   sync.Mutex
	last models.DashboardStats
	set  bool
}

func (s *fakeStatsStore) Upsert(_ context.Context, stats models.DashboardStats) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = stats
	s.set = true
	return nil
}

func (s *fakeStatsStore) Get(context.Context) (models.DashboardStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.set {
		return models.DashboardStats{UpdatedAt: time.Unix(0, 0)}, nil
	}
	return s.last, nil
}

func TestRecompute_CountsAndPersists(t *testing.T) {
	store := &fakeStatsStore{}
	svc := NewStatsService(&fakeStatsCounter{users: 10, subs: 3}, store, nil)

	var pushed models.DashboardStats
	svc.OnUpdate = func(s models.DashboardStats) { pushed = s }

	stats, err := svc.Recompute(context.Background())
	if err != nil {
		t.Fatalf("Recompute: %v", err)
	}
	if stats.Users != 10 || stats.Subscriptions != 3 {
		t.Errorf("stats = %+v", stats)
	}
	if pushed.Users != 10 {
		t.Errorf("OnUpdate not invoked with snapshot: %+v", pushed)
	}

	got, err := svc.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if got.Users != 10 || got.Subscriptions != 3 {
		t.Errorf("persisted = %+v", got)
	}
}

func TestNotify_CoalescesWithoutBlocking(t *testing.T) {
	svc := NewStatsService(&fakeStatsCounter{}, &fakeStatsStore{}, nil)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			svc.Notify()
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Notify blocked")
	}
}

func TestNotify_NilReceiverIsSafe(t *testing.T) {
	var svc *StatsService
	svc.Notify()
}

func TestRun_RecomputesOnNotify(t *testing.T) {
	counter := &fakeStatsCounter{users: 1}
	store := &fakeStatsStore{}
	svc := NewStatsService(counter, store, nil)

	updates := make(chan models.DashboardStats, 8)
	svc.OnUpdate = func(s models.DashboardStats) { updates <- s }

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go svc.Run(ctx, time.Hour)

	// startup recompute
	select {
	case <-updates:
	case <-time.After(time.Second):
		t.Fatal("no startup recompute")
	}

	counter.users = 2
	svc.Notify()
	select {
	case s := <-updates:
		if s.Users != 2 {
			t.Errorf("users = %d, want 2", s.Users)
		}
	case <-time.After(time.Second):
		t.Fatal("no recompute after Notify")
	}
}
