package services

import (
	"context"
	"log/slog"
	"time"

	"bilimBack/internal/models"
)

type StatsCounter interface {
	CountUsers(ctx context.Context) (int, error)
	CountActiveSubscribers(ctx context.Context) (int, error)
}

type StatsStore interface {
	Upsert(ctx context.Context, stats models.DashboardStats) error
	Get(ctx context.Context) (models.DashboardStats, error)
}

// StatsService keeps the admin dashboard counters current. Writes that move
// the counters call Notify; a background loop coalesces bursts of events into
// single recomputes and also refreshes on a slow ticker as a safety net.
type StatsService struct {
	Counter StatsCounter
	Store   StatsStore
	Logger  *slog.Logger

	// OnUpdate is invoked with every freshly computed snapshot, used to feed
	// the live dashboard socket. Optional.
	OnUpdate func(models.DashboardStats)

	events chan struct{}
}

func NewStatsService(counter StatsCounter, store StatsStore, logger *slog.Logger) *StatsService {
	if logger == nil {
		logger = slog.Default()
	}
	return &StatsService{
		Counter: counter,
		Store:   store,
		Logger:  logger,
		events:  make(chan struct{}, 1),
	}
}

// Notify marks the counters dirty. Non-blocking; a pending event already
// covers any number of further calls.
func (s *StatsService) Notify() {
	if s == nil {
		return
	}
	select {
	case s.events <- struct{}{}:
	default:
	}
}

// Run recomputes on startup, then on every Notify and every refresh interval,
// until the context is cancelled.
func (s *StatsService) Run(ctx context.Context, refresh time.Duration) {
	if refresh <= 0 {
		refresh = 10 * time.Minute
	}
	ticker := time.NewTicker(refresh)
	defer ticker.Stop()

	s.recompute(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.events:
			s.recompute(ctx)
		case <-ticker.C:
			s.recompute(ctx)
		}
	}
}

// Recompute counts users and active subscribers and persists the snapshot.
func (s *StatsService) Recompute(ctx context.Context) (models.DashboardStats, error) {
	users, err := s.Counter.CountUsers(ctx)
	if err != nil {
		return models.DashboardStats{}, err
	}
	subs, err := s.Counter.CountActiveSubscribers(ctx)
	if err != nil {
		return models.DashboardStats{}, err
	}

	stats := models.DashboardStats{
		Users:         users,
		Subscriptions: subs,
		UpdatedAt:     time.Now(),
	}
	if err := s.Store.Upsert(ctx, stats); err != nil {
		return models.DashboardStats{}, err
	}
	if s.OnUpdate != nil {
		s.OnUpdate(stats)
	}
	return stats, nil
}

func (s *StatsService) recompute(ctx context.Context) {
	if _, err := s.Recompute(ctx); err != nil {
		s.Logger.Error("stats recompute failed", "error", err)
	}
}

// Snapshot returns the last persisted counters without recomputing.
func (s *StatsService) Snapshot(ctx context.Context) (models.DashboardStats, error) {
	return s.Store.Get(ctx)
}
