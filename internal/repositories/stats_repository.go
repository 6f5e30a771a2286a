package repositories

import (
	"context"
	"database/sql"
	"time"

	"bilimBack/internal/models"
)

type StatsRepository struct {
	DB *sql.DB
}

// Upsert writes the dashboard singleton under a fixed primary key, so the
// very first recompute bootstraps the row and later ones overwrite it.
func (r *StatsRepository) Upsert(ctx context.Context, stats models.DashboardStats) error {
	query := `
        INSERT INTO stats (id, users, subscriptions, updated_at)
        VALUES (1, ?, ?, ?)
        ON DUPLICATE KEY UPDATE users = VALUES(users), subscriptions = VALUES(subscriptions), updated_at = VALUES(updated_at)
    `
	_, err := r.DB.ExecContext(ctx, query, stats.Users, stats.Subscriptions, stats.UpdatedAt)
	return err
}

func (r *StatsRepository) Get(ctx context.Context) (models.DashboardStats, error) {
	var stats models.DashboardStats
	query := `SELECT users, subscriptions, updated_at FROM stats WHERE id = 1`
	err := r.DB.QueryRowContext(ctx, query).Scan(&stats.Users, &stats.Subscriptions, &stats.UpdatedAt)
	if err == sql.ErrNoRows {
		return models.DashboardStats{UpdatedAt: time.Unix(0, 0)}, nil
	}
	if err != nil {
		return models.DashboardStats{}, err
	}
	return stats, nil
}
