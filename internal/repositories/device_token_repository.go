package repositories

import (
	"context"
	"database/sql"
)

type DeviceTokenRepository struct {
	DB *sql.DB
}

func (r *DeviceTokenRepository) SaveToken(ctx context.Context, userID int, token string) error {
	query := `
        INSERT INTO device_tokens (user_id, token)
        VALUES (?, ?)
        ON DUPLICATE KEY UPDATE user_id = VALUES(user_id)
    `
	_, err := r.DB.ExecContext(ctx, query, userID, token)
	return err
}

func (r *DeviceTokenRepository) GetTokens(ctx context.Context, userID int) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT token FROM device_tokens WHERE user_id = ?`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tokens []string
	for rows.Next() {
		var token string
		if err := rows.Scan(&token); err != nil {
			return nil, err
		}
		tokens = append(tokens, token)
	}
	return tokens, rows.Err()
}

func (r *DeviceTokenRepository) DeleteTokens(ctx context.Context, userID int) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM device_tokens WHERE user_id = ?`, userID)
	return err
}
