package repositories

import (
	"context"
	"database/sql"
	"time"

	"bilimBack/internal/models"
)

type SessionRepository struct {
	DB *sql.DB
}

func (r *SessionRepository) CreateSession(ctx context.Context, session models.Session) error {
	query := `
        INSERT INTO sessions (user_id, role, refresh_token, expires_at)
        VALUES (?, ?, ?, ?)
        ON DUPLICATE KEY UPDATE role = VALUES(role), refresh_token = VALUES(refresh_token), expires_at = VALUES(expires_at)
    `
	_, err := r.DB.ExecContext(ctx, query, session.UserID, session.Role, session.RefreshToken, session.ExpiresAt)
	return err
}

func (r *SessionRepository) GetSessionByToken(ctx context.Context, refreshToken string) (models.Session, error) {
	var session models.Session
	query := `SELECT user_id, role, refresh_token, expires_at FROM sessions WHERE refresh_token = ?`
	err := r.DB.QueryRowContext(ctx, query, refreshToken).Scan(
		&session.UserID, &session.Role, &session.RefreshToken, &session.ExpiresAt,
	)
	if err == sql.ErrNoRows {
		return models.Session{}, models.ErrNoRecord
	}
	if err != nil {
		return models.Session{}, err
	}
	return session, nil
}

func (r *SessionRepository) DeleteSession(ctx context.Context, userID int) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM sessions WHERE user_id = ?`, userID)
	return err
}

// Reset tokens live on the user row (sha256 of the emailed token plus expiry),
// matching the account-recovery flow.

func (r *UserRepository) SetResetToken(ctx context.Context, userID int, tokenHash string, expires time.Time) error {
	query := `UPDATE users SET reset_password_token = ?, reset_password_expire = ?, updated_at = ? WHERE id = ?`
	result, err := r.DB.ExecContext(ctx, query, tokenHash, expires, time.Now(), userID)
	if err != nil {
		return err
	}
	return requireRow(result, models.ErrUserNotFound)
}

func (r *UserRepository) GetUserByResetToken(ctx context.Context, tokenHash string, now time.Time) (models.User, error) {
	var user models.User
	query := `
        SELECT id, name, email, password, role, avatar_id, avatar_url, subscription_id, subscription_status, created_at, updated_at
        FROM users
        WHERE reset_password_token = ? AND reset_password_expire > ?
    `
	err := r.DB.QueryRowContext(ctx, query, tokenHash, now).Scan(
		&user.ID, &user.Name, &user.Email, &user.Password, &user.Role,
		&user.AvatarID, &user.AvatarURL,
		&user.Subscription.ID, &user.Subscription.Status,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return models.User{}, models.ErrResetTokenInvalid
	}
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (r *UserRepository) ClearResetToken(ctx context.Context, userID int, hashed string) error {
	query := `UPDATE users SET password = ?, reset_password_token = NULL, reset_password_expire = NULL, updated_at = ? WHERE id = ?`
	result, err := r.DB.ExecContext(ctx, query, hashed, time.Now(), userID)
	if err != nil {
		return err
	}
	return requireRow(result, models.ErrUserNotFound)
}
