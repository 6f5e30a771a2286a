package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-sql-driver/mysql"

	"bilimBack/internal/models"
)

type UserRepository struct {
	DB *sql.DB
}

func isDuplicateKeyError(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == 1062
}

func (r *UserRepository) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	query := `
        INSERT INTO users (name, email, password, role, avatar_id, avatar_url, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)
    `
	user.CreatedAt = time.Now()
	user.UpdatedAt = &user.CreatedAt
	result, err := r.DB.ExecContext(ctx, query,
		user.Name, user.Email, user.Password, user.Role, user.AvatarID, user.AvatarURL,
		user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return models.User{}, models.ErrDuplicateEmail
		}
		return models.User{}, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return models.User{}, err
	}
	user.ID = int(id)
	return user, nil
}

func (r *UserRepository) GetUserByID(ctx context.Context, id int) (models.User, error) {
	var user models.User
	query := `
        SELECT id, name, email, password, role, avatar_id, avatar_url, subscription_id, subscription_status, created_at, updated_at
        FROM users
        WHERE id = ?
    `
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&user.ID, &user.Name, &user.Email, &user.Password, &user.Role,
		&user.AvatarID, &user.AvatarURL,
		&user.Subscription.ID, &user.Subscription.Status,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return models.User{}, models.ErrUserNotFound
	}
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	query := `
        SELECT id, name, email, password, role, avatar_id, avatar_url, subscription_id, subscription_status, created_at, updated_at
        FROM users
        WHERE email = ?
    `
	err := r.DB.QueryRowContext(ctx, query, email).Scan(
		&user.ID, &user.Name, &user.Email, &user.Password, &user.Role,
		&user.AvatarID, &user.AvatarURL,
		&user.Subscription.ID, &user.Subscription.Status,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return models.User{}, models.ErrUserNotFound
	}
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (r *UserRepository) UpdateProfile(ctx context.Context, id int, name, email string) error {
	query := `UPDATE users SET name = ?, email = ?, updated_at = ? WHERE id = ?`
	result, err := r.DB.ExecContext(ctx, query, name, email, time.Now(), id)
	if err != nil {
		if isDuplicateKeyError(err) {
			return models.ErrDuplicateEmail
		}
		return err
	}
	return requireRow(result, models.ErrUserNotFound)
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id int, hashed string) error {
	query := `UPDATE users SET password = ?, updated_at = ? WHERE id = ?`
	result, err := r.DB.ExecContext(ctx, query, hashed, time.Now(), id)
	if err != nil {
		return err
	}
	return requireRow(result, models.ErrUserNotFound)
}

func (r *UserRepository) UpdateAvatar(ctx context.Context, id int, avatarID, avatarURL string) error {
	query := `UPDATE users SET avatar_id = ?, avatar_url = ?, updated_at = ? WHERE id = ?`
	result, err := r.DB.ExecContext(ctx, query, avatarID, avatarURL, time.Now(), id)
	if err != nil {
		return err
	}
	return requireRow(result, models.ErrUserNotFound)
}

func (r *UserRepository) UpdateRole(ctx context.Context, id int, role string) error {
	query := `UPDATE users SET role = ?, updated_at = ? WHERE id = ?`
	result, err := r.DB.ExecContext(ctx, query, role, time.Now(), id)
	if err != nil {
		return err
	}
	return requireRow(result, models.ErrUserNotFound)
}

func (r *UserRepository) DeleteUser(ctx context.Context, id int) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(result, models.ErrUserNotFound)
}

func (r *UserRepository) GetAllUsers(ctx context.Context) ([]models.User, error) {
	query := `
        SELECT id, name, email, role, avatar_id, avatar_url, subscription_id, subscription_status, created_at, updated_at
        FROM users
        ORDER BY id
    `
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var user models.User
		err = rows.Scan(
			&user.ID, &user.Name, &user.Email, &user.Role,
			&user.AvatarID, &user.AvatarURL,
			&user.Subscription.ID, &user.Subscription.Status,
			&user.CreatedAt, &user.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// SetSubscription stores the gateway subscription on the user after a create
// call succeeded.
func (r *UserRepository) SetSubscription(ctx context.Context, userID int, subscriptionID, status string) error {
	query := `UPDATE users SET subscription_id = ?, subscription_status = ?, updated_at = ? WHERE id = ?`
	result, err := r.DB.ExecContext(ctx, query, subscriptionID, status, time.Now(), userID)
	if err != nil {
		return err
	}
	return requireRow(result, models.ErrUserNotFound)
}

func (r *UserRepository) UpdateSubscriptionStatus(ctx context.Context, userID int, status string) error {
	query := `UPDATE users SET subscription_status = ?, updated_at = ? WHERE id = ? AND subscription_id IS NOT NULL`
	result, err := r.DB.ExecContext(ctx, query, status, time.Now(), userID)
	if err != nil {
		return err
	}
	return requireRow(result, models.ErrNoActiveSubscription)
}

// ClearSubscriptionIf removes the subscription fields only when the stored id
// still matches the expected one. Exactly one of two racing cancellations can
// observe a true result.
func (r *UserRepository) ClearSubscriptionIf(ctx context.Context, userID int, subscriptionID string) (bool, error) {
	query := `
        UPDATE users
        SET subscription_id = NULL, subscription_status = NULL, updated_at = ?
        WHERE id = ? AND subscription_id = ?
    `
	result, err := r.DB.ExecContext(ctx, query, time.Now(), userID, subscriptionID)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *UserRepository) CountUsers(ctx context.Context) (int, error) {
	var count int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count)
	return count, err
}

func (r *UserRepository) CountActiveSubscribers(ctx context.Context) (int, error) {
	var count int
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE subscription_status = ?`,
		models.SubscriptionStatusActive,
	).Scan(&count)
	return count, err
}

func requireRow(result sql.Result, notFound error) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return notFound
	}
	return nil
}
