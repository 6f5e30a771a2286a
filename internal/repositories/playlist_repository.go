package repositories

import (
	"context"
	"database/sql"

	"bilimBack/internal/models"
)

type PlaylistRepository struct {
	DB *sql.DB
}

func (r *PlaylistRepository) AddToPlaylist(ctx context.Context, userID, courseID int, posterURL string) error {
	query := `INSERT INTO playlist (user_id, course_id, poster_url) VALUES (?, ?, ?)`
	_, err := r.DB.ExecContext(ctx, query, userID, courseID, posterURL)
	if err != nil {
		if isDuplicateKeyError(err) {
			return models.ErrCourseAlreadyInPlaylist
		}
		return err
	}
	return nil
}

func (r *PlaylistRepository) RemoveFromPlaylist(ctx context.Context, userID, courseID int) error {
	result, err := r.DB.ExecContext(ctx,
		`DELETE FROM playlist WHERE user_id = ? AND course_id = ?`, userID, courseID)
	if err != nil {
		return err
	}
	return requireRow(result, models.ErrCourseNotFound)
}

func (r *PlaylistRepository) GetPlaylist(ctx context.Context, userID int) ([]models.PlaylistItem, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT course_id, poster_url FROM playlist WHERE user_id = ? ORDER BY course_id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.PlaylistItem
	for rows.Next() {
		var item models.PlaylistItem
		if err := rows.Scan(&item.CourseID, &item.PosterURL); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
