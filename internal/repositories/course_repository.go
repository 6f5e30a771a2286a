package repositories

import (
	"context"
	"database/sql"
	"time"

	"bilimBack/internal/models"
)

type CourseRepository struct {
	DB *sql.DB
}

func (r *CourseRepository) CreateCourse(ctx context.Context, course models.Course) (models.Course, error) {
	query := `
        INSERT INTO courses (title, description, category, created_by, poster_id, poster_url, views, num_of_videos, created_at)
        VALUES (?, ?, ?, ?, ?, ?, 0, 0, ?)
    `
	course.CreatedAt = time.Now()
	result, err := r.DB.ExecContext(ctx, query,
		course.Title, course.Description, course.Category, course.CreatedBy,
		course.PosterID, course.PosterURL, course.CreatedAt,
	)
	if err != nil {
		return models.Course{}, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return models.Course{}, err
	}
	course.ID = int(id)
	return course, nil
}

// GetCourses lists courses without their lectures; search and category
// filters are optional.
func (r *CourseRepository) GetCourses(ctx context.Context, search, category string) ([]models.Course, error) {
	query := `
        SELECT id, title, description, category, created_by, poster_id, poster_url, views, num_of_videos, created_at, updated_at
        FROM courses
        WHERE title LIKE ? AND category LIKE ?
        ORDER BY id
    `
	rows, err := r.DB.QueryContext(ctx, query, "%"+search+"%", "%"+category+"%")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var courses []models.Course
	for rows.Next() {
		var course models.Course
		err = rows.Scan(
			&course.ID, &course.Title, &course.Description, &course.Category, &course.CreatedBy,
			&course.PosterID, &course.PosterURL, &course.Views, &course.NumOfVideos,
			&course.CreatedAt, &course.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		courses = append(courses, course)
	}
	return courses, rows.Err()
}

func (r *CourseRepository) GetCourseByID(ctx context.Context, id int) (models.Course, error) {
	var course models.Course
	query := `
        SELECT id, title, description, category, created_by, poster_id, poster_url, views, num_of_videos, created_at, updated_at
        FROM courses
        WHERE id = ?
    `
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&course.ID, &course.Title, &course.Description, &course.Category, &course.CreatedBy,
		&course.PosterID, &course.PosterURL, &course.Views, &course.NumOfVideos,
		&course.CreatedAt, &course.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return models.Course{}, models.ErrCourseNotFound
	}
	if err != nil {
		return models.Course{}, err
	}
	return course, nil
}

func (r *CourseRepository) IncrementViews(ctx context.Context, id int) error {
	result, err := r.DB.ExecContext(ctx, `UPDATE courses SET views = views + 1 WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(result, models.ErrCourseNotFound)
}

func (r *CourseRepository) DeleteCourse(ctx context.Context, id int) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM lectures WHERE course_id = ?`, id); err != nil {
		return err
	}
	var result sql.Result
	result, err = tx.ExecContext(ctx, `DELETE FROM courses WHERE id = ?`, id)
	if err != nil {
		return err
	}
	err = requireRow(result, models.ErrCourseNotFound)
	return err
}

func (r *CourseRepository) AddLecture(ctx context.Context, lecture models.Lecture) (models.Lecture, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return models.Lecture{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	lecture.CreatedAt = time.Now()
	var result sql.Result
	result, err = tx.ExecContext(ctx, `
        INSERT INTO lectures (course_id, title, description, video_id, video_url, created_at)
        VALUES (?, ?, ?, ?, ?, ?)
    `, lecture.CourseID, lecture.Title, lecture.Description, lecture.VideoID, lecture.VideoURL, lecture.CreatedAt)
	if err != nil {
		return models.Lecture{}, err
	}
	var id int64
	id, err = result.LastInsertId()
	if err != nil {
		return models.Lecture{}, err
	}
	lecture.ID = int(id)

	_, err = tx.ExecContext(ctx,
		`UPDATE courses SET num_of_videos = num_of_videos + 1, updated_at = ? WHERE id = ?`,
		time.Now(), lecture.CourseID)
	if err != nil {
		return models.Lecture{}, err
	}
	return lecture, nil
}

func (r *CourseRepository) GetLectures(ctx context.Context, courseID int) ([]models.Lecture, error) {
	rows, err := r.DB.QueryContext(ctx, `
        SELECT id, course_id, title, description, video_id, video_url, created_at
        FROM lectures
        WHERE course_id = ?
        ORDER BY id
    `, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lectures []models.Lecture
	for rows.Next() {
		var lecture models.Lecture
		err = rows.Scan(
			&lecture.ID, &lecture.CourseID, &lecture.Title, &lecture.Description,
			&lecture.VideoID, &lecture.VideoURL, &lecture.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		lectures = append(lectures, lecture)
	}
	return lectures, rows.Err()
}

func (r *CourseRepository) GetLectureByID(ctx context.Context, id int) (models.Lecture, error) {
	var lecture models.Lecture
	err := r.DB.QueryRowContext(ctx, `
        SELECT id, course_id, title, description, video_id, video_url, created_at
        FROM lectures
        WHERE id = ?
    `, id).Scan(
		&lecture.ID, &lecture.CourseID, &lecture.Title, &lecture.Description,
		&lecture.VideoID, &lecture.VideoURL, &lecture.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return models.Lecture{}, models.ErrLectureNotFound
	}
	if err != nil {
		return models.Lecture{}, err
	}
	return lecture, nil
}

func (r *CourseRepository) DeleteLecture(ctx context.Context, id int) error {
	lecture, err := r.GetLectureByID(ctx, id)
	if err != nil {
		return err
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM lectures WHERE id = ?`, id); err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx,
		`UPDATE courses SET num_of_videos = num_of_videos - 1, updated_at = ? WHERE id = ? AND num_of_videos > 0`,
		time.Now(), lecture.CourseID)
	return err
}
