package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"bilimBack/internal/models"
	"bilimBack/internal/repositories"
)

const (
	posterFolder  = "posters"
	lectureFolder = "lectures"
)

type CourseService struct {
	Courses *repositories.CourseRepository
	Storage MediaStorage
	Logger  *slog.Logger
}

type CreateCourseRequest struct {
	Title       string
	Description string
	Category    string
	CreatedBy   string
}

func (s *CourseService) CreateCourse(ctx context.Context, req CreateCourseRequest, poster []byte, posterName, contentType string) (models.Course, error) {
	if strings.TrimSpace(req.Title) == "" ||
		strings.TrimSpace(req.Description) == "" ||
		strings.TrimSpace(req.Category) == "" ||
		strings.TrimSpace(req.CreatedBy) == "" ||
		len(poster) == 0 {
		return models.Course{}, models.ErrMissingFields
	}

	key, url, err := s.Storage.Upload(poster, posterName, posterFolder, contentType)
	if err != nil {
		return models.Course{}, fmt.Errorf("upload poster: %w", err)
	}

	course, err := s.Courses.CreateCourse(ctx, models.Course{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		CreatedBy:   req.CreatedBy,
		PosterID:    key,
		PosterURL:   url,
	})
	if err != nil {
		return models.Course{}, err
	}

	s.logger().Info("course created", "course_id", course.ID, "title", course.Title)
	return course, nil
}

// GetCourses lists courses without their lectures. Both filters are optional
// substring matches.
func (s *CourseService) GetCourses(ctx context.Context, search, category string) ([]models.Course, error) {
	return s.Courses.GetCourses(ctx, search, category)
}

// GetLectures returns a course's lectures and counts the access as a view.
func (s *CourseService) GetLectures(ctx context.Context, courseID int) ([]models.Lecture, error) {
	if _, err := s.Courses.GetCourseByID(ctx, courseID); err != nil {
		return nil, err
	}
	if err := s.Courses.IncrementViews(ctx, courseID); err != nil {
		return nil, err
	}
	return s.Courses.GetLectures(ctx, courseID)
}

func (s *CourseService) AddLecture(ctx context.Context, courseID int, title, description string, video []byte, videoName, contentType string) (models.Lecture, error) {
	if strings.TrimSpace(title) == "" || strings.TrimSpace(description) == "" || len(video) == 0 {
		return models.Lecture{}, models.ErrMissingFields
	}
	if _, err := s.Courses.GetCourseByID(ctx, courseID); err != nil {
		return models.Lecture{}, err
	}

	key, url, err := s.Storage.Upload(video, videoName, lectureFolder, contentType)
	if err != nil {
		return models.Lecture{}, fmt.Errorf("upload lecture video: %w", err)
	}

	lecture, err := s.Courses.AddLecture(ctx, models.Lecture{
		CourseID:    courseID,
		Title:       title,
		Description: description,
		VideoID:     key,
		VideoURL:    url,
	})
	if err != nil {
		return models.Lecture{}, err
	}

	s.logger().Info("lecture added", "course_id", courseID, "lecture_id", lecture.ID)
	return lecture, nil
}

// DeleteCourse removes the course, its lectures and their media.
func (s *CourseService) DeleteCourse(ctx context.Context, courseID int) error {
	course, err := s.Courses.GetCourseByID(ctx, courseID)
	if err != nil {
		return err
	}
	lectures, err := s.Courses.GetLectures(ctx, courseID)
	if err != nil {
		return err
	}

	if err := s.Courses.DeleteCourse(ctx, courseID); err != nil {
		return err
	}

	if err := s.Storage.Delete(course.PosterID); err != nil {
		s.logger().Warn("delete poster", "course_id", courseID, "error", err)
	}
	for _, lecture := range lectures {
		if err := s.Storage.Delete(lecture.VideoID); err != nil {
			s.logger().Warn("delete lecture video", "lecture_id", lecture.ID, "error", err)
		}
	}

	s.logger().Info("course deleted", "course_id", courseID)
	return nil
}

func (s *CourseService) DeleteLecture(ctx context.Context, lectureID int) error {
	lecture, err := s.Courses.GetLectureByID(ctx, lectureID)
	if err != nil {
		return err
	}

	if err := s.Courses.DeleteLecture(ctx, lectureID); err != nil {
		return err
	}
	if err := s.Storage.Delete(lecture.VideoID); err != nil {
		s.logger().Warn("delete lecture video", "lecture_id", lectureID, "error", err)
	}
	return nil
}

func (s *CourseService) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}
