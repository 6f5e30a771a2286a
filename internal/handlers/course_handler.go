package handlers

import (
	"errors"
	"net/http"

	"bilimBack/internal/models"
	"bilimBack/internal/services"
)

type CourseHandler struct {
	Service *services.CourseService
	Users   *services.UserService
}

func (h *CourseHandler) GetCourses(w http.ResponseWriter, r *http.Request) {
	search := r.URL.Query().Get("keyword")
	category := r.URL.Query().Get("category")

	courses, err := h.Service.GetCourses(r.Context(), search, category)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"courses": courses})
}

func (h *CourseHandler) CreateCourse(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		http.Error(w, "Invalid multipart form", http.StatusBadRequest)
		return
	}

	poster, posterName, contentType, err := readFormFile(r, "file")
	if err != nil {
		http.Error(w, "Invalid poster upload", http.StatusBadRequest)
		return
	}

	course, err := h.Service.CreateCourse(r.Context(), services.CreateCourseRequest{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Category:    r.FormValue("category"),
		CreatedBy:   r.FormValue("createdBy"),
	}, poster, posterName, contentType)
	if err != nil {
		if errors.Is(err, models.ErrMissingFields) {
			http.Error(w, "Please add all fields", http.StatusBadRequest)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Course created successfully. You can add lectures now.",
		"course":  course,
	})
}

// GetLectures serves premium content: admins always pass, everyone else needs
// an active subscription.
func (h *CourseHandler) GetLectures(w http.ResponseWriter, r *http.Request) {
	if err := h.requireSubscriber(r); err != nil {
		if errors.Is(err, models.ErrForbidden) {
			http.Error(w, "Only subscribers can access this resource", http.StatusForbidden)
			return
		}
		http.Error(w, err.Error(), notFoundStatus(err))
		return
	}

	courseID, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "Invalid course ID", http.StatusBadRequest)
		return
	}

	lectures, err := h.Service.GetLectures(r.Context(), courseID)
	if err != nil {
		if errors.Is(err, models.ErrCourseNotFound) {
			http.Error(w, "Course not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"lectures": lectures})
}

func (h *CourseHandler) requireSubscriber(r *http.Request) error {
	if roleFromContext(r) == models.RoleAdmin {
		return nil
	}
	userID, ok := userIDFromContext(r)
	if !ok {
		return models.ErrForbidden
	}

	user, err := h.Users.Profile(r.Context(), userID)
	if err != nil {
		return err
	}
	if user.Subscription.Status == nil || *user.Subscription.Status != models.SubscriptionStatusActive {
		return models.ErrForbidden
	}
	return nil
}

func (h *CourseHandler) AddLecture(w http.ResponseWriter, r *http.Request) {
	courseID, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "Invalid course ID", http.StatusBadRequest)
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		http.Error(w, "Invalid multipart form", http.StatusBadRequest)
		return
	}
	video, videoName, contentType, err := readFormFile(r, "file")
	if err != nil {
		http.Error(w, "Invalid video upload", http.StatusBadRequest)
		return
	}

	lecture, err := h.Service.AddLecture(r.Context(), courseID,
		r.FormValue("title"), r.FormValue("description"), video, videoName, contentType)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrMissingFields):
			http.Error(w, "Please add all fields", http.StatusBadRequest)
		case errors.Is(err, models.ErrCourseNotFound):
			http.Error(w, "Course not found", http.StatusNotFound)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Lecture added in course",
		"lecture": lecture,
	})
}

func (h *CourseHandler) DeleteCourse(w http.ResponseWriter, r *http.Request) {
	courseID, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "Invalid course ID", http.StatusBadRequest)
		return
	}

	if err := h.Service.DeleteCourse(r.Context(), courseID); err != nil {
		if errors.Is(err, models.ErrCourseNotFound) {
			http.Error(w, "Course not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeMessage(w, http.StatusOK, "Course deleted successfully")
}

func (h *CourseHandler) DeleteLecture(w http.ResponseWriter, r *http.Request) {
	lectureID, err := pathID(r, "lecture_id")
	if err != nil {
		http.Error(w, "Invalid lecture ID", http.StatusBadRequest)
		return
	}

	if err := h.Service.DeleteLecture(r.Context(), lectureID); err != nil {
		if errors.Is(err, models.ErrLectureNotFound) {
			http.Error(w, "Lecture not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeMessage(w, http.StatusOK, "Lecture deleted successfully")
}
