package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"bilimBack/internal/models"
)

const maxUploadSize = 100 << 20

func userIDFromContext(r *http.Request) (int, bool) {
	id, ok := r.Context().Value("user_id").(int)
	return id, ok
}

func roleFromContext(r *http.Request) string {
	role, _ := r.Context().Value("role").(string)
	return role
}

func pathID(r *http.Request, name string) (int, error) {
	return strconv.Atoi(r.URL.Query().Get(":" + name))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

// readFormFile pulls an uploaded file from a multipart form. A missing file
// comes back as empty bytes, not an error, so callers decide whether the
// upload is required.
func readFormFile(r *http.Request, field string) ([]byte, string, string, error) {
	file, header, err := r.FormFile(field)
	if err == http.ErrMissingFile {
		return nil, "", "", nil
	}
	if err != nil {
		return nil, "", "", err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, "", "", err
	}
	return data, header.Filename, header.Header.Get("Content-Type"), nil
}

func notFoundStatus(err error) int {
	switch err {
	case models.ErrUserNotFound, models.ErrCourseNotFound, models.ErrLectureNotFound, models.ErrNoRecord:
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
