package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"bilimBack/internal/models"
	"bilimBack/internal/services"
)

type UserHandler struct {
	Service *services.UserService
}

func (h *UserHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req models.SignUpRequest
	var avatar []byte
	var avatarName, contentType string

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxUploadSize); err != nil {
			http.Error(w, "Invalid multipart form", http.StatusBadRequest)
			return
		}
		req.Name = r.FormValue("name")
		req.Email = r.FormValue("email")
		req.Password = r.FormValue("password")

		var err error
		avatar, avatarName, contentType, err = readFormFile(r, "file")
		if err != nil {
			http.Error(w, "Invalid avatar upload", http.StatusBadRequest)
			return
		}
	} else {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
	}

	result, err := h.Service.Register(r.Context(), req, avatar, avatarName, contentType)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrMissingFields):
			http.Error(w, "Please enter all fields", http.StatusBadRequest)
		case errors.Is(err, models.ErrDuplicateEmail):
			http.Error(w, "User already exists", http.StatusConflict)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"user":          result.User,
		"access_token":  result.Tokens.AccessToken,
		"refresh_token": result.Tokens.RefreshToken,
	})
}

func (h *UserHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req models.SignInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.Service.Login(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrMissingFields):
			http.Error(w, "Please enter all fields", http.StatusBadRequest)
		case errors.Is(err, models.ErrInvalidCredentials):
			http.Error(w, "Incorrect email or password", http.StatusUnauthorized)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"user":          result.User,
		"access_token":  result.Tokens.AccessToken,
		"refresh_token": result.Tokens.RefreshToken,
	})
}

func (h *UserHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	tokens, err := h.Service.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, models.ErrNoRecord) || errors.Is(err, models.ErrUserNotFound) {
			http.Error(w, "Invalid refresh token", http.StatusUnauthorized)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"access_token":  tokens.AccessToken,
		"refresh_token": tokens.RefreshToken,
	})
}

func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	if err := h.Service.Logout(r.Context(), userID); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeMessage(w, http.StatusOK, "Logged out successfully")
}

func (h *UserHandler) GetMyProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	user, err := h.Service.Profile(r.Context(), userID)
	if err != nil {
		http.Error(w, err.Error(), notFoundStatus(err))
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.Service.UpdateProfile(r.Context(), userID, req.Name, req.Email); err != nil {
		switch {
		case errors.Is(err, models.ErrMissingFields):
			http.Error(w, "Please enter all fields", http.StatusBadRequest)
		case errors.Is(err, models.ErrDuplicateEmail):
			http.Error(w, "Email already in use", http.StatusConflict)
		default:
			http.Error(w, err.Error(), notFoundStatus(err))
		}
		return
	}
	writeMessage(w, http.StatusOK, "Profile updated successfully")
}

func (h *UserHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req models.UpdatePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.Service.UpdatePassword(r.Context(), userID, req); err != nil {
		switch {
		case errors.Is(err, models.ErrMissingFields):
			http.Error(w, "Please enter all fields", http.StatusBadRequest)
		case errors.Is(err, models.ErrInvalidPassword):
			http.Error(w, "Incorrect old password", http.StatusBadRequest)
		default:
			http.Error(w, err.Error(), notFoundStatus(err))
		}
		return
	}
	writeMessage(w, http.StatusOK, "Password changed successfully")
}

func (h *UserHandler) UpdateAvatar(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		http.Error(w, "Invalid multipart form", http.StatusBadRequest)
		return
	}
	file, name, contentType, err := readFormFile(r, "file")
	if err != nil || len(file) == 0 {
		http.Error(w, "Avatar file is required", http.StatusBadRequest)
		return
	}

	if err := h.Service.UpdateAvatar(r.Context(), userID, file, name, contentType); err != nil {
		http.Error(w, err.Error(), notFoundStatus(err))
		return
	}
	writeMessage(w, http.StatusOK, "Profile picture updated successfully")
}

func (h *UserHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.Service.ForgotPassword(r.Context(), req.Email); err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			http.Error(w, "User not found", http.StatusBadRequest)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeMessage(w, http.StatusOK, "Reset token has been sent to "+req.Email)
}

func (h *UserHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get(":token")
	if token == "" {
		http.Error(w, "Missing reset token", http.StatusBadRequest)
		return
	}

	var req struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.Service.ResetPassword(r.Context(), token, req.Password); err != nil {
		switch {
		case errors.Is(err, models.ErrMissingFields):
			http.Error(w, "Please enter all fields", http.StatusBadRequest)
		case errors.Is(err, models.ErrResetTokenInvalid):
			http.Error(w, "Token is invalid or has been expired", http.StatusUnauthorized)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}
	writeMessage(w, http.StatusOK, "Password changed successfully")
}

func (h *UserHandler) DeleteMyProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := h.Service.DeleteProfile(r.Context(), userID); err != nil {
		http.Error(w, err.Error(), notFoundStatus(err))
		return
	}
	writeMessage(w, http.StatusOK, "User deleted successfully")
}

func (h *UserHandler) AddToPlaylist(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	courseID, err := pathID(r, "course_id")
	if err != nil {
		http.Error(w, "Invalid course ID", http.StatusBadRequest)
		return
	}

	if err := h.Service.AddToPlaylist(r.Context(), userID, courseID); err != nil {
		switch {
		case errors.Is(err, models.ErrCourseNotFound):
			http.Error(w, "Course not found", http.StatusNotFound)
		case errors.Is(err, models.ErrCourseAlreadyInPlaylist):
			http.Error(w, "Course already in playlist", http.StatusConflict)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}
	writeMessage(w, http.StatusOK, "Added to playlist")
}

func (h *UserHandler) RemoveFromPlaylist(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	courseID, err := pathID(r, "course_id")
	if err != nil {
		http.Error(w, "Invalid course ID", http.StatusBadRequest)
		return
	}

	if err := h.Service.RemoveFromPlaylist(r.Context(), userID, courseID); err != nil {
		if errors.Is(err, models.ErrCourseNotFound) {
			http.Error(w, "Course not in playlist", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeMessage(w, http.StatusOK, "Removed from playlist")
}

func (h *UserHandler) GetPlaylist(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	items, err := h.Service.GetPlaylist(r.Context(), userID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"playlist": items})
}

// Admin endpoints.

func (h *UserHandler) GetAllUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Service.GetAllUsers(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": users})
}

func (h *UserHandler) UpdateUserRole(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	if err := h.Service.PromoteToAdmin(r.Context(), id); err != nil {
		http.Error(w, err.Error(), notFoundStatus(err))
		return
	}
	writeMessage(w, http.StatusOK, "Role updated")
}

func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	if err := h.Service.DeleteUser(r.Context(), id); err != nil {
		http.Error(w, err.Error(), notFoundStatus(err))
		return
	}
	writeMessage(w, http.StatusOK, "User deleted successfully")
}
