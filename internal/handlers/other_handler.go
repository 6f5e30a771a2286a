package handlers

import (
	"encoding/json"
	"net/http"

	"bilimBack/internal/services"
)

type OtherHandler struct {
	Mail *services.MailService
	Push *services.PushService
}

func (h *OtherHandler) Contact(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name    string `json:"name"`
		Email   string `json:"email"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Name == "" || req.Email == "" || req.Message == "" {
		http.Error(w, "All fields are mandatory", http.StatusBadRequest)
		return
	}

	if err := h.Mail.SendContact(req.Name, req.Email, req.Message); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeMessage(w, http.StatusOK, "Your message has been sent.")
}

func (h *OtherHandler) RequestCourse(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name   string `json:"name"`
		Email  string `json:"email"`
		Course string `json:"course"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Name == "" || req.Email == "" || req.Course == "" {
		http.Error(w, "All fields are mandatory", http.StatusBadRequest)
		return
	}

	if err := h.Mail.SendCourseRequest(req.Name, req.Email, req.Course); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeMessage(w, http.StatusOK, "Your request has been sent.")
}

// RegisterDeviceToken stores an FCM registration for push delivery.
func (h *OtherHandler) RegisterDeviceToken(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.Push.RegisterToken(r.Context(), userID, req.Token); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusCreated)
}
