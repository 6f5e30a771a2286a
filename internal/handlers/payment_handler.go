package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"bilimBack/internal/models"
	"bilimBack/internal/services"
)

// subscriptionFlow is the part of the subscription service the payment
// endpoints use.
type subscriptionFlow interface {
	Buy(ctx context.Context, userID int) (services.BuyResult, error)
	VerifyCallback(ctx context.Context, userID int, paymentID, signature string) (string, error)
	Cancel(ctx context.Context, userID int) (string, error)
	Key() string
}

type PaymentHandler struct {
	Service     subscriptionFlow
	FrontendURL string
}

func (h *PaymentHandler) BuySubscription(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	result, err := h.Service.Buy(r.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrAdminCannotSubscribe):
			http.Error(w, "Admin can't buy subscription", http.StatusBadRequest)
		case errors.Is(err, models.ErrUserNotFound):
			http.Error(w, "User not found", http.StatusNotFound)
		default:
			http.Error(w, err.Error(), razorpayErrorStatus(err))
		}
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

// PaymentVerification receives the browser redirect from the checkout widget.
// The outcome is reported by redirecting back to the frontend, so failures
// land on the payment-fail page instead of a JSON error.
func (h *PaymentHandler) PaymentVerification(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form body", http.StatusBadRequest)
		return
	}
	paymentID := r.FormValue("razorpay_payment_id")
	signature := r.FormValue("razorpay_signature")
	if paymentID == "" || signature == "" {
		h.redirect(w, r, "/paymentfail")
		return
	}

	reference, err := h.Service.VerifyCallback(r.Context(), userID, paymentID, signature)
	if err != nil {
		if errors.Is(err, models.ErrInvalidPaymentSignature) ||
			errors.Is(err, models.ErrDuplicatePayment) ||
			errors.Is(err, models.ErrNoActiveSubscription) {
			h.redirect(w, r, "/paymentfail")
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	h.redirect(w, r, "/paymentsuccess?reference="+reference)
}

func (h *PaymentHandler) GetRazorpayKey(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"key": h.Service.Key()})
}

func (h *PaymentHandler) CancelSubscription(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	message, err := h.Service.Cancel(r.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNoActiveSubscription):
			http.Error(w, "No active subscription found", http.StatusBadRequest)
		case errors.Is(err, models.ErrCancelInProgress):
			http.Error(w, "Cancellation already in progress", http.StatusConflict)
		case errors.Is(err, models.ErrPaymentRecordMissing):
			http.Error(w, "Payment record not found", http.StatusNotFound)
		default:
			http.Error(w, err.Error(), razorpayErrorStatus(err))
		}
		return
	}

	writeMessage(w, http.StatusOK, message)
}

func (h *PaymentHandler) redirect(w http.ResponseWriter, r *http.Request, path string) {
	target := fmt.Sprintf("%s%s", strings.TrimRight(h.FrontendURL, "/"), path)
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// razorpayErrorStatus maps gateway errors onto our response: client mistakes
// pass through, everything else is a bad gateway.
func razorpayErrorStatus(err error) int {
	var apiErr *services.RazorpayError
	if errors.As(err, &apiErr) {
		if apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 {
			return apiErr.StatusCode
		}
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
