package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"bilimBack/internal/models"
	"bilimBack/internal/services"
)

type fakeSubscriptionFlow struct {
	buyResult services.BuyResult
	buyErr    error
	verifyRef string
	verifyErr error
	cancelMsg string
	cancelErr error
}

func (f *fakeSubscriptionFlow) Buy(context.Context, int) (services.BuyResult, error) {
	return f.buyResult, f.buyErr
}

func (f *fakeSubscriptionFlow) VerifyCallback(context.Context, int, string, string) (string, error) {
	return f.verifyRef, f.verifyErr
}

func (f *fakeSubscriptionFlow) Cancel(context.Context, int) (string, error) {
	return f.cancelMsg, f.cancelErr
}

func (f *fakeSubscriptionFlow) Key() string { return "rzp_test_key" }

func authedRequest(method, target string, form url.Values) *http.Request {
	var r *http.Request
	if form != nil {
		r = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		r = httptest.NewRequest(method, target, nil)
	}
	ctx := context.WithValue(r.Context(), "user_id", 1)
	ctx = context.WithValue(ctx, "role", models.RoleUser)
	return r.WithContext(ctx)
}

func TestPaymentVerification_SuccessRedirects(t *testing.T) {
	h := &PaymentHandler{
		Service:     &fakeSubscriptionFlow{verifyRef: "pay_1"},
		FrontendURL: "https://app.example.com",
	}

	form := url.Values{
		"razorpay_payment_id": {"pay_1"},
		"razorpay_signature":  {"deadbeef"},
	}
	w := httptest.NewRecorder()
	h.PaymentVerification(w, authedRequest(http.MethodPost, "/paymentverification", form))

	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", w.Code)
	}
	loc := w.Header().Get("Location")
	if loc != "https://app.example.com/paymentsuccess?reference=pay_1" {
		t.Errorf("Location = %q", loc)
	}
}

func TestPaymentVerification_FailureRedirects(t *testing.T) {
	for name, verifyErr := range map[string]error{
		"invalid signature": models.ErrInvalidPaymentSignature,
		"replayed payment":  models.ErrDuplicatePayment,
		"no subscription":   models.ErrNoActiveSubscription,
	} {
		t.Run(name, func(t *testing.T) {
			h := &PaymentHandler{
				Service:     &fakeSubscriptionFlow{verifyErr: verifyErr},
				FrontendURL: "https://app.example.com",
			}

			form := url.Values{
				"razorpay_payment_id": {"pay_1"},
				"razorpay_signature":  {"deadbeef"},
			}
			w := httptest.NewRecorder()
			h.PaymentVerification(w, authedRequest(http.MethodPost, "/paymentverification", form))

			if w.Code != http.StatusSeeOther {
				t.Fatalf("status = %d, want 303", w.Code)
			}
			if loc := w.Header().Get("Location"); loc != "https://app.example.com/paymentfail" {
				t.Errorf("Location = %q", loc)
			}
		})
	}
}

func TestPaymentVerification_MissingFieldsRedirectToFail(t *testing.T) {
	h := &PaymentHandler{
		Service:     &fakeSubscriptionFlow{},
		FrontendURL: "https://app.example.com",
	}

	w := httptest.NewRecorder()
	h.PaymentVerification(w, authedRequest(http.MethodPost, "/paymentverification", url.Values{}))

	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "https://app.example.com/paymentfail" {
		t.Errorf("Location = %q", loc)
	}
}

func TestBuySubscription_AdminRejected(t *testing.T) {
	h := &PaymentHandler{
		Service: &fakeSubscriptionFlow{buyErr: models.ErrAdminCannotSubscribe},
	}

	w := httptest.NewRecorder()
	h.BuySubscription(w, authedRequest(http.MethodPost, "/buysubscription", nil))

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestCancelSubscription_ErrorMapping(t *testing.T) {
	cases := map[string]struct {
		err  error
		want int
	}{
		"no subscription":    {models.ErrNoActiveSubscription, http.StatusBadRequest},
		"cancel in progress": {models.ErrCancelInProgress, http.StatusConflict},
		"payment missing":    {models.ErrPaymentRecordMissing, http.StatusNotFound},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			h := &PaymentHandler{Service: &fakeSubscriptionFlow{cancelErr: tc.err}}
			w := httptest.NewRecorder()
			h.CancelSubscription(w, authedRequest(http.MethodDelete, "/subscribe/cancel", nil))
			if w.Code != tc.want {
				t.Errorf("status = %d, want %d", w.Code, tc.want)
			}
		})
	}
}

func TestRazorpayErrorStatus(t *testing.T) {
	if got := razorpayErrorStatus(&services.RazorpayError{StatusCode: http.StatusNotFound}); got != http.StatusNotFound {
		t.Errorf("4xx should pass through, got %d", got)
	}
	if got := razorpayErrorStatus(&services.RazorpayError{StatusCode: http.StatusInternalServerError}); got != http.StatusBadGateway {
		t.Errorf("gateway 5xx should map to 502, got %d", got)
	}
	if got := razorpayErrorStatus(errors.New("generic")); got != http.StatusInternalServerError {
		t.Errorf("generic error should map to 500, got %d", got)
	}
}

func TestGetRazorpayKey(t *testing.T) {
	h := &PaymentHandler{Service: &fakeSubscriptionFlow{}}
	w := httptest.NewRecorder()
	h.GetRazorpayKey(w, httptest.NewRequest(http.MethodGet, "/razorpaykey", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "rzp_test_key") {
		t.Errorf("body = %q", w.Body.String())
	}
}
