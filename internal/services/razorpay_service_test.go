package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestRazorpay(t *testing.T, handler http.Handler) (*RazorpayService, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	svc, err := NewRazorpayService(RazorpayConfig{
		KeyID:     "rzp_test_key",
		KeySecret: "rzp_test_secret",
		BaseURL:   srv.URL,
		Client:    srv.Client(),
	})
	if err != nil {
		t.Fatalf("NewRazorpayService: %v", err)
	}
	return svc, srv
}

func TestCreateSubscription_SendsAuthAndBody(t *testing.T) {
	var gotPath, gotUser, gotPass string
	var gotBody map[string]any

	svc, _ := newTestRazorpay(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUser, gotPass, _ = r.BasicAuth()
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "sub_123", "status": "created"})
	}))

	sub, err := svc.CreateSubscription(context.Background(), "plan_abc", 12, true)
	if err != nil {
		t.Fatalf("CreateSubscription: %v", err)
	}
	if sub.ID != "sub_123" || sub.Status != "created" {
		t.Errorf("unexpected subscription %+v", sub)
	}
	if gotPath != "/v1/subscriptions" {
		t.Errorf("path = %q, want /v1/subscriptions", gotPath)
	}
	if gotUser != "rzp_test_key" || gotPass != "rzp_test_secret" {
		t.Errorf("basic auth = %q/%q", gotUser, gotPass)
	}
	if gotBody["plan_id"] != "plan_abc" {
		t.Errorf("plan_id = %v", gotBody["plan_id"])
	}
	if gotBody["total_count"] != float64(12) {
		t.Errorf("total_count = %v", gotBody["total_count"])
	}
	if gotBody["customer_notify"] != float64(1) {
		t.Errorf("customer_notify = %v", gotBody["customer_notify"])
	}
}

func TestCreateSubscription_Non2xxReturnsRazorpayError(t *testing.T) {
	svc, _ := newTestRazorpay(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"description":"plan does not exist"}}`))
	}))

	_, err := svc.CreateSubscription(context.Background(), "plan_missing", 12, true)
	if err == nil {
		t.Fatal("expected error for 400 response")
	}
	var rzpErr *RazorpayError
	if !errors.As(err, &rzpErr) {
		t.Fatalf("expected *RazorpayError, got %T: %v", err, err)
	}
	if rzpErr.StatusCode != http.StatusBadRequest {
		t.Errorf("StatusCode = %d, want 400", rzpErr.StatusCode)
	}
}

func TestCreateSubscription_EmptyIDRejected(t *testing.T) {
	svc, _ := newTestRazorpay(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"created"}`))
	}))

	if _, err := svc.CreateSubscription(context.Background(), "plan_abc", 12, false); err == nil {
		t.Fatal("expected error for response without id")
	}
}

func TestCancelSubscription_PathAndMethod(t *testing.T) {
	var gotMethod, gotPath string
	svc, _ := newTestRazorpay(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
		_, _ = w.Write([]byte(`{"id":"sub_123","status":"cancelled"}`))
	}))

	if err := svc.CancelSubscription(context.Background(), "sub_123"); err != nil {
		t.Fatalf("CancelSubscription: %v", err)
	}
	if gotMethod != http.MethodPost || gotPath != "/v1/subscriptions/sub_123/cancel" {
		t.Errorf("got %s %s", gotMethod, gotPath)
	}
}

func TestRefundPayment_PathAndError(t *testing.T) {
	svc, _ := newTestRazorpay(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/payments/pay_42/refund" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"description":"payment not found"}}`))
	}))

	err := svc.RefundPayment(context.Background(), "pay_42")
	var rzpErr *RazorpayError
	if !errors.As(err, &rzpErr) {
		t.Fatalf("expected *RazorpayError, got %v", err)
	}
	if rzpErr.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d, want 404", rzpErr.StatusCode)
	}
}
