package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"
)

type RazorpayConfig struct {
	KeyID     string
	KeySecret string

	// API base, prod: https://api.razorpay.com
	BaseURL string

	Client *http.Client
	Logger *slog.Logger
}

// RazorpayService is a thin REST client for the billing gateway. All calls
// authenticate with HTTP basic auth (key id / key secret) and carry a bounded
// timeout through the injected http.Client.
type RazorpayService struct {
	keyID     string
	keySecret string
	baseURL   *url.URL

	httpClient *http.Client
	logger     *slog.Logger
}

func NewRazorpayService(cfg RazorpayConfig) (*RazorpayService, error) {
	if strings.TrimSpace(cfg.KeyID) == "" ||
		strings.TrimSpace(cfg.KeySecret) == "" ||
		strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("razorpay: key_id/key_secret/base_url are required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	u, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}

	return &RazorpayService{
		keyID:      cfg.KeyID,
		keySecret:  cfg.KeySecret,
		baseURL:    u,
		httpClient: client,
		logger:     logger,
	}, nil
}

// Key returns the public key id handed to the browser checkout widget.
func (s *RazorpayService) Key() string {
	return s.keyID
}

type GatewaySubscription struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// CreateSubscription registers a recurring billing agreement against a plan.
func (s *RazorpayService) CreateSubscription(ctx context.Context, planID string, totalCount int, customerNotify bool) (*GatewaySubscription, error) {
	logger := s.logger.With("op", "CreateSubscription")

	notify := 0
	if customerNotify {
		notify = 1
	}
	body, _ := json.Marshal(map[string]any{
		"plan_id":         planID,
		"total_count":     totalCount,
		"customer_notify": notify,
	})

	b, err := s.do(ctx, http.MethodPost, "/v1/subscriptions", body)
	if err != nil {
		return nil, err
	}
	logger.Debug("subscriptions raw", "body", trimBody(string(b), 2000))

	var out GatewaySubscription
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("decode subscription: %w", err)
	}
	if strings.TrimSpace(out.ID) == "" {
		return nil, fmt.Errorf("subscriptions: empty id in response")
	}
	return &out, nil
}

// CancelSubscription stops the agreement immediately. The gateway rejects
// unknown ids with a 4xx which surfaces as *RazorpayError.
func (s *RazorpayService) CancelSubscription(ctx context.Context, subscriptionID string) error {
	endpoint := fmt.Sprintf("/v1/subscriptions/%s/cancel", url.PathEscape(subscriptionID))
	_, err := s.do(ctx, http.MethodPost, endpoint, []byte(`{}`))
	return err
}

// RefundPayment issues a full refund. Fails if the payment is unknown or was
// already refunded.
func (s *RazorpayService) RefundPayment(ctx context.Context, paymentID string) error {
	endpoint := fmt.Sprintf("/v1/payments/%s/refund", url.PathEscape(paymentID))
	_, err := s.do(ctx, http.MethodPost, endpoint, []byte(`{}`))
	return err
}

func (s *RazorpayService) do(ctx context.Context, method, endpoint string, body []byte) ([]byte, error) {
	u := *s.baseURL
	u.Path = path.Join(u.Path, endpoint)

	req, err := http.NewRequestWithContext(ctx, method, u.String(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.SetBasicAuth(s.keyID, s.keySecret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("razorpay request: %w", err)
	}
	defer resp.Body.Close()

	b, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &RazorpayError{StatusCode: resp.StatusCode, Status: resp.Status, Body: string(b)}
	}
	return b, nil
}

func trimBody(s string, max int) string {
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}

type RazorpayError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *RazorpayError) Error() string {
	if e == nil {
		return "<nil>"
	}
	bt := strings.TrimSpace(e.Body)
	if bt == "" {
		return fmt.Sprintf("razorpay error: %s", e.Status)
	}
	return fmt.Sprintf("razorpay error: %s: %s", e.Status, bt)
}
