package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"bilimBack/internal/models"
	"bilimBack/internal/pay"
)

// BillingGateway is the slice of the payment gateway the subscription flow
// needs. *RazorpayService satisfies it.
type BillingGateway interface {
	CreateSubscription(ctx context.Context, planID string, totalCount int, customerNotify bool) (*GatewaySubscription, error)
	CancelSubscription(ctx context.Context, subscriptionID string) error
	RefundPayment(ctx context.Context, paymentID string) error
	Key() string
}

type SubscriptionUserStore interface {
	GetUserByID(ctx context.Context, id int) (models.User, error)
	SetSubscription(ctx context.Context, userID int, subscriptionID, status string) error
	UpdateSubscriptionStatus(ctx context.Context, userID int, status string) error
	ClearSubscriptionIf(ctx context.Context, userID int, subscriptionID string) (bool, error)
}

type SubscriptionPaymentStore interface {
	CreatePayment(ctx context.Context, record models.PaymentRecord) (models.PaymentRecord, error)
	GetBySubscriptionID(ctx context.Context, subscriptionID string) (models.PaymentRecord, error)
	DeleteBySubscriptionID(ctx context.Context, subscriptionID string) error
}

// CancelLocker serializes cancellations per user. *lock.Locker satisfies it.
type CancelLocker interface {
	Acquire(ctx context.Context, userID int, ttl time.Duration) (func(), bool, error)
}

// SubscriptionEvents receives hooks fired after state transitions commit.
// Both callbacks are optional.
type SubscriptionEvents struct {
	// SubscriptionChanged is fired whenever the count of active subscribers
	// may have moved.
	SubscriptionChanged func()

	// Activated is fired once a payment callback has been verified and the
	// subscription became active.
	Activated func(userID int)
}

const (
	billingCycles  = 12
	cancelLockTTL  = 30 * time.Second
	customerNotify = true
)

type SubscriptionService struct {
	Users    SubscriptionUserStore
	Payments SubscriptionPaymentStore
	Gateway  BillingGateway
	Locker   CancelLocker

	PlanID        string
	WebhookSecret []byte
	RefundDays    int

	Events SubscriptionEvents
	Logger *slog.Logger
}

// BuyResult is handed to the browser checkout widget.
type BuyResult struct {
	SubscriptionID string `json:"subscriptionId"`
	Key            string `json:"key"`
}

// Buy creates a recurring agreement at the gateway and pins its id on the
// user in status "created". The subscription only becomes active after the
// payment callback is verified.
func (s *SubscriptionService) Buy(ctx context.Context, userID int) (BuyResult, error) {
	user, err := s.Users.GetUserByID(ctx, userID)
	if err != nil {
		return BuyResult{}, err
	}
	if user.Role == models.RoleAdmin {
		return BuyResult{}, models.ErrAdminCannotSubscribe
	}

	sub, err := s.Gateway.CreateSubscription(ctx, s.PlanID, billingCycles, customerNotify)
	if err != nil {
		return BuyResult{}, fmt.Errorf("create subscription: %w", err)
	}

	if err := s.Users.SetSubscription(ctx, userID, sub.ID, sub.Status); err != nil {
		return BuyResult{}, err
	}
	s.logger().Info("subscription created", "user_id", userID, "subscription_id", sub.ID)
	return BuyResult{SubscriptionID: sub.ID, Key: s.Gateway.Key()}, nil
}

// VerifyCallback checks the gateway signature against the subscription id the
// server stored at Buy time, never against ids supplied by the caller. On
// success the payment is recorded and the subscription flips to active.
// A replayed callback hits the unique payment index and comes back as
// models.ErrDuplicatePayment.
func (s *SubscriptionService) VerifyCallback(ctx context.Context, userID int, paymentID, signature string) (string, error) {
	user, err := s.Users.GetUserByID(ctx, userID)
	if err != nil {
		return "", err
	}
	if user.Subscription.ID == nil {
		return "", models.ErrNoActiveSubscription
	}
	subscriptionID := *user.Subscription.ID

	expected := pay.Sign(paymentID, subscriptionID, s.WebhookSecret)
	if !pay.Verify(signature, expected) {
		s.logger().Warn("payment signature mismatch", "user_id", userID, "payment_id", paymentID)
		return "", models.ErrInvalidPaymentSignature
	}

	_, err = s.Payments.CreatePayment(ctx, models.PaymentRecord{
		Signature:      signature,
		PaymentID:      paymentID,
		SubscriptionID: subscriptionID,
	})
	if err != nil {
		return "", err
	}

	if err := s.Users.UpdateSubscriptionStatus(ctx, userID, models.SubscriptionStatusActive); err != nil {
		return "", err
	}

	s.logger().Info("subscription activated", "user_id", userID, "subscription_id", subscriptionID)
	s.fireChanged()
	if s.Events.Activated != nil {
		s.Events.Activated(userID)
	}
	return paymentID, nil
}

// Cancel stops the agreement at the gateway, refunds the payment when the
// cancellation lands inside the refund window, and clears the subscription
// from the user. Concurrent cancels for the same user are serialized by the
// locker; whichever loses the conditional clear reports no active
// subscription instead of refunding twice.
func (s *SubscriptionService) Cancel(ctx context.Context, userID int) (string, error) {
	release, ok, err := s.Locker.Acquire(ctx, userID, cancelLockTTL)
	if err != nil {
		return "", fmt.Errorf("acquire cancel lock: %w", err)
	}
	if !ok {
		return "", models.ErrCancelInProgress
	}
	defer release()

	user, err := s.Users.GetUserByID(ctx, userID)
	if err != nil {
		return "", err
	}
	if user.Subscription.ID == nil {
		return "", models.ErrNoActiveSubscription
	}
	subscriptionID := *user.Subscription.ID

	if err := s.Gateway.CancelSubscription(ctx, subscriptionID); err != nil {
		return "", fmt.Errorf("cancel subscription: %w", err)
	}

	record, err := s.Payments.GetBySubscriptionID(ctx, subscriptionID)
	if err != nil {
		return "", err
	}

	refundable := time.Since(record.CreatedAt) < time.Duration(s.RefundDays)*24*time.Hour
	if refundable {
		if err := s.Gateway.RefundPayment(ctx, record.PaymentID); err != nil {
			return "", fmt.Errorf("refund payment: %w", err)
		}
	}

	cleared, err := s.Users.ClearSubscriptionIf(ctx, userID, subscriptionID)
	if err != nil {
		return "", err
	}
	if !cleared {
		return "", models.ErrNoActiveSubscription
	}

	if err := s.Payments.DeleteBySubscriptionID(ctx, subscriptionID); err != nil {
		return "", err
	}

	s.logger().Info("subscription cancelled",
		"user_id", userID, "subscription_id", subscriptionID, "refunded", refundable)
	s.fireChanged()

	if refundable {
		return fmt.Sprintf("Subscription cancelled. Payment will be refunded within %d days.", s.RefundDays), nil
	}
	return fmt.Sprintf("Subscription cancelled. No refund will be initiated as subscription was cancelled after %d days.", s.RefundDays), nil
}

// Key exposes the public gateway key for the checkout form.
func (s *SubscriptionService) Key() string {
	return s.Gateway.Key()
}

func (s *SubscriptionService) fireChanged() {
	if s.Events.SubscriptionChanged != nil {
		s.Events.SubscriptionChanged()
	}
}

func (s *SubscriptionService) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}
