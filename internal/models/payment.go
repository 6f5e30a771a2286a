package models

import "time"

// PaymentRecord is the durable proof that a gateway callback was verified
// and accepted. Rows are append-only; the only mutation ever applied is the
// delete performed when the owning subscription is cancelled.
type PaymentRecord struct {
	ID             int       `json:"id"`
	Signature      string    `json:"razorpay_signature"`
	PaymentID      string    `json:"razorpay_payment_id"`
	SubscriptionID string    `json:"razorpay_subscription_id"`
	CreatedAt      time.Time `json:"created_at"`
}
