package services

import (
	"context"
	"log/slog"

	"firebase.google.com/go/messaging"

	"bilimBack/internal/repositories"
)

// PushService delivers FCM notifications to every device a user registered.
// With a nil client it is a no-op, so deployments without Firebase
// credentials keep working.
type PushService struct {
	Client *messaging.Client
	Tokens *repositories.DeviceTokenRepository
	Logger *slog.Logger
}

func (s *PushService) NotifySubscriptionActivated(ctx context.Context, userID int) {
	s.notify(ctx, userID, "Subscription activated",
		"You now have access to all premium course content.")
}

func (s *PushService) notify(ctx context.Context, userID int, title, body string) {
	if s == nil || s.Client == nil {
		return
	}
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}

	tokens, err := s.Tokens.GetTokens(ctx, userID)
	if err != nil {
		logger.Error("fetch device tokens", "user_id", userID, "error", err)
		return
	}

	for _, token := range tokens {
		message := &messaging.Message{
			Token: token,
			Notification: &messaging.Notification{
				Title: title,
				Body:  body,
			},
			Android: &messaging.AndroidConfig{
				Priority: "high",
			},
			APNS: &messaging.APNSConfig{
				Headers: map[string]string{"apns-priority": "10"},
				Payload: &messaging.APNSPayload{
					Aps: &messaging.Aps{
						Alert: &messaging.ApsAlert{Title: title, Body: body},
						Sound: "default",
					},
				},
			},
		}
		if _, err := s.Client.Send(ctx, message); err != nil {
			logger.Error("send push", "user_id", userID, "error", err)
		}
	}
}

func (s *PushService) RegisterToken(ctx context.Context, userID int, token string) error {
	return s.Tokens.SaveToken(ctx, userID, token)
}

func (s *PushService) UnregisterTokens(ctx context.Context, userID int) error {
	return s.Tokens.DeleteTokens(ctx, userID)
}
