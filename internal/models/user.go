package models

import (
	"time"

	"github.com/dgrijalva/jwt-go"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Subscription states stored on the user row. An empty/NULL status together
// with a NULL subscription id means the user has no subscription at all.
const (
	SubscriptionStatusCreated   = "created"
	SubscriptionStatusActive    = "active"
	SubscriptionStatusCancelled = "cancelled"
)

// Subscription mirrors the gateway-side agreement. Both fields are nil iff
// the user never subscribed or the subscription was cancelled.
type Subscription struct {
	ID     *string `json:"id,omitempty"`
	Status *string `json:"status,omitempty"`
}

type User struct {
	ID           int          `json:"id"`
	Name         string       `json:"name"`
	Email        string       `json:"email"`
	Password     string       `json:"-"`
	Role         string       `json:"role"`
	AvatarID     string       `json:"avatar_id,omitempty"`
	AvatarURL    string       `json:"avatar_url,omitempty"`
	Subscription Subscription `json:"subscription"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    *time.Time   `json:"updated_at,omitempty"`
}

type Claims struct {
	UserID uint   `json:"user_id"`
	Role   string `json:"role"`
	jwt.StandardClaims
}

type Tokens struct {
	AccessToken  string
	RefreshToken string
}

type Session struct {
	UserID       int       `json:"user_id"`
	Role         string    `json:"role"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

type SignUpRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UpdatePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// PlaylistItem links a user to a course they bookmarked.
type PlaylistItem struct {
	CourseID  int    `json:"course_id"`
	PosterURL string `json:"poster_url"`
}
