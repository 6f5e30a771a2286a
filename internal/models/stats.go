package models

import "time"

// DashboardStats is a versioned singleton document (fixed primary key),
// recomputed from the users table whenever it changes.
type DashboardStats struct {
	Users         int       `json:"users"`
	Subscriptions int       `json:"subscriptions"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// DeviceToken is a push-notification registration for a user's device.
type DeviceToken struct {
	UserID int    `json:"user_id"`
	Token  string `json:"token"`
}
