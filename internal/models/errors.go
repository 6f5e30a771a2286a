package models

import (
	"errors"
)

var ErrNoActiveSubscription = errors.New("no active subscription")
var ErrPaymentRecordMissing = errors.New("payment record not found for subscription")
var (
	ErrNoRecord                = errors.New("models: no matching record found")
	ErrInvalidCredentials      = errors.New("models: invalid credentials")
	ErrDuplicateEmail          = errors.New("models: duplicate email")
	ErrMissingFields           = errors.New("models: please enter all fields")
	ErrUserNotFound            = errors.New("models: user not found")
	ErrCourseNotFound          = errors.New("models: course not found")
	ErrLectureNotFound         = errors.New("models: lecture not found")
	ErrInvalidPassword         = errors.New("models: invalid password")
	ErrAdminCannotSubscribe    = errors.New("models: admin can't buy subscriptions")
	ErrInvalidPaymentSignature = errors.New("models: payment signature mismatch")
	ErrDuplicatePayment        = errors.New("models: payment already recorded")
	ErrCourseAlreadyInPlaylist = errors.New("models: course already in playlist")
	ErrResetTokenInvalid       = errors.New("models: reset token is invalid or has expired")
	ErrCancelInProgress        = errors.New("models: cancellation already in progress")
	ErrForbidden               = errors.New("models: forbidden")
)
