package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"bilimBack/internal/models"
	"bilimBack/internal/repositories"
	"bilimBack/utils"
)

// MediaStorage is the slice of object storage the services need.
// *utils.S3Storage satisfies it.
type MediaStorage interface {
	Upload(file []byte, fileName, folder, contentType string) (key string, url string, err error)
	Delete(key string) error
}

// Mailer sends account-recovery email. *MailService satisfies it.
type Mailer interface {
	SendPasswordReset(to, resetURL string) error
}

// SubscriptionCanceller lets profile deletion stop billing first.
// *SubscriptionService satisfies it.
type SubscriptionCanceller interface {
	Cancel(ctx context.Context, userID int) (string, error)
}

const (
	accessTokenTTL  = 15 * time.Minute
	refreshTokenTTL = 30 * 24 * time.Hour
	resetTokenTTL   = 15 * time.Minute

	avatarFolder = "avatars"
)

type UserService struct {
	Users    *repositories.UserRepository
	Sessions *repositories.SessionRepository
	Playlist *repositories.PlaylistRepository
	Courses  *repositories.CourseRepository

	Tokens  *utils.Manager
	Storage MediaStorage
	Mail    Mailer
	Stats   *StatsService

	// Subscriptions is set after construction to break the dependency cycle
	// with the subscription service.
	Subscriptions SubscriptionCanceller

	FrontendURL string
	Logger      *slog.Logger
}

type AuthResult struct {
	User   models.User
	Tokens models.Tokens
}

func (s *UserService) Register(ctx context.Context, req models.SignUpRequest, avatar []byte, avatarName, contentType string) (AuthResult, error) {
	if strings.TrimSpace(req.Name) == "" ||
		strings.TrimSpace(req.Email) == "" ||
		req.Password == "" {
		return AuthResult{}, models.ErrMissingFields
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return AuthResult{}, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		Name:     req.Name,
		Email:    strings.ToLower(strings.TrimSpace(req.Email)),
		Password: string(hashed),
		Role:     models.RoleUser,
	}

	if len(avatar) > 0 {
		key, url, err := s.Storage.Upload(avatar, avatarName, avatarFolder, contentType)
		if err != nil {
			return AuthResult{}, fmt.Errorf("upload avatar: %w", err)
		}
		user.AvatarID = key
		user.AvatarURL = url
	}

	user, err = s.Users.CreateUser(ctx, user)
	if err != nil {
		return AuthResult{}, err
	}

	tokens, err := s.issueTokens(ctx, user)
	if err != nil {
		return AuthResult{}, err
	}

	s.logger().Info("user registered", "user_id", user.ID, "email", user.Email)
	s.Stats.Notify()
	return AuthResult{User: user, Tokens: tokens}, nil
}

func (s *UserService) Login(ctx context.Context, req models.SignInRequest) (AuthResult, error) {
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return AuthResult{}, models.ErrMissingFields
	}

	user, err := s.Users.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			return AuthResult{}, models.ErrInvalidCredentials
		}
		return AuthResult{}, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		return AuthResult{}, models.ErrInvalidCredentials
	}

	tokens, err := s.issueTokens(ctx, user)
	if err != nil {
		return AuthResult{}, err
	}
	return AuthResult{User: user, Tokens: tokens}, nil
}

func (s *UserService) Refresh(ctx context.Context, refreshToken string) (models.Tokens, error) {
	session, err := s.Sessions.GetSessionByToken(ctx, refreshToken)
	if err != nil {
		return models.Tokens{}, err
	}
	if time.Now().After(session.ExpiresAt) {
		return models.Tokens{}, models.ErrNoRecord
	}

	user, err := s.Users.GetUserByID(ctx, session.UserID)
	if err != nil {
		return models.Tokens{}, err
	}
	return s.issueTokens(ctx, user)
}

func (s *UserService) Logout(ctx context.Context, userID int) error {
	return s.Sessions.DeleteSession(ctx, userID)
}

func (s *UserService) issueTokens(ctx context.Context, user models.User) (models.Tokens, error) {
	access, err := s.Tokens.NewJWT(user.ID, user.Role, accessTokenTTL)
	if err != nil {
		return models.Tokens{}, fmt.Errorf("issue access token: %w", err)
	}
	refresh, err := s.Tokens.NewRefreshToken()
	if err != nil {
		return models.Tokens{}, fmt.Errorf("issue refresh token: %w", err)
	}

	err = s.Sessions.CreateSession(ctx, models.Session{
		UserID:       user.ID,
		Role:         user.Role,
		RefreshToken: refresh,
		ExpiresAt:    time.Now().Add(refreshTokenTTL),
	})
	if err != nil {
		return models.Tokens{}, err
	}
	return models.Tokens{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *UserService) Profile(ctx context.Context, userID int) (models.User, error) {
	return s.Users.GetUserByID(ctx, userID)
}

func (s *UserService) UpdateProfile(ctx context.Context, userID int, name, email string) error {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(email) == "" {
		return models.ErrMissingFields
	}
	return s.Users.UpdateProfile(ctx, userID, name, strings.ToLower(strings.TrimSpace(email)))
}

func (s *UserService) UpdatePassword(ctx context.Context, userID int, req models.UpdatePasswordRequest) error {
	if req.OldPassword == "" || req.NewPassword == "" {
		return models.ErrMissingFields
	}

	user, err := s.Users.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.OldPassword)) != nil {
		return models.ErrInvalidPassword
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.Users.UpdatePassword(ctx, userID, string(hashed))
}

func (s *UserService) UpdateAvatar(ctx context.Context, userID int, file []byte, fileName, contentType string) error {
	if len(file) == 0 {
		return models.ErrMissingFields
	}

	user, err := s.Users.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}

	key, url, err := s.Storage.Upload(file, fileName, avatarFolder, contentType)
	if err != nil {
		return fmt.Errorf("upload avatar: %w", err)
	}
	if err := s.Users.UpdateAvatar(ctx, userID, key, url); err != nil {
		return err
	}

	if user.AvatarID != "" {
		if err := s.Storage.Delete(user.AvatarID); err != nil {
			s.logger().Warn("delete old avatar", "user_id", userID, "error", err)
		}
	}
	return nil
}

// ForgotPassword emails a one-time reset link. Only the sha256 of the token
// is stored, so a database leak does not expose usable links.
func (s *UserService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.Users.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return err
	}

	token, err := s.Tokens.NewRefreshToken()
	if err != nil {
		return fmt.Errorf("generate reset token: %w", err)
	}

	err = s.Users.SetResetToken(ctx, user.ID, HashResetToken(token), time.Now().Add(resetTokenTTL))
	if err != nil {
		return err
	}

	resetURL := fmt.Sprintf("%s/resetpassword/%s", strings.TrimRight(s.FrontendURL, "/"), token)
	if err := s.Mail.SendPasswordReset(user.Email, resetURL); err != nil {
		return fmt.Errorf("send reset mail: %w", err)
	}

	s.logger().Info("reset token sent", "user_id", user.ID)
	return nil
}

func (s *UserService) ResetPassword(ctx context.Context, token, password string) error {
	if password == "" {
		return models.ErrMissingFields
	}

	user, err := s.Users.GetUserByResetToken(ctx, HashResetToken(token), time.Now())
	if err != nil {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.Users.ClearResetToken(ctx, user.ID, string(hashed))
}

// HashResetToken maps the emailed token to its stored form.
func HashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func (s *UserService) DeleteProfile(ctx context.Context, userID int) error {
	user, err := s.Users.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}

	// Stop billing before the account disappears. A subscription that is
	// gone by the time we get here is not an error.
	if s.Subscriptions != nil && user.Subscription.Status != nil &&
		*user.Subscription.Status == models.SubscriptionStatusActive {
		if _, err := s.Subscriptions.Cancel(ctx, userID); err != nil &&
			!errors.Is(err, models.ErrNoActiveSubscription) {
			return fmt.Errorf("cancel subscription: %w", err)
		}
	}

	if err := s.Users.DeleteUser(ctx, userID); err != nil {
		return err
	}
	_ = s.Sessions.DeleteSession(ctx, userID)

	if user.AvatarID != "" {
		if err := s.Storage.Delete(user.AvatarID); err != nil {
			s.logger().Warn("delete avatar", "user_id", userID, "error", err)
		}
	}

	s.logger().Info("profile deleted", "user_id", userID)
	s.Stats.Notify()
	return nil
}

func (s *UserService) AddToPlaylist(ctx context.Context, userID, courseID int) error {
	course, err := s.Courses.GetCourseByID(ctx, courseID)
	if err != nil {
		return err
	}
	return s.Playlist.AddToPlaylist(ctx, userID, course.ID, course.PosterURL)
}

func (s *UserService) RemoveFromPlaylist(ctx context.Context, userID, courseID int) error {
	return s.Playlist.RemoveFromPlaylist(ctx, userID, courseID)
}

func (s *UserService) GetPlaylist(ctx context.Context, userID int) ([]models.PlaylistItem, error) {
	return s.Playlist.GetPlaylist(ctx, userID)
}

// Admin operations.

func (s *UserService) GetAllUsers(ctx context.Context) ([]models.User, error) {
	return s.Users.GetAllUsers(ctx)
}

// PromoteToAdmin grants the admin role. There is deliberately no demotion
// path over the API.
func (s *UserService) PromoteToAdmin(ctx context.Context, userID int) error {
	return s.Users.UpdateRole(ctx, userID, models.RoleAdmin)
}

func (s *UserService) DeleteUser(ctx context.Context, userID int) error {
	return s.DeleteProfile(ctx, userID)
}

func (s *UserService) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}
