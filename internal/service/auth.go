package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/taskdeck/taskdeck/internal/auth"
	"github.com/taskdeck/taskdeck/internal/metrics"
	"github.com/taskdeck/taskdeck/internal/model"
	"github.com/taskdeck/taskdeck/internal/repository"
)

// Auth service errors.
var (
	// ErrInvalidCredentials covers both unknown email and wrong password
	// so login failures don't reveal which accounts exist.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUserNotFound       = errors.New("user not found")
)

// UserStore defines the persistence operations the auth service needs.
// Implemented by repository.Repository.
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByID(ctx context.Context, id string) (*model.User, error)
}

// SessionWriter defines the session store operations the auth service needs.
// Implemented by sessions.Store.
type SessionWriter interface {
	Create(ctx context.Context, token, userID string, ttl time.Duration) error
	Delete(ctx context.Context, token string) error
}

// AuthService issues and tears down sessions and resolves the current user.
type AuthService struct {
	users    UserStore
	sessions SessionWriter
	secret   string
	maxAge   time.Duration
	metrics  metrics.Recorder
}

// NewAuthService creates a new AuthService.
func NewAuthService(users UserStore, sessions SessionWriter, secret string, maxAge time.Duration, recorder metrics.Recorder) *AuthService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &AuthService{
		users:    users,
		sessions: sessions,
		secret:   secret,
		maxAge:   maxAge,
		metrics:  recorder,
	}
}

// SignupInput defines input for registering a user.
type SignupInput struct {
	Email    string
	Password string
	Name     string
}

// Signup registers a new user and starts a session for it.
// Returns the user and the signed cookie value.
func (s *AuthService) Signup(ctx context.Context, input SignupInput) (*model.User, string, error) {
	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		ID:           newUserID(),
		Email:        normalizeEmail(input.Email),
		Name:         strings.TrimSpace(input.Name),
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, "", ErrEmailTaken
		}
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}

	cookieValue, err := s.startSession(ctx, user.ID)
	if err != nil {
		return nil, "", err
	}

	return user, cookieValue, nil
}

// Login verifies credentials and starts a session.
// Returns the user and the signed cookie value.
func (s *AuthService) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	user, err := s.users.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.metrics.IncLoginFailed()
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}

	match, err := auth.VerifyPassword(password, user.PasswordHash)
	if err != nil || !match {
		s.metrics.IncLoginFailed()
		return nil, "", ErrInvalidCredentials
	}

	cookieValue, err := s.startSession(ctx, user.ID)
	if err != nil {
		return nil, "", err
	}

	s.metrics.IncLoginSucceeded()

	return user, cookieValue, nil
}

// Logout deletes the server-side session for the given token.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if err := s.sessions.Delete(ctx, token); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// CurrentUser resolves the session's user id to a full user record.
func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return user, nil
}

// SessionMaxAge returns the configured session lifetime.
// Used by handlers to set the cookie Max-Age.
func (s *AuthService) SessionMaxAge() time.Duration {
	return s.maxAge
}

// startSession creates a session record and returns the signed cookie value.
func (s *AuthService) startSession(ctx context.Context, userID string) (string, error) {
	token, err := auth.NewSessionToken()
	if err != nil {
		return "", err
	}

	if err := s.sessions.Create(ctx, token, userID, s.maxAge); err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}

	return auth.SignSessionToken(token, s.secret), nil
}

// normalizeEmail lowercases and trims an email address.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// newUserID generates a unique user id.
func newUserID() string {
	return ulid.Make().String()
}
