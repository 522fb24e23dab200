package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/studybuddy/go-study-backend/internal/domain"
	"github.com/studybuddy/go-study-backend/internal/repo"
)

// AuthService implements registration and token-based sessions.
type AuthService struct {
	catalog    *Catalog
	sessionTTL time.Duration
}

func NewAuthService(catalog *Catalog, sessionTTL time.Duration) *AuthService {
	return &AuthService{catalog: catalog, sessionTTL: sessionTTL}
}

// Register creates a user with a bcrypt-hashed password.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" || password == "" {
		return nil, fmt.Errorf("username, email and password are required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u, err := s.catalog.CreateUser(ctx, username, email, string(hash))
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(strings.ToLower(err.Error()), "unique") {
			return nil, ErrUserExists
		}
		return nil, err
	}
	return u, nil
}

// LoginResult carries everything the client needs after authentication.
type LoginResult struct {
	UserID       string
	Username     string
	SessionToken string
}

// Login verifies credentials and opens a session.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	u, err := s.catalog.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	sess, err := s.catalog.CreateSession(ctx, u.ID, s.sessionTTL)
	if err != nil {
		return nil, err
	}
	return &LoginResult{UserID: u.ID, Username: u.Username, SessionToken: sess.Token}, nil
}

// Logout destroys the session for the token.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if err := s.catalog.DeleteSession(ctx, token); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrInvalidSession
		}
		return err
	}
	return nil
}

// Validate resolves a session token to its user.
func (s *AuthService) Validate(ctx context.Context, token string) (*domain.User, error) {
	u, err := s.catalog.GetSessionUser(ctx, token)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrInvalidSession
		}
		return nil, err
	}
	return u, nil
}
