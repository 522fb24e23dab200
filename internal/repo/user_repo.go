// Package repo – user and session repositories.
//
// Users are created once at registration; sessions are short-lived bearer
// tokens. Expired sessions are purged lazily whenever a validation misses,
// mirroring the opportunistic cleanup the service layer expects.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/studybuddy/go-study-backend/internal/domain"
)

// CreateUser inserts a new user row. A uniqueness violation on username or
// email propagates to the caller, which maps it to a registration conflict.
func CreateUser(ctx context.Context, db *gorm.DB, username, email, passwordHash string) (*domain.User, error) {
	u := &domain.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(u).Error; err != nil {
		return nil, err
	}
	return u, nil
}

// GetUserByUsername fetches a user by username, or ErrNotFound.
func GetUserByUsername(ctx context.Context, db *gorm.DB, username string) (*domain.User, error) {
	var u domain.User
	if err := db.WithContext(ctx).Where("username = ?", username).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateSession issues a new bearer session for userID expiring after ttl.
func CreateSession(ctx context.Context, db *gorm.DB, userID string, ttl time.Duration) (*domain.Session, error) {
	now := time.Now().UTC()
	s := &domain.Session{
		ID:        uuid.NewString(),
		Token:     uuid.NewString(),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	if err := db.WithContext(ctx).Create(s).Error; err != nil {
		return nil, err
	}
	return s, nil
}

// GetSessionUser resolves a bearer token to its user, enforcing expiry at
// the supplied instant. On a miss it opportunistically deletes every expired
// session before returning ErrNotFound.
func GetSessionUser(ctx context.Context, db *gorm.DB, token string, now time.Time) (*domain.User, error) {
	var s domain.Session
	err := db.WithContext(ctx).
		Where("token = ? AND expires_at > ?", token, now).
		First(&s).Error
	if err != nil {
		// Purge expired rows while we are here; failure is irrelevant.
		db.WithContext(ctx).Where("expires_at <= ?", now).Delete(&domain.Session{})
		return nil, err
	}

	var u domain.User
	if err := db.WithContext(ctx).Where("id = ?", s.UserID).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// DeleteSession removes the session for a token. It returns ErrNotFound when
// no row was deleted, so logout of an unknown token is reportable.
func DeleteSession(ctx context.Context, db *gorm.DB, token string) error {
	res := db.WithContext(ctx).Where("token = ?", token).Delete(&domain.Session{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
