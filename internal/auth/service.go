package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/daftar-erp/daftar/internal/shared"
)

const (
	resetKeyPrefix = "auth:reset:"
	resetTokenTTL  = 30 * time.Minute
)

// MailEnqueuer hands the recovery mail off to the background worker.
type MailEnqueuer interface {
	EnqueueRecoveryMail(ctx context.Context, email, token string) error
}

// Service wraps authentication business rules.
type Service struct {
	repo  Repository
	redis *redis.Client
	mail  MailEnqueuer
}

// NewService constructs a new Service.
func NewService(repo Repository, rdb *redis.Client, mail MailEnqueuer) *Service {
	return &Service{repo: repo, redis: rdb, mail: mail}
}

// Authenticate validates email/password credentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	return user, nil
}

// RegisterSession persists the session metadata in postgres.
func (s *Service) RegisterSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error {
	return s.repo.CreateSession(ctx, id, userID, expiresAt, ip, ua)
}

// RemoveSession deletes a session record from postgres.
func (s *Service) RemoveSession(ctx context.Context, id string) error {
	return s.repo.DeleteSession(ctx, id)
}

// RequestPasswordReset issues a one-time token and mails it to the account.
// Unknown or inactive accounts are silently ignored so the endpoint does not
// leak which emails exist.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil || !user.IsActive {
		return nil
	}
	token := uuid.NewString()
	key := resetKeyPrefix + token
	if err := s.redis.Set(ctx, key, strconv.FormatInt(user.ID, 10), resetTokenTTL).Err(); err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}
	if s.mail != nil {
		if err := s.mail.EnqueueRecoveryMail(ctx, user.Email, token); err != nil {
			return fmt.Errorf("enqueue recovery mail: %w", err)
		}
	}
	return nil
}

// ResetPassword consumes a reset token and installs the new password.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	key := resetKeyPrefix + token
	raw, err := s.redis.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return shared.ErrTokenExpired
	}
	if err != nil {
		return fmt.Errorf("load reset token: %w", err)
	}
	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return shared.ErrTokenExpired
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.repo.UpdatePassword(ctx, userID, string(hash)); err != nil {
		return err
	}
	// Token is single use.
	_ = s.redis.Del(ctx, key).Err()
	return nil
}
