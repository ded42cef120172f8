package users

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/daftar-erp/daftar/internal/shared"
)

type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service handles user business logic.
type Service struct {
	repo  RepositoryPort
	audit AuditPort
}

func NewService(repo RepositoryPort, audit AuditPort) *Service {
	return &Service{repo: repo, audit: audit}
}

// ListUsers returns all users.
func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	return s.repo.ListUsers(ctx)
}

func (s *Service) GetUser(ctx context.Context, id int64) (User, error) {
	return s.repo.GetUser(ctx, id)
}

// CreateUser registers a new account with a bcrypt-hashed password.
func (s *Service) CreateUser(ctx context.Context, actorID int64, email, fullName, password string) (User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return User{}, shared.ErrInvalidCredentials
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}
	user, err := s.repo.CreateUser(ctx, User{
		Email:        email,
		FullName:     strings.TrimSpace(fullName),
		PasswordHash: string(hash),
		Language:     LanguageFa,
		Calendar:     CalendarJalali,
		IsActive:     true,
	})
	if err != nil {
		return User{}, err
	}
	s.record(ctx, actorID, "user.create", user.ID)
	return user, nil
}

func (s *Service) UpdateProfile(ctx context.Context, actorID, id int64, fullName string) error {
	if err := s.repo.UpdateProfile(ctx, id, strings.TrimSpace(fullName)); err != nil {
		return err
	}
	s.record(ctx, actorID, "user.profile", id)
	return nil
}

// UpdatePreferences sets language and calendar used when rendering documents
// for this user.
func (s *Service) UpdatePreferences(ctx context.Context, actorID, id int64, language, calendar string) error {
	if !ValidLanguage(language) {
		return fmt.Errorf("unsupported language %q", language)
	}
	if !ValidCalendar(calendar) {
		return fmt.Errorf("unsupported calendar %q", calendar)
	}
	if err := s.repo.UpdatePreferences(ctx, id, language, calendar); err != nil {
		return err
	}
	s.record(ctx, actorID, "user.preferences", id)
	return nil
}

func (s *Service) SetActive(ctx context.Context, actorID, id int64, active bool) error {
	if err := s.repo.SetActive(ctx, id, active); err != nil {
		return err
	}
	s.record(ctx, actorID, "user.status", id)
	return nil
}

func (s *Service) record(ctx context.Context, actorID int64, action string, id int64) {
	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:  actorID,
			Action:   action,
			Entity:   "user",
			EntityID: fmt.Sprintf("%d", id),
		})
	}
}
