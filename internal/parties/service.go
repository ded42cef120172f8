package parties

import (
	"context"
	"fmt"
	"strings"

	"github.com/daftar-erp/daftar/internal/masterdata/shared"
	"github.com/daftar-erp/daftar/internal/refdata"
	internalShared "github.com/daftar-erp/daftar/internal/shared"
)

type AuditPort interface {
	Record(ctx context.Context, log internalShared.AuditLog) error
}

type Service struct {
	repo  Repository
	cache *refdata.Cache
	audit AuditPort
}

func NewService(repo Repository, cache *refdata.Cache, audit AuditPort) *Service {
	return &Service{repo: repo, cache: cache, audit: audit}
}

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Party, int64, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Party, error) {
	if id <= 0 {
		return Party{}, shared.ErrInvalidID
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, actorID int64, party Party) (Party, error) {
	if err := s.validate(party); err != nil {
		return Party{}, err
	}
	created, err := s.repo.Create(ctx, party)
	if err != nil {
		return Party{}, err
	}
	s.afterMutation(ctx, actorID, "party.create", created.ID)
	return created, nil
}

func (s *Service) Update(ctx context.Context, actorID, id int64, party Party) error {
	if id <= 0 {
		return shared.ErrInvalidID
	}
	if err := s.validate(party); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, id, party); err != nil {
		return err
	}
	s.afterMutation(ctx, actorID, "party.update", id)
	return nil
}

func (s *Service) Delete(ctx context.Context, actorID, id int64) error {
	if id <= 0 {
		return shared.ErrInvalidID
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.afterMutation(ctx, actorID, "party.delete", id)
	return nil
}

func (s *Service) validate(p Party) error {
	if strings.TrimSpace(p.Code) == "" {
		return fmt.Errorf("%w: code", shared.ErrRequiredField)
	}
	if strings.TrimSpace(p.Title) == "" {
		return fmt.Errorf("%w: title", shared.ErrRequiredField)
	}
	if p.UserID != nil && *p.UserID <= 0 {
		return fmt.Errorf("%w: user_id must be positive", shared.ErrValidation)
	}
	return nil
}

func (s *Service) afterMutation(ctx context.Context, actorID int64, action string, id int64) {
	if s.cache != nil {
		_ = s.cache.Bump(ctx)
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, internalShared.AuditLog{
			ActorID:  actorID,
			Action:   action,
			Entity:   "party",
			EntityID: fmt.Sprintf("%d", id),
		})
	}
}
