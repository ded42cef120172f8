package branches

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

func (s *Service) All(ctx context.Context) ([]Branch, error) {
	return refdata.CachedAll(ctx, s.cache, "branches", s.repo.All)
}

func (s *Service) Get(ctx context.Context, id int64) (Branch, error) {
	if id <= 0 {
		return Branch{}, shared.ErrInvalidID
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, actorID int64, branch Branch) (Branch, error) {
	if err := s.validate(branch); err != nil {
		return Branch{}, err
	}
	created, err := s.repo.Create(ctx, branch)
	if err != nil {
		return Branch{}, err
	}
	s.afterMutation(ctx, actorID, "branch.create", created.ID)
	return created, nil
}

func (s *Service) Update(ctx context.Context, actorID, id int64, branch Branch) error {
	if id <= 0 {
		return shared.ErrInvalidID
	}
	if err := s.validate(branch); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, id, branch); err != nil {
		return err
	}
	s.afterMutation(ctx, actorID, "branch.update", id)
	return nil
}

func (s *Service) Delete(ctx context.Context, actorID, id int64) error {
	if id <= 0 {
		return shared.ErrInvalidID
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.afterMutation(ctx, actorID, "branch.delete", id)
	return nil
}

func (s *Service) validate(b Branch) error {
	if strings.TrimSpace(b.Code) == "" {
		return fmt.Errorf("%w: code", shared.ErrRequiredField)
	}
	if strings.TrimSpace(b.Title) == "" {
		return fmt.Errorf("%w: title", shared.ErrRequiredField)
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
			Entity:   "branch",
			EntityID: fmt.Sprintf("%d", id),
		})
	}
}
