package structures

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

func (s *Service) All(ctx context.Context) ([]Structure, error) {
	return refdata.CachedAll(ctx, s.cache, "structures", s.repo.All)
}

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Structure, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Structure, error) {
	if id <= 0 {
		return Structure{}, shared.ErrInvalidID
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, actorID int64, structure Structure) (Structure, error) {
	if err := s.validate(structure); err != nil {
		return Structure{}, err
	}
	created, err := s.repo.Create(ctx, structure)
	if err != nil {
		return Structure{}, err
	}
	s.afterMutation(ctx, actorID, "structure.create", created.ID)
	return created, nil
}

func (s *Service) Update(ctx context.Context, actorID, id int64, structure Structure) error {
	if id <= 0 {
		return shared.ErrInvalidID
	}
	if err := s.validate(structure); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, id, structure); err != nil {
		return err
	}
	s.afterMutation(ctx, actorID, "structure.update", id)
	return nil
}

func (s *Service) Delete(ctx context.Context, actorID, id int64) error {
	if id <= 0 {
		return shared.ErrInvalidID
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.afterMutation(ctx, actorID, "structure.delete", id)
	return nil
}

func (s *Service) validate(st Structure) error {
	if strings.TrimSpace(st.Code) == "" {
		return fmt.Errorf("%w: code", shared.ErrRequiredField)
	}
	if strings.TrimSpace(st.Title) == "" {
		return fmt.Errorf("%w: title", shared.ErrRequiredField)
	}
	for _, segment := range strings.Split(st.Pattern, "-") {
		if segment == "" {
			return fmt.Errorf("%w: pattern", shared.ErrValidation)
		}
		for _, ch := range segment {
			if ch < '0' || ch > '9' {
				return fmt.Errorf("%w: pattern", shared.ErrValidation)
			}
		}
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
			Entity:   "account_structure",
			EntityID: fmt.Sprintf("%d", id),
		})
	}
}
