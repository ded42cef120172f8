package currencies

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

// All serves the full collection through the versioned cache; mutations
// bump the version so every instance falls back to the database on the
// next read.
func (s *Service) All(ctx context.Context) ([]Currency, error) {
	return refdata.CachedAll(ctx, s.cache, "currencies", s.repo.All)
}

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Currency, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Currency, error) {
	if id <= 0 {
		return Currency{}, shared.ErrInvalidID
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, actorID int64, currency Currency) (Currency, error) {
	if err := s.validate(currency); err != nil {
		return Currency{}, err
	}
	created, err := s.repo.Create(ctx, currency)
	if err != nil {
		return Currency{}, err
	}
	s.invalidate(ctx)
	s.record(ctx, actorID, "currency.create", created.ID, map[string]any{"code": created.Code})
	return created, nil
}

func (s *Service) Update(ctx context.Context, actorID, id int64, currency Currency) error {
	if id <= 0 {
		return shared.ErrInvalidID
	}
	if err := s.validate(currency); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, id, currency); err != nil {
		return err
	}
	s.invalidate(ctx)
	s.record(ctx, actorID, "currency.update", id, map[string]any{"code": currency.Code})
	return nil
}

func (s *Service) SetActive(ctx context.Context, actorID, id int64, active bool) error {
	if id <= 0 {
		return shared.ErrInvalidID
	}
	if err := s.repo.SetActive(ctx, id, active); err != nil {
		return err
	}
	s.invalidate(ctx)
	s.record(ctx, actorID, "currency.status", id, map[string]any{"active": active})
	return nil
}

func (s *Service) Delete(ctx context.Context, actorID, id int64) error {
	if id <= 0 {
		return shared.ErrInvalidID
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	s.record(ctx, actorID, "currency.delete", id, nil)
	return nil
}

func (s *Service) validate(c Currency) error {
	if strings.TrimSpace(c.Code) == "" {
		return fmt.Errorf("%w: code", shared.ErrRequiredField)
	}
	if strings.TrimSpace(c.Title) == "" {
		return fmt.Errorf("%w: title", shared.ErrRequiredField)
	}
	return nil
}

func (s *Service) invalidate(ctx context.Context) {
	if s.cache != nil {
		_ = s.cache.Bump(ctx)
	}
}

func (s *Service) record(ctx context.Context, actorID int64, action string, id int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, internalShared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "currency",
		EntityID: fmt.Sprintf("%d", id),
		Meta:     meta,
	})
}
