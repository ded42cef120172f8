package accounts

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

// StructureLookup verifies the structure an account claims to belong to.
type StructureLookup interface {
	TitleByCode(code string) (string, bool)
}

type Service struct {
	repo       Repository
	structures StructureLookup
	cache      *refdata.Cache
	audit      AuditPort
}

func NewService(repo Repository, structures StructureLookup, cache *refdata.Cache, audit AuditPort) *Service {
	return &Service{repo: repo, structures: structures, cache: cache, audit: audit}
}

func (s *Service) All(ctx context.Context) ([]Account, error) {
	return refdata.CachedAll(ctx, s.cache, "accounts", s.repo.All)
}

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Account, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Account, error) {
	if id <= 0 {
		return Account{}, shared.ErrInvalidID
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, actorID int64, account Account) (Account, error) {
	if err := s.validate(account); err != nil {
		return Account{}, err
	}
	created, err := s.repo.Create(ctx, account)
	if err != nil {
		return Account{}, err
	}
	s.afterMutation(ctx, actorID, "account.create", created.ID)
	return created, nil
}

func (s *Service) Update(ctx context.Context, actorID, id int64, account Account) error {
	if id <= 0 {
		return shared.ErrInvalidID
	}
	if err := s.validate(account); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, id, account); err != nil {
		return err
	}
	s.afterMutation(ctx, actorID, "account.update", id)
	return nil
}

func (s *Service) Delete(ctx context.Context, actorID, id int64) error {
	if id <= 0 {
		return shared.ErrInvalidID
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.afterMutation(ctx, actorID, "account.delete", id)
	return nil
}

func (s *Service) validate(a Account) error {
	if strings.TrimSpace(a.Code) == "" {
		return fmt.Errorf("%w: code", shared.ErrRequiredField)
	}
	if strings.TrimSpace(a.Title) == "" {
		return fmt.Errorf("%w: title", shared.ErrRequiredField)
	}
	if a.StructureCode != "" && s.structures != nil {
		if _, ok := s.structures.TitleByCode(a.StructureCode); !ok {
			return fmt.Errorf("%w: structure_code", shared.ErrValidation)
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
			Entity:   "account",
			EntityID: fmt.Sprintf("%d", id),
		})
	}
}
