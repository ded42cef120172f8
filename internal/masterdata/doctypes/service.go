package doctypes

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

func (s *Service) All(ctx context.Context) ([]DocType, error) {
	return refdata.CachedAll(ctx, s.cache, "doctypes", s.repo.All)
}

func (s *Service) Get(ctx context.Context, id int64) (DocType, error) {
	if id <= 0 {
		return DocType{}, shared.ErrInvalidID
	}
	return s.repo.Get(ctx, id)
}

// Create stores a user-defined document type. System types are seeded by
// migration, never created through the API.
func (s *Service) Create(ctx context.Context, actorID int64, docType DocType) (DocType, error) {
	if err := s.validate(docType); err != nil {
		return DocType{}, err
	}
	docType.Kind = KindUser
	created, err := s.repo.Create(ctx, docType)
	if err != nil {
		return DocType{}, err
	}
	s.afterMutation(ctx, actorID, "doctype.create", created.ID)
	return created, nil
}

func (s *Service) Update(ctx context.Context, actorID, id int64, docType DocType) error {
	if id <= 0 {
		return shared.ErrInvalidID
	}
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if current.Protected() {
		return shared.ErrSystemProtected
	}
	if err := s.validate(docType); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, id, docType); err != nil {
		return err
	}
	s.afterMutation(ctx, actorID, "doctype.update", id)
	return nil
}

// DeleteMany removes user-defined document types. A batch containing any
// system type is rejected as a whole before any write is issued.
func (s *Service) DeleteMany(ctx context.Context, actorID int64, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	records, err := s.repo.GetByIDs(ctx, ids)
	if err != nil {
		return err
	}
	for _, record := range records {
		if record.Protected() {
			return shared.ErrSystemProtected
		}
	}
	if err := s.repo.DeleteMany(ctx, ids); err != nil {
		return err
	}
	s.afterMutation(ctx, actorID, "doctype.delete", ids[0])
	return nil
}

func (s *Service) validate(d DocType) error {
	if strings.TrimSpace(d.Code) == "" {
		return fmt.Errorf("%w: code", shared.ErrRequiredField)
	}
	if strings.TrimSpace(d.Title) == "" {
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
			Entity:   "doc_type",
			EntityID: fmt.Sprintf("%d", id),
		})
	}
}
