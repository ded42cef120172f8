package details

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

func (s *Service) AllTypes(ctx context.Context) ([]DetailType, error) {
	return s.repo.AllTypes(ctx)
}

func (s *Service) GetType(ctx context.Context, id int64) (DetailType, error) {
	if id <= 0 {
		return DetailType{}, shared.ErrInvalidID
	}
	return s.repo.GetType(ctx, id)
}

// CreateType adds a user-defined detail dimension. System types only come
// from migrations.
func (s *Service) CreateType(ctx context.Context, actorID int64, t DetailType) (DetailType, error) {
	if err := validateCodeTitle(t.Code, t.Title); err != nil {
		return DetailType{}, err
	}
	t.Kind = KindUser
	created, err := s.repo.CreateType(ctx, t)
	if err != nil {
		return DetailType{}, err
	}
	s.afterMutation(ctx, actorID, "detail_type.create", created.ID)
	return created, nil
}

func (s *Service) UpdateType(ctx context.Context, actorID, id int64, t DetailType) error {
	if id <= 0 {
		return shared.ErrInvalidID
	}
	current, err := s.repo.GetType(ctx, id)
	if err != nil {
		return err
	}
	if current.Protected() {
		return shared.ErrSystemProtected
	}
	if err := validateCodeTitle(t.Code, t.Title); err != nil {
		return err
	}
	if err := s.repo.UpdateType(ctx, id, t); err != nil {
		return err
	}
	s.afterMutation(ctx, actorID, "detail_type.update", id)
	return nil
}

// DeleteTypes removes user-defined detail types. If any id in the batch
// resolves to a system type the whole batch is rejected and nothing is
// written.
func (s *Service) DeleteTypes(ctx context.Context, actorID int64, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	records, err := s.repo.GetTypesByIDs(ctx, ids)
	if err != nil {
		return err
	}
	for _, record := range records {
		if record.Protected() {
			return shared.ErrSystemProtected
		}
	}
	if err := s.repo.DeleteTypes(ctx, ids); err != nil {
		return err
	}
	s.afterMutation(ctx, actorID, "detail_type.delete", ids[0])
	return nil
}

func (s *Service) ListInstances(ctx context.Context, typeID int64) ([]DetailInstance, error) {
	if typeID <= 0 {
		return nil, shared.ErrInvalidID
	}
	return s.repo.ListInstances(ctx, typeID)
}

func (s *Service) GetInstance(ctx context.Context, id int64) (DetailInstance, error) {
	if id <= 0 {
		return DetailInstance{}, shared.ErrInvalidID
	}
	return s.repo.GetInstance(ctx, id)
}

// CreateInstance adds an instance in the unassigned state. A detail code
// supplied at creation time is accepted as an immediate assignment.
func (s *Service) CreateInstance(ctx context.Context, actorID int64, inst DetailInstance) (DetailInstance, error) {
	if err := validateCodeTitle(inst.EntityCode, inst.Title); err != nil {
		return DetailInstance{}, err
	}
	if inst.DetailCode != nil && strings.TrimSpace(*inst.DetailCode) == "" {
		inst.DetailCode = nil
	}
	created, err := s.repo.CreateInstance(ctx, inst)
	if err != nil {
		return DetailInstance{}, err
	}
	s.afterMutation(ctx, actorID, "detail_instance.create", created.ID)
	return created, nil
}

func (s *Service) UpdateInstance(ctx context.Context, actorID, id int64, inst DetailInstance) error {
	if id <= 0 {
		return shared.ErrInvalidID
	}
	if err := validateCodeTitle(inst.EntityCode, inst.Title); err != nil {
		return err
	}
	if err := s.repo.UpdateInstance(ctx, id, inst); err != nil {
		return err
	}
	s.afterMutation(ctx, actorID, "detail_instance.update", id)
	return nil
}

func (s *Service) DeleteInstance(ctx context.Context, actorID, id int64) error {
	if id <= 0 {
		return shared.ErrInvalidID
	}
	if err := s.repo.DeleteInstance(ctx, id); err != nil {
		return err
	}
	s.afterMutation(ctx, actorID, "detail_instance.delete", id)
	return nil
}

// AssignCode moves an instance from unassigned to assigned. The transition
// happens at most once; there is no unassign.
func (s *Service) AssignCode(ctx context.Context, actorID, id int64, code string) (DetailInstance, error) {
	if id <= 0 {
		return DetailInstance{}, shared.ErrInvalidID
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return DetailInstance{}, ErrEmptyCode
	}
	current, err := s.repo.GetInstance(ctx, id)
	if err != nil {
		return DetailInstance{}, err
	}
	if current.Assigned() {
		return DetailInstance{}, ErrAlreadyAssigned
	}
	updated, err := s.repo.AssignCode(ctx, id, code)
	if err != nil {
		return DetailInstance{}, err
	}
	s.afterMutation(ctx, actorID, "detail_instance.assign_code", id)
	return updated, nil
}

func validateCodeTitle(code, title string) error {
	if strings.TrimSpace(code) == "" {
		return fmt.Errorf("%w: code", shared.ErrRequiredField)
	}
	if strings.TrimSpace(title) == "" {
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
			Entity:   "detail",
			EntityID: fmt.Sprintf("%d", id),
		})
	}
}
