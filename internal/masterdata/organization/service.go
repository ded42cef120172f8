package organization

import (
	"context"
	"fmt"
	"strings"

	"github.com/daftar-erp/daftar/internal/masterdata/shared"
	internalShared "github.com/daftar-erp/daftar/internal/shared"
)

type AuditPort interface {
	Record(ctx context.Context, log internalShared.AuditLog) error
}

type Service struct {
	repo  Repository
	audit AuditPort
}

func NewService(repo Repository, audit AuditPort) *Service {
	return &Service{repo: repo, audit: audit}
}

func (s *Service) Get(ctx context.Context) (Info, error) {
	return s.repo.Get(ctx)
}

func (s *Service) Save(ctx context.Context, actorID int64, info Info) (Info, error) {
	if strings.TrimSpace(info.Name) == "" {
		return Info{}, fmt.Errorf("%w: name", shared.ErrRequiredField)
	}
	saved, err := s.repo.Save(ctx, info)
	if err != nil {
		return Info{}, err
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, internalShared.AuditLog{
			ActorID:  actorID,
			Action:   "organization.save",
			Entity:   "organization",
			EntityID: "1",
		})
	}
	return saved, nil
}
