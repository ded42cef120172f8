package ledgers

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/daftar-erp/daftar/internal/masterdata/shared"
	"github.com/daftar-erp/daftar/internal/refdata"
	internalShared "github.com/daftar-erp/daftar/internal/shared"
)

type AuditPort interface {
	Record(ctx context.Context, log internalShared.AuditLog) error
}

// CodeLookup checks that a referenced code exists in its reference store.
type CodeLookup interface {
	TitleByCode(code string) (string, bool)
}

type Service struct {
	logger     *slog.Logger
	repo       Repository
	structures CodeLookup
	currencies CodeLookup
	cache      *refdata.Cache
	audit      AuditPort
}

func NewService(logger *slog.Logger, repo Repository, structures, currencies CodeLookup, cache *refdata.Cache, audit AuditPort) *Service {
	return &Service{
		logger:     logger,
		repo:       repo,
		structures: structures,
		currencies: currencies,
		cache:      cache,
		audit:      audit,
	}
}

func (s *Service) All(ctx context.Context) ([]Ledger, error) {
	return s.repo.All(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (Ledger, error) {
	if id <= 0 {
		return Ledger{}, shared.ErrInvalidID
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, actorID int64, ledger Ledger) (Ledger, error) {
	if err := s.validate(ledger); err != nil {
		return Ledger{}, err
	}
	created, err := s.repo.Create(ctx, ledger)
	if err != nil {
		return Ledger{}, err
	}
	s.afterMutation(ctx, actorID, "ledger.create", created.ID)
	return created, nil
}

func (s *Service) Update(ctx context.Context, actorID, id int64, ledger Ledger) error {
	if id <= 0 {
		return shared.ErrInvalidID
	}
	if err := s.validate(ledger); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, id, ledger); err != nil {
		return err
	}
	s.afterMutation(ctx, actorID, "ledger.update", id)
	return nil
}

func (s *Service) Delete(ctx context.Context, actorID, id int64) error {
	if id <= 0 {
		return shared.ErrInvalidID
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.afterMutation(ctx, actorID, "ledger.delete", id)
	return nil
}

// SetMain designates or clears the main ledger. The mutation runs as two
// ordered writes (clear all others, then set the target) followed by a
// verifying re-read. Because other sessions write the same table, the
// re-read is authoritative: the outcome reports what the table actually
// holds, not what this call attempted.
//
// Clearing the flag on a ledger that does not carry it leaves every other
// row untouched.
func (s *Service) SetMain(ctx context.Context, actorID, id int64, value bool) (FlagOutcome, error) {
	if id <= 0 {
		return FlagOutcome{}, shared.ErrInvalidID
	}
	if _, err := s.repo.Get(ctx, id); err != nil {
		return FlagOutcome{}, err
	}

	if !value {
		if err := s.repo.SetMainFlag(ctx, id, false); err != nil {
			return FlagOutcome{}, err
		}
		outcome, err := s.verify(ctx, false)
		if err != nil {
			return FlagOutcome{}, err
		}
		s.afterMutation(ctx, actorID, "ledger.main.clear", id)
		return outcome, nil
	}

	if err := s.repo.ClearMainExcept(ctx, id); err != nil {
		return FlagOutcome{}, err
	}
	if err := s.repo.SetMainFlag(ctx, id, true); err != nil {
		// The clear step already landed. Report the observed state so the
		// caller can retry instead of assuming success.
		s.logger.Warn("main flag set step failed after clear", "ledger_id", id, "error", err)
		outcome, verr := s.verify(ctx, true)
		if verr != nil {
			return FlagOutcome{}, verr
		}
		return outcome, nil
	}

	outcome, err := s.verify(ctx, true)
	if err != nil {
		return FlagOutcome{}, err
	}
	if outcome.State == StateCommitted {
		s.afterMutation(ctx, actorID, "ledger.main.set", id)
	}
	return outcome, nil
}

// verify re-reads the flag count and classifies the collection state.
func (s *Service) verify(ctx context.Context, wantFlagged bool) (FlagOutcome, error) {
	count, err := s.repo.CountMain(ctx)
	if err != nil {
		return FlagOutcome{}, err
	}
	outcome := FlagOutcome{MainCount: count}
	switch {
	case count > 1:
		outcome.State = StateConflicted
		outcome.Warning = "more than one main ledger detected, manual correction required"
		s.logger.Warn("main ledger reconciliation required", "count", count)
	case count == 0 && wantFlagged:
		outcome.State = StateZeroFlagged
		outcome.Warning = "no main ledger is set, retry the operation"
	default:
		outcome.State = StateCommitted
	}
	return outcome, nil
}

func (s *Service) validate(l Ledger) error {
	if strings.TrimSpace(l.Code) == "" {
		return fmt.Errorf("%w: code", shared.ErrRequiredField)
	}
	if strings.TrimSpace(l.Title) == "" {
		return fmt.Errorf("%w: title", shared.ErrRequiredField)
	}
	if s.structures != nil {
		if _, ok := s.structures.TitleByCode(l.StructureCode); !ok {
			return fmt.Errorf("%w: unknown structure_code %q", shared.ErrValidation, l.StructureCode)
		}
	}
	if s.currencies != nil {
		if _, ok := s.currencies.TitleByCode(l.CurrencyCode); !ok {
			return fmt.Errorf("%w: unknown currency_code %q", shared.ErrValidation, l.CurrencyCode)
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
			Entity:   "ledger",
			EntityID: fmt.Sprintf("%d", id),
		})
	}
}
