package vouchers

import (
	"context"
	"errors"

	"github.com/daftar-erp/daftar/internal/masterdata/shared"
)

// AssemblyMetrics counts print assemblies by outcome.
type AssemblyMetrics interface {
	ObserveAssembly(outcome string)
}

// Service exposes the read-only voucher surface: listing, header access
// and print assembly.
type Service struct {
	repo      Repository
	assembler *Assembler
	metrics   AssemblyMetrics
}

func NewService(repo Repository, assembler *Assembler, metrics AssemblyMetrics) *Service {
	return &Service{repo: repo, assembler: assembler, metrics: metrics}
}

func (s *Service) List(ctx context.Context, ledgerID int64, filters shared.ListFilters) ([]Voucher, int64, error) {
	if ledgerID <= 0 {
		return nil, 0, shared.ErrInvalidID
	}
	return s.repo.List(ctx, ledgerID, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Voucher, error) {
	if id <= 0 {
		return Voucher{}, shared.ErrInvalidID
	}
	return s.repo.GetVoucher(ctx, id)
}

func (s *Service) Print(ctx context.Context, id int64, lang string) (Document, error) {
	if id <= 0 {
		return Document{}, shared.ErrInvalidID
	}
	doc, err := s.assembler.Assemble(ctx, id, lang)
	switch {
	case errors.Is(err, shared.ErrNotFound):
		s.observe("not_found")
	case err != nil:
		s.observe("error")
	case len(doc.Warnings) > 0:
		s.observe("degraded")
	default:
		s.observe("ready")
	}
	return doc, err
}

func (s *Service) observe(outcome string) {
	if s.metrics != nil {
		s.metrics.ObserveAssembly(outcome)
	}
}
