package vouchers

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/daftar-erp/daftar/internal/masterdata/shared"
)

type fakeAssemblyMetrics struct {
	outcomes []string
}

func (m *fakeAssemblyMetrics) ObserveAssembly(outcome string) {
	m.outcomes = append(m.outcomes, outcome)
}

func newTestService(repo Repository, metrics AssemblyMetrics) *Service {
	assembler := NewAssembler(slog.Default(), repo, fakeCurrencies{"IRR": "Iranian Rial"})
	return NewService(repo, assembler, metrics)
}

func TestPrintCountsReadyAssembly(t *testing.T) {
	metrics := &fakeAssemblyMetrics{}
	svc := newTestService(newBalancedRepo(), metrics)

	_, err := svc.Print(context.Background(), 10, "en")
	require.NoError(t, err)
	require.Equal(t, []string{"ready"}, metrics.outcomes)
}

func TestPrintCountsNotFound(t *testing.T) {
	metrics := &fakeAssemblyMetrics{}
	svc := newTestService(newBalancedRepo(), metrics)

	_, err := svc.Print(context.Background(), 999, "en")
	require.ErrorIs(t, err, shared.ErrNotFound)
	require.Equal(t, []string{"not_found"}, metrics.outcomes)
}

func TestPrintCountsDegradedAssembly(t *testing.T) {
	repo := newBalancedRepo()
	repo.voucher.TotalDebit = 100
	metrics := &fakeAssemblyMetrics{}
	svc := newTestService(repo, metrics)

	doc, err := svc.Print(context.Background(), 10, "en")
	require.NoError(t, err)
	require.True(t, doc.TotalsMismatch)
	require.Equal(t, []string{"degraded"}, metrics.outcomes)
}

func TestPrintWithoutMetrics(t *testing.T) {
	svc := newTestService(newBalancedRepo(), nil)

	_, err := svc.Print(context.Background(), 10, "en")
	require.NoError(t, err)
}

func TestPrintRejectsInvalidID(t *testing.T) {
	metrics := &fakeAssemblyMetrics{}
	svc := newTestService(newBalancedRepo(), metrics)

	_, err := svc.Print(context.Background(), 0, "en")
	require.ErrorIs(t, err, shared.ErrInvalidID)
	require.Empty(t, metrics.outcomes, "rejected requests are not assemblies")
}
