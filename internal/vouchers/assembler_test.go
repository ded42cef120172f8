package vouchers

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/daftar-erp/daftar/internal/masterdata/shared"
)

type fakeVoucherRepo struct {
	voucher  Voucher
	items    []VoucherItem
	ledgers  map[int64]string
	branches map[int64]string

	creatorParty string
	creatorName  string
	creatorErr   error

	accounts  map[int64]AccountRef
	instances map[int64]InstanceRef

	ledgerErr    error
	accountsErr  error
	instancesErr error

	accountCalls  [][]int64
	instanceCalls [][]int64
}

func (r *fakeVoucherRepo) List(ctx context.Context, ledgerID int64, filters shared.ListFilters) ([]Voucher, int64, error) {
	return []Voucher{r.voucher}, 1, nil
}

func (r *fakeVoucherRepo) GetVoucher(ctx context.Context, id int64) (Voucher, error) {
	if id != r.voucher.ID {
		return Voucher{}, shared.ErrNotFound
	}
	return r.voucher, nil
}

func (r *fakeVoucherRepo) ItemsByVoucher(ctx context.Context, voucherID int64) ([]VoucherItem, error) {
	return r.items, nil
}

func (r *fakeVoucherRepo) LedgerTitle(ctx context.Context, id int64) (string, error) {
	if r.ledgerErr != nil {
		return "", r.ledgerErr
	}
	title, ok := r.ledgers[id]
	if !ok {
		return "", shared.ErrNotFound
	}
	return title, nil
}

func (r *fakeVoucherRepo) BranchTitle(ctx context.Context, id int64) (string, error) {
	title, ok := r.branches[id]
	if !ok {
		return "", shared.ErrNotFound
	}
	return title, nil
}

func (r *fakeVoucherRepo) CreatorIdentity(ctx context.Context, userID int64) (string, string, error) {
	return r.creatorParty, r.creatorName, r.creatorErr
}

func (r *fakeVoucherRepo) AccountsByIDs(ctx context.Context, ids []int64) (map[int64]AccountRef, error) {
	r.accountCalls = append(r.accountCalls, ids)
	if r.accountsErr != nil {
		return nil, r.accountsErr
	}
	out := make(map[int64]AccountRef, len(ids))
	for _, id := range ids {
		if ref, ok := r.accounts[id]; ok {
			out[id] = ref
		}
	}
	return out, nil
}

func (r *fakeVoucherRepo) InstancesByIDs(ctx context.Context, ids []int64) (map[int64]InstanceRef, error) {
	r.instanceCalls = append(r.instanceCalls, ids)
	if r.instancesErr != nil {
		return nil, r.instancesErr
	}
	out := make(map[int64]InstanceRef, len(ids))
	for _, id := range ids {
		if ref, ok := r.instances[id]; ok {
			out[id] = ref
		}
	}
	return out, nil
}

type fakeCurrencies map[string]string

func (c fakeCurrencies) TitleByCode(code string) (string, bool) {
	title, ok := c[code]
	return title, ok
}

func newBalancedRepo() *fakeVoucherRepo {
	branchID := int64(7)
	return &fakeVoucherRepo{
		voucher: Voucher{
			ID:            10,
			LedgerID:      1,
			BranchID:      &branchID,
			VoucherDate:   time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC),
			VoucherNumber: "V-1001",
			DailyNumber:   "17",
			Status:        StatusReviewed,
			TotalDebit:    150000,
			TotalCredit:   150000,
			CreatedBy:     3,
		},
		items: []VoucherItem{
			{
				ID: 1, VoucherID: 10, RowNumber: 1, AccountID: 100,
				Description: "Cash receipt", Debit: 150000,
				Details: ItemDetails{
					SelectedDetails: map[int64]int64{2: 201, 1: 202},
					CurrencyCode:    "IRR",
				},
			},
			{
				ID: 2, VoucherID: 10, RowNumber: 2, AccountID: 200,
				Description: "Sales revenue", Credit: 150000,
			},
		},
		ledgers:      map[int64]string{1: "Main ledger"},
		branches:     map[int64]string{7: "Tehran branch"},
		creatorParty: "Daftar Trading Co.",
		creatorName:  "Sara Ahmadi",
		accounts: map[int64]AccountRef{
			100: {Code: "1010", Title: "Cash"},
			200: {Code: "4010", Title: "Sales"},
		},
		instances: map[int64]InstanceRef{
			201: {Title: "Harbor works", DetailCode: "4001"},
			202: {Title: "Assembly line", DetailCode: "5001"},
		},
	}
}

func newTestAssembler(repo Repository) *Assembler {
	return NewAssembler(slog.Default(), repo, fakeCurrencies{"IRR": "Iranian Rial"})
}

func TestAssembleFullyResolvedDocument(t *testing.T) {
	repo := newBalancedRepo()
	assembler := newTestAssembler(repo)

	doc, err := assembler.Assemble(context.Background(), 10, "en")
	require.NoError(t, err)

	require.Equal(t, "V-1001", doc.VoucherNumber)
	require.Equal(t, "Main ledger", doc.LedgerTitle)
	require.Equal(t, "Tehran branch", doc.BranchTitle)
	require.Equal(t, "Daftar Trading Co.", doc.CreatorName, "the linked party wins over the full name")
	require.Empty(t, doc.Warnings)
	require.False(t, doc.TotalsMismatch)

	require.Len(t, doc.Rows, 2)
	first := doc.Rows[0]
	require.Equal(t, "1010", first.AccountCode)
	require.Equal(t, "Cash", first.AccountTitle)
	require.Equal(t, "150,000", first.Debit)
	require.Equal(t, "Iranian Rial", first.CurrencyTitle)
	// Labels come out in detail type order regardless of map iteration.
	require.Equal(t, "Assembly line | Harbor works", first.DetailLabels)

	second := doc.Rows[1]
	require.Equal(t, "4010", second.AccountCode)
	require.Equal(t, "", second.DetailLabels)
	require.Equal(t, "", second.CurrencyTitle)

	require.Equal(t, "150,000", doc.TotalDebit)
	require.Equal(t, "150,000", doc.TotalCredit)
}

func TestAssembleMissingVoucherIsTerminal(t *testing.T) {
	repo := newBalancedRepo()
	assembler := newTestAssembler(repo)

	_, err := assembler.Assemble(context.Background(), 999, "en")
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestAssembleTotalsReproducedVerbatimOnMismatch(t *testing.T) {
	repo := newBalancedRepo()
	// The stored header disagrees with the item sums.
	repo.voucher.TotalDebit = 100
	repo.voucher.TotalCredit = 100
	assembler := newTestAssembler(repo)

	doc, err := assembler.Assemble(context.Background(), 10, "en")
	require.NoError(t, err)

	require.Equal(t, "100", doc.TotalDebit, "header totals pass through unchanged")
	require.Equal(t, "100", doc.TotalCredit)
	require.True(t, doc.TotalsMismatch)
	require.Contains(t, doc.Warnings, "header totals differ from item sums")
}

func TestAssembleDegradesMissingReferences(t *testing.T) {
	repo := newBalancedRepo()
	repo.ledgerErr = errors.New("ledger query failed")
	repo.accountsErr = errors.New("account query failed")
	delete(repo.instances, 201)
	assembler := newTestAssembler(repo)

	doc, err := assembler.Assemble(context.Background(), 10, "en")
	require.NoError(t, err, "reference misses never fail the assembly")

	require.Equal(t, "Unknown", doc.LedgerTitle)
	require.Contains(t, doc.Warnings, "ledger reference could not be resolved")
	require.Contains(t, doc.Warnings, "account references could not be resolved")

	first := doc.Rows[0]
	require.Equal(t, "Unknown", first.AccountCode)
	require.Equal(t, "Unknown", first.AccountTitle)
	// One resolved label, one placeholder, still in type order.
	require.Equal(t, "Assembly line | Unknown", first.DetailLabels)
}

func TestAssembleCreatorFallbackChain(t *testing.T) {
	repo := newBalancedRepo()
	repo.creatorParty = ""
	assembler := newTestAssembler(repo)

	doc, err := assembler.Assemble(context.Background(), 10, "en")
	require.NoError(t, err)
	require.Equal(t, "Sara Ahmadi", doc.CreatorName)

	repo.creatorName = ""
	doc, err = assembler.Assemble(context.Background(), 10, "en")
	require.NoError(t, err)
	require.Equal(t, "", doc.CreatorName)

	repo.creatorErr = errors.New("identity query failed")
	doc, err = assembler.Assemble(context.Background(), 10, "en")
	require.NoError(t, err, "identity failures never block assembly")
	require.Equal(t, "", doc.CreatorName)
}

func TestAssembleCurrencyMissFallsBackToRawCode(t *testing.T) {
	repo := newBalancedRepo()
	repo.items[0].Details.CurrencyCode = "XYZ"
	assembler := newTestAssembler(repo)

	doc, err := assembler.Assemble(context.Background(), 10, "en")
	require.NoError(t, err)
	require.Equal(t, "XYZ", doc.Rows[0].CurrencyTitle)
}

func TestAssembleBatchesDistinctReferenceIDs(t *testing.T) {
	repo := newBalancedRepo()
	// Many rows referencing the same account and instance.
	repo.items = nil
	for i := 0; i < 5; i++ {
		repo.items = append(repo.items, VoucherItem{
			ID: int64(i + 1), VoucherID: 10, RowNumber: i + 1, AccountID: 100,
			Debit: 30000,
			Details: ItemDetails{
				SelectedDetails: map[int64]int64{2: 201},
			},
		})
	}
	repo.voucher.TotalDebit = 150000
	repo.voucher.TotalCredit = 0
	assembler := newTestAssembler(repo)

	doc, err := assembler.Assemble(context.Background(), 10, "en")
	require.NoError(t, err)
	require.Len(t, doc.Rows, 5)

	require.Len(t, repo.accountCalls, 1)
	require.Equal(t, []int64{100}, repo.accountCalls[0])
	require.Len(t, repo.instanceCalls, 1)
	require.Equal(t, []int64{201}, repo.instanceCalls[0])
}

func TestAmountFormatterPersianDigits(t *testing.T) {
	fa := newAmountFormatter("fa")
	en := newAmountFormatter("en")

	require.Equal(t, "1,234,567", en.Format(1234567))
	require.NotEqual(t, en.Format(1234567), fa.Format(1234567), "Persian output uses its own digit shapes")
}
