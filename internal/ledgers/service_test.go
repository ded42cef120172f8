package ledgers

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/daftar-erp/daftar/internal/masterdata/shared"
)

type memoryLedgerRepo struct {
	ledgers map[int64]Ledger
	nextID  int64

	failSetFlag  bool
	extraFlagged bool
}

func newMemoryLedgerRepo() *memoryLedgerRepo {
	return &memoryLedgerRepo{ledgers: make(map[int64]Ledger)}
}

func (r *memoryLedgerRepo) seed(l Ledger) Ledger {
	r.nextID++
	l.ID = r.nextID
	r.ledgers[l.ID] = l
	return l
}

func (r *memoryLedgerRepo) All(ctx context.Context) ([]Ledger, error) {
	out := make([]Ledger, 0, len(r.ledgers))
	for _, l := range r.ledgers {
		out = append(out, l)
	}
	return out, nil
}

func (r *memoryLedgerRepo) Get(ctx context.Context, id int64) (Ledger, error) {
	l, ok := r.ledgers[id]
	if !ok {
		return Ledger{}, shared.ErrNotFound
	}
	return l, nil
}

func (r *memoryLedgerRepo) Create(ctx context.Context, l Ledger) (Ledger, error) {
	return r.seed(l), nil
}

func (r *memoryLedgerRepo) Update(ctx context.Context, id int64, l Ledger) error {
	if _, ok := r.ledgers[id]; !ok {
		return shared.ErrNotFound
	}
	l.ID = id
	l.IsMain = r.ledgers[id].IsMain
	r.ledgers[id] = l
	return nil
}

func (r *memoryLedgerRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := r.ledgers[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.ledgers, id)
	return nil
}

func (r *memoryLedgerRepo) ClearMainExcept(ctx context.Context, id int64) error {
	for key, l := range r.ledgers {
		if key != id && l.IsMain {
			l.IsMain = false
			r.ledgers[key] = l
		}
	}
	return nil
}

func (r *memoryLedgerRepo) SetMainFlag(ctx context.Context, id int64, value bool) error {
	if r.failSetFlag && value {
		return errors.New("write failed")
	}
	l, ok := r.ledgers[id]
	if !ok {
		return shared.ErrNotFound
	}
	l.IsMain = value
	r.ledgers[id] = l
	return nil
}

func (r *memoryLedgerRepo) CountMain(ctx context.Context) (int64, error) {
	var count int64
	for _, l := range r.ledgers {
		if l.IsMain {
			count++
		}
	}
	if r.extraFlagged {
		count++
	}
	return count, nil
}

type noopLookup struct{}

func (noopLookup) TitleByCode(code string) (string, bool) { return code, true }

func newLedgerService(repo Repository) *Service {
	return NewService(slog.Default(), repo, noopLookup{}, noopLookup{}, nil, nil)
}

func TestSetMainNeverLeavesMultipleFlagged(t *testing.T) {
	repo := newMemoryLedgerRepo()
	a := repo.seed(Ledger{Code: "L1", Title: "First", IsActive: true})
	b := repo.seed(Ledger{Code: "L2", Title: "Second", IsActive: true})
	c := repo.seed(Ledger{Code: "L3", Title: "Third", IsActive: true})
	svc := newLedgerService(repo)

	for _, target := range []int64{a.ID, b.ID, c.ID, a.ID, c.ID} {
		outcome, err := svc.SetMain(context.Background(), 1, target, true)
		require.NoError(t, err)
		require.Equal(t, StateCommitted, outcome.State)
		require.EqualValues(t, 1, outcome.MainCount)

		flagged, err := repo.CountMain(context.Background())
		require.NoError(t, err)
		require.EqualValues(t, 1, flagged)

		current, err := repo.Get(context.Background(), target)
		require.NoError(t, err)
		require.True(t, current.IsMain)
	}
}

func TestSetMainFalseOnUnflaggedIsNoOp(t *testing.T) {
	repo := newMemoryLedgerRepo()
	main := repo.seed(Ledger{Code: "L1", Title: "Main", IsMain: true, IsActive: true})
	other := repo.seed(Ledger{Code: "L2", Title: "Other", IsActive: true})
	svc := newLedgerService(repo)

	outcome, err := svc.SetMain(context.Background(), 1, other.ID, false)
	require.NoError(t, err)
	require.Equal(t, StateCommitted, outcome.State)
	require.EqualValues(t, 1, outcome.MainCount)

	current, err := repo.Get(context.Background(), main.ID)
	require.NoError(t, err)
	require.True(t, current.IsMain, "the flagged ledger must keep its flag")
}

func TestSetMainFalseClearsWithoutPromotion(t *testing.T) {
	repo := newMemoryLedgerRepo()
	main := repo.seed(Ledger{Code: "L1", Title: "Main", IsMain: true, IsActive: true})
	repo.seed(Ledger{Code: "L2", Title: "Other", IsActive: true})
	svc := newLedgerService(repo)

	outcome, err := svc.SetMain(context.Background(), 1, main.ID, false)
	require.NoError(t, err)
	require.Equal(t, StateCommitted, outcome.State)
	require.EqualValues(t, 0, outcome.MainCount, "no replacement is promoted")
}

func TestSetMainPartialFailureReportsZeroFlagged(t *testing.T) {
	repo := newMemoryLedgerRepo()
	old := repo.seed(Ledger{Code: "L1", Title: "Old main", IsMain: true, IsActive: true})
	target := repo.seed(Ledger{Code: "L2", Title: "Target", IsActive: true})
	repo.failSetFlag = true
	svc := newLedgerService(repo)

	outcome, err := svc.SetMain(context.Background(), 1, target.ID, true)
	require.NoError(t, err)
	require.Equal(t, StateZeroFlagged, outcome.State)
	require.EqualValues(t, 0, outcome.MainCount)
	require.NotEmpty(t, outcome.Warning)

	// The clear step landed, the old main lost its flag.
	cleared, err := repo.Get(context.Background(), old.ID)
	require.NoError(t, err)
	require.False(t, cleared.IsMain)

	// Immediate retry succeeds once the write path recovers.
	repo.failSetFlag = false
	outcome, err = svc.SetMain(context.Background(), 1, target.ID, true)
	require.NoError(t, err)
	require.Equal(t, StateCommitted, outcome.State)
}

func TestSetMainDetectsConcurrentConflict(t *testing.T) {
	repo := newMemoryLedgerRepo()
	target := repo.seed(Ledger{Code: "L1", Title: "Target", IsActive: true})
	// Another session flips a second flag between the write and the re-read.
	repo.extraFlagged = true
	svc := newLedgerService(repo)

	outcome, err := svc.SetMain(context.Background(), 1, target.ID, true)
	require.NoError(t, err)
	require.Equal(t, StateConflicted, outcome.State)
	require.EqualValues(t, 2, outcome.MainCount)
	require.NotEmpty(t, outcome.Warning)
}

func TestSetMainUnknownLedger(t *testing.T) {
	repo := newMemoryLedgerRepo()
	svc := newLedgerService(repo)

	_, err := svc.SetMain(context.Background(), 1, 99, true)
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestCreateValidatesReferences(t *testing.T) {
	repo := newMemoryLedgerRepo()
	missing := missingLookup{}
	svc := NewService(slog.Default(), repo, missing, noopLookup{}, nil, nil)

	_, err := svc.Create(context.Background(), 1, Ledger{
		Code: "L1", Title: "Book", StructureCode: "nope", CurrencyCode: "IRR",
	})
	require.ErrorIs(t, err, shared.ErrValidation)
}

type missingLookup struct{}

func (missingLookup) TitleByCode(code string) (string, bool) { return "", false }
