package refdata

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type currencyRow struct {
	Code  string
	Title string
}

func newCurrencyStore(rows *[]currencyRow, failNext *bool) *Store[currencyRow] {
	return NewStore("currencies",
		func(ctx context.Context) ([]currencyRow, error) {
			if failNext != nil && *failNext {
				return nil, errors.New("database unavailable")
			}
			return *rows, nil
		},
		func(c currencyRow) string { return c.Code },
		func(c currencyRow) string { return c.Title })
}

func TestStoreReloadAndLookup(t *testing.T) {
	rows := []currencyRow{
		{Code: "IRR", Title: "Iranian Rial"},
		{Code: "USD", Title: "US Dollar"},
	}
	store := newCurrencyStore(&rows, nil)

	_, ok := store.TitleByCode("IRR")
	require.False(t, ok, "lookups miss before the first load")
	require.True(t, store.LoadedAt().IsZero())

	require.NoError(t, store.Reload(context.Background()))
	require.False(t, store.LoadedAt().IsZero())

	title, ok := store.TitleByCode("IRR")
	require.True(t, ok)
	require.Equal(t, "Iranian Rial", title)

	_, ok = store.TitleByCode("EUR")
	require.False(t, ok)
	require.Len(t, store.Rows(), 2)
}

func TestStoreKeepsStaleSnapshotOnFailedReload(t *testing.T) {
	rows := []currencyRow{{Code: "IRR", Title: "Iranian Rial"}}
	failNext := false
	store := newCurrencyStore(&rows, &failNext)

	require.NoError(t, store.Reload(context.Background()))

	failNext = true
	err := store.Reload(context.Background())
	require.Error(t, err)

	// The previous snapshot still serves reads.
	title, ok := store.TitleByCode("IRR")
	require.True(t, ok)
	require.Equal(t, "Iranian Rial", title)
}

func TestStoreEnsureLoadsOnce(t *testing.T) {
	var calls int
	store := NewStore("currencies",
		func(ctx context.Context) ([]currencyRow, error) {
			calls++
			return []currencyRow{{Code: "IRR", Title: "Iranian Rial"}}, nil
		},
		func(c currencyRow) string { return c.Code },
		func(c currencyRow) string { return c.Title })

	require.NoError(t, store.Ensure(context.Background()))
	require.NoError(t, store.Ensure(context.Background()))
	require.Equal(t, 1, calls)
}

func TestStoreConcurrentReads(t *testing.T) {
	rows := []currencyRow{{Code: "IRR", Title: "Iranian Rial"}}
	store := newCurrencyStore(&rows, nil)
	require.NoError(t, store.Reload(context.Background()))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if j%10 == 0 {
					_ = store.Reload(context.Background())
				}
				_, _ = store.TitleByCode("IRR")
			}
		}()
	}
	wg.Wait()
}

func TestRegistryReloadAll(t *testing.T) {
	currencies := []currencyRow{{Code: "IRR", Title: "Iranian Rial"}}
	structures := []currencyRow{{Code: "STD", Title: "Standard"}}
	currencyStore := newCurrencyStore(&currencies, nil)
	structureStore := NewStore("structures",
		func(ctx context.Context) ([]currencyRow, error) { return structures, nil },
		func(c currencyRow) string { return c.Code },
		func(c currencyRow) string { return c.Title })

	registry := NewRegistry()
	registry.Register(currencyStore)
	registry.Register(structureStore)

	require.NoError(t, registry.ReloadAll(context.Background()))

	_, ok := currencyStore.TitleByCode("IRR")
	require.True(t, ok)
	_, ok = structureStore.TitleByCode("STD")
	require.True(t, ok)
}
