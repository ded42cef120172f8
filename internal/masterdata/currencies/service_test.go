package currencies

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/daftar-erp/daftar/internal/masterdata/shared"
	"github.com/daftar-erp/daftar/internal/refdata"
)

type memoryCurrencyRepo struct {
	records  map[int64]Currency
	nextID   int64
	allCalls int
}

func newMemoryCurrencyRepo() *memoryCurrencyRepo {
	return &memoryCurrencyRepo{records: make(map[int64]Currency)}
}

func (r *memoryCurrencyRepo) All(ctx context.Context) ([]Currency, error) {
	r.allCalls++
	out := make([]Currency, 0, len(r.records))
	for _, c := range r.records {
		out = append(out, c)
	}
	return out, nil
}

func (r *memoryCurrencyRepo) List(ctx context.Context, filters shared.ListFilters) ([]Currency, int, error) {
	all, _ := r.All(ctx)
	return all, len(all), nil
}

func (r *memoryCurrencyRepo) Get(ctx context.Context, id int64) (Currency, error) {
	c, ok := r.records[id]
	if !ok {
		return Currency{}, shared.ErrNotFound
	}
	return c, nil
}

func (r *memoryCurrencyRepo) Create(ctx context.Context, c Currency) (Currency, error) {
	r.nextID++
	c.ID = r.nextID
	r.records[c.ID] = c
	return c, nil
}

func (r *memoryCurrencyRepo) Update(ctx context.Context, id int64, c Currency) error {
	if _, ok := r.records[id]; !ok {
		return shared.ErrNotFound
	}
	c.ID = id
	r.records[id] = c
	return nil
}

func (r *memoryCurrencyRepo) SetActive(ctx context.Context, id int64, active bool) error {
	c, ok := r.records[id]
	if !ok {
		return shared.ErrNotFound
	}
	c.IsActive = active
	r.records[id] = c
	return nil
}

func (r *memoryCurrencyRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := r.records[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.records, id)
	return nil
}

func newCachedService(t *testing.T) (*Service, *memoryCurrencyRepo) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	repo := newMemoryCurrencyRepo()
	return NewService(repo, refdata.NewCache(rdb, time.Minute), nil), repo
}

func TestAllServesFromCache(t *testing.T) {
	svc, repo := newCachedService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, 1, Currency{Code: "IRR", Title: "Iranian Rial", IsActive: true})
	require.NoError(t, err)
	repo.allCalls = 0

	first, err := svc.All(ctx)
	require.NoError(t, err)
	require.Len(t, first, 1)
	require.Equal(t, 1, repo.allCalls, "first read loads from the repository")

	second, err := svc.All(ctx)
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, 1, repo.allCalls, "second read is served from the cache")
}

func TestMutationInvalidatesCachedSnapshot(t *testing.T) {
	svc, repo := newCachedService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, 1, Currency{Code: "IRR", Title: "Iranian Rial", IsActive: true})
	require.NoError(t, err)

	stale, err := svc.All(ctx)
	require.NoError(t, err)
	require.Len(t, stale, 1)

	// The create bumps the version, so the cached snapshot must not survive.
	_, err = svc.Create(ctx, 1, Currency{Code: "USD", Title: "US Dollar", IsActive: true})
	require.NoError(t, err)

	repo.allCalls = 0
	fresh, err := svc.All(ctx)
	require.NoError(t, err)
	require.Len(t, fresh, 2)
	require.Equal(t, 1, repo.allCalls, "a bumped version routes the read back to the repository")
}

func TestAllWithoutCacheFallsThrough(t *testing.T) {
	repo := newMemoryCurrencyRepo()
	svc := NewService(repo, nil, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, 1, Currency{Code: "IRR", Title: "Iranian Rial", IsActive: true})
	require.NoError(t, err)

	out, err := svc.All(ctx)
	require.NoError(t, err)
	require.Len(t, out, 1)

	out, err = svc.All(ctx)
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Equal(t, 2, repo.allCalls, "every read hits the repository when no cache is configured")
}
