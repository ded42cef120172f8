// Package refdata maintains in-memory snapshots of the reference collections
// (ledgers, currencies, account structures, accounts, detail instances,
// parties) and resolves foreign-key codes against them for display.
package refdata

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// ErrEmptyStore indicates a lookup against a store that has never loaded.
var ErrEmptyStore = errors.New("refdata: store not loaded")

// Loader fetches the full collection from the backing store.
type Loader[T any] func(ctx context.Context) ([]T, error)

// Store caches one reference collection and exposes synchronous lookup by
// code. A snapshot is replaced wholesale on Reload; there is no incremental
// refresh. When a reload fails the previous snapshot stays in place
// (stale-but-available) and the error is returned to the caller.
type Store[T any] struct {
	name  string
	load  Loader[T]
	code  func(T) string
	title func(T) string

	mu       sync.RWMutex
	rows     []T
	byCode   map[string]T
	loadedAt time.Time

	sf singleflight.Group
}

// NewStore constructs a store for one collection. code and title extract the
// lookup key and the human-readable label from a row.
func NewStore[T any](name string, load Loader[T], code, title func(T) string) *Store[T] {
	return &Store[T]{name: name, load: load, code: code, title: title}
}

// Name identifies the collection, used in cache keys and logs.
func (s *Store[T]) Name() string { return s.name }

// Reload fetches the full collection and rebuilds the code index. Concurrent
// reloads collapse into a single fetch.
func (s *Store[T]) Reload(ctx context.Context) error {
	_, err, _ := s.sf.Do(s.name, func() (any, error) {
		rows, err := s.load(ctx)
		if err != nil {
			return nil, err
		}
		index := make(map[string]T, len(rows))
		for _, row := range rows {
			index[s.code(row)] = row
		}
		s.mu.Lock()
		s.rows = rows
		s.byCode = index
		s.loadedAt = time.Now()
		s.mu.Unlock()
		return nil, nil
	})
	return err
}

// FindByCode looks up a row by its code in the current snapshot.
func (s *Store[T]) FindByCode(code string) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row, ok := s.byCode[code]
	return row, ok
}

// TitleByCode returns the display title for a code. Implements Lookup.
func (s *Store[T]) TitleByCode(code string) (string, bool) {
	row, ok := s.FindByCode(code)
	if !ok {
		return "", false
	}
	return s.title(row), true
}

// Rows returns the current snapshot. The returned slice must not be mutated.
func (s *Store[T]) Rows() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rows
}

// LoadedAt reports when the current snapshot was taken, zero when never loaded.
func (s *Store[T]) LoadedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadedAt
}

// Ensure loads the collection once if it has never been loaded.
func (s *Store[T]) Ensure(ctx context.Context) error {
	if !s.LoadedAt().IsZero() {
		return nil
	}
	return s.Reload(ctx)
}
