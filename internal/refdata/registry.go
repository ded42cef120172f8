package refdata

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Snapshot is the store surface the registry manages.
type Snapshot interface {
	Name() string
	Reload(ctx context.Context) error
	Ensure(ctx context.Context) error
}

// Registry tracks every reference store so they can be reloaded together.
// Initialisation order is leaf collections first; dependent screens receive
// the registry explicitly instead of reaching through globals.
type Registry struct {
	stores []Snapshot
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a store. Not safe for concurrent use; call during wiring.
func (r *Registry) Register(s Snapshot) {
	r.stores = append(r.stores, s)
}

// ReloadAll refreshes every registered store in parallel. The first error is
// returned; stores that failed keep their previous snapshot.
func (r *Registry) ReloadAll(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, store := range r.stores {
		g.Go(func() error {
			return store.Reload(ctx)
		})
	}
	return g.Wait()
}

// WarmUp loads stores that have never been loaded.
func (r *Registry) WarmUp(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, store := range r.stores {
		g.Go(func() error {
			return store.Ensure(ctx)
		})
	}
	return g.Wait()
}
