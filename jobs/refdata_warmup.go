package jobs

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/daftar-erp/daftar/internal/refdata"
)

// NewRefdataWarmupHandler reloads every registered reference store so that
// lookups after a deploy or cache flush hit warm snapshots.
func NewRefdataWarmupHandler(logger *slog.Logger, registry *refdata.Registry) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		if err := registry.ReloadAll(ctx); err != nil {
			logger.Warn("refdata warmup incomplete", slog.Any("error", err))
			return err
		}
		logger.Info("refdata warmup complete")
		return nil
	}
}
