package jobs

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/daftar-erp/daftar/internal/ledgers"
	"github.com/daftar-erp/daftar/internal/observability"
)

// NewLedgerIntegrityHandler scans the ledger table for a broken main-flag
// layout. The write path already verifies after each mutation; this scan
// catches drift caused by concurrent sessions or a failed set step.
func NewLedgerIntegrityHandler(logger *slog.Logger, repo ledgers.Repository, metrics *observability.Metrics) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		count, err := repo.CountMain(ctx)
		if err != nil {
			return err
		}
		switch {
		case count == 1:
			logger.Info("ledger integrity scan clean", slog.Int64("main_count", count))
		case count == 0:
			logger.Warn("no main ledger is set", slog.String("job", "ledger_integrity"))
			metrics.ObserveMainConflict()
		default:
			logger.Warn("multiple main ledgers detected",
				slog.Int64("main_count", count), slog.String("job", "ledger_integrity"))
			metrics.ObserveMainConflict()
		}
		return nil
	}
}
