package ledgers

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/daftar-erp/daftar/internal/masterdata/shared"
	"github.com/daftar-erp/daftar/internal/platform/db"
)

type Repository interface {
	All(ctx context.Context) ([]Ledger, error)
	Get(ctx context.Context, id int64) (Ledger, error)
	Create(ctx context.Context, ledger Ledger) (Ledger, error)
	Update(ctx context.Context, id int64, ledger Ledger) error
	Delete(ctx context.Context, id int64) error

	// ClearMainExcept drops the main flag from every ledger but the target.
	ClearMainExcept(ctx context.Context, id int64) error
	// SetMainFlag writes the flag on the target only.
	SetMainFlag(ctx context.Context, id int64, value bool) error
	// CountMain re-reads how many ledgers currently carry the flag.
	CountMain(ctx context.Context) (int64, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

const ledgerColumns = `id, code, title, structure_code, currency_code, is_main, is_active, created_at, updated_at`

func scanLedger(row pgx.Row) (Ledger, error) {
	var l Ledger
	err := row.Scan(&l.ID, &l.Code, &l.Title, &l.StructureCode, &l.CurrencyCode,
		&l.IsMain, &l.IsActive, &l.CreatedAt, &l.UpdatedAt)
	return l, err
}

func (r *repository) All(ctx context.Context) ([]Ledger, error) {
	rows, err := r.db.Query(ctx, `SELECT `+ledgerColumns+` FROM ledgers ORDER BY code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Ledger
	for rows.Next() {
		l, err := scanLedger(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Ledger, error) {
	l, err := scanLedger(r.db.QueryRow(ctx, `SELECT `+ledgerColumns+` FROM ledgers WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Ledger{}, shared.ErrNotFound
	}
	return l, err
}

func (r *repository) Create(ctx context.Context, ledger Ledger) (Ledger, error) {
	err := r.db.QueryRow(ctx,
		`INSERT INTO ledgers (code, title, structure_code, currency_code, is_main, is_active)
		 VALUES ($1, $2, $3, $4, false, $5) RETURNING id, is_main, created_at, updated_at`,
		ledger.Code, ledger.Title, ledger.StructureCode, ledger.CurrencyCode, ledger.IsActive).
		Scan(&ledger.ID, &ledger.IsMain, &ledger.CreatedAt, &ledger.UpdatedAt)
	if db.IsUniqueViolation(err) {
		return Ledger{}, shared.ErrDuplicate
	}
	return ledger, err
}

func (r *repository) Update(ctx context.Context, id int64, ledger Ledger) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE ledgers SET code = $1, title = $2, structure_code = $3, currency_code = $4,
		 is_active = $5, updated_at = NOW() WHERE id = $6`,
		ledger.Code, ledger.Title, ledger.StructureCode, ledger.CurrencyCode, ledger.IsActive, id)
	if db.IsUniqueViolation(err) {
		return shared.ErrDuplicate
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM ledgers WHERE id = $1`, id)
	if db.IsForeignKeyViolation(err) {
		return shared.ErrInUse
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) ClearMainExcept(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx,
		`UPDATE ledgers SET is_main = false, updated_at = NOW() WHERE is_main AND id <> $1`, id)
	return err
}

func (r *repository) SetMainFlag(ctx context.Context, id int64, value bool) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE ledgers SET is_main = $1, updated_at = NOW() WHERE id = $2`, value, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) CountMain(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM ledgers WHERE is_main`).Scan(&count)
	return count, err
}
