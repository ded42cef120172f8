package currencies

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/daftar-erp/daftar/internal/platform/db"
	"github.com/daftar-erp/daftar/internal/masterdata/shared"
)

type Repository interface {
	All(ctx context.Context) ([]Currency, error)
	List(ctx context.Context, filters shared.ListFilters) ([]Currency, int, error)
	Get(ctx context.Context, id int64) (Currency, error)
	Create(ctx context.Context, currency Currency) (Currency, error)
	Update(ctx context.Context, id int64, currency Currency) error
	SetActive(ctx context.Context, id int64, active bool) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

func (r *repository) All(ctx context.Context) ([]Currency, error) {
	rows, err := r.db.Query(ctx, `SELECT id, code, title, is_active, created_at, updated_at FROM currencies ORDER BY code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanCurrencies(rows)
}

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]Currency, int, error) {
	query := `SELECT id, code, title, is_active, created_at, updated_at FROM currencies WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM currencies WHERE 1=1`
	args := []interface{}{}
	argCount := 0

	if filters.Search != "" {
		argCount++
		cond := ` AND (title ILIKE $` + strconv.Itoa(argCount) + ` OR code ILIKE $` + strconv.Itoa(argCount) + `)`
		query += cond
		countQuery += cond
		args = append(args, "%"+filters.Search+"%")
	}
	if filters.IsActive != nil {
		argCount++
		cond := ` AND is_active = $` + strconv.Itoa(argCount)
		query += cond
		countQuery += cond
		args = append(args, *filters.IsActive)
	}

	var total int
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += " ORDER BY " + filters.SortClause(map[string]string{"code": "code", "title": "title"}, "code")

	if filters.Limit > 0 {
		argCount++
		query += ` LIMIT $` + strconv.Itoa(argCount)
		args = append(args, filters.Limit)
		argCount++
		query += ` OFFSET $` + strconv.Itoa(argCount)
		args = append(args, filters.Offset())
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	list, err := scanCurrencies(rows)
	return list, total, err
}

func (r *repository) Get(ctx context.Context, id int64) (Currency, error) {
	var c Currency
	err := r.db.QueryRow(ctx, `SELECT id, code, title, is_active, created_at, updated_at FROM currencies WHERE id = $1`, id).
		Scan(&c.ID, &c.Code, &c.Title, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Currency{}, shared.ErrNotFound
	}
	return c, err
}

func (r *repository) Create(ctx context.Context, currency Currency) (Currency, error) {
	err := r.db.QueryRow(ctx,
		`INSERT INTO currencies (code, title, is_active) VALUES ($1, $2, $3) RETURNING id, created_at, updated_at`,
		currency.Code, currency.Title, currency.IsActive).
		Scan(&currency.ID, &currency.CreatedAt, &currency.UpdatedAt)
	if db.IsUniqueViolation(err) {
		return Currency{}, shared.ErrDuplicate
	}
	return currency, err
}

func (r *repository) Update(ctx context.Context, id int64, currency Currency) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE currencies SET code = $1, title = $2, is_active = $3, updated_at = NOW() WHERE id = $4`,
		currency.Code, currency.Title, currency.IsActive, id)
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

func (r *repository) SetActive(ctx context.Context, id int64, active bool) error {
	tag, err := r.db.Exec(ctx, `UPDATE currencies SET is_active = $1, updated_at = NOW() WHERE id = $2`, active, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM currencies WHERE id = $1`, id)
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

func scanCurrencies(rows pgx.Rows) ([]Currency, error) {
	var out []Currency
	for rows.Next() {
		var c Currency
		if err := rows.Scan(&c.ID, &c.Code, &c.Title, &c.IsActive, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
