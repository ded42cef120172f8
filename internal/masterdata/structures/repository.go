package structures

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/daftar-erp/daftar/internal/masterdata/shared"
	"github.com/daftar-erp/daftar/internal/platform/db"
)

type Repository interface {
	All(ctx context.Context) ([]Structure, error)
	List(ctx context.Context, filters shared.ListFilters) ([]Structure, int, error)
	Get(ctx context.Context, id int64) (Structure, error)
	Create(ctx context.Context, structure Structure) (Structure, error)
	Update(ctx context.Context, id int64, structure Structure) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

const structureColumns = `id, code, title, pattern, is_active, created_at, updated_at`

func (r *repository) All(ctx context.Context) ([]Structure, error) {
	rows, err := r.db.Query(ctx, `SELECT `+structureColumns+` FROM account_structures ORDER BY code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanStructures(rows)
}

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]Structure, int, error) {
	query := `SELECT ` + structureColumns + ` FROM account_structures WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM account_structures WHERE 1=1`
	args := []interface{}{}
	argCount := 0

	if filters.Search != "" {
		argCount++
		cond := ` AND (title ILIKE $` + strconv.Itoa(argCount) + ` OR code ILIKE $` + strconv.Itoa(argCount) + `)`
		query += cond
		countQuery += cond
		args = append(args, "%"+filters.Search+"%")
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
	list, err := scanStructures(rows)
	return list, total, err
}

func (r *repository) Get(ctx context.Context, id int64) (Structure, error) {
	var st Structure
	err := r.db.QueryRow(ctx, `SELECT `+structureColumns+` FROM account_structures WHERE id = $1`, id).
		Scan(&st.ID, &st.Code, &st.Title, &st.Pattern, &st.IsActive, &st.CreatedAt, &st.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Structure{}, shared.ErrNotFound
	}
	return st, err
}

func (r *repository) Create(ctx context.Context, structure Structure) (Structure, error) {
	err := r.db.QueryRow(ctx,
		`INSERT INTO account_structures (code, title, pattern, is_active) VALUES ($1, $2, $3, $4) RETURNING id, created_at, updated_at`,
		structure.Code, structure.Title, structure.Pattern, structure.IsActive).
		Scan(&structure.ID, &structure.CreatedAt, &structure.UpdatedAt)
	if db.IsUniqueViolation(err) {
		return Structure{}, shared.ErrDuplicate
	}
	return structure, err
}

func (r *repository) Update(ctx context.Context, id int64, structure Structure) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE account_structures SET code = $1, title = $2, pattern = $3, is_active = $4, updated_at = NOW() WHERE id = $5`,
		structure.Code, structure.Title, structure.Pattern, structure.IsActive, id)
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
	tag, err := r.db.Exec(ctx, `DELETE FROM account_structures WHERE id = $1`, id)
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

func scanStructures(rows pgx.Rows) ([]Structure, error) {
	var out []Structure
	for rows.Next() {
		var st Structure
		if err := rows.Scan(&st.ID, &st.Code, &st.Title, &st.Pattern, &st.IsActive, &st.CreatedAt, &st.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, rows.Err()
}
