package doctypes

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/daftar-erp/daftar/internal/masterdata/shared"
	"github.com/daftar-erp/daftar/internal/platform/db"
)

type Repository interface {
	All(ctx context.Context) ([]DocType, error)
	Get(ctx context.Context, id int64) (DocType, error)
	GetByIDs(ctx context.Context, ids []int64) ([]DocType, error)
	Create(ctx context.Context, docType DocType) (DocType, error)
	Update(ctx context.Context, id int64, docType DocType) error
	DeleteMany(ctx context.Context, ids []int64) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

const docTypeColumns = `id, code, title, kind, is_active, created_at, updated_at`

func (r *repository) All(ctx context.Context) ([]DocType, error) {
	rows, err := r.db.Query(ctx, `SELECT `+docTypeColumns+` FROM doc_types ORDER BY code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDocTypes(rows)
}

func (r *repository) Get(ctx context.Context, id int64) (DocType, error) {
	var d DocType
	err := r.db.QueryRow(ctx, `SELECT `+docTypeColumns+` FROM doc_types WHERE id = $1`, id).
		Scan(&d.ID, &d.Code, &d.Title, &d.Kind, &d.IsActive, &d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return DocType{}, shared.ErrNotFound
	}
	return d, err
}

func (r *repository) GetByIDs(ctx context.Context, ids []int64) ([]DocType, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.db.Query(ctx, `SELECT `+docTypeColumns+` FROM doc_types WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDocTypes(rows)
}

func (r *repository) Create(ctx context.Context, docType DocType) (DocType, error) {
	err := r.db.QueryRow(ctx,
		`INSERT INTO doc_types (code, title, kind, is_active) VALUES ($1, $2, $3, $4) RETURNING id, created_at, updated_at`,
		docType.Code, docType.Title, docType.Kind, docType.IsActive).
		Scan(&docType.ID, &docType.CreatedAt, &docType.UpdatedAt)
	if db.IsUniqueViolation(err) {
		return DocType{}, shared.ErrDuplicate
	}
	return docType, err
}

func (r *repository) Update(ctx context.Context, id int64, docType DocType) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE doc_types SET code = $1, title = $2, is_active = $3, updated_at = NOW() WHERE id = $4 AND kind = 'user'`,
		docType.Code, docType.Title, docType.IsActive, id)
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

func (r *repository) DeleteMany(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.db.Exec(ctx, `DELETE FROM doc_types WHERE id = ANY($1) AND kind = 'user'`, ids)
	if db.IsForeignKeyViolation(err) {
		return shared.ErrInUse
	}
	return err
}

func scanDocTypes(rows pgx.Rows) ([]DocType, error) {
	var out []DocType
	for rows.Next() {
		var d DocType
		if err := rows.Scan(&d.ID, &d.Code, &d.Title, &d.Kind, &d.IsActive, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
