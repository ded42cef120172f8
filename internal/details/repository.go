package details

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/daftar-erp/daftar/internal/masterdata/shared"
	"github.com/daftar-erp/daftar/internal/platform/db"
)

type TypeRepository interface {
	AllTypes(ctx context.Context) ([]DetailType, error)
	GetType(ctx context.Context, id int64) (DetailType, error)
	GetTypesByIDs(ctx context.Context, ids []int64) ([]DetailType, error)
	CreateType(ctx context.Context, t DetailType) (DetailType, error)
	UpdateType(ctx context.Context, id int64, t DetailType) error
	DeleteTypes(ctx context.Context, ids []int64) error
}

type InstanceRepository interface {
	ListInstances(ctx context.Context, typeID int64) ([]DetailInstance, error)
	GetInstance(ctx context.Context, id int64) (DetailInstance, error)
	CreateInstance(ctx context.Context, inst DetailInstance) (DetailInstance, error)
	UpdateInstance(ctx context.Context, id int64, inst DetailInstance) error
	DeleteInstance(ctx context.Context, id int64) error
	// AssignCode writes the detail code only when the column is still null.
	AssignCode(ctx context.Context, id int64, code string) (DetailInstance, error)
}

type Repository interface {
	TypeRepository
	InstanceRepository
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

const typeColumns = `id, code, title, kind, is_active, created_at, updated_at`

func scanType(row pgx.Row) (DetailType, error) {
	var t DetailType
	err := row.Scan(&t.ID, &t.Code, &t.Title, &t.Kind, &t.IsActive, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

func (r *repository) AllTypes(ctx context.Context) ([]DetailType, error) {
	rows, err := r.db.Query(ctx, `SELECT `+typeColumns+` FROM detail_types ORDER BY code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DetailType
	for rows.Next() {
		t, err := scanType(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *repository) GetType(ctx context.Context, id int64) (DetailType, error) {
	t, err := scanType(r.db.QueryRow(ctx, `SELECT `+typeColumns+` FROM detail_types WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return DetailType{}, shared.ErrNotFound
	}
	return t, err
}

func (r *repository) GetTypesByIDs(ctx context.Context, ids []int64) ([]DetailType, error) {
	rows, err := r.db.Query(ctx, `SELECT `+typeColumns+` FROM detail_types WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DetailType
	for rows.Next() {
		t, err := scanType(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *repository) CreateType(ctx context.Context, t DetailType) (DetailType, error) {
	err := r.db.QueryRow(ctx,
		`INSERT INTO detail_types (code, title, kind, is_active) VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at, updated_at`,
		t.Code, t.Title, t.Kind, t.IsActive).
		Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if db.IsUniqueViolation(err) {
		return DetailType{}, shared.ErrDuplicate
	}
	return t, err
}

func (r *repository) UpdateType(ctx context.Context, id int64, t DetailType) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE detail_types SET code = $1, title = $2, is_active = $3, updated_at = NOW()
		 WHERE id = $4 AND kind = 'user'`,
		t.Code, t.Title, t.IsActive, id)
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

func (r *repository) DeleteTypes(ctx context.Context, ids []int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM detail_types WHERE id = ANY($1) AND kind = 'user'`, ids)
	if db.IsForeignKeyViolation(err) {
		return shared.ErrInUse
	}
	return err
}

const instanceColumns = `id, type_id, entity_code, title, detail_code, is_active, created_at, updated_at`

func scanInstance(row pgx.Row) (DetailInstance, error) {
	var i DetailInstance
	err := row.Scan(&i.ID, &i.TypeID, &i.EntityCode, &i.Title, &i.DetailCode,
		&i.IsActive, &i.CreatedAt, &i.UpdatedAt)
	return i, err
}

func (r *repository) ListInstances(ctx context.Context, typeID int64) ([]DetailInstance, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+instanceColumns+` FROM detail_instances WHERE type_id = $1 ORDER BY entity_code`, typeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DetailInstance
	for rows.Next() {
		i, err := scanInstance(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, i)
	}
	return out, rows.Err()
}

func (r *repository) GetInstance(ctx context.Context, id int64) (DetailInstance, error) {
	i, err := scanInstance(r.db.QueryRow(ctx,
		`SELECT `+instanceColumns+` FROM detail_instances WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return DetailInstance{}, shared.ErrNotFound
	}
	return i, err
}

func (r *repository) CreateInstance(ctx context.Context, inst DetailInstance) (DetailInstance, error) {
	err := r.db.QueryRow(ctx,
		`INSERT INTO detail_instances (type_id, entity_code, title, detail_code, is_active)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at, updated_at`,
		inst.TypeID, inst.EntityCode, inst.Title, inst.DetailCode, inst.IsActive).
		Scan(&inst.ID, &inst.CreatedAt, &inst.UpdatedAt)
	if db.IsUniqueViolation(err) {
		return DetailInstance{}, shared.ErrDuplicate
	}
	if db.IsForeignKeyViolation(err) {
		return DetailInstance{}, shared.ErrNotFound
	}
	return inst, err
}

func (r *repository) UpdateInstance(ctx context.Context, id int64, inst DetailInstance) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE detail_instances SET entity_code = $1, title = $2, is_active = $3, updated_at = NOW()
		 WHERE id = $4`,
		inst.EntityCode, inst.Title, inst.IsActive, id)
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

func (r *repository) DeleteInstance(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM detail_instances WHERE id = $1`, id)
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

func (r *repository) AssignCode(ctx context.Context, id int64, code string) (DetailInstance, error) {
	i, err := scanInstance(r.db.QueryRow(ctx,
		`UPDATE detail_instances SET detail_code = $1, updated_at = NOW()
		 WHERE id = $2 AND detail_code IS NULL
		 RETURNING `+instanceColumns, code, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return DetailInstance{}, ErrAlreadyAssigned
	}
	if db.IsUniqueViolation(err) {
		return DetailInstance{}, shared.ErrDuplicate
	}
	return i, err
}
