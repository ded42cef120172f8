package parties

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/daftar-erp/daftar/internal/masterdata/shared"
	"github.com/daftar-erp/daftar/internal/platform/db"
)

type Repository interface {
	List(ctx context.Context, filters shared.ListFilters) ([]Party, int64, error)
	Get(ctx context.Context, id int64) (Party, error)
	GetByUserID(ctx context.Context, userID int64) (Party, error)
	Create(ctx context.Context, party Party) (Party, error)
	Update(ctx context.Context, id int64, party Party) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

const partyColumns = `id, code, title, national_id, phone, address, user_id, is_active, created_at, updated_at`

var partySortable = map[string]string{
	"code":       "code",
	"title":      "title",
	"created_at": "created_at",
}

func scanParty(row pgx.Row) (Party, error) {
	var p Party
	err := row.Scan(&p.ID, &p.Code, &p.Title, &p.NationalID, &p.Phone, &p.Address,
		&p.UserID, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]Party, int64, error) {
	where := `WHERE ($1 = '' OR code ILIKE '%' || $1 || '%' OR title ILIKE '%' || $1 || '%')
	          AND ($2::boolean IS NULL OR is_active = $2)`

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM parties `+where,
		filters.Search, filters.IsActive).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM parties %s ORDER BY %s LIMIT $3 OFFSET $4`,
		partyColumns, where, filters.SortClause(partySortable, "code"))
	rows, err := r.db.Query(ctx, query, filters.Search, filters.IsActive, filters.Limit, filters.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Party
	for rows.Next() {
		p, err := scanParty(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Party, error) {
	p, err := scanParty(r.db.QueryRow(ctx, `SELECT `+partyColumns+` FROM parties WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Party{}, shared.ErrNotFound
	}
	return p, err
}

func (r *repository) GetByUserID(ctx context.Context, userID int64) (Party, error) {
	p, err := scanParty(r.db.QueryRow(ctx, `SELECT `+partyColumns+` FROM parties WHERE user_id = $1`, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Party{}, shared.ErrNotFound
	}
	return p, err
}

func (r *repository) Create(ctx context.Context, party Party) (Party, error) {
	err := r.db.QueryRow(ctx,
		`INSERT INTO parties (code, title, national_id, phone, address, user_id, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id, created_at, updated_at`,
		party.Code, party.Title, party.NationalID, party.Phone, party.Address, party.UserID, party.IsActive).
		Scan(&party.ID, &party.CreatedAt, &party.UpdatedAt)
	if db.IsUniqueViolation(err) {
		return Party{}, shared.ErrDuplicate
	}
	return party, err
}

func (r *repository) Update(ctx context.Context, id int64, party Party) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE parties SET code = $1, title = $2, national_id = $3, phone = $4,
		 address = $5, user_id = $6, is_active = $7, updated_at = NOW() WHERE id = $8`,
		party.Code, party.Title, party.NationalID, party.Phone, party.Address,
		party.UserID, party.IsActive, id)
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
	tag, err := r.db.Exec(ctx, `DELETE FROM parties WHERE id = $1`, id)
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
