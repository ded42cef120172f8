package organization

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/daftar-erp/daftar/internal/masterdata/shared"
)

type Repository interface {
	Get(ctx context.Context) (Info, error)
	Save(ctx context.Context, info Info) (Info, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

func (r *repository) Get(ctx context.Context) (Info, error) {
	var info Info
	err := r.db.QueryRow(ctx,
		`SELECT id, name, legal_name, national_id, economic_id, address, phone, fiscal_start, updated_at
		 FROM organization LIMIT 1`).
		Scan(&info.ID, &info.Name, &info.LegalName, &info.NationalID, &info.EconomicID,
			&info.Address, &info.Phone, &info.FiscalStart, &info.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Info{}, shared.ErrNotFound
	}
	return info, err
}

// Save upserts the single organisation row.
func (r *repository) Save(ctx context.Context, info Info) (Info, error) {
	err := r.db.QueryRow(ctx,
		`INSERT INTO organization (id, name, legal_name, national_id, economic_id, address, phone, fiscal_start)
		 VALUES (1, $1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (id) DO UPDATE SET
		   name = EXCLUDED.name, legal_name = EXCLUDED.legal_name,
		   national_id = EXCLUDED.national_id, economic_id = EXCLUDED.economic_id,
		   address = EXCLUDED.address, phone = EXCLUDED.phone,
		   fiscal_start = EXCLUDED.fiscal_start, updated_at = NOW()
		 RETURNING id, updated_at`,
		info.Name, info.LegalName, info.NationalID, info.EconomicID,
		info.Address, info.Phone, info.FiscalStart).
		Scan(&info.ID, &info.UpdatedAt)
	return info, err
}
