package vouchers

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/daftar-erp/daftar/internal/masterdata/shared"
)

// Repository loads voucher data and the cross-table references the
// assembler joins against. The ByIDs lookups are batched over the distinct
// id set so N rows referencing the same account cost one query.
type Repository interface {
	List(ctx context.Context, ledgerID int64, filters shared.ListFilters) ([]Voucher, int64, error)
	GetVoucher(ctx context.Context, id int64) (Voucher, error)
	ItemsByVoucher(ctx context.Context, voucherID int64) ([]VoucherItem, error)

	LedgerTitle(ctx context.Context, id int64) (string, error)
	BranchTitle(ctx context.Context, id int64) (string, error)
	CreatorIdentity(ctx context.Context, userID int64) (partyTitle, fullName string, err error)
	AccountsByIDs(ctx context.Context, ids []int64) (map[int64]AccountRef, error)
	InstancesByIDs(ctx context.Context, ids []int64) (map[int64]InstanceRef, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

const voucherColumns = `id, ledger_id, branch_id, voucher_date, voucher_number, daily_number,
	cross_reference, subsidiary_number, description, status, total_debit, total_credit,
	created_by, created_at, updated_at`

func scanVoucher(row pgx.Row) (Voucher, error) {
	var v Voucher
	err := row.Scan(&v.ID, &v.LedgerID, &v.BranchID, &v.VoucherDate, &v.VoucherNumber,
		&v.DailyNumber, &v.CrossReference, &v.SubsidiaryNumber, &v.Description, &v.Status,
		&v.TotalDebit, &v.TotalCredit, &v.CreatedBy, &v.CreatedAt, &v.UpdatedAt)
	return v, err
}

func (r *repository) List(ctx context.Context, ledgerID int64, filters shared.ListFilters) ([]Voucher, int64, error) {
	where := `WHERE ledger_id = $1 AND ($2 = '' OR voucher_number ILIKE '%' || $2 || '%' OR description ILIKE '%' || $2 || '%')`

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM vouchers `+where,
		ledgerID, filters.Search).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Query(ctx,
		`SELECT `+voucherColumns+` FROM vouchers `+where+` ORDER BY voucher_date DESC, id DESC LIMIT $3 OFFSET $4`,
		ledgerID, filters.Search, filters.Limit, filters.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Voucher
	for rows.Next() {
		v, err := scanVoucher(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, v)
	}
	return out, total, rows.Err()
}

func (r *repository) GetVoucher(ctx context.Context, id int64) (Voucher, error) {
	v, err := scanVoucher(r.db.QueryRow(ctx, `SELECT `+voucherColumns+` FROM vouchers WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Voucher{}, shared.ErrNotFound
	}
	return v, err
}

func (r *repository) ItemsByVoucher(ctx context.Context, voucherID int64) ([]VoucherItem, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, voucher_id, row_number, account_id, description, tracking_number,
		        quantity, debit, credit, details
		 FROM voucher_items WHERE voucher_id = $1 ORDER BY row_number`, voucherID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []VoucherItem
	for rows.Next() {
		var item VoucherItem
		if err := rows.Scan(&item.ID, &item.VoucherID, &item.RowNumber, &item.AccountID,
			&item.Description, &item.TrackingNumber, &item.Quantity,
			&item.Debit, &item.Credit, &item.Details); err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func (r *repository) LedgerTitle(ctx context.Context, id int64) (string, error) {
	var title string
	err := r.db.QueryRow(ctx, `SELECT title FROM ledgers WHERE id = $1`, id).Scan(&title)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", shared.ErrNotFound
	}
	return title, err
}

func (r *repository) BranchTitle(ctx context.Context, id int64) (string, error) {
	var title string
	err := r.db.QueryRow(ctx, `SELECT title FROM branches WHERE id = $1`, id).Scan(&title)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", shared.ErrNotFound
	}
	return title, err
}

// CreatorIdentity returns the linked party title and the user full name in
// one round trip. Either may be empty.
func (r *repository) CreatorIdentity(ctx context.Context, userID int64) (string, string, error) {
	var partyTitle, fullName string
	err := r.db.QueryRow(ctx,
		`SELECT COALESCE(p.title, ''), COALESCE(u.full_name, '')
		 FROM users u LEFT JOIN parties p ON p.user_id = u.id
		 WHERE u.id = $1`, userID).Scan(&partyTitle, &fullName)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", "", shared.ErrNotFound
	}
	return partyTitle, fullName, err
}

func (r *repository) AccountsByIDs(ctx context.Context, ids []int64) (map[int64]AccountRef, error) {
	out := make(map[int64]AccountRef, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := r.db.Query(ctx, `SELECT id, code, title FROM accounts WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		var ref AccountRef
		if err := rows.Scan(&id, &ref.Code, &ref.Title); err != nil {
			return nil, err
		}
		out[id] = ref
	}
	return out, rows.Err()
}

func (r *repository) InstancesByIDs(ctx context.Context, ids []int64) (map[int64]InstanceRef, error) {
	out := make(map[int64]InstanceRef, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := r.db.Query(ctx,
		`SELECT id, title, COALESCE(detail_code, '') FROM detail_instances WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		var ref InstanceRef
		if err := rows.Scan(&id, &ref.Title, &ref.DetailCode); err != nil {
			return nil, err
		}
		out[id] = ref
	}
	return out, rows.Err()
}
