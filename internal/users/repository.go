package users

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/daftar-erp/daftar/internal/platform/db"
	"github.com/daftar-erp/daftar/internal/shared"
)

// RepositoryPort defines data access methods for users.
type RepositoryPort interface {
	ListUsers(ctx context.Context) ([]User, error)
	GetUser(ctx context.Context, id int64) (User, error)
	CreateUser(ctx context.Context, user User) (User, error)
	UpdateProfile(ctx context.Context, id int64, fullName string) error
	UpdatePreferences(ctx context.Context, id int64, language, calendar string) error
	SetActive(ctx context.Context, id int64, active bool) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
}

// PGRepository implements RepositoryPort using PostgreSQL.
type PGRepository struct {
	db *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{db: pool}
}

const userColumns = `id, email, full_name, password_hash, language, calendar, is_active, created_at, updated_at`

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.FullName, &u.PasswordHash, &u.Language,
		&u.Calendar, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

func (r *PGRepository) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := r.db.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY email`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *PGRepository) GetUser(ctx context.Context, id int64) (User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, shared.ErrNotFound
	}
	return u, err
}

func (r *PGRepository) CreateUser(ctx context.Context, user User) (User, error) {
	err := r.db.QueryRow(ctx,
		`INSERT INTO users (email, full_name, password_hash, language, calendar, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id, created_at, updated_at`,
		user.Email, user.FullName, user.PasswordHash, user.Language, user.Calendar, user.IsActive).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if db.IsUniqueViolation(err) {
		return User{}, shared.ErrDuplicateEmail
	}
	return user, err
}

func (r *PGRepository) UpdateProfile(ctx context.Context, id int64, fullName string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE users SET full_name = $1, updated_at = NOW() WHERE id = $2`, fullName, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *PGRepository) UpdatePreferences(ctx context.Context, id int64, language, calendar string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE users SET language = $1, calendar = $2, updated_at = NOW() WHERE id = $3`,
		language, calendar, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *PGRepository) SetActive(ctx context.Context, id int64, active bool) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE users SET is_active = $1, updated_at = NOW() WHERE id = $2`, active, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *PGRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE users SET password_hash = $1, updated_at = NOW() WHERE id = $2`, passwordHash, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ RepositoryPort = (*PGRepository)(nil)
