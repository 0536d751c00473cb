package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bloodlink/bloodlink/internal/shared"
)

// Repository defines persistence operations for the auth module.
type Repository interface {
	FindByEmail(ctx context.Context, email string) (*Account, error)
	Create(ctx context.Context, account Account) (*Account, error)
	UpdatePassword(ctx context.Context, email, passwordHash string) error
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const accountColumns = `id, name, email, password_hash, avatar_url, blood_group,
	district_id, upazila, role, status, created_at, updated_at`

// FindByEmail fetches an account by email.
func (r *PGRepository) FindByEmail(ctx context.Context, email string) (*Account, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM users WHERE email = $1`,
		strings.ToLower(strings.TrimSpace(email)),
	)
	return scanAccount(row)
}

// Create inserts a new account. The caller provides a hashed password.
func (r *PGRepository) Create(ctx context.Context, account Account) (*Account, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (name, email, password_hash, avatar_url, blood_group, district_id, upazila, role, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+accountColumns,
		account.Name,
		strings.ToLower(strings.TrimSpace(account.Email)),
		account.PasswordHash,
		account.AvatarURL,
		account.BloodGroup,
		account.DistrictID,
		account.Upazila,
		string(account.Role),
		string(account.Status),
	)
	created, err := scanAccount(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, shared.ErrEmailTaken
		}
		return nil, err
	}
	return created, nil
}

// UpdatePassword replaces the stored password hash for an account.
func (r *PGRepository) UpdatePassword(ctx context.Context, email, passwordHash string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET password_hash = $2, updated_at = now() WHERE email = $1`,
		strings.ToLower(strings.TrimSpace(email)), passwordHash,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func scanAccount(row pgx.Row) (*Account, error) {
	var (
		a            Account
		role, status string
		createdAt    time.Time
		updatedAt    time.Time
	)
	err := row.Scan(
		&a.ID, &a.Name, &a.Email, &a.PasswordHash, &a.AvatarURL, &a.BloodGroup,
		&a.DistrictID, &a.Upazila, &role, &status, &createdAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	a.Role = shared.ParseRole(role)
	a.Status = shared.AccountStatus(status)
	a.CreatedAt = createdAt
	a.UpdatedAt = updatedAt
	return &a, nil
}

var _ Repository = (*PGRepository)(nil)
