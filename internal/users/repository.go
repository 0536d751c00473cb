package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bloodlink/bloodlink/internal/shared"
)

// Repository defines persistence operations for account administration.
type Repository interface {
	List(ctx context.Context, q ListQuery) ([]User, int, error)
	Get(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	Create(ctx context.Context, u User, passwordHash string) (*User, error)
	UpdateProfile(ctx context.Context, id string, in ProfileInput) (*User, error)
	UpdateRole(ctx context.Context, id string, role shared.Role) (*User, error)
	UpdateStatus(ctx context.Context, id string, status shared.AccountStatus) (*User, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const userColumns = `id, name, email, avatar_url, blood_group,
	district_id, upazila, role, status, created_at, updated_at`

// List returns one page of accounts, optionally filtered by status and a
// case-insensitive name/email search.
func (r *PGRepository) List(ctx context.Context, q ListQuery) ([]User, int, error) {
	conditions := []string{"TRUE"}
	args := []any{}

	if q.Status != "" {
		args = append(args, q.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if q.Search != "" {
		args = append(args, "%"+q.Search+"%")
		conditions = append(conditions, fmt.Sprintf("(name ILIKE $%d OR email ILIKE $%d)", len(args), len(args)))
	}
	where := strings.Join(conditions, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	page := shared.NewPagination(q.Page, q.Limit, total)
	args = append(args, page.PerPage, page.Offset())
	rows, err := r.pool.Query(ctx, `
		SELECT `+userColumns+` FROM users
		WHERE `+where+`
		ORDER BY created_at DESC
		LIMIT $`+fmt.Sprint(len(args)-1)+` OFFSET $`+fmt.Sprint(len(args)), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *u)
	}
	return out, total, rows.Err()
}

// Get fetches one account by id.
func (r *PGRepository) Get(ctx context.Context, id string) (*User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// FindByEmail fetches one account by email.
func (r *PGRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`,
		strings.ToLower(strings.TrimSpace(email)))
	return scanUser(row)
}

// Create inserts an account on behalf of an admin.
func (r *PGRepository) Create(ctx context.Context, u User, passwordHash string) (*User, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (name, email, password_hash, avatar_url, blood_group, district_id, upazila, role, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+userColumns,
		u.Name,
		strings.ToLower(strings.TrimSpace(u.Email)),
		passwordHash,
		u.AvatarURL,
		u.BloodGroup,
		u.DistrictID,
		u.Upazila,
		string(u.Role),
		string(u.Status),
	)
	created, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, shared.ErrEmailTaken
		}
		return nil, err
	}
	return created, nil
}

// UpdateProfile edits the account's profile fields.
func (r *PGRepository) UpdateProfile(ctx context.Context, id string, in ProfileInput) (*User, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE users
		SET name = $2, avatar_url = $3, blood_group = $4, district_id = $5, upazila = $6, updated_at = now()
		WHERE id = $1
		RETURNING `+userColumns,
		id, in.Name, in.AvatarURL, in.BloodGroup, in.DistrictID, in.Upazila,
	)
	return scanUser(row)
}

// UpdateRole reassigns the account's role.
func (r *PGRepository) UpdateRole(ctx context.Context, id string, role shared.Role) (*User, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE users SET role = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+userColumns,
		id, string(role),
	)
	return scanUser(row)
}

// UpdateStatus flips the account between active and blocked.
func (r *PGRepository) UpdateStatus(ctx context.Context, id string, status shared.AccountStatus) (*User, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE users SET status = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+userColumns,
		id, string(status),
	)
	return scanUser(row)
}

func scanUser(row pgx.Row) (*User, error) {
	var (
		u            User
		role, status string
		createdAt    time.Time
		updatedAt    time.Time
	)
	err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.AvatarURL, &u.BloodGroup,
		&u.DistrictID, &u.Upazila, &role, &status, &createdAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	u.Role = shared.ParseRole(role)
	u.Status = shared.AccountStatus(status)
	u.CreatedAt = createdAt
	u.UpdatedAt = updatedAt
	return &u, nil
}

var _ Repository = (*PGRepository)(nil)
