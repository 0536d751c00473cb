package funding

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bloodlink/bloodlink/internal/shared"
)

// ErrNotFound is returned when no funding row matches.
var ErrNotFound = errors.New("funding: not found")

// Repository defines persistence operations for contributions.
type Repository interface {
	Create(ctx context.Context, f Funding) (*Funding, error)
	FindBySession(ctx context.Context, sessionID string) (*Funding, error)
	MarkPaid(ctx context.Context, sessionID string) (*Funding, error)
	List(ctx context.Context, q ListQuery) ([]Funding, int, error)
	SumPaid(ctx context.Context) (int64, int, error)
	ExpireOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const fundingColumns = `id, donor_name, donor_email, amount, session_id, status, created_at, updated_at`

// Create inserts a pending contribution tied to a checkout session.
func (r *PGRepository) Create(ctx context.Context, f Funding) (*Funding, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO funding (donor_name, donor_email, amount, session_id, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+fundingColumns,
		f.DonorName,
		strings.ToLower(strings.TrimSpace(f.DonorEmail)),
		f.Amount,
		f.SessionID,
		string(f.Status),
	)
	return scanFunding(row)
}

// FindBySession fetches the contribution for a checkout session.
func (r *PGRepository) FindBySession(ctx context.Context, sessionID string) (*Funding, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+fundingColumns+` FROM funding WHERE session_id = $1`, sessionID)
	return scanFunding(row)
}

// MarkPaid records a successful payment for the session.
func (r *PGRepository) MarkPaid(ctx context.Context, sessionID string) (*Funding, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE funding SET status = 'paid', updated_at = now()
		WHERE session_id = $1
		RETURNING `+fundingColumns,
		sessionID,
	)
	return scanFunding(row)
}

// List returns one page of paid contributions, newest first. A session_id
// filter narrows the page to a single session.
func (r *PGRepository) List(ctx context.Context, q ListQuery) ([]Funding, int, error) {
	conditions := []string{"status = 'paid'"}
	args := []any{}

	if q.SessionID != "" {
		args = append(args, q.SessionID)
		conditions = append(conditions, fmt.Sprintf("session_id = $%d", len(args)))
	}
	where := strings.Join(conditions, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM funding WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	page := shared.NewPagination(q.Page, q.Limit, total)
	args = append(args, page.PerPage, page.Offset())
	rows, err := r.pool.Query(ctx, `
		SELECT `+fundingColumns+` FROM funding
		WHERE `+where+`
		ORDER BY created_at DESC
		LIMIT $`+fmt.Sprint(len(args)-1)+` OFFSET $`+fmt.Sprint(len(args)), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Funding
	for rows.Next() {
		f, err := scanFunding(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *f)
	}
	return out, total, rows.Err()
}

// SumPaid totals the paid contributions.
func (r *PGRepository) SumPaid(ctx context.Context) (int64, int, error) {
	var (
		total int64
		count int
	)
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount), 0), COUNT(*) FROM funding WHERE status = 'paid'`,
	).Scan(&total, &count)
	return total, count, err
}

// ExpireOlderThan marks stale pending sessions as expired and reports how
// many rows were touched.
func (r *PGRepository) ExpireOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE funding SET status = 'expired', updated_at = now()
		WHERE status = 'pending' AND created_at < $1`,
		cutoff,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func scanFunding(row pgx.Row) (*Funding, error) {
	var (
		f      Funding
		status string
	)
	err := row.Scan(&f.ID, &f.DonorName, &f.DonorEmail, &f.Amount, &f.SessionID, &status, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	f.Status = Status(status)
	f.DisplayAmount = FormatAmount(f.Amount)
	return &f, nil
}

var _ Repository = (*PGRepository)(nil)
