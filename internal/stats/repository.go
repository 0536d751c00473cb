package stats

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// RequestCounts aggregates donation requests by status.
type RequestCounts struct {
	Total      int `json:"total"`
	Pending    int `json:"pending"`
	InProgress int `json:"inprogress"`
	Completed  int `json:"completed"`
	Cancelled  int `json:"cancelled"`
}

// Repository defines the aggregate reads behind the admin dashboard.
type Repository interface {
	CountUsers(ctx context.Context) (int, error)
	CountRequests(ctx context.Context) (RequestCounts, error)
	TotalFunding(ctx context.Context) (int64, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// CountUsers counts every registered account.
func (r *PGRepository) CountUsers(ctx context.Context) (int, error) {
	var total int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&total)
	return total, err
}

// CountRequests aggregates donation requests by status.
func (r *PGRepository) CountRequests(ctx context.Context) (RequestCounts, error) {
	var counts RequestCounts
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE status = 'pending'),
			COUNT(*) FILTER (WHERE status = 'inprogress'),
			COUNT(*) FILTER (WHERE status = 'completed'),
			COUNT(*) FILTER (WHERE status = 'cancelled')
		FROM donation_requests`,
	).Scan(&counts.Total, &counts.Pending, &counts.InProgress, &counts.Completed, &counts.Cancelled)
	return counts, err
}

// TotalFunding sums the paid contributions.
func (r *PGRepository) TotalFunding(ctx context.Context) (int64, error) {
	var total int64
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM funding WHERE status = 'paid'`,
	).Scan(&total)
	return total, err
}

var _ Repository = (*PGRepository)(nil)
