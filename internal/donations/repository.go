package donations

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bloodlink/bloodlink/internal/shared"
)

// ErrNotFound indicates the requested donation request does not exist.
var ErrNotFound = errors.New("donation request not found")

// Repository defines persistence operations for donation requests.
type Repository interface {
	Create(ctx context.Context, req Request) (*Request, error)
	Get(ctx context.Context, id string) (*Request, error)
	Update(ctx context.Context, id string, in RequestInput) (*Request, error)
	UpdateStatus(ctx context.Context, id string, status Status) (*Request, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, q ListQuery) ([]Request, int, error)
	CountsByStatus(ctx context.Context, requesterEmail string) (StatusCounts, error)
	Recent(ctx context.Context, requesterEmail string, limit int) ([]Request, error)
	DueOn(ctx context.Context, date time.Time) ([]Request, error)
}

type dbtx interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Query(context.Context, string, ...any) (pgx.Rows, error)
	QueryRow(context.Context, string, ...any) pgx.Row
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	db dbtx
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{db: pool}
}

const requestColumns = `id, requester_name, requester_email, recipient_name, blood_group,
	hospital_name, full_address, district, upazila,
	to_char(donation_date, 'YYYY-MM-DD'), donation_time, request_message, status,
	created_at, updated_at`

func (r *PGRepository) Create(ctx context.Context, req Request) (*Request, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO donation_requests (
			requester_name, requester_email, recipient_name, blood_group,
			hospital_name, full_address, district, upazila,
			donation_date, donation_time, request_message, status
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9::date, $10, $11, $12)
		RETURNING `+requestColumns,
		req.RequesterName, req.RequesterEmail, req.RecipientName, req.BloodGroup,
		req.HospitalName, req.FullAddress, req.District, req.Upazila,
		req.DonationDate, req.DonationTime, req.RequestMessage, string(req.Status),
	)
	return scanRequest(row)
}

func (r *PGRepository) Get(ctx context.Context, id string) (*Request, error) {
	row := r.db.QueryRow(ctx, `SELECT `+requestColumns+` FROM donation_requests WHERE id = $1`, id)
	return scanRequest(row)
}

func (r *PGRepository) Update(ctx context.Context, id string, in RequestInput) (*Request, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE donation_requests SET
			recipient_name = $2, blood_group = $3, hospital_name = $4,
			full_address = $5, district = $6, upazila = $7,
			donation_date = $8::date, donation_time = $9, request_message = $10,
			updated_at = now()
		WHERE id = $1
		RETURNING `+requestColumns,
		id, in.RecipientName, in.BloodGroup, in.HospitalName,
		in.FullAddress, in.District, in.Upazila,
		in.DonationDate, in.DonationTime, in.RequestMessage,
	)
	return scanRequest(row)
}

func (r *PGRepository) UpdateStatus(ctx context.Context, id string, status Status) (*Request, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE donation_requests SET status = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+requestColumns,
		id, string(status),
	)
	return scanRequest(row)
}

func (r *PGRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM donation_requests WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepository) List(ctx context.Context, q ListQuery) ([]Request, int, error) {
	var conditions []string
	var args []any
	argPos := 1

	if q.RequesterEmail != "" {
		conditions = append(conditions, fmt.Sprintf("requester_email = $%d", argPos))
		args = append(args, q.RequesterEmail)
		argPos++
	}
	if q.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argPos))
		args = append(args, string(*q.Status))
		argPos++
	}
	if q.Search != "" {
		pattern := "%" + q.Search + "%"
		conditions = append(conditions, fmt.Sprintf(
			"(recipient_name ILIKE $%d OR hospital_name ILIKE $%d OR full_address ILIKE $%d OR district ILIKE $%d)",
			argPos, argPos, argPos, argPos))
		args = append(args, pattern)
		argPos++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + conditions[0]
		for i := 1; i < len(conditions); i++ {
			whereClause += " AND " + conditions[i]
		}
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM donation_requests %s", whereClause)
	var total int
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	pagination := shared.NewPagination(q.Page, q.Limit, total)
	query := fmt.Sprintf(`
		SELECT %s FROM donation_requests
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`,
		requestColumns, whereClause, argPos, argPos+1)
	args = append(args, pagination.PerPage, pagination.Offset())

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	requests := []Request{}
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, 0, err
		}
		requests = append(requests, *req)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return requests, total, nil
}

func (r *PGRepository) CountsByStatus(ctx context.Context, requesterEmail string) (StatusCounts, error) {
	rows, err := r.db.Query(ctx, `
		SELECT status, COUNT(*) FROM donation_requests
		WHERE requester_email = $1
		GROUP BY status`, requesterEmail)
	if err != nil {
		return StatusCounts{}, err
	}
	defer rows.Close()

	var counts StatusCounts
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return StatusCounts{}, err
		}
		counts.Total += n
		switch Status(status) {
		case StatusPending:
			counts.Pending = n
		case StatusInProgress:
			counts.InProgress = n
		case StatusCompleted:
			counts.Completed = n
		case StatusCancelled:
			counts.Cancelled = n
		}
	}
	return counts, rows.Err()
}

func (r *PGRepository) Recent(ctx context.Context, requesterEmail string, limit int) ([]Request, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+requestColumns+` FROM donation_requests
		WHERE requester_email = $1
		ORDER BY created_at DESC
		LIMIT $2`, requesterEmail, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	requests := []Request{}
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, *req)
	}
	return requests, rows.Err()
}

// DueOn returns open requests whose donation date falls on the given day.
// Used by the reminder job.
func (r *PGRepository) DueOn(ctx context.Context, date time.Time) ([]Request, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+requestColumns+` FROM donation_requests
		WHERE donation_date = $1::date AND status IN ('pending', 'inprogress')
		ORDER BY donation_time`, date.Format("2006-01-02"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	requests := []Request{}
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, *req)
	}
	return requests, rows.Err()
}

func scanRequest(row pgx.Row) (*Request, error) {
	var req Request
	var status string
	err := row.Scan(
		&req.ID, &req.RequesterName, &req.RequesterEmail, &req.RecipientName, &req.BloodGroup,
		&req.HospitalName, &req.FullAddress, &req.District, &req.Upazila,
		&req.DonationDate, &req.DonationTime, &req.RequestMessage, &status,
		&req.CreatedAt, &req.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	req.Status = Status(status)
	return &req, nil
}

var _ Repository = (*PGRepository)(nil)
