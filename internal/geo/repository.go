package geo

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository defines read operations over the reference tables.
type Repository interface {
	Districts(ctx context.Context) ([]District, error)
	Upazilas(ctx context.Context, districtID int64) ([]Upazila, error)
	SearchDonors(ctx context.Context, q DonorQuery) ([]Donor, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// Districts lists every district ordered by name.
func (r *PGRepository) Districts(ctx context.Context) ([]District, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name FROM districts ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []District
	for rows.Next() {
		var d District
		if err := rows.Scan(&d.ID, &d.Name); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Upazilas lists the upazilas of one district ordered by name.
func (r *PGRepository) Upazilas(ctx context.Context, districtID int64) ([]Upazila, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, district_id, name FROM upazilas WHERE district_id = $1 ORDER BY name`,
		districtID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Upazila
	for rows.Next() {
		var u Upazila
		if err := rows.Scan(&u.ID, &u.DistrictID, &u.Name); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// SearchDonors finds active donor accounts matching the filters.
func (r *PGRepository) SearchDonors(ctx context.Context, q DonorQuery) ([]Donor, error) {
	conditions := []string{"u.role = 'donor'", "u.status = 'active'"}
	args := []any{}

	if q.BloodGroup != "" {
		args = append(args, q.BloodGroup)
		conditions = append(conditions, fmt.Sprintf("u.blood_group = $%d", len(args)))
	}
	if q.DistrictID > 0 {
		args = append(args, q.DistrictID)
		conditions = append(conditions, fmt.Sprintf("u.district_id = $%d", len(args)))
	}
	if q.Upazila != "" {
		args = append(args, q.Upazila)
		conditions = append(conditions, fmt.Sprintf("u.upazila ILIKE $%d", len(args)))
	}

	rows, err := r.pool.Query(ctx, `
		SELECT u.id, u.name, u.email, u.avatar_url, u.blood_group, COALESCE(d.name, ''), u.upazila
		FROM users u
		LEFT JOIN districts d ON d.id = u.district_id
		WHERE `+strings.Join(conditions, " AND ")+`
		ORDER BY u.name`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Donor
	for rows.Next() {
		var d Donor
		if err := rows.Scan(&d.ID, &d.Name, &d.Email, &d.AvatarURL, &d.BloodGroup, &d.District, &d.Upazila); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

var _ Repository = (*PGRepository)(nil)
