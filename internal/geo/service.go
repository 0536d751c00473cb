package geo

import (
	"context"
	"fmt"
)

// Service exposes the reference data used by the request and search forms.
type Service struct {
	repo Repository
}

// NewService constructs a Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// BloodGroups returns the fixed ABO/Rh set.
func (s *Service) BloodGroups() []string {
	out := make([]string, len(BloodGroups))
	copy(out, BloodGroups)
	return out
}

// Districts lists every district.
func (s *Service) Districts(ctx context.Context) ([]District, error) {
	districts, err := s.repo.Districts(ctx)
	if err != nil {
		return nil, fmt.Errorf("geo: districts: %w", err)
	}
	return districts, nil
}

// Upazilas lists the upazilas of one district.
func (s *Service) Upazilas(ctx context.Context, districtID int64) ([]Upazila, error) {
	upazilas, err := s.repo.Upazilas(ctx, districtID)
	if err != nil {
		return nil, fmt.Errorf("geo: upazilas: %w", err)
	}
	return upazilas, nil
}

// SearchDonors finds active donors matching the filters.
func (s *Service) SearchDonors(ctx context.Context, q DonorQuery) ([]Donor, error) {
	donors, err := s.repo.SearchDonors(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("geo: search donors: %w", err)
	}
	if donors == nil {
		donors = []Donor{}
	}
	return donors, nil
}
