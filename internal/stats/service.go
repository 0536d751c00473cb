package stats

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/bloodlink/bloodlink/internal/funding"
)

// Overview is the admin dashboard headline block.
type Overview struct {
	TotalUsers          int           `json:"totalUsers"`
	TotalFunding        int64         `json:"totalFunding"`
	DisplayTotalFunding string        `json:"displayTotalFunding"`
	Requests            RequestCounts `json:"requests"`
}

// Service assembles the admin dashboard aggregates.
type Service struct {
	repo Repository
}

// NewService constructs a Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Overview fans the three aggregate reads out concurrently and fails as a
// whole if any of them fails.
func (s *Service) Overview(ctx context.Context) (*Overview, error) {
	var out Overview

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		users, err := s.repo.CountUsers(ctx)
		if err != nil {
			return fmt.Errorf("count users: %w", err)
		}
		out.TotalUsers = users
		return nil
	})
	g.Go(func() error {
		counts, err := s.repo.CountRequests(ctx)
		if err != nil {
			return fmt.Errorf("count requests: %w", err)
		}
		out.Requests = counts
		return nil
	})
	g.Go(func() error {
		total, err := s.repo.TotalFunding(ctx)
		if err != nil {
			return fmt.Errorf("total funding: %w", err)
		}
		out.TotalFunding = total
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("stats: overview: %w", err)
	}

	out.DisplayTotalFunding = funding.FormatAmount(out.TotalFunding)
	return &out, nil
}
