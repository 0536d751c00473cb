package funding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/bloodlink/bloodlink/internal/platform/cache"
	"github.com/bloodlink/bloodlink/internal/platform/httpx"
	"github.com/bloodlink/bloodlink/internal/shared"
)

const (
	cacheResource = "funding"

	// Pending sessions older than this are swept to expired.
	PendingSessionTTL = 24 * time.Hour
)

// Service orchestrates the contribution checkout flow.
type Service struct {
	repo     Repository
	provider CheckoutProvider
	lists    *cache.ListCache
	logger   *slog.Logger
}

// NewService constructs a Service.
func NewService(repo Repository, provider CheckoutProvider, lists *cache.ListCache, logger *slog.Logger) *Service {
	return &Service{repo: repo, provider: provider, lists: lists, logger: logger}
}

// Checkout opens a gateway session for the amount and records a pending
// contribution keyed by the session id.
func (s *Service) Checkout(ctx context.Context, principal *shared.Principal, amount int64) (*CheckoutResponse, error) {
	if amount < 1 {
		return nil, fmt.Errorf("%w: amount must be at least 1", httpx.ErrValidation)
	}

	session, err := s.provider.CreateSession(ctx, amount, principal.Email)
	if err != nil {
		return nil, fmt.Errorf("funding: create checkout session: %w", err)
	}

	if _, err := s.repo.Create(ctx, Funding{
		DonorName:  principal.Name,
		DonorEmail: principal.Email,
		Amount:     amount,
		SessionID:  session.ID,
		Status:     StatusPending,
	}); err != nil {
		return nil, fmt.Errorf("funding: record pending contribution: %w", err)
	}

	return &CheckoutResponse{SessionID: session.ID, CheckoutURL: session.CheckoutURL}, nil
}

// Confirm reconciles a finished session. Re-confirming an already paid
// session returns the stored contribution without another write.
func (s *Service) Confirm(ctx context.Context, sessionID string) (*Funding, error) {
	existing, err := s.repo.FindBySession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, httpx.ErrNotFound
		}
		return nil, fmt.Errorf("funding: find session: %w", err)
	}
	if existing.Status == StatusPaid {
		return existing, nil
	}
	if existing.Status == StatusExpired {
		return nil, fmt.Errorf("%w: session already expired", httpx.ErrConflict)
	}

	settled, err := s.provider.VerifySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("funding: verify session: %w", err)
	}
	if !settled {
		return nil, fmt.Errorf("%w: session not paid at the gateway", httpx.ErrConflict)
	}

	paid, err := s.repo.MarkPaid(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("funding: mark paid: %w", err)
	}

	s.invalidateLists(ctx)
	return paid, nil
}

// List returns one page of paid contributions plus the running total.
func (s *Service) List(ctx context.Context, q ListQuery) (*shared.ListEnvelope[Funding], *Summary, error) {
	key := cache.Key(cacheResource, map[string]string{
		"page":    strconv.Itoa(q.Page),
		"limit":   strconv.Itoa(q.Limit),
		"session": q.SessionID,
	})

	var cached listWithSummary
	if err := s.lists.Get(ctx, key, &cached); err == nil {
		return &cached.Envelope, &cached.Summary, nil
	} else if !errors.Is(err, cache.ErrMiss) {
		s.logger.Warn("funding list cache read", slog.Any("error", err))
	}

	contributions, total, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, nil, fmt.Errorf("funding: list: %w", err)
	}
	raised, count, err := s.repo.SumPaid(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("funding: sum paid: %w", err)
	}

	envelope := shared.ListEnvelope[Funding]{
		Data:       contributions,
		Pagination: shared.NewPagination(q.Page, q.Limit, total),
	}
	summary := Summary{
		TotalRaised:        raised,
		DisplayTotalRaised: FormatAmount(raised),
		Contributions:      count,
	}
	if err := s.lists.Set(ctx, key, listWithSummary{Envelope: envelope, Summary: summary}); err != nil {
		s.logger.Warn("funding list cache write", slog.Any("error", err))
	}
	return &envelope, &summary, nil
}

// ExpireStale sweeps pending sessions older than PendingSessionTTL.
func (s *Service) ExpireStale(ctx context.Context, now time.Time) (int64, error) {
	swept, err := s.repo.ExpireOlderThan(ctx, now.Add(-PendingSessionTTL))
	if err != nil {
		return 0, fmt.Errorf("funding: expire stale sessions: %w", err)
	}
	if swept > 0 {
		s.invalidateLists(ctx)
	}
	return swept, nil
}

type listWithSummary struct {
	Envelope shared.ListEnvelope[Funding] `json:"envelope"`
	Summary  Summary                      `json:"summary"`
}

func (s *Service) invalidateLists(ctx context.Context) {
	if err := s.lists.InvalidateResource(ctx, cacheResource); err != nil {
		s.logger.Warn("invalidate funding lists", slog.Any("error", err))
	}
}
