package donations

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/bloodlink/bloodlink/internal/platform/cache"
	"github.com/bloodlink/bloodlink/internal/platform/httpx"
	"github.com/bloodlink/bloodlink/internal/shared"
)

const (
	cacheResource  = "donations"
	minMessageLen  = 20
	recentListSize = 3
)

// TransitionObserver counts status transitions for the metrics endpoint.
type TransitionObserver interface {
	ObserveTransition(to string)
}

// Service orchestrates the donation-request lifecycle.
type Service struct {
	repo     Repository
	lists    *cache.ListCache
	logger   *slog.Logger
	observer TransitionObserver
}

// NewService constructs a Service.
func NewService(repo Repository, lists *cache.ListCache, logger *slog.Logger) *Service {
	return &Service{repo: repo, lists: lists, logger: logger}
}

// SetTransitionObserver attaches a transition counter.
func (s *Service) SetTransitionObserver(o TransitionObserver) {
	s.observer = o
}

// Create records a new pending request. Requester identity comes from the
// principal; all editable fields must be non-blank after trimming and the
// message must carry at least 20 characters.
func (s *Service) Create(ctx context.Context, principal *shared.Principal, in RequestInput) (*Request, error) {
	normalized, err := normalizeInput(in)
	if err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, Request{
		RequesterName:  principal.Name,
		RequesterEmail: principal.Email,
		RecipientName:  normalized.RecipientName,
		BloodGroup:     normalized.BloodGroup,
		HospitalName:   normalized.HospitalName,
		FullAddress:    normalized.FullAddress,
		District:       normalized.District,
		Upazila:        normalized.Upazila,
		DonationDate:   normalized.DonationDate,
		DonationTime:   normalized.DonationTime,
		RequestMessage: normalized.RequestMessage,
		Status:         StatusPending,
	})
	if err != nil {
		return nil, fmt.Errorf("donations: create: %w", err)
	}

	s.invalidateLists(ctx)
	return created, nil
}

// List returns one page of requests for the query, served from the list
// cache when a response for the exact parameter tuple is already stored.
func (s *Service) List(ctx context.Context, q ListQuery) (*shared.ListEnvelope[Request], error) {
	key := cache.Key(cacheResource, listParams(q))

	var cached shared.ListEnvelope[Request]
	if err := s.lists.Get(ctx, key, &cached); err == nil {
		return &cached, nil
	} else if !errors.Is(err, cache.ErrMiss) {
		s.logger.Warn("list cache read", slog.Any("error", err))
	}

	requests, total, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("donations: list: %w", err)
	}

	envelope := &shared.ListEnvelope[Request]{
		Data:       requests,
		Pagination: shared.NewPagination(q.Page, q.Limit, total),
	}
	if err := s.lists.Set(ctx, key, envelope); err != nil {
		s.logger.Warn("list cache write", slog.Any("error", err))
	}
	return envelope, nil
}

// Get fetches one request with its legal transition actions.
func (s *Service) Get(ctx context.Context, id string) (*Detail, error) {
	req, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, httpx.ErrNotFound
		}
		return nil, fmt.Errorf("donations: get: %w", err)
	}
	return &Detail{Request: *req, AllowedTransitions: AllowedTransitions(req.Status)}, nil
}

// Update edits a request. Only the owner may edit, validation mirrors
// create, and an edit that changes nothing is rejected without a write.
func (s *Service) Update(ctx context.Context, principal *shared.Principal, id string, in RequestInput) (*Request, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, httpx.ErrNotFound
		}
		return nil, fmt.Errorf("donations: get for update: %w", err)
	}
	if !strings.EqualFold(existing.RequesterEmail, principal.Email) {
		return nil, fmt.Errorf("%w: only the requester may edit", httpx.ErrForbidden)
	}

	normalized, err := normalizeInput(in)
	if err != nil {
		return nil, err
	}
	if unchanged(existing, normalized) {
		return nil, fmt.Errorf("%w: submitted fields match the stored request", httpx.ErrNoChanges)
	}

	updated, err := s.repo.Update(ctx, id, normalized)
	if err != nil {
		return nil, fmt.Errorf("donations: update: %w", err)
	}

	s.invalidateLists(ctx)
	return updated, nil
}

// Transition moves a request along the status graph. Illegal edges,
// including re-applying the current status, are rejected.
func (s *Service) Transition(ctx context.Context, id string, rawStatus string) (*Request, error) {
	target, ok := ParseStatus(rawStatus)
	if !ok {
		return nil, fmt.Errorf("%w: unknown status %q", httpx.ErrValidation, rawStatus)
	}

	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, httpx.ErrNotFound
		}
		return nil, fmt.Errorf("donations: get for transition: %w", err)
	}
	if !CanTransition(existing.Status, target) {
		return nil, fmt.Errorf("%w: %s -> %s is not a legal transition", httpx.ErrConflict, existing.Status, target)
	}

	updated, err := s.repo.UpdateStatus(ctx, id, target)
	if err != nil {
		return nil, fmt.Errorf("donations: transition: %w", err)
	}

	if s.observer != nil {
		s.observer.ObserveTransition(string(target))
	}
	s.invalidateLists(ctx)
	return updated, nil
}

// Delete removes a request. Owners and admins may delete; deletion is
// terminal from any status.
func (s *Service) Delete(ctx context.Context, principal *shared.Principal, role shared.Role, id string) error {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return httpx.ErrNotFound
		}
		return fmt.Errorf("donations: get for delete: %w", err)
	}
	if role != shared.RoleAdmin && !strings.EqualFold(existing.RequesterEmail, principal.Email) {
		return fmt.Errorf("%w: only the requester or an admin may delete", httpx.ErrForbidden)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("donations: delete: %w", err)
	}

	s.invalidateLists(ctx)
	return nil
}

// Dashboard summarizes a requester's requests: per-status counts plus the
// most recent entries.
func (s *Service) Dashboard(ctx context.Context, requesterEmail string) (*DashboardSummary, error) {
	counts, err := s.repo.CountsByStatus(ctx, requesterEmail)
	if err != nil {
		return nil, fmt.Errorf("donations: dashboard counts: %w", err)
	}
	recent, err := s.repo.Recent(ctx, requesterEmail, recentListSize)
	if err != nil {
		return nil, fmt.Errorf("donations: dashboard recent: %w", err)
	}
	return &DashboardSummary{Counts: counts, Recent: recent}, nil
}

func (s *Service) invalidateLists(ctx context.Context) {
	if err := s.lists.InvalidateResource(ctx, cacheResource); err != nil {
		s.logger.Warn("invalidate donation lists", slog.Any("error", err))
	}
}

// normalizeInput trims every field and enforces the create-form rules.
func normalizeInput(in RequestInput) (RequestInput, error) {
	in.RecipientName = strings.TrimSpace(in.RecipientName)
	in.BloodGroup = strings.TrimSpace(in.BloodGroup)
	in.HospitalName = strings.TrimSpace(in.HospitalName)
	in.FullAddress = strings.TrimSpace(in.FullAddress)
	in.District = strings.TrimSpace(in.District)
	in.Upazila = strings.TrimSpace(in.Upazila)
	in.DonationDate = strings.TrimSpace(in.DonationDate)
	in.DonationTime = strings.TrimSpace(in.DonationTime)
	in.RequestMessage = strings.TrimSpace(in.RequestMessage)

	fields := map[string]string{
		"recipientName": in.RecipientName,
		"bloodGroup":    in.BloodGroup,
		"hospitalName":  in.HospitalName,
		"fullAddress":   in.FullAddress,
		"district":      in.District,
		"upazila":       in.Upazila,
		"donationDate":  in.DonationDate,
		"donationTime":  in.DonationTime,
	}
	for name, value := range fields {
		if value == "" {
			return RequestInput{}, fmt.Errorf("%w: %s is required", httpx.ErrValidation, name)
		}
	}
	if len(in.RequestMessage) < minMessageLen {
		return RequestInput{}, fmt.Errorf("%w: requestMessage must be at least %d characters", httpx.ErrValidation, minMessageLen)
	}
	return in, nil
}

// unchanged compares the normalized input against the stored snapshot.
func unchanged(existing *Request, in RequestInput) bool {
	return existing.RecipientName == in.RecipientName &&
		existing.BloodGroup == in.BloodGroup &&
		existing.HospitalName == in.HospitalName &&
		existing.FullAddress == in.FullAddress &&
		existing.District == in.District &&
		existing.Upazila == in.Upazila &&
		existing.DonationDate == in.DonationDate &&
		existing.DonationTime == in.DonationTime &&
		existing.RequestMessage == in.RequestMessage
}

func listParams(q ListQuery) map[string]string {
	params := map[string]string{
		"page":  strconv.Itoa(q.Page),
		"limit": strconv.Itoa(q.Limit),
		"email": strings.ToLower(q.RequesterEmail),
	}
	if q.Status != nil {
		params["status"] = string(*q.Status)
	}
	if q.Search != "" {
		params["search"] = strings.ToLower(q.Search)
	}
	return params
}
