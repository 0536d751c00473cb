package users

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/bloodlink/bloodlink/internal/platform/cache"
	"github.com/bloodlink/bloodlink/internal/platform/httpx"
	"github.com/bloodlink/bloodlink/internal/shared"
)

const cacheResource = "users"

// RoleInvalidator drops a cached role so admin changes take effect on the
// next request instead of after the cache TTL.
type RoleInvalidator interface {
	InvalidateRole(ctx context.Context, email string) error
}

// Service orchestrates account administration.
type Service struct {
	repo        Repository
	lists       *cache.ListCache
	invalidator RoleInvalidator
	logger      *slog.Logger
}

// NewService constructs a Service.
func NewService(repo Repository, lists *cache.ListCache, invalidator RoleInvalidator, logger *slog.Logger) *Service {
	return &Service{repo: repo, lists: lists, invalidator: invalidator, logger: logger}
}

// List returns one page of accounts, served from the list cache when the
// exact parameter tuple is already stored.
func (s *Service) List(ctx context.Context, q ListQuery) (*shared.ListEnvelope[User], error) {
	key := cache.Key(cacheResource, map[string]string{
		"page":   strconv.Itoa(q.Page),
		"limit":  strconv.Itoa(q.Limit),
		"status": q.Status,
		"search": strings.ToLower(q.Search),
	})

	var cached shared.ListEnvelope[User]
	if err := s.lists.Get(ctx, key, &cached); err == nil {
		return &cached, nil
	} else if !errors.Is(err, cache.ErrMiss) {
		s.logger.Warn("user list cache read", slog.Any("error", err))
	}

	accounts, total, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("users: list: %w", err)
	}

	envelope := &shared.ListEnvelope[User]{
		Data:       accounts,
		Pagination: shared.NewPagination(q.Page, q.Limit, total),
	}
	if err := s.lists.Set(ctx, key, envelope); err != nil {
		s.logger.Warn("user list cache write", slog.Any("error", err))
	}
	return envelope, nil
}

// Get fetches one account by id.
func (s *Service) Get(ctx context.Context, id string) (*User, error) {
	u, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, httpx.ErrNotFound
		}
		return nil, fmt.Errorf("users: get: %w", err)
	}
	return u, nil
}

// Create adds an account on behalf of an admin. The role defaults to donor
// when the form leaves it blank.
func (s *Service) Create(ctx context.Context, in CreateInput) (*User, error) {
	role := shared.ParseRole(in.Role)
	if !role.Resolved() {
		role = shared.RoleDonor
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("users: hash password: %w", err)
	}

	created, err := s.repo.Create(ctx, User{
		Name:       strings.TrimSpace(in.Name),
		Email:      in.Email,
		AvatarURL:  in.AvatarURL,
		BloodGroup: in.BloodGroup,
		DistrictID: in.DistrictID,
		Upazila:    strings.TrimSpace(in.Upazila),
		Role:       role,
		Status:     shared.StatusActive,
	}, string(hash))
	if err != nil {
		if errors.Is(err, shared.ErrEmailTaken) {
			return nil, fmt.Errorf("%w: email already registered", httpx.ErrDuplicate)
		}
		return nil, fmt.Errorf("users: create: %w", err)
	}

	s.invalidateLists(ctx)
	return created, nil
}

// UpdateProfile edits an account's profile fields.
func (s *Service) UpdateProfile(ctx context.Context, id string, in ProfileInput) (*User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Upazila = strings.TrimSpace(in.Upazila)

	updated, err := s.repo.UpdateProfile(ctx, id, in)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, httpx.ErrNotFound
		}
		return nil, fmt.Errorf("users: update profile: %w", err)
	}

	s.invalidateLists(ctx)
	return updated, nil
}

// ChangeRole reassigns an account's role and drops its cached role so the
// change is observed on the next request.
func (s *Service) ChangeRole(ctx context.Context, id string, rawRole string) (*User, error) {
	role := shared.ParseRole(rawRole)
	if !role.Resolved() {
		return nil, fmt.Errorf("%w: unknown role %q", httpx.ErrValidation, rawRole)
	}

	updated, err := s.repo.UpdateRole(ctx, id, role)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, httpx.ErrNotFound
		}
		return nil, fmt.Errorf("users: change role: %w", err)
	}

	s.dropCachedRole(ctx, updated.Email)
	s.invalidateLists(ctx)
	return updated, nil
}

// ChangeStatus blocks or unblocks an account. Blocking also drops the
// cached role so in-flight sessions lose access immediately.
func (s *Service) ChangeStatus(ctx context.Context, id string, rawStatus string) (*User, error) {
	status := shared.AccountStatus(rawStatus)
	if status != shared.StatusActive && status != shared.StatusBlocked {
		return nil, fmt.Errorf("%w: unknown status %q", httpx.ErrValidation, rawStatus)
	}

	updated, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, httpx.ErrNotFound
		}
		return nil, fmt.Errorf("users: change status: %w", err)
	}

	s.dropCachedRole(ctx, updated.Email)
	s.invalidateLists(ctx)
	return updated, nil
}

// Lookup answers the role/status question for one email.
func (s *Service) Lookup(ctx context.Context, email string) (*RoleLookup, error) {
	u, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, httpx.ErrNotFound
		}
		return nil, fmt.Errorf("users: lookup: %w", err)
	}
	return &RoleLookup{Role: u.Role, Status: u.Status}, nil
}

func (s *Service) dropCachedRole(ctx context.Context, email string) {
	if s.invalidator == nil {
		return
	}
	if err := s.invalidator.InvalidateRole(ctx, email); err != nil {
		s.logger.Warn("invalidate cached role", slog.String("email", email), slog.Any("error", err))
	}
}

func (s *Service) invalidateLists(ctx context.Context) {
	if err := s.lists.InvalidateResource(ctx, cacheResource); err != nil {
		s.logger.Warn("invalidate user lists", slog.Any("error", err))
	}
}
