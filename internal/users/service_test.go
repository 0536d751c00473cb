package users

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bloodlink/bloodlink/internal/platform/cache"
	"github.com/bloodlink/bloodlink/internal/platform/httpx"
	"github.com/bloodlink/bloodlink/internal/shared"
)

type memoryRepo struct {
	users  map[string]*User
	nextID int
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{users: make(map[string]*User), nextID: 1}
}

func (m *memoryRepo) List(_ context.Context, q ListQuery) ([]User, int, error) {
	var out []User
	for _, u := range m.users {
		if q.Status != "" && string(u.Status) != q.Status {
			continue
		}
		out = append(out, *u)
	}
	return out, len(out), nil
}

func (m *memoryRepo) Get(_ context.Context, id string) (*User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	out := *u
	return &out, nil
}

func (m *memoryRepo) FindByEmail(_ context.Context, email string) (*User, error) {
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			out := *u
			return &out, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (m *memoryRepo) Create(_ context.Context, u User, _ string) (*User, error) {
	if existing, _ := m.FindByEmail(context.Background(), u.Email); existing != nil {
		return nil, shared.ErrEmailTaken
	}
	u.ID = "user-" + strconv.Itoa(m.nextID)
	m.nextID++
	u.Email = strings.ToLower(u.Email)
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	stored := u
	m.users[u.ID] = &stored
	out := stored
	return &out, nil
}

func (m *memoryRepo) UpdateProfile(_ context.Context, id string, in ProfileInput) (*User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	u.Name = in.Name
	u.AvatarURL = in.AvatarURL
	u.BloodGroup = in.BloodGroup
	u.DistrictID = in.DistrictID
	u.Upazila = in.Upazila
	out := *u
	return &out, nil
}

func (m *memoryRepo) UpdateRole(_ context.Context, id string, role shared.Role) (*User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	u.Role = role
	out := *u
	return &out, nil
}

func (m *memoryRepo) UpdateStatus(_ context.Context, id string, status shared.AccountStatus) (*User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	u.Status = status
	out := *u
	return &out, nil
}

var _ Repository = (*memoryRepo)(nil)

type recordingInvalidator struct {
	dropped []string
}

func (r *recordingInvalidator) InvalidateRole(_ context.Context, email string) error {
	r.dropped = append(r.dropped, email)
	return nil
}

func newTestService(t *testing.T) (*Service, *memoryRepo, *recordingInvalidator) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo := newMemoryRepo()
	inv := &recordingInvalidator{}
	svc := NewService(repo, cache.NewListCache(client, time.Minute), inv, slog.Default())
	return svc, repo, inv
}

func TestCreateDefaultsToDonor(t *testing.T) {
	svc, _, _ := newTestService(t)

	created, err := svc.Create(context.Background(), CreateInput{
		Name:     "New Volunteer",
		Email:    "NEW@Example.com",
		Password: "secret123",
	})
	require.NoError(t, err)
	assert.Equal(t, shared.RoleDonor, created.Role)
	assert.Equal(t, shared.StatusActive, created.Status)
	assert.Equal(t, "new@example.com", created.Email)
}

func TestCreateRejectsDuplicateEmail(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateInput{Name: "First", Email: "dup@example.com", Password: "secret123"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, CreateInput{Name: "Second", Email: "dup@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, httpx.ErrDuplicate)
}

func TestChangeRoleDropsCachedRole(t *testing.T) {
	svc, _, inv := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateInput{Name: "Donor", Email: "donor@example.com", Password: "secret123"})
	require.NoError(t, err)

	updated, err := svc.ChangeRole(ctx, created.ID, "volunteer")
	require.NoError(t, err)
	assert.Equal(t, shared.RoleVolunteer, updated.Role)
	assert.Contains(t, inv.dropped, "donor@example.com")
}

func TestChangeRoleRejectsUnknownRole(t *testing.T) {
	svc, _, inv := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateInput{Name: "Donor", Email: "donor@example.com", Password: "secret123"})
	require.NoError(t, err)

	_, err = svc.ChangeRole(ctx, created.ID, "superadmin")
	assert.ErrorIs(t, err, httpx.ErrValidation)
	assert.Empty(t, inv.dropped)
}

func TestChangeStatusBlocksAccount(t *testing.T) {
	svc, repo, inv := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateInput{Name: "Donor", Email: "donor@example.com", Password: "secret123"})
	require.NoError(t, err)

	updated, err := svc.ChangeStatus(ctx, created.ID, "blocked")
	require.NoError(t, err)
	assert.Equal(t, shared.StatusBlocked, updated.Status)
	assert.Contains(t, inv.dropped, "donor@example.com")

	stored, err := repo.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, shared.StatusBlocked, stored.Status)
}

func TestListCacheInvalidatedByAdminMutation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateInput{Name: "First", Email: "one@example.com", Password: "secret123"})
	require.NoError(t, err)

	q := ListQuery{Page: 1, Limit: 6}
	first, err := svc.List(ctx, q)
	require.NoError(t, err)
	require.Equal(t, 1, first.Pagination.Total)

	_, err = svc.Create(ctx, CreateInput{Name: "Second", Email: "two@example.com", Password: "secret123"})
	require.NoError(t, err)

	after, err := svc.List(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, 2, after.Pagination.Total)
}

func TestLookup(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateInput{Name: "Donor", Email: "donor@example.com", Password: "secret123", Role: "volunteer"})
	require.NoError(t, err)
	require.Equal(t, shared.RoleVolunteer, created.Role)

	lookup, err := svc.Lookup(ctx, "donor@example.com")
	require.NoError(t, err)
	assert.Equal(t, shared.RoleVolunteer, lookup.Role)
	assert.Equal(t, shared.StatusActive, lookup.Status)

	_, err = svc.Lookup(ctx, "ghost@example.com")
	assert.ErrorIs(t, err, httpx.ErrNotFound)
}
