package funding

import (
	"context"
	"log/slog"
	"strconv"
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
	rows      map[string]*Funding
	nextID    int
	paidCalls int
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{rows: make(map[string]*Funding), nextID: 1}
}

func (m *memoryRepo) Create(_ context.Context, f Funding) (*Funding, error) {
	f.ID = "fund-" + strconv.Itoa(m.nextID)
	m.nextID++
	f.CreatedAt = time.Now()
	f.UpdatedAt = f.CreatedAt
	stored := f
	m.rows[f.SessionID] = &stored
	out := stored
	return &out, nil
}

func (m *memoryRepo) FindBySession(_ context.Context, sessionID string) (*Funding, error) {
	f, ok := m.rows[sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	out := *f
	return &out, nil
}

func (m *memoryRepo) MarkPaid(_ context.Context, sessionID string) (*Funding, error) {
	f, ok := m.rows[sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	m.paidCalls++
	f.Status = StatusPaid
	out := *f
	return &out, nil
}

func (m *memoryRepo) List(_ context.Context, q ListQuery) ([]Funding, int, error) {
	var out []Funding
	for _, f := range m.rows {
		if f.Status != StatusPaid {
			continue
		}
		if q.SessionID != "" && f.SessionID != q.SessionID {
			continue
		}
		out = append(out, *f)
	}
	return out, len(out), nil
}

func (m *memoryRepo) SumPaid(context.Context) (int64, int, error) {
	var total int64
	var count int
	for _, f := range m.rows {
		if f.Status == StatusPaid {
			total += f.Amount
			count++
		}
	}
	return total, count, nil
}

func (m *memoryRepo) ExpireOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	var swept int64
	for _, f := range m.rows {
		if f.Status == StatusPending && f.CreatedAt.Before(cutoff) {
			f.Status = StatusExpired
			swept++
		}
	}
	return swept, nil
}

var _ Repository = (*memoryRepo)(nil)

type fakeProvider struct {
	sessions int
	verifies int
	fail     bool
	settled  map[string]bool
}

func (p *fakeProvider) CreateSession(_ context.Context, _ int64, _ string) (*CheckoutSession, error) {
	if p.fail {
		return nil, assert.AnError
	}
	p.sessions++
	id := "sess-" + strconv.Itoa(p.sessions)
	return &CheckoutSession{ID: id, CheckoutURL: "https://pay.example.com/" + id}, nil
}

func (p *fakeProvider) VerifySession(_ context.Context, sessionID string) (bool, error) {
	if p.fail {
		return false, assert.AnError
	}
	p.verifies++
	return p.settled[sessionID], nil
}

// settle simulates the donor completing payment on the gateway's hosted page.
func (p *fakeProvider) settle(sessionID string) {
	if p.settled == nil {
		p.settled = make(map[string]bool)
	}
	p.settled[sessionID] = true
}

func newTestService(t *testing.T) (*Service, *memoryRepo, *fakeProvider) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo := newMemoryRepo()
	provider := &fakeProvider{}
	svc := NewService(repo, provider, cache.NewListCache(client, time.Minute), slog.Default())
	return svc, repo, provider
}

func donor() *shared.Principal {
	return &shared.Principal{ID: "u1", Name: "Generous Donor", Email: "donor@example.com"}
}

func TestCheckoutRecordsPendingContribution(t *testing.T) {
	svc, repo, _ := newTestService(t)

	resp, err := svc.Checkout(context.Background(), donor(), 50)
	require.NoError(t, err)
	assert.NotEmpty(t, resp.CheckoutURL)

	stored, err := repo.FindBySession(context.Background(), resp.SessionID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, stored.Status)
	assert.Equal(t, int64(50), stored.Amount)
	assert.Equal(t, "donor@example.com", stored.DonorEmail)
}

func TestCheckoutRejectsAmountBelowOne(t *testing.T) {
	svc, _, provider := newTestService(t)

	_, err := svc.Checkout(context.Background(), donor(), 0)
	assert.ErrorIs(t, err, httpx.ErrValidation)
	assert.Zero(t, provider.sessions, "no gateway session is opened for an invalid amount")
}

func TestConfirmIsIdempotent(t *testing.T) {
	svc, repo, provider := newTestService(t)
	ctx := context.Background()

	resp, err := svc.Checkout(ctx, donor(), 50)
	require.NoError(t, err)
	provider.settle(resp.SessionID)

	first, err := svc.Confirm(ctx, resp.SessionID)
	require.NoError(t, err)
	assert.Equal(t, StatusPaid, first.Status)

	second, err := svc.Confirm(ctx, resp.SessionID)
	require.NoError(t, err)
	assert.Equal(t, StatusPaid, second.Status)
	assert.Equal(t, 1, repo.paidCalls, "a paid session must not be written again")
	assert.Equal(t, 1, provider.verifies, "an already paid session needs no second gateway check")
}

func TestConfirmRejectsUnsettledSession(t *testing.T) {
	svc, repo, provider := newTestService(t)
	ctx := context.Background()

	resp, err := svc.Checkout(ctx, donor(), 50)
	require.NoError(t, err)

	_, err = svc.Confirm(ctx, resp.SessionID)
	assert.ErrorIs(t, err, httpx.ErrConflict)
	assert.Equal(t, 1, provider.verifies, "the gateway must be consulted before trusting a session id")
	assert.Zero(t, repo.paidCalls)

	stored, err := repo.FindBySession(ctx, resp.SessionID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, stored.Status)
}

func TestConfirmFailsClosedWhenGatewayErrors(t *testing.T) {
	svc, repo, provider := newTestService(t)
	ctx := context.Background()

	resp, err := svc.Checkout(ctx, donor(), 50)
	require.NoError(t, err)
	provider.fail = true

	_, err = svc.Confirm(ctx, resp.SessionID)
	assert.Error(t, err)
	assert.Zero(t, repo.paidCalls)
}

func TestConfirmUnknownSession(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.Confirm(context.Background(), "sess-404")
	assert.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestListTotalsOnlyPaidContributions(t *testing.T) {
	svc, _, provider := newTestService(t)
	ctx := context.Background()

	paid, err := svc.Checkout(ctx, donor(), 100)
	require.NoError(t, err)
	provider.settle(paid.SessionID)
	_, err = svc.Confirm(ctx, paid.SessionID)
	require.NoError(t, err)

	_, err = svc.Checkout(ctx, donor(), 999)
	require.NoError(t, err)

	envelope, summary, err := svc.List(ctx, ListQuery{Page: 1, Limit: 6})
	require.NoError(t, err)
	assert.Equal(t, 1, envelope.Pagination.Total)
	assert.Equal(t, int64(100), summary.TotalRaised)
	assert.Equal(t, 1, summary.Contributions)
}

func TestExpireStaleSweepsOldPendingSessions(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	resp, err := svc.Checkout(ctx, donor(), 25)
	require.NoError(t, err)
	repo.rows[resp.SessionID].CreatedAt = time.Now().Add(-48 * time.Hour)

	swept, err := svc.ExpireStale(ctx, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(1), swept)

	_, err = svc.Confirm(ctx, resp.SessionID)
	assert.ErrorIs(t, err, httpx.ErrConflict)
}

func TestFormatAmountGroupsDigits(t *testing.T) {
	assert.Equal(t, "$1,500", FormatAmount(1500))
	assert.Equal(t, "$50", FormatAmount(50))
}
