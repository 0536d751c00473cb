package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bloodlink/bloodlink/internal/shared"
)

func newTestTokenManager(t *testing.T) *TokenManager {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewTokenManager("test-secret", "bloodlink-test", time.Hour, client)
}

func testAccount() *Account {
	return &Account{
		ID:     "acc-1",
		Name:   "Test User",
		Email:  "user@example.com",
		Role:   shared.RoleDonor,
		Status: shared.StatusActive,
	}
}

func TestIssueAndParseRoundTrip(t *testing.T) {
	tm := newTestTokenManager(t)

	signed, claims, err := tm.Issue(testAccount())
	require.NoError(t, err)
	require.NotEmpty(t, signed)
	assert.NotEmpty(t, claims.ID)

	parsed, err := tm.Parse(context.Background(), signed)
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", parsed.Email)
	assert.Equal(t, "acc-1", parsed.UserID)
	assert.Equal(t, claims.ID, parsed.ID)
}

func TestParseRejectsTampering(t *testing.T) {
	tm := newTestTokenManager(t)

	signed, _, err := tm.Issue(testAccount())
	require.NoError(t, err)

	_, err = tm.Parse(context.Background(), signed+"x")
	assert.Error(t, err)

	other := newTestTokenManager(t)
	foreign, _, err := other.Issue(testAccount())
	require.NoError(t, err)
	_, err = tm.Parse(context.Background(), foreign)
	assert.Error(t, err, "a token signed with a different secret must not verify")
}

func TestRevokedTokenIsRejected(t *testing.T) {
	tm := newTestTokenManager(t)
	ctx := context.Background()

	signed, claims, err := tm.Issue(testAccount())
	require.NoError(t, err)

	require.NoError(t, tm.Revoke(ctx, claims))

	_, err = tm.Parse(ctx, signed)
	assert.ErrorIs(t, err, ErrTokenRevoked)
}
