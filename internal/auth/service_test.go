package auth

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

	"github.com/bloodlink/bloodlink/internal/shared"
)

type memoryRepo struct {
	accounts map[string]*Account
	nextID   int
	finds    int
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{accounts: make(map[string]*Account), nextID: 1}
}

func (m *memoryRepo) FindByEmail(_ context.Context, email string) (*Account, error) {
	m.finds++
	account, ok := m.accounts[strings.ToLower(email)]
	if !ok {
		return nil, shared.ErrNotFound
	}
	out := *account
	return &out, nil
}

func (m *memoryRepo) Create(_ context.Context, account Account) (*Account, error) {
	key := strings.ToLower(account.Email)
	if _, ok := m.accounts[key]; ok {
		return nil, shared.ErrEmailTaken
	}
	account.ID = "acc-" + strconv.Itoa(m.nextID)
	m.nextID++
	account.Email = key
	account.CreatedAt = time.Now()
	account.UpdatedAt = account.CreatedAt
	stored := account
	m.accounts[key] = &stored
	out := stored
	return &out, nil
}

func (m *memoryRepo) UpdatePassword(_ context.Context, email, passwordHash string) error {
	account, ok := m.accounts[strings.ToLower(email)]
	if !ok {
		return shared.ErrNotFound
	}
	account.PasswordHash = passwordHash
	return nil
}

var _ Repository = (*memoryRepo)(nil)

type recordingMail struct {
	sent []string
}

func (r *recordingMail) EnqueueEmail(_ context.Context, to, subject, _ string) error {
	r.sent = append(r.sent, to+":"+subject)
	return nil
}

func newTestEnv(t *testing.T) (*Service, *memoryRepo, *recordingMail) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo := newMemoryRepo()
	tokens := NewTokenManager("test-secret", "bloodlink-test", time.Hour, client)
	mail := &recordingMail{}
	return NewService(repo, tokens, client, mail, slog.Default()), repo, mail
}

func TestRegisterIssuesDonorCredential(t *testing.T) {
	svc, repo, mail := newTestEnv(t)

	credential, err := svc.Register(context.Background(), RegisterInput{
		Name:     "New Donor",
		Email:    "Donor@Example.com",
		Password: "hunter2hunter2",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, credential.AccessToken)
	assert.Equal(t, shared.RoleDonor, credential.User.Role)

	stored, err := repo.FindByEmail(context.Background(), "donor@example.com")
	require.NoError(t, err)
	assert.Equal(t, shared.StatusActive, stored.Status)
	assert.NotEqual(t, "hunter2hunter2", stored.PasswordHash)
	assert.Len(t, mail.sent, 1)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	svc, _, _ := newTestEnv(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Name: "Donor", Email: "donor@example.com", Password: "hunter2hunter2"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, "donor@example.com", "wrong-password")
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)

	_, err = svc.Login(ctx, "ghost@example.com", "hunter2hunter2")
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)

	credential, err := svc.Login(ctx, "donor@example.com", "hunter2hunter2")
	require.NoError(t, err)
	assert.Equal(t, "donor@example.com", credential.User.Email)
}

func TestLoginRejectsBlockedAccount(t *testing.T) {
	svc, repo, _ := newTestEnv(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Name: "Donor", Email: "donor@example.com", Password: "hunter2hunter2"})
	require.NoError(t, err)
	repo.accounts["donor@example.com"].Status = shared.StatusBlocked

	_, err = svc.Login(ctx, "donor@example.com", "hunter2hunter2")
	assert.ErrorIs(t, err, shared.ErrAccountBlocked)
}

func TestResolveCachesPerEmail(t *testing.T) {
	svc, repo, _ := newTestEnv(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Name: "Donor", Email: "donor@example.com", Password: "hunter2hunter2"})
	require.NoError(t, err)
	repo.finds = 0

	role, status, err := svc.Resolve(ctx, "donor@example.com")
	require.NoError(t, err)
	assert.Equal(t, shared.RoleDonor, role)
	assert.Equal(t, shared.StatusActive, status)
	assert.Equal(t, 1, repo.finds)

	_, _, err = svc.Resolve(ctx, "Donor@Example.com")
	require.NoError(t, err)
	assert.Equal(t, 1, repo.finds, "second resolution is served from the cache")
}

func TestResolveNeverGrantsOnFailure(t *testing.T) {
	svc, _, _ := newTestEnv(t)

	role, _, err := svc.Resolve(context.Background(), "ghost@example.com")
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.Equal(t, shared.RoleUnresolved, role)

	role, _, err = svc.Resolve(context.Background(), "   ")
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.Equal(t, shared.RoleUnresolved, role)
}

func TestInvalidateRoleForcesFreshLookup(t *testing.T) {
	svc, repo, _ := newTestEnv(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Name: "Donor", Email: "donor@example.com", Password: "hunter2hunter2"})
	require.NoError(t, err)

	role, _, err := svc.Resolve(ctx, "donor@example.com")
	require.NoError(t, err)
	require.Equal(t, shared.RoleDonor, role)

	repo.accounts["donor@example.com"].Role = shared.RoleVolunteer
	require.NoError(t, svc.InvalidateRole(ctx, "donor@example.com"))

	role, _, err = svc.Resolve(ctx, "donor@example.com")
	require.NoError(t, err)
	assert.Equal(t, shared.RoleVolunteer, role)
}

func TestPasswordResetFlow(t *testing.T) {
	svc, _, mail := newTestEnv(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Name: "Donor", Email: "donor@example.com", Password: "hunter2hunter2"})
	require.NoError(t, err)

	require.NoError(t, svc.RequestPasswordReset(ctx, "donor@example.com"))
	require.Len(t, mail.sent, 2, "welcome mail plus reset mail")

	// Unknown emails do not reveal whether an account exists.
	require.NoError(t, svc.RequestPasswordReset(ctx, "ghost@example.com"))
	assert.Len(t, mail.sent, 2)

	err = svc.ConfirmPasswordReset(ctx, "not-a-token", "new-password-123")
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
}
