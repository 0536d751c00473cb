package users

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bloodlink/bloodlink/internal/shared"
)

func newTestHandler(t *testing.T) (*Handler, *Service) {
	t.Helper()
	svc, _, _ := newTestService(t)
	return NewHandler(slog.Default(), svc), svc
}

func profileRouter(h *Handler) chi.Router {
	r := chi.NewRouter()
	h.MountProfileRoutes(r)
	return r
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any, as *shared.Principal) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if as != nil {
		req = req.WithContext(shared.ContextWithPrincipal(req.Context(), as))
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func createAccount(t *testing.T, svc *Service, name, email, role string) *User {
	t.Helper()
	created, err := svc.Create(context.Background(), CreateInput{
		Name:     name,
		Email:    email,
		Password: "secret123",
		Role:     role,
	})
	require.NoError(t, err)
	return created
}

func TestProfileReadableBySelf(t *testing.T) {
	h, svc := newTestHandler(t)
	router := profileRouter(h)
	donor := createAccount(t, svc, "Donor", "donor@example.com", "")

	self := &shared.Principal{ID: donor.ID, Email: donor.Email}
	rec := doJSON(t, router, http.MethodGet, "/users/"+donor.ID, nil, self)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var got User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, donor.Email, got.Email)
}

func TestProfileHiddenFromOtherAccounts(t *testing.T) {
	h, svc := newTestHandler(t)
	router := profileRouter(h)
	donor := createAccount(t, svc, "Donor", "donor@example.com", "")
	other := createAccount(t, svc, "Other", "other@example.com", "")

	stranger := &shared.Principal{ID: other.ID, Email: other.Email}
	rec := doJSON(t, router, http.MethodGet, "/users/"+donor.ID, nil, stranger)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doJSON(t, router, http.MethodPut, "/users/"+donor.ID,
		ProfileInput{Name: "Hijacked"}, stranger)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	stored, err := svc.Get(context.Background(), donor.ID)
	require.NoError(t, err)
	assert.Equal(t, "Donor", stored.Name)
}

func TestProfileEditableBySelfAndAdmin(t *testing.T) {
	h, svc := newTestHandler(t)
	router := profileRouter(h)
	donor := createAccount(t, svc, "Donor", "donor@example.com", "")
	admin := createAccount(t, svc, "Admin", "admin@example.com", "admin")

	self := &shared.Principal{ID: donor.ID, Email: donor.Email}
	rec := doJSON(t, router, http.MethodPut, "/users/"+donor.ID,
		ProfileInput{Name: "Renamed Donor", BloodGroup: "O+"}, self)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var updated User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, "Renamed Donor", updated.Name)

	asAdmin := &shared.Principal{ID: admin.ID, Email: admin.Email}
	rec = doJSON(t, router, http.MethodGet, "/users/"+donor.ID, nil, asAdmin)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPut, "/users/"+donor.ID,
		ProfileInput{Name: "Admin Edit", BloodGroup: "O+"}, asAdmin)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestProfileRequiresAuthentication(t *testing.T) {
	h, svc := newTestHandler(t)
	router := profileRouter(h)
	donor := createAccount(t, svc, "Donor", "donor@example.com", "")

	rec := doJSON(t, router, http.MethodGet, "/users/"+donor.ID, nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
