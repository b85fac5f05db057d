package middleware_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/knostijr/BE-coderr/internal/api/middleware"
	"github.com/knostijr/BE-coderr/internal/permission"
)

type fakeParser struct {
	parseTokenFunc func(token string) (permission.Principal, error)
}

func (f *fakeParser) ParseToken(token string) (permission.Principal, error) {
	return f.parseTokenFunc(token)
}

func TestAuthenticate_ValidToken(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	parser := &fakeParser{
		parseTokenFunc: func(token string) (permission.Principal, error) {
			assert.Equal(t, "good-token", token)
			return permission.Principal{ID: userID, Role: permission.RoleBusiness, Authenticated: true}, nil
		},
	}

	var got permission.Principal
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = middleware.GetPrincipal(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/offers", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	rec := httptest.NewRecorder()

	middleware.Authenticate(parser)(next).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, userID, got.ID)
	assert.Equal(t, permission.RoleBusiness, got.Role)
	assert.True(t, got.Authenticated)
}

func TestAuthenticate_NoTokenContinuesAnonymous(t *testing.T) {
	t.Parallel()

	parser := &fakeParser{
		parseTokenFunc: func(token string) (permission.Principal, error) {
			t.Fatal("parser should not be called without a token")
			return permission.Principal{}, nil
		},
	}

	var got permission.Principal
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = middleware.GetPrincipal(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/offers", nil)
	rec := httptest.NewRecorder()

	middleware.Authenticate(parser)(next).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, got.Authenticated)
}

func TestAuthenticate_InvalidToken(t *testing.T) {
	t.Parallel()

	parser := &fakeParser{
		parseTokenFunc: func(token string) (permission.Principal, error) {
			return permission.Principal{}, errors.New("signature is invalid")
		},
	}

	nextCalled := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nextCalled = true
	})

	req := httptest.NewRequest(http.MethodGet, "/api/offers", nil)
	req.Header.Set("Authorization", "Bearer bad-token")
	rec := httptest.NewRecorder()

	middleware.Authenticate(parser)(next).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, nextCalled)
}

func TestAuthenticate_IgnoresNonBearerHeader(t *testing.T) {
	t.Parallel()

	parser := &fakeParser{
		parseTokenFunc: func(token string) (permission.Principal, error) {
			t.Fatal("parser should not be called for non-bearer auth")
			return permission.Principal{}, nil
		},
	}

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/offers", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	rec := httptest.NewRecorder()

	middleware.Authenticate(parser)(next).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireAuth_RejectsAnonymous(t *testing.T) {
	t.Parallel()

	nextCalled := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nextCalled = true
	})

	req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
	rec := httptest.NewRecorder()

	middleware.RequireAuth(next).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, nextCalled)
}

func TestRequireAuth_AllowsAuthenticated(t *testing.T) {
	t.Parallel()

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
	p := permission.Principal{ID: uuid.New(), Role: permission.RoleCustomer, Authenticated: true}
	req = req.WithContext(middleware.WithPrincipal(req.Context(), p))
	rec := httptest.NewRecorder()

	middleware.RequireAuth(next).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGetPrincipal_DefaultsToAnonymous(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	p := middleware.GetPrincipal(req.Context())
	assert.False(t, p.Authenticated)
	assert.Equal(t, uuid.Nil, p.ID)
}
