package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/knostijr/BE-coderr/internal/account"
	"github.com/knostijr/BE-coderr/internal/api/middleware"
	"github.com/knostijr/BE-coderr/internal/api/response"
	"github.com/knostijr/BE-coderr/internal/offer"
	"github.com/knostijr/BE-coderr/internal/order"
	"github.com/knostijr/BE-coderr/internal/permission"
	"github.com/knostijr/BE-coderr/internal/review"
)

// newRequest builds a request with an optional JSON body, a chi route
// context carrying {id}, and the given principal in context. A zero
// principal means anonymous.
func newRequest(t *testing.T, method, target string, body any, p permission.Principal, idParam string) *http.Request {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)

	rctx := chi.NewRouteContext()
	if idParam != "" {
		rctx.URLParams.Add("id", idParam)
	}
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
	ctx = middleware.WithPrincipal(ctx, p)

	return req.WithContext(ctx)
}

func customer(id uuid.UUID) permission.Principal {
	return permission.Principal{ID: id, Role: permission.RoleCustomer, Authenticated: true}
}

func business(id uuid.UUID) permission.Principal {
	return permission.Principal{ID: id, Role: permission.RoleBusiness, Authenticated: true}
}

func staff(id uuid.UUID) permission.Principal {
	return permission.Principal{ID: id, Role: permission.RoleStaff, Authenticated: true}
}

func businessAccount(id uuid.UUID) *account.User {
	now := time.Date(2026, 7, 1, 8, 0, 0, 0, time.UTC)
	return &account.User{
		ID: id, Username: "studio", Email: "studio@example.com",
		Role: permission.RoleBusiness, CreatedAt: now, UpdatedAt: now,
	}
}

func customerAccount(id uuid.UUID) *account.User {
	now := time.Date(2026, 7, 1, 8, 0, 0, 0, time.UTC)
	return &account.User{
		ID: id, Username: "anna", Email: "anna@example.com",
		Role: permission.RoleCustomer, CreatedAt: now, UpdatedAt: now,
	}
}

// parseEnvelope decodes the standard response wrapper and returns its data
// and error sections.
func parseEnvelope(t *testing.T, rec *httptest.ResponseRecorder) (map[string]any, *response.Error) {
	t.Helper()

	var env struct {
		Data  json.RawMessage `json:"data"`
		Error *response.Error `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))

	var data map[string]any
	if len(env.Data) > 0 && string(env.Data) != "null" {
		if env.Data[0] == '{' {
			require.NoError(t, json.Unmarshal(env.Data, &data))
		}
	}
	return data, env.Error
}

// parseEnvelopeList decodes a response whose data section is an array.
func parseEnvelopeList(t *testing.T, rec *httptest.ResponseRecorder) []map[string]any {
	t.Helper()

	var env struct {
		Data []map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env.Data
}

type mockOfferRepo struct {
	createFn        func(ctx context.Context, o *offer.Offer) error
	getByIDFn       func(ctx context.Context, id uuid.UUID) (*offer.Offer, error)
	listFn          func(ctx context.Context, filter offer.ListFilter) (*offer.ListResult, error)
	updateFn        func(ctx context.Context, id uuid.UUID, patch offer.Patch) (*offer.Offer, error)
	deleteFn        func(ctx context.Context, id uuid.UUID) error
	getDetailByIDFn func(ctx context.Context, id uuid.UUID) (*offer.Detail, error)
}

func (m *mockOfferRepo) Create(ctx context.Context, o *offer.Offer) error {
	if m.createFn != nil {
		return m.createFn(ctx, o)
	}
	o.ID = uuid.New()
	o.CreatedAt = time.Now().UTC()
	o.UpdatedAt = o.CreatedAt
	for i := range o.Details {
		o.Details[i].ID = uuid.New()
		o.Details[i].OfferID = o.ID
	}
	return nil
}

func (m *mockOfferRepo) GetByID(ctx context.Context, id uuid.UUID) (*offer.Offer, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, offer.ErrNotFound
}

func (m *mockOfferRepo) List(ctx context.Context, filter offer.ListFilter) (*offer.ListResult, error) {
	if m.listFn != nil {
		return m.listFn(ctx, filter)
	}
	return &offer.ListResult{Offers: []offer.Offer{}, Page: filter.Page, Limit: filter.Limit}, nil
}

func (m *mockOfferRepo) Update(ctx context.Context, id uuid.UUID, patch offer.Patch) (*offer.Offer, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, patch)
	}
	return nil, offer.ErrNotFound
}

func (m *mockOfferRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockOfferRepo) GetDetailByID(ctx context.Context, id uuid.UUID) (*offer.Detail, error) {
	if m.getDetailByIDFn != nil {
		return m.getDetailByIDFn(ctx, id)
	}
	return nil, offer.ErrDetailNotFound
}

func (m *mockOfferRepo) CountAll(context.Context) (int, error) {
	return 0, nil
}

type mockOrderRepo struct {
	createFn            func(ctx context.Context, o *order.Order) error
	getByIDFn           func(ctx context.Context, id uuid.UUID) (*order.Order, error)
	listByParticipantFn func(ctx context.Context, userID uuid.UUID) ([]order.Order, error)
	updateStatusFn      func(ctx context.Context, id uuid.UUID, status order.Status) (*order.Order, error)
	deleteFn            func(ctx context.Context, id uuid.UUID) error
	countByStatusFn     func(ctx context.Context, businessUserID uuid.UUID, status order.Status) (int, error)
}

func (m *mockOrderRepo) Create(ctx context.Context, o *order.Order) error {
	if m.createFn != nil {
		return m.createFn(ctx, o)
	}
	o.ID = uuid.New()
	o.CreatedAt = time.Now().UTC()
	o.UpdatedAt = o.CreatedAt
	return nil
}

func (m *mockOrderRepo) GetByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, order.ErrNotFound
}

func (m *mockOrderRepo) ListByParticipant(ctx context.Context, userID uuid.UUID) ([]order.Order, error) {
	if m.listByParticipantFn != nil {
		return m.listByParticipantFn(ctx, userID)
	}
	return []order.Order{}, nil
}

func (m *mockOrderRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status order.Status) (*order.Order, error) {
	if m.updateStatusFn != nil {
		return m.updateStatusFn(ctx, id, status)
	}
	return nil, order.ErrNotFound
}

func (m *mockOrderRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockOrderRepo) CountByStatus(ctx context.Context, businessUserID uuid.UUID, status order.Status) (int, error) {
	if m.countByStatusFn != nil {
		return m.countByStatusFn(ctx, businessUserID, status)
	}
	return 0, nil
}

type mockReviewRepo struct {
	createFn func(ctx context.Context, rv *review.Review) error
	getByID  func(ctx context.Context, id uuid.UUID) (*review.Review, error)
	listFn   func(ctx context.Context, filter review.ListFilter) ([]review.Review, error)
	updateFn func(ctx context.Context, id uuid.UUID, patch review.Patch) (*review.Review, error)
	deleteFn func(ctx context.Context, id uuid.UUID) error
}

func (m *mockReviewRepo) Create(ctx context.Context, rv *review.Review) error {
	if m.createFn != nil {
		return m.createFn(ctx, rv)
	}
	rv.ID = uuid.New()
	rv.CreatedAt = time.Now().UTC()
	rv.UpdatedAt = rv.CreatedAt
	return nil
}

func (m *mockReviewRepo) GetByID(ctx context.Context, id uuid.UUID) (*review.Review, error) {
	if m.getByID != nil {
		return m.getByID(ctx, id)
	}
	return nil, review.ErrNotFound
}

func (m *mockReviewRepo) List(ctx context.Context, filter review.ListFilter) ([]review.Review, error) {
	if m.listFn != nil {
		return m.listFn(ctx, filter)
	}
	return []review.Review{}, nil
}

func (m *mockReviewRepo) Update(ctx context.Context, id uuid.UUID, patch review.Patch) (*review.Review, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, patch)
	}
	return nil, review.ErrNotFound
}

func (m *mockReviewRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockReviewRepo) CountAll(context.Context) (int, error) {
	return 0, nil
}

func (m *mockReviewRepo) AverageRating(context.Context) (float64, int, error) {
	return 0, 0, nil
}

type mockAccountRepo struct {
	createFn        func(ctx context.Context, u *account.User) error
	getByIDFn       func(ctx context.Context, id uuid.UUID) (*account.User, error)
	getByUsernameFn func(ctx context.Context, username string) (*account.User, error)
	listByRoleFn    func(ctx context.Context, role permission.Role) ([]account.User, error)
	updateProfileFn func(ctx context.Context, id uuid.UUID, patch account.ProfilePatch) (*account.User, error)
}

func (m *mockAccountRepo) Create(ctx context.Context, u *account.User) error {
	if m.createFn != nil {
		return m.createFn(ctx, u)
	}
	u.ID = uuid.New()
	u.CreatedAt = time.Now().UTC()
	u.UpdatedAt = u.CreatedAt
	return nil
}

func (m *mockAccountRepo) GetByID(ctx context.Context, id uuid.UUID) (*account.User, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, account.ErrUserNotFound
}

func (m *mockAccountRepo) GetByUsername(ctx context.Context, username string) (*account.User, error) {
	if m.getByUsernameFn != nil {
		return m.getByUsernameFn(ctx, username)
	}
	return nil, account.ErrUserNotFound
}

func (m *mockAccountRepo) ListByRole(ctx context.Context, role permission.Role) ([]account.User, error) {
	if m.listByRoleFn != nil {
		return m.listByRoleFn(ctx, role)
	}
	return []account.User{}, nil
}

func (m *mockAccountRepo) CountByRole(context.Context, permission.Role) (int, error) {
	return 0, nil
}

func (m *mockAccountRepo) UpdateProfile(ctx context.Context, id uuid.UUID, patch account.ProfilePatch) (*account.User, error) {
	if m.updateProfileFn != nil {
		return m.updateProfileFn(ctx, id, patch)
	}
	return nil, account.ErrUserNotFound
}
