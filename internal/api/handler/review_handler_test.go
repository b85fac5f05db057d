package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/knostijr/BE-coderr/internal/account"
	"github.com/knostijr/BE-coderr/internal/api/handler"
	"github.com/knostijr/BE-coderr/internal/permission"
	"github.com/knostijr/BE-coderr/internal/review"
)

func existingReview(businessUserID, reviewerID uuid.UUID) *review.Review {
	now := time.Date(2026, 8, 12, 15, 0, 0, 0, time.UTC)
	return &review.Review{
		ID:             uuid.New(),
		BusinessUserID: businessUserID,
		ReviewerID:     reviewerID,
		Rating:         4,
		Description:    "Fast and reliable",
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func TestReviewCreate_AsCustomer(t *testing.T) {
	t.Parallel()

	reviewerID := uuid.New()
	target := businessAccount(uuid.New())
	accountRepo := &mockAccountRepo{
		getByIDFn: func(_ context.Context, id uuid.UUID) (*account.User, error) {
			require.Equal(t, target.ID, id)
			return target, nil
		},
	}
	h := handler.NewReviewHandler(&mockReviewRepo{}, accountRepo)

	body := map[string]any{"business_user": target.ID.String(), "rating": 5, "description": "Great work"}
	req := newRequest(t, http.MethodPost, "/api/reviews", body, customer(reviewerID), "")
	rec := httptest.NewRecorder()
	h.Create(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	data, errBody := parseEnvelope(t, rec)
	require.Nil(t, errBody)
	assert.Equal(t, target.ID.String(), data["business_user"])
	assert.Equal(t, reviewerID.String(), data["reviewer"])
	assert.Equal(t, float64(5), data["rating"])
}

func TestReviewCreate_BusinessForbidden(t *testing.T) {
	t.Parallel()

	h := handler.NewReviewHandler(&mockReviewRepo{}, &mockAccountRepo{})

	body := map[string]any{"business_user": uuid.NewString(), "rating": 5}
	req := newRequest(t, http.MethodPost, "/api/reviews", body, business(uuid.New()), "")
	rec := httptest.NewRecorder()
	h.Create(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestReviewCreate_Duplicate(t *testing.T) {
	t.Parallel()

	target := businessAccount(uuid.New())
	accountRepo := &mockAccountRepo{
		getByIDFn: func(context.Context, uuid.UUID) (*account.User, error) { return target, nil },
	}
	repo := &mockReviewRepo{
		createFn: func(context.Context, *review.Review) error { return review.ErrDuplicateReview },
	}
	h := handler.NewReviewHandler(repo, accountRepo)

	body := map[string]any{"business_user": target.ID.String(), "rating": 3}
	req := newRequest(t, http.MethodPost, "/api/reviews", body, customer(uuid.New()), "")
	rec := httptest.NewRecorder()
	h.Create(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
	_, errBody := parseEnvelope(t, rec)
	require.NotNil(t, errBody)
	assert.Equal(t, "DUPLICATE_REVIEW", errBody.Code)
}

func TestReviewCreate_RatingOutOfRange(t *testing.T) {
	t.Parallel()

	h := handler.NewReviewHandler(&mockReviewRepo{}, &mockAccountRepo{})

	for _, rating := range []int{0, 6, -2} {
		body := map[string]any{"business_user": uuid.NewString(), "rating": rating}
		req := newRequest(t, http.MethodPost, "/api/reviews", body, customer(uuid.New()), "")
		rec := httptest.NewRecorder()
		h.Create(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, rating)
	}
}

func TestReviewCreate_TargetNotBusiness(t *testing.T) {
	t.Parallel()

	target := customerAccount(uuid.New())
	accountRepo := &mockAccountRepo{
		getByIDFn: func(context.Context, uuid.UUID) (*account.User, error) { return target, nil },
	}
	h := handler.NewReviewHandler(&mockReviewRepo{}, accountRepo)

	body := map[string]any{"business_user": target.ID.String(), "rating": 4}
	req := newRequest(t, http.MethodPost, "/api/reviews", body, customer(uuid.New()), "")
	rec := httptest.NewRecorder()
	h.Create(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReviewCreate_TargetNotFound(t *testing.T) {
	t.Parallel()

	h := handler.NewReviewHandler(&mockReviewRepo{}, &mockAccountRepo{})

	body := map[string]any{"business_user": uuid.NewString(), "rating": 4}
	req := newRequest(t, http.MethodPost, "/api/reviews", body, customer(uuid.New()), "")
	rec := httptest.NewRecorder()
	h.Create(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReviewList(t *testing.T) {
	t.Parallel()

	businessUserID := uuid.New()
	repo := &mockReviewRepo{
		listFn: func(_ context.Context, filter review.ListFilter) ([]review.Review, error) {
			require.NotNil(t, filter.BusinessUserID)
			assert.Equal(t, businessUserID, *filter.BusinessUserID)
			assert.Equal(t, "-rating", filter.Ordering)
			return []review.Review{*existingReview(businessUserID, uuid.New())}, nil
		},
	}
	h := handler.NewReviewHandler(repo, &mockAccountRepo{})

	target := "/api/reviews?business_user_id=" + businessUserID.String() + "&ordering=-rating"
	req := newRequest(t, http.MethodGet, target, nil, customer(uuid.New()), "")
	rec := httptest.NewRecorder()
	h.List(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	items := parseEnvelopeList(t, rec)
	require.Len(t, items, 1)
	assert.Equal(t, businessUserID.String(), items[0]["business_user"])
}

func TestReviewList_AnonymousUnauthorized(t *testing.T) {
	t.Parallel()

	h := handler.NewReviewHandler(&mockReviewRepo{}, &mockAccountRepo{})

	req := newRequest(t, http.MethodGet, "/api/reviews", nil, permission.Anonymous(), "")
	rec := httptest.NewRecorder()
	h.List(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestReviewList_BadOrdering(t *testing.T) {
	t.Parallel()

	h := handler.NewReviewHandler(&mockReviewRepo{}, &mockAccountRepo{})

	req := newRequest(t, http.MethodGet, "/api/reviews?ordering=created_at", nil, customer(uuid.New()), "")
	rec := httptest.NewRecorder()
	h.List(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReviewUpdate_Reviewer(t *testing.T) {
	t.Parallel()

	reviewerID := uuid.New()
	rv := existingReview(uuid.New(), reviewerID)
	repo := &mockReviewRepo{
		getByID: func(context.Context, uuid.UUID) (*review.Review, error) { return rv, nil },
		updateFn: func(_ context.Context, id uuid.UUID, patch review.Patch) (*review.Review, error) {
			require.NotNil(t, patch.Rating)
			updated := *rv
			updated.Rating = *patch.Rating
			return &updated, nil
		},
	}
	h := handler.NewReviewHandler(repo, &mockAccountRepo{})

	body := map[string]any{"rating": 2}
	req := newRequest(t, http.MethodPatch, "/api/reviews/"+rv.ID.String(), body, customer(reviewerID), rv.ID.String())
	rec := httptest.NewRecorder()
	h.Update(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	data, _ := parseEnvelope(t, rec)
	assert.Equal(t, float64(2), data["rating"])
}

func TestReviewUpdate_NonReviewerForbidden(t *testing.T) {
	t.Parallel()

	rv := existingReview(uuid.New(), uuid.New())
	repo := &mockReviewRepo{
		getByID: func(context.Context, uuid.UUID) (*review.Review, error) { return rv, nil },
		updateFn: func(context.Context, uuid.UUID, review.Patch) (*review.Review, error) {
			t.Fatal("update should not be reached")
			return nil, nil
		},
	}
	h := handler.NewReviewHandler(repo, &mockAccountRepo{})

	body := map[string]any{"rating": 1}
	req := newRequest(t, http.MethodPatch, "/api/reviews/"+rv.ID.String(), body, customer(uuid.New()), rv.ID.String())
	rec := httptest.NewRecorder()
	h.Update(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestReviewUpdate_RatingValidated(t *testing.T) {
	t.Parallel()

	reviewerID := uuid.New()
	rv := existingReview(uuid.New(), reviewerID)
	repo := &mockReviewRepo{
		getByID: func(context.Context, uuid.UUID) (*review.Review, error) { return rv, nil },
	}
	h := handler.NewReviewHandler(repo, &mockAccountRepo{})

	body := map[string]any{"rating": 9}
	req := newRequest(t, http.MethodPatch, "/api/reviews/"+rv.ID.String(), body, customer(reviewerID), rv.ID.String())
	rec := httptest.NewRecorder()
	h.Update(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReviewDelete_Reviewer(t *testing.T) {
	t.Parallel()

	reviewerID := uuid.New()
	rv := existingReview(uuid.New(), reviewerID)
	deleted := false
	repo := &mockReviewRepo{
		getByID: func(context.Context, uuid.UUID) (*review.Review, error) { return rv, nil },
		deleteFn: func(_ context.Context, id uuid.UUID) error {
			deleted = true
			assert.Equal(t, rv.ID, id)
			return nil
		},
	}
	h := handler.NewReviewHandler(repo, &mockAccountRepo{})

	req := newRequest(t, http.MethodDelete, "/api/reviews/"+rv.ID.String(), nil, customer(reviewerID), rv.ID.String())
	rec := httptest.NewRecorder()
	h.Delete(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.True(t, deleted)
}

func TestReviewDelete_NonReviewerForbidden(t *testing.T) {
	t.Parallel()

	rv := existingReview(uuid.New(), uuid.New())
	repo := &mockReviewRepo{
		getByID: func(context.Context, uuid.UUID) (*review.Review, error) { return rv, nil },
		deleteFn: func(context.Context, uuid.UUID) error {
			t.Fatal("delete should not be reached")
			return nil
		},
	}
	h := handler.NewReviewHandler(repo, &mockAccountRepo{})

	req := newRequest(t, http.MethodDelete, "/api/reviews/"+rv.ID.String(), nil, customer(uuid.New()), rv.ID.String())
	rec := httptest.NewRecorder()
	h.Delete(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestReviewDelete_NotFound(t *testing.T) {
	t.Parallel()

	h := handler.NewReviewHandler(&mockReviewRepo{}, &mockAccountRepo{})

	id := uuid.NewString()
	req := newRequest(t, http.MethodDelete, "/api/reviews/"+id, nil, customer(uuid.New()), id)
	rec := httptest.NewRecorder()
	h.Delete(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
