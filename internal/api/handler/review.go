package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/knostijr/BE-coderr/internal/account"
	"github.com/knostijr/BE-coderr/internal/api/middleware"
	"github.com/knostijr/BE-coderr/internal/api/response"
	"github.com/knostijr/BE-coderr/internal/api/validation"
	"github.com/knostijr/BE-coderr/internal/permission"
	"github.com/knostijr/BE-coderr/internal/review"
)

// reviewResponse is the API representation of a review.
type reviewResponse struct {
	ID           string `json:"id"`
	BusinessUser string `json:"business_user"`
	Reviewer     string `json:"reviewer"`
	Rating       int    `json:"rating"`
	Description  string `json:"description"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
}

func toReviewResponse(rv *review.Review) reviewResponse {
	return reviewResponse{
		ID:           rv.ID.String(),
		BusinessUser: rv.BusinessUserID.String(),
		Reviewer:     rv.ReviewerID.String(),
		Rating:       rv.Rating,
		Description:  rv.Description,
		CreatedAt:    rv.CreatedAt.UTC().Format(timeFormat),
		UpdatedAt:    rv.UpdatedAt.UTC().Format(timeFormat),
	}
}

// createReviewRequest is the request body for POST /reviews. The business
// user target is create-only.
type createReviewRequest struct {
	BusinessUser string `json:"business_user"`
	Rating       int    `json:"rating"`
	Description  string `json:"description"`
}

// updateReviewRequest is the request body for PATCH /reviews/{id}.
type updateReviewRequest struct {
	Rating      *int    `json:"rating,omitempty"`
	Description *string `json:"description,omitempty"`
}

// ReviewHandler handles review endpoints.
type ReviewHandler struct {
	repo        review.Repository
	accountRepo account.Repository
}

// NewReviewHandler creates a new ReviewHandler.
func NewReviewHandler(repo review.Repository, accountRepo account.Repository) *ReviewHandler {
	return &ReviewHandler{repo: repo, accountRepo: accountRepo}
}

// List handles GET /reviews.
func (h *ReviewHandler) List(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	p := middleware.GetPrincipal(r.Context())
	if d := permission.Authorize(p, permission.ActionRead, permission.Resource{Kind: permission.KindReview}); !d.Allowed {
		denied(w, d, requestID)
		return
	}

	filter, fieldErrors := parseReviewFilter(r)
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid query parameters", fieldErrors, requestID)
		return
	}

	reviews, err := h.repo.List(r.Context(), filter)
	if err != nil {
		slog.Error("failed to list reviews", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list reviews", requestID)
		return
	}

	out := make([]reviewResponse, 0, len(reviews))
	for i := range reviews {
		out = append(out, toReviewResponse(&reviews[i]))
	}

	response.Success(w, http.StatusOK, out, requestID)
}

// Create handles POST /reviews. The store's unique constraint settles
// concurrent duplicates: exactly one of two simultaneous attempts for the
// same (reviewer, business user) pair succeeds.
func (h *ReviewHandler) Create(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	p := middleware.GetPrincipal(r.Context())
	if d := permission.Authorize(p, permission.ActionCreate, permission.Resource{Kind: permission.KindReview}); !d.Allowed {
		denied(w, d, requestID)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req createReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	if fieldErrors := validation.ValidateRating(req.Rating); len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	businessUserID, err := uuid.Parse(req.BusinessUser)
	if err != nil {
		response.Err(w, http.StatusBadRequest, "VALIDATION_ERROR", "business_user must be a valid ID", requestID)
		return
	}

	target, err := h.accountRepo.GetByID(r.Context(), businessUserID)
	if err != nil {
		if errors.Is(err, account.ErrUserNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Business user not found", requestID)
			return
		}
		slog.Error("failed to resolve business user", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create review", requestID)
		return
	}
	if target.Role != permission.RoleBusiness {
		response.Err(w, http.StatusBadRequest, "VALIDATION_ERROR", "Reviews can only target business users", requestID)
		return
	}

	rv := &review.Review{
		BusinessUserID: businessUserID,
		ReviewerID:     p.ID,
		Rating:         req.Rating,
		Description:    req.Description,
	}

	if err := h.repo.Create(r.Context(), rv); err != nil {
		if errors.Is(err, review.ErrDuplicateReview) {
			response.Err(w, http.StatusConflict, "DUPLICATE_REVIEW", "You have already reviewed this business user", requestID)
			return
		}
		slog.Error("failed to create review", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create review", requestID)
		return
	}

	response.Success(w, http.StatusCreated, toReviewResponse(rv), requestID)
}

// Update handles PATCH /reviews/{id}. Only rating and description may
// change; the (reviewer, business user) pair stays fixed, so uniqueness
// needs no re-check.
func (h *ReviewHandler) Update(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	id, ok := parseIDParam(w, r, requestID)
	if !ok {
		return
	}

	rv, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, review.ErrNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Review not found", requestID)
			return
		}
		slog.Error("failed to fetch review", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update review", requestID)
		return
	}

	p := middleware.GetPrincipal(r.Context())
	if d := permission.Authorize(p, permission.ActionUpdate, permission.Resource{Kind: permission.KindReview, ReviewerID: rv.ReviewerID}); !d.Allowed {
		denied(w, d, requestID)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req updateReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	if req.Rating != nil {
		if fieldErrors := validation.ValidateRating(*req.Rating); len(fieldErrors) > 0 {
			response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
			return
		}
	}

	updated, err := h.repo.Update(r.Context(), id, review.Patch{
		Rating:      req.Rating,
		Description: req.Description,
	})
	if err != nil {
		if errors.Is(err, review.ErrNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Review not found", requestID)
			return
		}
		slog.Error("failed to update review", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update review", requestID)
		return
	}

	response.Success(w, http.StatusOK, toReviewResponse(updated), requestID)
}

// Delete handles DELETE /reviews/{id}.
func (h *ReviewHandler) Delete(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	id, ok := parseIDParam(w, r, requestID)
	if !ok {
		return
	}

	rv, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, review.ErrNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Review not found", requestID)
			return
		}
		slog.Error("failed to fetch review", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete review", requestID)
		return
	}

	p := middleware.GetPrincipal(r.Context())
	if d := permission.Authorize(p, permission.ActionDelete, permission.Resource{Kind: permission.KindReview, ReviewerID: rv.ReviewerID}); !d.Allowed {
		denied(w, d, requestID)
		return
	}

	if err := h.repo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, review.ErrNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Review not found", requestID)
			return
		}
		slog.Error("failed to delete review", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete review", requestID)
		return
	}

	response.NoContent(w)
}

// parseReviewFilter extracts list filters from query parameters.
func parseReviewFilter(r *http.Request) (review.ListFilter, []validation.FieldError) {
	var errs []validation.FieldError
	var filter review.ListFilter

	q := r.URL.Query()

	if v := q.Get("business_user_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			errs = append(errs, validation.FieldError{Field: "business_user_id", Message: "business_user_id must be a valid ID"})
		} else {
			filter.BusinessUserID = &id
		}
	}
	if v := q.Get("reviewer_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			errs = append(errs, validation.FieldError{Field: "reviewer_id", Message: "reviewer_id must be a valid ID"})
		} else {
			filter.ReviewerID = &id
		}
	}
	switch ordering := q.Get("ordering"); ordering {
	case "", "updated_at", "-updated_at", "rating", "-rating":
		filter.Ordering = ordering
	default:
		errs = append(errs, validation.FieldError{Field: "ordering", Message: "ordering must be one of updated_at, -updated_at, rating, -rating"})
	}

	return filter, errs
}
