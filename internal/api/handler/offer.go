package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/knostijr/BE-coderr/internal/api/middleware"
	"github.com/knostijr/BE-coderr/internal/api/response"
	"github.com/knostijr/BE-coderr/internal/api/validation"
	"github.com/knostijr/BE-coderr/internal/offer"
	"github.com/knostijr/BE-coderr/internal/permission"
)

// offerDetailBody is the full package representation, used in create/update
// requests and responses.
type offerDetailBody struct {
	ID                 string   `json:"id,omitempty"`
	Title              string   `json:"title"`
	Revisions          int      `json:"revisions"`
	DeliveryTimeInDays int      `json:"delivery_time_in_days"`
	Price              float64  `json:"price"`
	Features           []string `json:"features"`
	OfferType          string   `json:"offer_type"`
}

// offerDetailRef is the id+url package stub returned by list and retrieve.
type offerDetailRef struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// offerUserDetails is the nested creator info on list responses.
type offerUserDetails struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Username  string `json:"username"`
}

// offerResponse is the API representation of an offer. Details holds either
// full bodies (create/update) or id+url stubs (list/retrieve); MinPrice and
// MinDeliveryTime are recomputed from the package set on every response.
type offerResponse struct {
	ID              string            `json:"id"`
	User            string            `json:"user"`
	Title           string            `json:"title"`
	Description     string            `json:"description"`
	CreatedAt       string            `json:"created_at"`
	UpdatedAt       string            `json:"updated_at"`
	Details         any               `json:"details"`
	MinPrice        float64           `json:"min_price"`
	MinDeliveryTime int               `json:"min_delivery_time"`
	UserDetails     *offerUserDetails `json:"user_details,omitempty"`
}

func toDetailBody(d *offer.Detail) offerDetailBody {
	features := d.Features
	if features == nil {
		features = []string{}
	}
	return offerDetailBody{
		ID:                 d.ID.String(),
		Title:              d.Title,
		Revisions:          d.Revisions,
		DeliveryTimeInDays: d.DeliveryTimeInDays,
		Price:              d.Price,
		Features:           features,
		OfferType:          string(d.Tier),
	}
}

func toOfferResponse(o *offer.Offer, fullDetails, withUser bool) offerResponse {
	resp := offerResponse{
		ID:              o.ID.String(),
		User:            o.OwnerID.String(),
		Title:           o.Title,
		Description:     o.Description,
		CreatedAt:       o.CreatedAt.UTC().Format(timeFormat),
		UpdatedAt:       o.UpdatedAt.UTC().Format(timeFormat),
		MinPrice:        o.MinPrice(),
		MinDeliveryTime: o.MinDeliveryTime(),
	}

	if fullDetails {
		details := make([]offerDetailBody, 0, len(o.Details))
		for i := range o.Details {
			details = append(details, toDetailBody(&o.Details[i]))
		}
		resp.Details = details
	} else {
		refs := make([]offerDetailRef, 0, len(o.Details))
		for _, d := range o.Details {
			refs = append(refs, offerDetailRef{
				ID:  d.ID.String(),
				URL: fmt.Sprintf("/api/offerdetails/%s", d.ID),
			})
		}
		resp.Details = refs
	}

	if withUser {
		resp.UserDetails = &offerUserDetails{
			FirstName: o.OwnerFirst,
			LastName:  o.OwnerLast,
			Username:  o.OwnerUsername,
		}
	}

	return resp
}

// offerWriteRequest is the request body for POST and PATCH /offers.
type offerWriteRequest struct {
	Title       *string           `json:"title,omitempty"`
	Description *string           `json:"description,omitempty"`
	Details     []offerDetailBody `json:"details,omitempty"`
}

func (req *offerWriteRequest) details() []offer.Detail {
	details := make([]offer.Detail, 0, len(req.Details))
	for _, d := range req.Details {
		details = append(details, offer.Detail{
			Tier:               offer.Tier(d.OfferType),
			Title:              strings.TrimSpace(d.Title),
			Price:              d.Price,
			DeliveryTimeInDays: d.DeliveryTimeInDays,
			Revisions:          d.Revisions,
			Features:           d.Features,
		})
	}
	return details
}

// OfferHandler handles offer and offer detail endpoints.
type OfferHandler struct {
	repo offer.Repository
}

// NewOfferHandler creates a new OfferHandler.
func NewOfferHandler(repo offer.Repository) *OfferHandler {
	return &OfferHandler{repo: repo}
}

// Create handles POST /offers.
func (h *OfferHandler) Create(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	p := middleware.GetPrincipal(r.Context())
	if d := permission.Authorize(p, permission.ActionCreate, permission.Resource{Kind: permission.KindOffer}); !d.Allowed {
		denied(w, d, requestID)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req offerWriteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	var title, description string
	if req.Title != nil {
		title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		description = *req.Description
	}
	details := req.details()

	fieldErrors := validation.ValidateOffer(validation.OfferRequest{
		Title:       title,
		Description: description,
		Details:     details,
	})
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	o := &offer.Offer{
		OwnerID:     p.ID,
		Title:       title,
		Description: description,
		Details:     details,
	}

	if err := h.repo.Create(r.Context(), o); err != nil {
		slog.Error("failed to create offer", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create offer", requestID)
		return
	}

	response.Success(w, http.StatusCreated, toOfferResponse(o, true, false), requestID)
}

// List handles GET /offers. Open to anonymous principals.
func (h *OfferHandler) List(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	filter, fieldErrors := parseOfferFilter(r)
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid query parameters", fieldErrors, requestID)
		return
	}

	result, err := h.repo.List(r.Context(), filter)
	if err != nil {
		slog.Error("failed to list offers", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list offers", requestID)
		return
	}

	out := make([]offerResponse, 0, len(result.Offers))
	for i := range result.Offers {
		out = append(out, toOfferResponse(&result.Offers[i], false, true))
	}

	response.SuccessList(w, http.StatusOK, out, result.Total, result.Page, result.Limit, requestID)
}

// GetByID handles GET /offers/{id}. Open to anonymous principals.
func (h *OfferHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	id, ok := parseIDParam(w, r, requestID)
	if !ok {
		return
	}

	o, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, offer.ErrNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Offer not found", requestID)
			return
		}
		slog.Error("failed to fetch offer", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch offer", requestID)
		return
	}

	response.Success(w, http.StatusOK, toOfferResponse(o, false, false), requestID)
}

// Update handles PATCH /offers/{id}.
func (h *OfferHandler) Update(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	id, ok := parseIDParam(w, r, requestID)
	if !ok {
		return
	}

	o, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, offer.ErrNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Offer not found", requestID)
			return
		}
		slog.Error("failed to fetch offer", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update offer", requestID)
		return
	}

	p := middleware.GetPrincipal(r.Context())
	if d := permission.Authorize(p, permission.ActionUpdate, permission.Resource{Kind: permission.KindOffer, OwnerID: o.OwnerID}); !d.Allowed {
		denied(w, d, requestID)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req offerWriteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	details := req.details()
	if fieldErrors := validation.ValidateOfferPatch(details); len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	updated, err := h.repo.Update(r.Context(), id, offer.Patch{
		Title:       req.Title,
		Description: req.Description,
		Details:     details,
	})
	if err != nil {
		switch {
		case errors.Is(err, offer.ErrNotFound):
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Offer not found", requestID)
		case errors.Is(err, offer.ErrDetailNotFound):
			response.Err(w, http.StatusBadRequest, "VALIDATION_ERROR", "The offer has no package with that offer_type", requestID)
		default:
			slog.Error("failed to update offer", "error", err)
			response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update offer", requestID)
		}
		return
	}

	response.Success(w, http.StatusOK, toOfferResponse(updated, true, false), requestID)
}

// Delete handles DELETE /offers/{id}.
func (h *OfferHandler) Delete(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	id, ok := parseIDParam(w, r, requestID)
	if !ok {
		return
	}

	o, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, offer.ErrNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Offer not found", requestID)
			return
		}
		slog.Error("failed to fetch offer", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete offer", requestID)
		return
	}

	p := middleware.GetPrincipal(r.Context())
	if d := permission.Authorize(p, permission.ActionDelete, permission.Resource{Kind: permission.KindOffer, OwnerID: o.OwnerID}); !d.Allowed {
		denied(w, d, requestID)
		return
	}

	if err := h.repo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, offer.ErrNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Offer not found", requestID)
			return
		}
		slog.Error("failed to delete offer", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete offer", requestID)
		return
	}

	response.NoContent(w)
}

// GetDetail handles GET /offerdetails/{id}.
func (h *OfferHandler) GetDetail(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	id, ok := parseIDParam(w, r, requestID)
	if !ok {
		return
	}

	p := middleware.GetPrincipal(r.Context())
	if d := permission.Authorize(p, permission.ActionRead, permission.Resource{Kind: permission.KindOfferDetail}); !d.Allowed {
		denied(w, d, requestID)
		return
	}

	detail, err := h.repo.GetDetailByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, offer.ErrDetailNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Offer detail not found", requestID)
			return
		}
		slog.Error("failed to fetch offer detail", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch offer detail", requestID)
		return
	}

	response.Success(w, http.StatusOK, toDetailBody(detail), requestID)
}

// parseOfferFilter extracts list filters from query parameters.
func parseOfferFilter(r *http.Request) (offer.ListFilter, []validation.FieldError) {
	var errs []validation.FieldError
	filter := offer.ListFilter{Page: 1, Limit: 20}

	q := r.URL.Query()

	if v := q.Get("creator_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			errs = append(errs, validation.FieldError{Field: "creator_id", Message: "creator_id must be a valid ID"})
		} else {
			filter.CreatorID = &id
		}
	}
	if v := q.Get("min_price"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			errs = append(errs, validation.FieldError{Field: "min_price", Message: "min_price must be a number"})
		} else {
			filter.MinPrice = &f
		}
	}
	if v := q.Get("max_delivery_time"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, validation.FieldError{Field: "max_delivery_time", Message: "max_delivery_time must be an integer"})
		} else {
			filter.MaxDeliveryTime = &n
		}
	}
	if v := q.Get("search"); v != "" {
		filter.Search = &v
	}
	switch ordering := q.Get("ordering"); ordering {
	case "", "updated_at", "-updated_at", "min_price", "-min_price":
		filter.Ordering = ordering
	default:
		errs = append(errs, validation.FieldError{Field: "ordering", Message: "ordering must be one of updated_at, -updated_at, min_price, -min_price"})
	}
	if v := q.Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			filter.Page = n
		}
	}
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			filter.Limit = n
		}
	}

	return filter, errs
}
