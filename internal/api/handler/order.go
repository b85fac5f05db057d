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
	"github.com/knostijr/BE-coderr/internal/offer"
	"github.com/knostijr/BE-coderr/internal/order"
	"github.com/knostijr/BE-coderr/internal/permission"
)

// orderResponse is the API representation of an order, exposing the
// package snapshot taken at creation time.
type orderResponse struct {
	ID                 string   `json:"id"`
	CustomerUser       string   `json:"customer_user"`
	BusinessUser       string   `json:"business_user"`
	Title              string   `json:"title"`
	Revisions          int      `json:"revisions"`
	DeliveryTimeInDays int      `json:"delivery_time_in_days"`
	Price              float64  `json:"price"`
	Features           []string `json:"features"`
	OfferType          string   `json:"offer_type"`
	Status             string   `json:"status"`
	CreatedAt          string   `json:"created_at"`
	UpdatedAt          string   `json:"updated_at"`
}

func toOrderResponse(o *order.Order) orderResponse {
	features := o.Features
	if features == nil {
		features = []string{}
	}
	return orderResponse{
		ID:                 o.ID.String(),
		CustomerUser:       o.CustomerID.String(),
		BusinessUser:       o.BusinessUserID.String(),
		Title:              o.Title,
		Revisions:          o.Revisions,
		DeliveryTimeInDays: o.DeliveryTimeInDays,
		Price:              o.Price,
		Features:           features,
		OfferType:          string(o.Tier),
		Status:             string(o.Status),
		CreatedAt:          o.CreatedAt.UTC().Format(timeFormat),
		UpdatedAt:          o.UpdatedAt.UTC().Format(timeFormat),
	}
}

// createOrderRequest is the request body for POST /orders.
type createOrderRequest struct {
	OfferDetailID string `json:"offer_detail_id"`
}

// updateOrderRequest is the request body for PATCH /orders/{id}.
type updateOrderRequest struct {
	Status string `json:"status"`
}

// OrderHandler handles order lifecycle endpoints.
type OrderHandler struct {
	repo        order.Repository
	offerRepo   offer.Repository
	accountRepo account.Repository
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(repo order.Repository, offerRepo offer.Repository, accountRepo account.Repository) *OrderHandler {
	return &OrderHandler{repo: repo, offerRepo: offerRepo, accountRepo: accountRepo}
}

// List handles GET /orders. Only orders where the principal is a party
// (customer or business side) are returned; filtering happens at listing
// time rather than as per-item denials.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	p := middleware.GetPrincipal(r.Context())
	if !p.Authenticated {
		response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required", requestID)
		return
	}

	orders, err := h.repo.ListByParticipant(r.Context(), p.ID)
	if err != nil {
		slog.Error("failed to list orders", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list orders", requestID)
		return
	}

	out := make([]orderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, toOrderResponse(&orders[i]))
	}

	response.Success(w, http.StatusOK, out, requestID)
}

// Create handles POST /orders. The referenced package is copied into the
// order as an immutable snapshot; later offer edits never propagate.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	p := middleware.GetPrincipal(r.Context())
	if d := permission.Authorize(p, permission.ActionCreate, permission.Resource{Kind: permission.KindOrder}); !d.Allowed {
		denied(w, d, requestID)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	detailID, err := uuid.Parse(req.OfferDetailID)
	if err != nil {
		response.Err(w, http.StatusBadRequest, "VALIDATION_ERROR", "offer_detail_id must be a valid ID", requestID)
		return
	}

	detail, err := h.offerRepo.GetDetailByID(r.Context(), detailID)
	if err != nil {
		if errors.Is(err, offer.ErrDetailNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Offer detail not found", requestID)
			return
		}
		slog.Error("failed to resolve offer detail", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create order", requestID)
		return
	}

	parent, err := h.offerRepo.GetByID(r.Context(), detail.OfferID)
	if err != nil {
		slog.Error("failed to resolve parent offer", "error", err, "offerDetailId", detailID)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create order", requestID)
		return
	}

	o := order.NewFromDetail(p.ID, parent.OwnerID, detail)
	if err := h.repo.Create(r.Context(), o); err != nil {
		slog.Error("failed to create order", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create order", requestID)
		return
	}

	response.Success(w, http.StatusCreated, toOrderResponse(o), requestID)
}

// UpdateStatus handles PATCH /orders/{id}.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	id, ok := parseIDParam(w, r, requestID)
	if !ok {
		return
	}

	o, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Order not found", requestID)
			return
		}
		slog.Error("failed to fetch order", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update order", requestID)
		return
	}

	p := middleware.GetPrincipal(r.Context())
	res := permission.Resource{Kind: permission.KindOrder, CustomerID: o.CustomerID, BusinessUserID: o.BusinessUserID}
	if d := permission.Authorize(p, permission.ActionUpdate, res); !d.Allowed {
		denied(w, d, requestID)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req updateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	newStatus := order.Status(req.Status)
	if !order.ValidStatus(newStatus) {
		response.Err(w, http.StatusBadRequest, "VALIDATION_ERROR", "status must be in_progress, completed or cancelled", requestID)
		return
	}

	if !order.CanTransition(o.Status, newStatus) {
		response.Err(w, http.StatusBadRequest, "INVALID_TRANSITION",
			"Order status can only move from in_progress to completed or cancelled", requestID)
		return
	}

	updated, err := h.repo.UpdateStatus(r.Context(), id, newStatus)
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Order not found", requestID)
			return
		}
		slog.Error("failed to update order status", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update order", requestID)
		return
	}

	response.Success(w, http.StatusOK, toOrderResponse(updated), requestID)
}

// Delete handles DELETE /orders/{id}. Staff only; the role is checked
// before the lookup so non-staff callers learn nothing about existence.
func (h *OrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	id, ok := parseIDParam(w, r, requestID)
	if !ok {
		return
	}

	p := middleware.GetPrincipal(r.Context())
	if d := permission.Authorize(p, permission.ActionDelete, permission.Resource{Kind: permission.KindOrder}); !d.Allowed {
		denied(w, d, requestID)
		return
	}

	if err := h.repo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, order.ErrNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Order not found", requestID)
			return
		}
		slog.Error("failed to delete order", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete order", requestID)
		return
	}

	response.NoContent(w)
}

// Count handles GET /order-count/{id}: in-progress orders for a business user.
func (h *OrderHandler) Count(w http.ResponseWriter, r *http.Request) {
	h.countByStatus(w, r, order.StatusInProgress, "order_count")
}

// CompletedCount handles GET /completed-order-count/{id}.
func (h *OrderHandler) CompletedCount(w http.ResponseWriter, r *http.Request) {
	h.countByStatus(w, r, order.StatusCompleted, "completed_order_count")
}

func (h *OrderHandler) countByStatus(w http.ResponseWriter, r *http.Request, status order.Status, field string) {
	requestID := middleware.GetRequestID(r.Context())

	id, ok := parseIDParam(w, r, requestID)
	if !ok {
		return
	}

	u, err := h.accountRepo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, account.ErrUserNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Business user not found", requestID)
			return
		}
		slog.Error("failed to resolve business user", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to count orders", requestID)
		return
	}
	if u.Role != permission.RoleBusiness {
		response.Err(w, http.StatusNotFound, "NOT_FOUND", "Business user not found", requestID)
		return
	}

	count, err := h.repo.CountByStatus(r.Context(), id, status)
	if err != nil {
		slog.Error("failed to count orders", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to count orders", requestID)
		return
	}

	response.Success(w, http.StatusOK, map[string]int{field: count}, requestID)
}
