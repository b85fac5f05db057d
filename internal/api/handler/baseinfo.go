package handler

import (
	"log/slog"
	"net/http"

	"github.com/knostijr/BE-coderr/internal/api/middleware"
	"github.com/knostijr/BE-coderr/internal/api/response"
	"github.com/knostijr/BE-coderr/internal/stats"
)

// baseInfoResponse is the public platform statistics payload.
type baseInfoResponse struct {
	ReviewCount          int     `json:"review_count"`
	AverageRating        float64 `json:"average_rating"`
	BusinessProfileCount int     `json:"business_profile_count"`
	OfferCount           int     `json:"offer_count"`
}

// BaseInfoHandler handles GET /base-info, open to anonymous principals.
type BaseInfoHandler struct {
	aggregator *stats.Aggregator
}

// NewBaseInfoHandler creates a new BaseInfoHandler.
func NewBaseInfoHandler(aggregator *stats.Aggregator) *BaseInfoHandler {
	return &BaseInfoHandler{aggregator: aggregator}
}

// Get handles GET /base-info.
func (h *BaseInfoHandler) Get(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	info, err := h.aggregator.BaseInfo(r.Context())
	if err != nil {
		slog.Error("failed to aggregate base info", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to compute statistics", requestID)
		return
	}

	response.Success(w, http.StatusOK, baseInfoResponse{
		ReviewCount:          info.ReviewCount,
		AverageRating:        info.AverageRating,
		BusinessProfileCount: info.BusinessProfileCount,
		OfferCount:           info.OfferCount,
	}, requestID)
}
