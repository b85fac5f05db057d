package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/knostijr/BE-coderr/internal/account"
	"github.com/knostijr/BE-coderr/internal/api/middleware"
	"github.com/knostijr/BE-coderr/internal/api/response"
	"github.com/knostijr/BE-coderr/internal/permission"
)

// profileResponse is the API representation of a user profile.
type profileResponse struct {
	User         string `json:"user"`
	Username     string `json:"username"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Email        string `json:"email"`
	Location     string `json:"location"`
	Tel          string `json:"tel"`
	Description  string `json:"description"`
	WorkingHours string `json:"working_hours"`
	Type         string `json:"type"`
	CreatedAt    string `json:"created_at"`
}

func toProfileResponse(u *account.User) profileResponse {
	return profileResponse{
		User:         u.ID.String(),
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Email:        u.Email,
		Location:     u.Location,
		Tel:          u.Tel,
		Description:  u.Description,
		WorkingHours: u.WorkingHours,
		Type:         string(u.Role),
		CreatedAt:    u.CreatedAt.UTC().Format(timeFormat),
	}
}

// updateProfileRequest is the request body for PATCH /profile/{id}.
type updateProfileRequest struct {
	FirstName    *string `json:"first_name,omitempty"`
	LastName     *string `json:"last_name,omitempty"`
	Email        *string `json:"email,omitempty"`
	Location     *string `json:"location,omitempty"`
	Tel          *string `json:"tel,omitempty"`
	Description  *string `json:"description,omitempty"`
	WorkingHours *string `json:"working_hours,omitempty"`
}

// ProfileHandler handles profile read, update and role listing endpoints.
type ProfileHandler struct {
	repo account.Repository
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(repo account.Repository) *ProfileHandler {
	return &ProfileHandler{repo: repo}
}

// Get handles GET /profile/{id}.
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	id, ok := parseIDParam(w, r, requestID)
	if !ok {
		return
	}

	p := middleware.GetPrincipal(r.Context())
	if d := permission.Authorize(p, permission.ActionRead, permission.Resource{Kind: permission.KindProfile, OwnerID: id}); !d.Allowed {
		denied(w, d, requestID)
		return
	}

	u, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, account.ErrUserNotFound) {
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Profile not found", requestID)
			return
		}
		slog.Error("failed to fetch profile", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch profile", requestID)
		return
	}

	response.Success(w, http.StatusOK, toProfileResponse(u), requestID)
}

// Update handles PATCH /profile/{id}.
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	id, ok := parseIDParam(w, r, requestID)
	if !ok {
		return
	}

	p := middleware.GetPrincipal(r.Context())
	if d := permission.Authorize(p, permission.ActionUpdate, permission.Resource{Kind: permission.KindProfile, OwnerID: id}); !d.Allowed {
		denied(w, d, requestID)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	u, err := h.repo.UpdateProfile(r.Context(), id, account.ProfilePatch{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		Location:     req.Location,
		Tel:          req.Tel,
		Description:  req.Description,
		WorkingHours: req.WorkingHours,
	})
	if err != nil {
		switch {
		case errors.Is(err, account.ErrUserNotFound):
			response.Err(w, http.StatusNotFound, "NOT_FOUND", "Profile not found", requestID)
		case errors.Is(err, account.ErrEmailTaken):
			response.Err(w, http.StatusBadRequest, "VALIDATION_ERROR", "Email is already registered", requestID)
		default:
			slog.Error("failed to update profile", "error", err)
			response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update profile", requestID)
		}
		return
	}

	response.Success(w, http.StatusOK, toProfileResponse(u), requestID)
}

// ListBusiness handles GET /profiles/business.
func (h *ProfileHandler) ListBusiness(w http.ResponseWriter, r *http.Request) {
	h.listByRole(w, r, permission.RoleBusiness)
}

// ListCustomer handles GET /profiles/customer.
func (h *ProfileHandler) ListCustomer(w http.ResponseWriter, r *http.Request) {
	h.listByRole(w, r, permission.RoleCustomer)
}

func (h *ProfileHandler) listByRole(w http.ResponseWriter, r *http.Request, role permission.Role) {
	requestID := middleware.GetRequestID(r.Context())

	p := middleware.GetPrincipal(r.Context())
	if d := permission.Authorize(p, permission.ActionRead, permission.Resource{Kind: permission.KindProfile}); !d.Allowed {
		denied(w, d, requestID)
		return
	}

	users, err := h.repo.ListByRole(r.Context(), role)
	if err != nil {
		slog.Error("failed to list profiles", "error", err, "role", role)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list profiles", requestID)
		return
	}

	out := make([]profileResponse, 0, len(users))
	for i := range users {
		out = append(out, toProfileResponse(&users[i]))
	}

	response.Success(w, http.StatusOK, out, requestID)
}
