package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/knostijr/BE-coderr/internal/account"
	"github.com/knostijr/BE-coderr/internal/api/middleware"
	"github.com/knostijr/BE-coderr/internal/api/response"
	"github.com/knostijr/BE-coderr/internal/api/validation"
	"github.com/knostijr/BE-coderr/internal/permission"
)

// registrationRequest is the request body for POST /registration.
type registrationRequest struct {
	Username         string `json:"username"`
	Email            string `json:"email"`
	Password         string `json:"password"`
	RepeatedPassword string `json:"repeated_password"`
	Type             string `json:"type"`
}

// loginRequest is the request body for POST /login.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// authResponse is returned by both registration and login.
type authResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Email    string `json:"email"`
	UserID   string `json:"user_id"`
}

// AccountHandler handles registration and login.
type AccountHandler struct {
	service *account.Service
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(service *account.Service) *AccountHandler {
	return &AccountHandler{service: service}
}

// Register handles POST /registration.
func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req registrationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if req.Type == "" {
		req.Type = string(permission.RoleCustomer)
	}

	fieldErrors := validation.ValidateRegistration(validation.RegistrationRequest{
		Username:         req.Username,
		Email:            req.Email,
		Password:         req.Password,
		RepeatedPassword: req.RepeatedPassword,
		Type:             req.Type,
	})
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	u, token, err := h.service.Register(r.Context(), req.Username, req.Email, req.Password, permission.Role(req.Type))
	if err != nil {
		switch {
		case errors.Is(err, account.ErrUsernameTaken):
			response.Err(w, http.StatusBadRequest, "VALIDATION_ERROR", "Username is already taken", requestID)
		case errors.Is(err, account.ErrEmailTaken):
			response.Err(w, http.StatusBadRequest, "VALIDATION_ERROR", "Email is already registered", requestID)
		default:
			slog.Error("failed to register user", "error", err)
			response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to register", requestID)
		}
		return
	}

	response.Success(w, http.StatusCreated, authResponse{
		Token:    token,
		Username: u.Username,
		Email:    u.Email,
		UserID:   u.ID.String(),
	}, requestID)
}

// Login handles POST /login.
func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Err(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", requestID)
		return
	}

	if fieldErrors := validation.ValidateLogin(req.Username, req.Password); len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "Input validation failed", fieldErrors, requestID)
		return
	}

	u, token, err := h.service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, account.ErrInvalidCredentials) {
			response.Err(w, http.StatusBadRequest, "INVALID_CREDENTIALS", "Invalid credentials", requestID)
			return
		}
		slog.Error("failed to log in user", "error", err)
		response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to log in", requestID)
		return
	}

	response.Success(w, http.StatusOK, authResponse{
		Token:    token,
		Username: u.Username,
		Email:    u.Email,
		UserID:   u.ID.String(),
	}, requestID)
}
