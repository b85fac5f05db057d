// Package handler wires the HTTP surface to the workflow components. Each
// handler validates domain rules, consults the permission engine, then
// commits through its repository.
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/knostijr/BE-coderr/internal/api/response"
	"github.com/knostijr/BE-coderr/internal/permission"
)

// denialMessages maps permission reasons to human-readable detail.
var denialMessages = map[permission.Reason]string{
	permission.ReasonUnauthenticated: "Authentication required",
	permission.ReasonWrongRole:       "Your account type may not perform this action",
	permission.ReasonNotOwner:        "Only the owner may perform this action",
	permission.ReasonForbidden:       "You may not access this resource",
}

// denied writes the response for a permission denial: 401 for anonymous
// principals, 403 otherwise.
func denied(w http.ResponseWriter, d permission.Decision, requestID string) {
	msg, ok := denialMessages[d.Reason]
	if !ok {
		msg = "Forbidden"
	}
	if d.Reason == permission.ReasonUnauthenticated {
		response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", msg, requestID)
		return
	}
	response.Err(w, http.StatusForbidden, "FORBIDDEN", msg, requestID)
}

// parseIDParam extracts and parses the {id} URL parameter. On failure it
// writes a 404; a malformed ID can never reference an existing resource.
func parseIDParam(w http.ResponseWriter, r *http.Request, requestID string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.Err(w, http.StatusNotFound, "NOT_FOUND", "Resource not found", requestID)
		return uuid.Nil, false
	}
	return id, true
}

const timeFormat = "2006-01-02T15:04:05Z"
