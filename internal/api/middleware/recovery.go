package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/knostijr/BE-coderr/internal/api/response"
)

// Recovery converts handler panics into a 500 envelope, logging the stack
// so the request that blew up can be reconstructed.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				requestID := GetRequestID(r.Context())
				slog.Error("panic recovered",
					"error", rec,
					"requestId", requestID,
					"path", r.URL.Path,
					"stack", string(debug.Stack()),
				)
				response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred", requestID)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
