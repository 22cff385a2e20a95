package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"eventregistration/internal/delivery/http/helpers"
)

// Recover turns a panic in next into a 500 internal_error response and logs
// the panic value with its stack. http.ErrAbortHandler is re-raised.
func Recover(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			logger.ErrorContext(r.Context(), "panic recovered",
				"method", r.Method,
				"path", r.URL.Path,
				"panic", rec,
				"stack", string(debug.Stack()),
			)
			helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "internal server error")
		}()
		next.ServeHTTP(w, r)
	})
}
