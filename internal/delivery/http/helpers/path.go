package helpers

import (
	"net/http"

	"eventregistration/internal/domain"
)

// PathID reads the named path value and checks it is a UUID. On failure it
// writes a 400 bad_request and returns false.
func PathID(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	id, ok := domain.ParseID(r.PathValue(name))
	if !ok {
		WriteJSONError(w, http.StatusBadRequest, ErrCodeBadRequest, "invalid "+name)
		return "", false
	}
	return id, true
}
