package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/and161185/numfetch/internal/errs"
)

type errBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeErr maps sentinel errors onto stable HTTP statuses. Anything not in
// the taxonomy is an internal error; details stay in the log, not the body.
func writeErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errs.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errBody{Error: "not found"})
	case errors.Is(err, errs.ErrDuplicateRange):
		writeJSON(w, http.StatusBadRequest, errBody{Error: "range already exists in this category"})
	case errors.Is(err, errs.ErrInvalidCategory):
		writeJSON(w, http.StatusBadRequest, errBody{Error: "invalid category"})
	case errors.Is(err, errs.ErrAlreadyExists):
		writeJSON(w, http.StatusConflict, errBody{Error: "already exists"})
	case errors.Is(err, errs.ErrUnauthorized):
		w.Header().Set("WWW-Authenticate", "Bearer")
		writeJSON(w, http.StatusUnauthorized, errBody{Error: "unauthorized"})
	case errors.Is(err, errs.ErrRateLimited):
		writeJSON(w, http.StatusTooManyRequests, errBody{Error: "rate limited"})
	case strings.HasPrefix(err.Error(), "validation:"):
		writeJSON(w, http.StatusBadRequest, errBody{Error: err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, errBody{Error: "internal"})
	}
}
