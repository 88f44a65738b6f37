package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/vncsmyrnk/pollctl/internal/core/domain"
)

const (
	detailNotFound       = "Not found."
	detailNotProvided    = "Authentication credentials were not provided."
	messageMissingFields = "Username and password are required."
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeDetail answers with {"detail": msg}, the shape of framework level
// errors such as authentication and lookups.
func writeDetail(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"detail": msg})
}

// writeError answers with {"error": msg}, the shape of view level errors.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeValidation(w http.ResponseWriter, errs domain.ValidationErrors) {
	writeJSON(w, http.StatusBadRequest, errs)
}

func fieldError(field string, err error) domain.ValidationErrors {
	return domain.ValidationErrors{field: {err.Error()}}
}

// decodeBody decodes a JSON request body into v. It writes the 400 response
// itself and reports false when the body is unusable.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		writeDetail(w, http.StatusBadRequest, "JSON parse error - "+err.Error())
		return false
	}
	return true
}
