package http

import (
	"net/http"
)

type UserHandler struct{}

func NewUserHandler() *UserHandler {
	return &UserHandler{}
}

// GetMe returns the profile of the authenticated user.
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	user, ok := userFrom(r.Context())
	if !ok {
		writeDetail(w, http.StatusUnauthorized, detailNotProvided)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
