// Package http is the development API server. It speaks the wire protocol
// of the production poll backend.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type Handlers struct {
	Auth          *AuthHandler
	User          *UserHandler
	Poll          *PollHandler
	Vote          *VoteHandler
	Authenticator *Authenticator
	// AccessLog enables chi's request logger.
	AccessLog bool
}

func NewHandler(h Handlers) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	if h.AccessLog {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeDetail(w, http.StatusNotFound, detailNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeDetail(w, http.StatusMethodNotAllowed, "Method \""+r.Method+"\" not allowed.")
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(h.Authenticator.Middleware)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login/", h.Auth.Login)
			r.Post("/register/", h.Auth.Register)
			r.Post("/refresh/", h.Auth.Refresh)
			r.With(RequireUser).Get("/profile/", h.User.GetMe)
		})

		r.Route("/polls", func(r chi.Router) {
			r.Get("/", h.Poll.ListPolls)
			r.With(RequireUser).Post("/", h.Poll.CreatePoll)
			r.With(RequireUser).Get("/my_polls/", h.Poll.MyPolls)
			r.With(RequireUser).Get("/my_votes/", h.Poll.MyVotes)
			r.Get("/{id}/", h.Poll.GetPoll)
			r.With(RequireUser).Delete("/{id}/", h.Poll.DeletePoll)
			r.Get("/{id}/results/", h.Poll.GetResults)
			r.With(RequireUser).Post("/{id}/vote/", h.Vote.VoteOnPoll)
		})
	})

	return r
}
