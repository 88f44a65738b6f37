package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/vncsmyrnk/pollctl/internal/core/domain"
	"github.com/vncsmyrnk/pollctl/internal/core/ports"
)

type contextKey string

const userKey contextKey = "user"

// Authenticator resolves the bearer token of a request to its user.
type Authenticator struct {
	tokens ports.TokenIssuer
	users  ports.UserRepository
}

func NewAuthenticator(tokens ports.TokenIssuer, users ports.UserRepository) *Authenticator {
	return &Authenticator{
		tokens: tokens,
		users:  users,
	}
}

// Middleware attaches the authenticated user to the request context. A
// request without credentials passes through anonymously; a request with
// bad credentials is rejected even on public endpoints.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			next.ServeHTTP(w, r)
			return
		}

		scheme, token, ok := strings.Cut(header, " ")
		if !ok || scheme != "Bearer" || token == "" {
			writeDetail(w, http.StatusUnauthorized, "Authorization header must contain two space-delimited values")
			return
		}

		userID, err := a.tokens.Verify(token)
		if err != nil {
			writeDetail(w, http.StatusUnauthorized, domain.ErrInvalidToken.Error())
			return
		}
		user, err := a.users.GetByID(r.Context(), userID)
		if err != nil {
			writeDetail(w, http.StatusUnauthorized, "User not found")
			return
		}

		ctx := context.WithValue(r.Context(), userKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireUser rejects anonymous requests.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := userFrom(r.Context()); !ok {
			writeDetail(w, http.StatusUnauthorized, detailNotProvided)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func userFrom(ctx context.Context) (*domain.User, bool) {
	user, ok := ctx.Value(userKey).(*domain.User)
	return user, ok && user != nil
}

func viewerID(ctx context.Context) int64 {
	if user, ok := userFrom(ctx); ok {
		return user.ID
	}
	return 0
}
