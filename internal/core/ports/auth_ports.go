package ports

import (
	"context"

	"github.com/vncsmyrnk/pollctl/internal/core/domain"
)

type AuthAPI interface {
	Login(ctx context.Context, username, password string) (*domain.AuthResult, error)
	Register(ctx context.Context, input domain.RegisterInput) (*domain.AuthResult, error)
	// Profile validates token by fetching the profile it belongs to.
	Profile(ctx context.Context, token string) (*domain.User, error)
	// Refresh trades a refresh token for a new pair. The refresh token is
	// carried over when the server does not rotate it.
	Refresh(ctx context.Context, refresh string) (*domain.Tokens, error)
}

// SessionService is the single writer of the session and of the persisted
// token. View code reads it but never mutates it directly.
type SessionService interface {
	TokenSource

	Login(ctx context.Context, username, password string) error
	Register(ctx context.Context, input domain.RegisterInput) error
	Logout()
	Restore(ctx context.Context) domain.Session

	Current() domain.Session
	Ready() bool
	OnChange(fn func(domain.Session))
}

// TokenIssuer signs and verifies the dev server's access tokens.
type TokenIssuer interface {
	Issue(user domain.User) (domain.Tokens, error)
	Verify(token string) (int64, error)
	// Refresh signs a new access token for the user of a valid refresh
	// token and returns the token with that user's id.
	Refresh(refresh string) (string, int64, error)
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Check(plain, hashed string) bool
}
