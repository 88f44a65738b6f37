package ports

import "github.com/vncsmyrnk/pollctl/internal/core/domain"

// TokenStore persists the token pair across runs.
type TokenStore interface {
	Load() (domain.Tokens, error)
	Save(tokens domain.Tokens) error
	Clear() error
}

// TokenSource yields the bearer token for outbound requests, or "" when
// there is none.
type TokenSource interface {
	Token() string
}
