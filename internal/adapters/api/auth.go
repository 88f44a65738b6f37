package api

import (
	"context"
	"net/http"

	"github.com/vncsmyrnk/pollctl/internal/core/domain"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login exchanges credentials for a token pair. Every failure is reported as
// a *domain.AuthError carrying the server's message.
func (c *Client) Login(ctx context.Context, username, password string) (*domain.AuthResult, error) {
	var result domain.AuthResult
	err := c.do(ctx, call{
		method:    http.MethodPost,
		path:      "/auth/login/",
		body:      loginRequest{Username: username, Password: password},
		anonymous: true,
	}, &result)
	if err != nil {
		if reqErr, ok := asRequestError(err); ok {
			return nil, &domain.AuthError{Message: loginMessage(reqErr)}
		}
		return nil, &domain.AuthError{Message: err.Error()}
	}
	return &result, nil
}

// loginMessage prefers the first field message when the server answered a
// bad request with a field map and no detail or error key.
func loginMessage(reqErr *domain.RequestError) string {
	if reqErr.Message != domain.GenericErrorMessage || reqErr.StatusCode != http.StatusBadRequest {
		return reqErr.Message
	}
	errs := FieldErrors(reqErr)
	for _, field := range errs.Fields() {
		if msg := errs.First(field); msg != "" {
			if field == domain.NonFieldErrorsKey {
				return msg
			}
			return field + ": " + msg
		}
	}
	return reqErr.Message
}

// Register creates an account. Any error response is returned as
// domain.ValidationErrors keyed by field; a body without a field map ends up
// under the non-field key.
func (c *Client) Register(ctx context.Context, input domain.RegisterInput) (*domain.AuthResult, error) {
	var result domain.AuthResult
	err := c.do(ctx, call{
		method:    http.MethodPost,
		path:      "/auth/register/",
		body:      input,
		anonymous: true,
	}, &result)
	if err != nil {
		if reqErr, ok := asRequestError(err); ok {
			return nil, FieldErrors(reqErr)
		}
		return nil, err
	}
	return &result, nil
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

// Refresh trades a refresh token for a new access token. The server only
// returns a refresh token when it rotates them; otherwise the one sent is
// kept.
func (c *Client) Refresh(ctx context.Context, refresh string) (*domain.Tokens, error) {
	var tokens domain.Tokens
	err := c.do(ctx, call{
		method:    http.MethodPost,
		path:      "/auth/refresh/",
		body:      refreshRequest{Refresh: refresh},
		anonymous: true,
	}, &tokens)
	if err != nil {
		return nil, err
	}
	if tokens.Access == "" {
		return nil, &domain.AuthError{Message: "server did not return an access token"}
	}
	if tokens.Refresh == "" {
		tokens.Refresh = refresh
	}
	return &tokens, nil
}

func (c *Client) Profile(ctx context.Context, token string) (*domain.User, error) {
	var user domain.User
	err := c.do(ctx, call{
		method: http.MethodGet,
		path:   "/auth/profile/",
		token:  token,
	}, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}
