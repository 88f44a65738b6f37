package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vncsmyrnk/pollctl/internal/adapters/auth"
	"github.com/vncsmyrnk/pollctl/internal/adapters/repository/memory"
	"github.com/vncsmyrnk/pollctl/internal/core/domain"
)

type testServer struct {
	t      *testing.T
	server *httptest.Server
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := zap.NewNop()
	store := memory.NewStore()
	users := memory.NewUserRepository(store)
	polls := memory.NewPollRepository(store)
	tokens := auth.NewTokenManager("test-secret", time.Hour)

	handler := NewHandler(Handlers{
		Auth:          NewAuthHandler(users, tokens, auth.BcryptHasher{}, logger),
		User:          NewUserHandler(),
		Poll:          NewPollHandler(polls, logger),
		Vote:          NewVoteHandler(polls, logger),
		Authenticator: NewAuthenticator(tokens, users),
	})

	ts := &testServer{t: t, server: httptest.NewServer(handler)}
	t.Cleanup(ts.server.Close)
	return ts
}

func (ts *testServer) do(method, path, token string, body any) (*http.Response, map[string]any) {
	ts.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(ts.t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, ts.server.URL+path, reader)
	require.NoError(ts.t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(ts.t, err)
	defer resp.Body.Close()

	var decoded any
	_ = json.NewDecoder(resp.Body).Decode(&decoded)
	if m, ok := decoded.(map[string]any); ok {
		return resp, m
	}
	return resp, map[string]any{"_": decoded}
}

func (ts *testServer) register(username string) string {
	ts.t.Helper()
	resp, body := ts.do(http.MethodPost, "/api/auth/register/", "", domain.RegisterInput{
		Username:        username,
		Email:           username + "@example.com",
		Password:        "pw",
		PasswordConfirm: "pw",
	})
	require.Equal(ts.t, http.StatusCreated, resp.StatusCode)
	tokens := body["tokens"].(map[string]any)
	return tokens["access"].(string)
}

func (ts *testServer) createPoll(token string, input map[string]any) map[string]any {
	ts.t.Helper()
	resp, body := ts.do(http.MethodPost, "/api/polls/", token, input)
	require.Equal(ts.t, http.StatusCreated, resp.StatusCode, body)
	return body
}

func TestAuthEndpoints(t *testing.T) {
	ts := newTestServer(t)
	token := ts.register("alice")

	t.Run("profile with token", func(t *testing.T) {
		resp, body := ts.do(http.MethodGet, "/api/auth/profile/", token, nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "alice", body["username"])
	})

	t.Run("profile without token", func(t *testing.T) {
		resp, body := ts.do(http.MethodGet, "/api/auth/profile/", "", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, detailNotProvided, body["detail"])
	})

	t.Run("profile with garbage token", func(t *testing.T) {
		resp, body := ts.do(http.MethodGet, "/api/auth/profile/", "garbage", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, domain.ErrInvalidToken.Error(), body["detail"])
	})

	t.Run("login", func(t *testing.T) {
		resp, body := ts.do(http.MethodPost, "/api/auth/login/", "", map[string]string{"username": "alice", "password": "pw"})
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "alice", body["user"].(map[string]any)["username"])
	})

	t.Run("login with bad password", func(t *testing.T) {
		resp, body := ts.do(http.MethodPost, "/api/auth/login/", "", map[string]string{"username": "alice", "password": "nope"})
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "Invalid credentials", body["error"])
	})

	t.Run("refresh", func(t *testing.T) {
		resp, body := ts.do(http.MethodPost, "/api/auth/login/", "", map[string]string{"username": "alice", "password": "pw"})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		refresh := body["tokens"].(map[string]any)["refresh"].(string)

		resp, body = ts.do(http.MethodPost, "/api/auth/refresh/", "garbage", map[string]string{"refresh": refresh})
		require.Equal(t, http.StatusOK, resp.StatusCode, "a stale bearer token is ignored")
		access, ok := body["access"].(string)
		require.True(t, ok)
		assert.NotContains(t, body, "refresh")

		resp, body = ts.do(http.MethodGet, "/api/auth/profile/", access, nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "alice", body["username"])
	})

	t.Run("refresh rejects access tokens", func(t *testing.T) {
		resp, body := ts.do(http.MethodPost, "/api/auth/refresh/", "", map[string]string{"refresh": token})
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, domain.ErrTokenNotValid.Error(), body["detail"])
		assert.Equal(t, "token_not_valid", body["code"])
	})

	t.Run("refresh requires the field", func(t *testing.T) {
		resp, body := ts.do(http.MethodPost, "/api/auth/refresh/", "", map[string]string{})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, []any{domain.FieldRequiredMessage}, body["refresh"])
	})

	t.Run("register reports field errors", func(t *testing.T) {
		resp, body := ts.do(http.MethodPost, "/api/auth/register/", "", map[string]string{
			"username": "alice", "email": "a@example.com", "password": "x", "password_confirm": "x",
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, []any{domain.ErrUsernameTaken.Error()}, body["username"])

		resp, body = ts.do(http.MethodPost, "/api/auth/register/", "", map[string]string{
			"username": "bob", "email": "", "password": "x", "password_confirm": "y",
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, []any{domain.FieldRequiredMessage}, body["email"])
		assert.Equal(t, []any{domain.PasswordMismatchMessage}, body[domain.NonFieldErrorsKey])
	})
}

func TestPollEndpoints(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.register("alice")
	bob := ts.register("bob")

	created := ts.createPoll(alice, map[string]any{
		"title":   "  Lunch  ",
		"options": []string{"Pizza", "pizza ", "Sushi"},
	})
	id := int64(created["id"].(float64))
	options := created["options"].([]any)
	require.Len(t, options, 2, "options are deduplicated ignoring case")
	assert.Equal(t, "Lunch", created["title"])
	pizza := int64(options[0].(map[string]any)["id"].(float64))
	sushi := int64(options[1].(map[string]any)["id"].(float64))

	t.Run("create requires authentication", func(t *testing.T) {
		resp, _ := ts.do(http.MethodPost, "/api/polls/", "", map[string]any{"title": "x", "options": []string{"a", "b"}})
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("create validates input", func(t *testing.T) {
		resp, body := ts.do(http.MethodPost, "/api/polls/", alice, map[string]any{"title": "", "options": []string{"a"}})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, body, "title")
		assert.Contains(t, body, "options")

		past := time.Now().Add(-time.Hour)
		resp, body = ts.do(http.MethodPost, "/api/polls/", alice, map[string]any{"title": "x", "options": []string{"a", "b"}, "expires_at": past})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, []any{domain.ErrExpiryInPast.Error()}, body["expires_at"])
	})

	t.Run("list is a bare array without page", func(t *testing.T) {
		resp, body := ts.do(http.MethodGet, "/api/polls/", "", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Len(t, body["_"], 1)
	})

	t.Run("list is an envelope with page", func(t *testing.T) {
		resp, body := ts.do(http.MethodGet, "/api/polls/?page=1", "", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, float64(1), body["count"])
		assert.Nil(t, body["next"])
		assert.Len(t, body["results"], 1)

		resp, body = ts.do(http.MethodGet, "/api/polls/?page=2", "", nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "Invalid page.", body["detail"])
	})

	t.Run("vote and read back", func(t *testing.T) {
		path := "/api/polls/" + itoa(id) + "/vote/"

		resp, _ := ts.do(http.MethodPost, path, "", map[string]any{"option_id": pizza})
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

		resp, body := ts.do(http.MethodPost, path, bob, map[string]any{"option_id": pizza})
		require.Equal(t, http.StatusCreated, resp.StatusCode, body)
		assert.Equal(t, "Pizza", body["option"].(map[string]any)["text"])

		resp, body = ts.do(http.MethodPost, path, bob, map[string]any{"option_id": sushi})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, []any{domain.ErrAlreadyVoted.Error()}, body[domain.NonFieldErrorsKey])

		resp, body = ts.do(http.MethodPost, path, alice, map[string]any{})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, []any{domain.FieldRequiredMessage}, body["option_id"])

		resp, body = ts.do(http.MethodPost, path, alice, map[string]any{"option_id": 9999})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, []any{domain.ErrOptionNotFound.Error()}, body["option_id"])

		resp, body = ts.do(http.MethodGet, "/api/polls/"+itoa(id)+"/", bob, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, []any{float64(pizza)}, body["user_votes"])
		assert.Equal(t, float64(1), body["total_votes"])

		resp, body = ts.do(http.MethodGet, "/api/polls/"+itoa(id)+"/results/", "", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "Lunch", body["poll_title"])
		results := body["results"].([]any)
		assert.Equal(t, float64(100), results[0].(map[string]any)["percentage"])
	})

	t.Run("vote on another poll's option", func(t *testing.T) {
		other := ts.createPoll(alice, map[string]any{"title": "Other", "options": []string{"a", "b"}})
		resp, body := ts.do(http.MethodPost, "/api/polls/"+itoa(int64(other["id"].(float64)))+"/vote/", alice, map[string]any{"option_id": sushi})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, domain.ErrForeignOption.Error(), body["error"])
	})

	t.Run("my polls and my votes", func(t *testing.T) {
		resp, body := ts.do(http.MethodGet, "/api/polls/my_polls/", alice, nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Len(t, body["_"], 2)

		resp, body = ts.do(http.MethodGet, "/api/polls/my_votes/", bob, nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Len(t, body["_"], 1)

		resp, _ = ts.do(http.MethodGet, "/api/polls/my_votes/", "", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("unknown poll", func(t *testing.T) {
		resp, body := ts.do(http.MethodGet, "/api/polls/424242/", "", nil)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, detailNotFound, body["detail"])
	})
}

func TestDeletePoll(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.register("alice")
	bob := ts.register("bob")

	created := ts.createPoll(alice, map[string]any{"title": "Lunch", "options": []string{"Pizza", "Sushi"}})
	id := int64(created["id"].(float64))
	option := int64(created["options"].([]any)[0].(map[string]any)["id"].(float64))
	path := "/api/polls/" + itoa(id) + "/"

	resp, _ := ts.do(http.MethodPost, path+"vote/", bob, map[string]any{"option_id": option})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, _ = ts.do(http.MethodDelete, path, "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, body := ts.do(http.MethodDelete, path, bob, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, domain.ErrNotPollCreator.Error(), body["detail"])

	resp, _ = ts.do(http.MethodDelete, path, alice, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = ts.do(http.MethodGet, path, "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body = ts.do(http.MethodGet, "/api/polls/my_votes/", bob, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, body["_"])

	resp, _ = ts.do(http.MethodDelete, path, alice, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
