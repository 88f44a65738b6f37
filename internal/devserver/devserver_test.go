package devserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vncsmyrnk/pollctl/internal/adapters/repository/memory"
	"github.com/vncsmyrnk/pollctl/internal/core/domain"
)

func TestSeed(t *testing.T) {
	dev := New(Options{JWTSecret: "test"})
	ctx := context.Background()
	require.NoError(t, dev.Seed(ctx))

	demo, _, err := dev.Users.GetByUsername(ctx, DemoUsername)
	require.NoError(t, err)
	assert.Equal(t, "Demo User", demo.DisplayName())

	visible, err := dev.Polls.List(ctx, domain.ListQuery{})
	require.NoError(t, err)
	assert.Len(t, visible, len(seedPolls)-1, "the inactive poll is hidden by default")

	all, err := dev.Polls.List(ctx, domain.ListQuery{ShowAll: true})
	require.NoError(t, err)
	assert.Len(t, all, len(seedPolls))

	voted, err := dev.Polls.ListVotedBy(ctx, demo.ID)
	require.NoError(t, err)
	assert.Empty(t, voted)

	assert.ErrorIs(t, dev.Seed(ctx), ErrAlreadySeeded)
}

func TestNew_SuppliedRepositories(t *testing.T) {
	store := memory.NewStore()
	users := memory.NewUserRepository(store)
	polls := memory.NewPollRepository(store)

	dev := New(Options{JWTSecret: "test", Users: users, Polls: polls})
	assert.Nil(t, dev.Store)
	require.NoError(t, dev.Seed(context.Background()))

	all, err := polls.List(context.Background(), domain.ListQuery{ShowAll: true})
	require.NoError(t, err)
	assert.Len(t, all, len(seedPolls))
}

func TestHandler(t *testing.T) {
	dev := New(Options{JWTSecret: "test"})
	server := httptest.NewServer(dev.Handler())
	defer server.Close()

	resp, err := http.Get(server.URL + "/api/polls/")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
}
