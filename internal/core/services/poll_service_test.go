package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vncsmyrnk/pollctl/internal/core/domain"
)

func TestPollService_Submit(t *testing.T) {
	ctx := context.Background()

	t.Run("blank options are dropped before sending", func(t *testing.T) {
		api := &fakePollAPI{}
		svc := NewPollService(api, authenticated(), zap.NewNop())

		var created []domain.Poll
		svc.OnCreated(func(p domain.Poll) { created = append(created, p) })

		draft := domain.NewPollDraft()
		draft.Title = "Lunch"
		draft.Options = []string{"", "A", "", "B"}

		poll, err := svc.Submit(ctx, draft)
		require.NoError(t, err)
		assert.Equal(t, "Lunch", poll.Title)

		require.Len(t, api.creates, 1)
		assert.Equal(t, []string{"A", "B"}, api.creates[0].Options)
		assert.Nil(t, api.creates[0].ExpiresAt)
		assert.Len(t, created, 1)
		assert.Equal(t, domain.NewPollDraft(), draft, "the draft is reset after success")
	})

	t.Run("two blank options are rejected locally", func(t *testing.T) {
		api := &fakePollAPI{}
		svc := NewPollService(api, authenticated(), zap.NewNop())

		draft := domain.NewPollDraft()
		draft.Title = "Lunch"
		draft.Options = []string{"", ""}

		_, err := svc.Submit(ctx, draft)
		assert.ErrorIs(t, err, domain.ErrTooFewOptions)
		assert.Equal(t, "At least 2 options are required.", err.Error())
		assert.Empty(t, api.Calls())
	})

	t.Run("missing title is rejected locally", func(t *testing.T) {
		api := &fakePollAPI{}
		svc := NewPollService(api, authenticated(), zap.NewNop())

		draft := domain.NewPollDraft()
		draft.Options = []string{"A", "B"}

		_, err := svc.Submit(ctx, draft)
		assert.ErrorIs(t, err, domain.ErrTitleRequired)
		assert.Empty(t, api.Calls())
	})

	t.Run("anonymous users cannot submit", func(t *testing.T) {
		api := &fakePollAPI{}
		svc := NewPollService(api, anonymous(), zap.NewNop())

		draft := domain.NewPollDraft()
		draft.Title = "Lunch"
		draft.Options = []string{"A", "B"}

		_, err := svc.Submit(ctx, draft)
		assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
		assert.Empty(t, api.Calls())
	})

	t.Run("server failure preserves the draft", func(t *testing.T) {
		api := &fakePollAPI{createErr: &domain.RequestError{StatusCode: 400, Message: domain.GenericErrorMessage}}
		svc := NewPollService(api, authenticated(), zap.NewNop())

		draft := domain.NewPollDraft()
		draft.Title = "Lunch"
		draft.Description = "Friday"
		draft.Options = []string{"A", "B", "C"}
		snapshot := *draft
		snapshot.Options = append([]string(nil), draft.Options...)

		_, err := svc.Submit(ctx, draft)
		assert.EqualError(t, err, domain.GenericErrorMessage)
		assert.Equal(t, &snapshot, draft)
	})
}

func TestPollService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("requires a session", func(t *testing.T) {
		api := &fakePollAPI{}
		err := NewPollService(api, anonymous(), zap.NewNop()).Delete(ctx, 3)
		assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
		assert.Empty(t, api.Calls())
	})

	t.Run("sends the request", func(t *testing.T) {
		api := &fakePollAPI{}
		require.NoError(t, NewPollService(api, authenticated(), zap.NewNop()).Delete(ctx, 3))
		assert.Equal(t, []int64{3}, api.deletes)
	})

	t.Run("server refusal is wrapped", func(t *testing.T) {
		denied := &domain.RequestError{StatusCode: 403, Message: domain.ErrNotPollCreator.Error()}
		api := &fakePollAPI{deleteErr: denied}

		err := NewPollService(api, authenticated(), zap.NewNop()).Delete(ctx, 3)
		var reqErr *domain.RequestError
		require.ErrorAs(t, err, &reqErr)
		assert.Equal(t, 403, reqErr.StatusCode)
	})
}

func TestPollService_GetAndResults(t *testing.T) {
	api := &fakePollAPI{detail: map[int64]domain.Poll{3: {ID: 3, Title: "Q", TotalVotes: 4}}}
	svc := NewPollService(api, anonymous(), zap.NewNop())
	ctx := context.Background()

	p, err := svc.Get(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, "Q", p.Title)

	results, err := svc.Results(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, 4, results.TotalVotes)

	_, err = svc.Get(ctx, 4)
	var reqErr *domain.RequestError
	assert.ErrorAs(t, err, &reqErr)
}
