package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vncsmyrnk/pollctl/internal/core/domain"
)

func openPoll() domain.Poll {
	return domain.Poll{
		ID:       7,
		Title:    "Lunch",
		IsActive: true,
		Options: []domain.Option{
			{ID: 70, Text: "Pizza"},
			{ID: 71, Text: "Sushi"},
		},
	}
}

func TestVoteService_Eligibility(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		session *fixedSession
		poll    func(p *domain.Poll)
	}{
		{"anonymous viewer", anonymous(), func(p *domain.Poll) {}},
		{"expired poll", authenticated(), func(p *domain.Poll) { p.IsExpired = true }},
		{"inactive poll", authenticated(), func(p *domain.Poll) { p.IsActive = false }},
		{"already voted on single vote poll", authenticated(), func(p *domain.Poll) { p.UserVotes = []int64{70} }},
		{"expired multi vote poll", authenticated(), func(p *domain.Poll) {
			p.AllowMultipleVotes = true
			p.IsExpired = true
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakePollAPI{}
			svc := NewVoteService(api, tt.session, zap.NewNop())
			p := openPoll()
			tt.poll(&p)

			err := svc.Vote(ctx, p, 71)
			assert.ErrorIs(t, err, domain.ErrVoteNotAllowed)
			assert.Empty(t, api.Calls())
		})
	}
}

func TestVoteService_InvalidOption(t *testing.T) {
	api := &fakePollAPI{}
	svc := NewVoteService(api, authenticated(), zap.NewNop())

	err := svc.Vote(context.Background(), openPoll(), 999)
	assert.ErrorIs(t, err, domain.ErrInvalidOption)
	assert.Empty(t, api.Calls())
}

func TestVoteService_Success(t *testing.T) {
	api := &fakePollAPI{}
	svc := NewVoteService(api, authenticated(), zap.NewNop())

	var notified []int64
	svc.OnVoted(func(pollID int64) { notified = append(notified, pollID) })

	require.NoError(t, svc.Vote(context.Background(), openPoll(), 71))
	assert.Equal(t, [][2]int64{{7, 71}}, api.votes)
	assert.Equal(t, []int64{7}, notified)
	assert.False(t, svc.InFlight(7))
}

func TestVoteService_MultipleVotesAllowed(t *testing.T) {
	api := &fakePollAPI{}
	svc := NewVoteService(api, authenticated(), zap.NewNop())
	p := openPoll()
	p.AllowMultipleVotes = true
	p.UserVotes = []int64{70}

	require.NoError(t, svc.Vote(context.Background(), p, 71))
	assert.Len(t, api.votes, 1)
}

func TestVoteService_FailureReturnsServerMessage(t *testing.T) {
	api := &fakePollAPI{voteErr: &domain.RequestError{StatusCode: 400, Message: "Option does not belong to this poll."}}
	svc := NewVoteService(api, authenticated(), zap.NewNop())

	notified := false
	svc.OnVoted(func(int64) { notified = true })

	err := svc.Vote(context.Background(), openPoll(), 70)
	assert.EqualError(t, err, "Option does not belong to this poll.")
	assert.False(t, notified)
	assert.False(t, svc.InFlight(7), "the guard is released after a failure")
}

func TestVoteService_SecondVoteWhilePendingIsRefused(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	api := &fakePollAPI{}
	api.onVote = func(ctx context.Context) error {
		close(entered)
		<-release
		return nil
	}
	svc := NewVoteService(api, authenticated(), zap.NewNop())
	p := openPoll()

	var wg sync.WaitGroup
	wg.Add(1)
	var firstErr error
	go func() {
		defer wg.Done()
		firstErr = svc.Vote(context.Background(), p, 70)
	}()
	<-entered

	assert.True(t, svc.InFlight(p.ID))
	assert.True(t, svc.View(p, false).Voting)
	assert.ErrorIs(t, svc.Vote(context.Background(), p, 70), domain.ErrVoteInFlight)

	close(release)
	wg.Wait()

	require.NoError(t, firstErr)
	assert.Len(t, api.votes, 1, "only one vote request is sent")
}

func TestVoteService_View(t *testing.T) {
	p := openPoll()

	anon := NewVoteService(&fakePollAPI{}, anonymous(), zap.NewNop()).View(p, false)
	assert.False(t, anon.CanVote)
	assert.Contains(t, anon.Notices, domain.NoticeLoginToVote)
	for _, opt := range anon.Options {
		assert.False(t, opt.Enabled)
	}

	p.UserVotes = []int64{71}
	voted := NewVoteService(&fakePollAPI{}, authenticated(), zap.NewNop()).View(p, false)
	assert.True(t, voted.ShowResults)
	assert.Contains(t, voted.Notices, domain.NoticeVoted)
	assert.True(t, voted.Options[1].Selected)
	assert.False(t, voted.Options[0].Selected)
}
