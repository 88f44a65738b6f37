package render

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/vncsmyrnk/pollctl/internal/core/domain"
)

func newTestRenderer() *Renderer {
	r := New(Theme{})
	r.now = func() time.Time { return time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC) }
	return r
}

func samplePoll() domain.Poll {
	return domain.Poll{
		ID:          1,
		Title:       "Lunch",
		Description: "Where to?",
		CreatedBy:   domain.User{Username: "alice", FirstName: "Alice"},
		CreatedAt:   time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC),
		IsActive:    true,
		TotalVotes:  4,
		OptionCount: 2,
		Options: []domain.Option{
			{ID: 1, Text: "Pizza", VoteCount: 3, VotePercentage: 75},
			{ID: 2, Text: "Sushi", VoteCount: 1, VotePercentage: 25},
		},
	}
}

func TestPollCard_Choices(t *testing.T) {
	r := newTestRenderer()
	session := domain.Session{Token: "t", User: &domain.User{ID: 9}}

	out := r.PollCard(domain.NewPollView(session, samplePoll(), false, false), 60)

	assert.Contains(t, out, "Lunch [Active]")
	assert.Contains(t, out, "Where to?")
	assert.Contains(t, out, "by Alice · 2 hours ago · 4 votes · 2 options")
	assert.Contains(t, out, " 1. Pizza")
	assert.Contains(t, out, " 2. Sushi")
	assert.NotContains(t, out, "█")
}

func TestPollCard_Results(t *testing.T) {
	r := newTestRenderer()
	p := samplePoll()
	p.UserVotes = []int64{1}
	session := domain.Session{Token: "t", User: &domain.User{ID: 9}}

	out := r.PollCard(domain.NewPollView(session, p, false, false), 40)

	assert.Contains(t, out, "✓ Pizza")
	assert.Contains(t, out, " 75.00% (3)")
	assert.Contains(t, out, " 25.00% (1)")
	assert.Contains(t, out, domain.NoticeVoted)

	// 40 columns leave a 20 cell bar: 75% is 15 filled cells.
	assert.Contains(t, out, strings.Repeat("█", 15)+strings.Repeat("░", 5))
}

func TestPollCard_AnonymousNotice(t *testing.T) {
	r := newTestRenderer()
	out := r.PollCard(domain.NewPollView(domain.Session{}, samplePoll(), false, false), 60)
	assert.Contains(t, out, domain.NoticeLoginToVote)
}

func TestPollCard_Badges(t *testing.T) {
	r := newTestRenderer()
	p := samplePoll()

	p.IsExpired = true
	expires := time.Date(2026, 5, 31, 12, 0, 0, 0, time.UTC)
	p.ExpiresAt = &expires
	out := r.PollCard(domain.NewPollView(domain.Session{}, p, true, false), 60)
	assert.Contains(t, out, "[Expired]")
	assert.Contains(t, out, "expired 1 day ago")

	p = samplePoll()
	p.IsActive = false
	assert.Contains(t, r.PollCard(domain.NewPollView(domain.Session{}, p, true, false), 60), "[Inactive]")
}

func TestFeed(t *testing.T) {
	r := newTestRenderer()

	assert.Equal(t, EmptyFeedMessage, r.Feed(nil, 0))

	out := r.Feed([]domain.Poll{samplePoll(), {Title: "Other", IsActive: true, TotalVotes: 1}}, 1)
	lines := strings.Split(out, "\n")
	assert.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "  Lunch"))
	assert.True(t, strings.HasPrefix(lines[1], "> Other"))
	assert.Contains(t, lines[1], "1 vote")
}

func TestResults(t *testing.T) {
	r := newTestRenderer()
	out := r.Results(domain.PollResults{
		PollTitle:  "Lunch",
		TotalVotes: 1200,
		IsActive:   true,
		Results: []domain.OptionResult{
			{Text: "Pizza", VoteCount: 1200, Percentage: 100},
			{Text: "Sushi", VoteCount: 0, Percentage: 0},
		},
	}, 60)

	assert.Contains(t, out, "Lunch [Active]")
	assert.Contains(t, out, "1,200 votes")
	assert.Contains(t, out, "100.00% (1,200)")
	assert.Contains(t, out, strings.Repeat("░", maxBarWidth))
}

func TestError(t *testing.T) {
	assert.Equal(t, "Error: boom", newTestRenderer().Error(errors.New("boom")))
}
