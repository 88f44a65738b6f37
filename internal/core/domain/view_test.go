package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPollView(t *testing.T) {
	signedIn := Session{Token: "t", User: &User{ID: 1}}
	poll := Poll{
		IsActive: true,
		Options:  []Option{{ID: 1}, {ID: 2}},
	}

	t.Run("votable poll", func(t *testing.T) {
		v := NewPollView(signedIn, poll, false, false)
		assert.True(t, v.CanVote)
		assert.False(t, v.ShowResults)
		assert.Empty(t, v.Notices)
		for _, opt := range v.Options {
			assert.True(t, opt.Enabled)
		}
	})

	t.Run("vote in flight disables options", func(t *testing.T) {
		v := NewPollView(signedIn, poll, false, true)
		assert.True(t, v.Voting)
		assert.False(t, v.Options[0].Enabled)
	})

	t.Run("anonymous sees login notice", func(t *testing.T) {
		v := NewPollView(Session{}, poll, false, false)
		assert.False(t, v.CanVote)
		assert.Equal(t, []string{NoticeLoginToVote}, v.Notices)
		assert.False(t, v.Options[0].Enabled)
	})

	t.Run("voted poll shows results and selection", func(t *testing.T) {
		p := poll
		p.UserVotes = []int64{2}
		v := NewPollView(signedIn, p, false, false)
		assert.True(t, v.ShowResults)
		assert.Equal(t, []string{NoticeVoted}, v.Notices)
		assert.True(t, v.Options[1].Selected)
	})

	t.Run("results mode hides the voted notice", func(t *testing.T) {
		p := poll
		p.UserVotes = []int64{2}
		v := NewPollView(signedIn, p, true, false)
		assert.True(t, v.ShowResults)
		assert.Empty(t, v.Notices)
	})

	t.Run("expired poll in results mode", func(t *testing.T) {
		p := poll
		p.IsExpired = true
		v := NewPollView(signedIn, p, true, false)
		assert.False(t, v.CanVote)
		assert.True(t, v.ShowResults)
	})
}
