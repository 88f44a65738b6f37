package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeedMode(t *testing.T) {
	for _, mode := range []FeedMode{FeedAll, FeedMine, FeedVoted} {
		parsed, err := ParseFeedMode(mode.String())
		require.NoError(t, err)
		assert.Equal(t, mode, parsed)
	}

	_, err := ParseFeedMode("popular")
	assert.Error(t, err)
	assert.Equal(t, "FeedMode(9)", FeedMode(9).String())
}

func TestFeedFilter_Query(t *testing.T) {
	tests := []struct {
		status  StatusFilter
		showAll bool
	}{
		{StatusActive, false},
		{StatusAll, true},
		{StatusExpired, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			q := FeedFilter{Search: "go", Status: tt.status, Sort: SortTitle}.Query()
			assert.Equal(t, tt.showAll, q.ShowAll)

			v := q.Values()
			assert.Equal(t, "go", v.Get("search"))
			assert.Equal(t, "title", v.Get("ordering"))
			if tt.showAll {
				assert.Equal(t, "true", v.Get("show_all"))
			} else {
				assert.False(t, v.Has("show_all"))
			}
		})
	}
}

func TestListQuery_Values(t *testing.T) {
	assert.Empty(t, ListQuery{}.Values())
	assert.Equal(t, "page=2", ListQuery{Page: 2}.Values().Encode())
}

func TestFilterCycles(t *testing.T) {
	assert.Equal(t, StatusAll, StatusActive.Next())
	assert.Equal(t, StatusExpired, StatusAll.Next())
	assert.Equal(t, StatusActive, StatusExpired.Next())
	assert.Equal(t, StatusActive, StatusFilter("junk").Next())

	assert.Equal(t, SortOldest, SortNewest.Next())
	assert.Equal(t, SortTitle, SortOldest.Next())
	assert.Equal(t, SortNewest, SortTitle.Next())
	assert.Equal(t, "Alphabetical", SortTitle.Label())

	assert.NoError(t, DefaultFeedFilter().Validate())
	assert.Error(t, FeedFilter{Status: StatusAll, Sort: "votes"}.Validate())
}

func TestSortKey_OrderField(t *testing.T) {
	tests := []struct {
		key   SortKey
		field string
		desc  bool
	}{
		{SortNewest, "created_at", true},
		{SortOldest, "created_at", false},
		{SortTitle, "title", false},
		{"-expires_at", "expires_at", true},
		{" -title ", "title", true},
		{"votes", "created_at", true},
		{"", "created_at", true},
	}
	for _, tt := range tests {
		field, desc := tt.key.OrderField()
		assert.Equal(t, tt.field, field, string(tt.key))
		assert.Equal(t, tt.desc, desc, string(tt.key))
	}
}
