package ports

import (
	"context"

	"github.com/vncsmyrnk/pollctl/internal/core/domain"
)

// FeedService decides which poll collection is displayed. Setters report
// whether the state changed; callers issue one Refresh per change.
type FeedService interface {
	SetMode(mode domain.FeedMode) bool
	SetSearch(term string) bool
	SetStatus(status domain.StatusFilter) bool
	SetSort(sort domain.SortKey) bool
	SetFilter(filter domain.FeedFilter) (bool, error)

	Mode() domain.FeedMode
	Filter() domain.FeedFilter

	Refresh(ctx context.Context) (domain.Feed, error)
	Reset()
	Current() domain.Feed
	Poll(ctx context.Context, id int64) (*domain.Poll, error)
}
