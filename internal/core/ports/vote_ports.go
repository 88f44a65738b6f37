package ports

import (
	"context"

	"github.com/vncsmyrnk/pollctl/internal/core/domain"
)

type VoteService interface {
	Vote(ctx context.Context, poll domain.Poll, optionID int64) error
	View(poll domain.Poll, resultsMode bool) domain.PollView
	InFlight(pollID int64) bool
	OnVoted(fn func(pollID int64))
}
