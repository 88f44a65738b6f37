package ports

import (
	"context"

	"github.com/vncsmyrnk/pollctl/internal/core/domain"
)

type PollAPI interface {
	ListPolls(ctx context.Context, query domain.ListQuery) (domain.PollPage, error)
	MyPolls(ctx context.Context) (domain.PollPage, error)
	MyVotes(ctx context.Context) (domain.PollPage, error)
	GetPoll(ctx context.Context, id int64) (*domain.Poll, error)
	CreatePoll(ctx context.Context, input domain.CreatePollInput) (*domain.Poll, error)
	DeletePoll(ctx context.Context, id int64) error
	Vote(ctx context.Context, pollID, optionID int64) (*domain.Vote, error)
	Results(ctx context.Context, pollID int64) (*domain.PollResults, error)
}

type PollService interface {
	Submit(ctx context.Context, draft *domain.PollDraft) (*domain.Poll, error)
	Get(ctx context.Context, id int64) (*domain.Poll, error)
	Results(ctx context.Context, id int64) (*domain.PollResults, error)
	Delete(ctx context.Context, id int64) error
	OnCreated(fn func(domain.Poll))
}
