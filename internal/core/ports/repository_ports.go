package ports

import (
	"context"

	"github.com/vncsmyrnk/pollctl/internal/core/domain"
)

// UserRepository and PollRepository back the development API server.

type UserRepository interface {
	Create(ctx context.Context, user domain.User, passwordHash string) (*domain.User, error)
	// GetByUsername returns the user and its password hash.
	GetByUsername(ctx context.Context, username string) (*domain.User, string, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

type PollRepository interface {
	List(ctx context.Context, query domain.ListQuery) ([]domain.Poll, error)
	ListCreatedBy(ctx context.Context, userID int64) ([]domain.Poll, error)
	ListVotedBy(ctx context.Context, userID int64) ([]domain.Poll, error)
	// GetByID returns the detail view of a poll. viewerID 0 is anonymous.
	GetByID(ctx context.Context, id, viewerID int64) (*domain.Poll, error)
	Save(ctx context.Context, userID int64, input domain.CreatePollInput) (*domain.Poll, error)
	Vote(ctx context.Context, userID, pollID, optionID int64) (*domain.Vote, error)
	Results(ctx context.Context, pollID int64) (*domain.PollResults, error)
	// Delete removes a poll with its options and votes. Only the creator may
	// delete it; anyone else gets domain.ErrNotPollCreator.
	Delete(ctx context.Context, id, userID int64) error
}
