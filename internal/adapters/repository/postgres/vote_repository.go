package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vncsmyrnk/pollctl/internal/core/domain"
)

// Vote records userID's vote for optionID. The rules are checked in the same
// order as the memory repository so the first failing one is reported. The
// option's poll is locked for the duration of the check.
func (r *pollRepository) Vote(ctx context.Context, userID, pollID, optionID int64) (*domain.Vote, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists bool
	if err := tx.QueryRowContext(ctx, "SELECT EXISTS (SELECT 1 FROM polls WHERE id = $1)", pollID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("failed to get poll: %w", err)
	}
	if !exists {
		return nil, domain.ErrPollNotFound
	}

	var ownerID int64
	err = tx.QueryRowContext(ctx, "SELECT poll_id FROM poll_options WHERE id = $1", optionID).Scan(&ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrOptionNotFound
		}
		return nil, fmt.Errorf("failed to get option: %w", err)
	}

	var (
		active, multiple bool
		expiresAt        sql.NullTime
	)
	err = tx.QueryRowContext(ctx,
		"SELECT is_active, allow_multiple_votes, expires_at FROM polls WHERE id = $1 FOR UPDATE", ownerID,
	).Scan(&active, &multiple, &expiresAt)
	if err != nil {
		return nil, fmt.Errorf("failed to lock poll: %w", err)
	}

	now := r.now()
	if !active {
		return nil, domain.ErrPollInactive
	}
	if expiresAt.Valid && now.After(expiresAt.Time) {
		return nil, domain.ErrPollExpired
	}

	previous, err := userVotes(ctx, tx, ownerID, userID)
	if err != nil {
		return nil, err
	}
	for _, voted := range previous {
		if !multiple {
			return nil, domain.ErrAlreadyVoted
		}
		if voted == optionID {
			return nil, domain.ErrOptionAlreadyVoted
		}
	}
	if ownerID != pollID {
		return nil, domain.ErrForeignOption
	}

	var (
		voteID  int64
		votedAt time.Time
	)
	err = tx.QueryRowContext(ctx, `
		INSERT INTO votes (user_id, poll_id, option_id, voted_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, voted_at
	`, userID, pollID, optionID, now).Scan(&voteID, &votedAt)
	if err != nil {
		switch {
		case hasCode(err, uniqueViolation):
			return nil, domain.ErrOptionAlreadyVoted
		case hasCode(err, foreignKeyViolation):
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to insert vote: %w", err)
	}

	user, err := getUser(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	options, _, err := pollOptions(ctx, tx, pollID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	vote := &domain.Vote{
		ID:      voteID,
		User:    *user,
		VotedAt: votedAt,
	}
	for _, opt := range options {
		if opt.ID == optionID {
			vote.Option = opt
		}
	}
	return vote, nil
}

func (r *pollRepository) Results(ctx context.Context, pollID int64) (*domain.PollResults, error) {
	var (
		results   = &domain.PollResults{PollID: pollID}
		expiresAt sql.NullTime
	)
	err := r.db.QueryRowContext(ctx,
		"SELECT title, is_active, expires_at FROM polls WHERE id = $1", pollID,
	).Scan(&results.PollTitle, &results.IsActive, &expiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrPollNotFound
		}
		return nil, fmt.Errorf("failed to get poll: %w", err)
	}
	results.IsExpired = expiresAt.Valid && r.now().After(expiresAt.Time)

	options, total, err := pollOptions(ctx, r.db, pollID)
	if err != nil {
		return nil, err
	}
	results.TotalVotes = total
	results.Results = make([]domain.OptionResult, 0, len(options))
	for _, opt := range options {
		results.Results = append(results.Results, domain.OptionResult{
			ID:         opt.ID,
			Text:       opt.Text,
			VoteCount:  opt.VoteCount,
			Percentage: opt.VotePercentage,
		})
	}
	return results, nil
}
