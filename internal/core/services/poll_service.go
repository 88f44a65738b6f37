package services

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/vncsmyrnk/pollctl/internal/core/domain"
	"github.com/vncsmyrnk/pollctl/internal/core/ports"
)

type pollService struct {
	api     ports.PollAPI
	session ports.SessionService
	logger  *zap.Logger

	mu        sync.Mutex
	listeners []func(domain.Poll)
}

func NewPollService(api ports.PollAPI, session ports.SessionService, logger *zap.Logger) ports.PollService {
	return &pollService{
		api:     api,
		session: session,
		logger:  logger,
	}
}

// Submit validates the draft and creates the poll. On success the draft is
// reset; on any failure it is left as the user typed it.
func (s *pollService) Submit(ctx context.Context, draft *domain.PollDraft) (*domain.Poll, error) {
	input, err := draft.Validate()
	if err != nil {
		return nil, err
	}
	if !s.session.Current().Authenticated() {
		return nil, domain.ErrNotAuthenticated
	}

	poll, err := s.api.CreatePoll(ctx, input)
	if err != nil {
		return nil, err
	}

	draft.Reset()
	s.logger.Debug("poll created", zap.Int64("poll_id", poll.ID), zap.Int("options", len(input.Options)))

	s.mu.Lock()
	listeners := append([]func(domain.Poll){}, s.listeners...)
	s.mu.Unlock()
	for _, fn := range listeners {
		fn(*poll)
	}
	return poll, nil
}

func (s *pollService) Get(ctx context.Context, id int64) (*domain.Poll, error) {
	poll, err := s.api.GetPoll(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get poll %d: %w", id, err)
	}
	return poll, nil
}

func (s *pollService) Results(ctx context.Context, id int64) (*domain.PollResults, error) {
	results, err := s.api.Results(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get results for poll %d: %w", id, err)
	}
	return results, nil
}

func (s *pollService) Delete(ctx context.Context, id int64) error {
	if !s.session.Current().Authenticated() {
		return domain.ErrNotAuthenticated
	}
	if err := s.api.DeletePoll(ctx, id); err != nil {
		return fmt.Errorf("failed to delete poll %d: %w", id, err)
	}
	s.logger.Debug("poll deleted", zap.Int64("poll_id", id))
	return nil
}

func (s *pollService) OnCreated(fn func(domain.Poll)) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}
