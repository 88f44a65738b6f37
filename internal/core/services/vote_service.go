package services

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/vncsmyrnk/pollctl/internal/core/domain"
	"github.com/vncsmyrnk/pollctl/internal/core/ports"
)

type voteService struct {
	api     ports.PollAPI
	session ports.SessionService
	logger  *zap.Logger

	mu        sync.Mutex
	inFlight  map[int64]struct{}
	listeners []func(pollID int64)
}

func NewVoteService(api ports.PollAPI, session ports.SessionService, logger *zap.Logger) ports.VoteService {
	return &voteService{
		api:      api,
		session:  session,
		logger:   logger,
		inFlight: make(map[int64]struct{}),
	}
}

// Vote casts a vote on poll. Ineligible votes and votes issued while another
// one for the same poll is pending are refused without a request. Errors from
// the server are returned as-is so their message can be shown verbatim.
func (s *voteService) Vote(ctx context.Context, poll domain.Poll, optionID int64) error {
	if !domain.CanVote(s.session.Current(), poll) {
		return domain.ErrVoteNotAllowed
	}
	if len(poll.Options) > 0 {
		if _, ok := poll.Option(optionID); !ok {
			return domain.ErrInvalidOption
		}
	}

	if !s.acquire(poll.ID) {
		return domain.ErrVoteInFlight
	}
	defer s.release(poll.ID)

	if _, err := s.api.Vote(ctx, poll.ID, optionID); err != nil {
		s.logger.Debug("vote failed",
			zap.Int64("poll_id", poll.ID),
			zap.Int64("option_id", optionID),
			zap.Error(err),
		)
		return err
	}

	s.notify(poll.ID)
	return nil
}

func (s *voteService) View(poll domain.Poll, resultsMode bool) domain.PollView {
	return domain.NewPollView(s.session.Current(), poll, resultsMode, s.InFlight(poll.ID))
}

func (s *voteService) InFlight(pollID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.inFlight[pollID]
	return ok
}

func (s *voteService) OnVoted(fn func(pollID int64)) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

func (s *voteService) acquire(pollID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[pollID]; busy {
		return false
	}
	s.inFlight[pollID] = struct{}{}
	return true
}

func (s *voteService) release(pollID int64) {
	s.mu.Lock()
	delete(s.inFlight, pollID)
	s.mu.Unlock()
}

func (s *voteService) notify(pollID int64) {
	s.mu.Lock()
	listeners := append([]func(int64){}, s.listeners...)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(pollID)
	}
}
