package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/vncsmyrnk/pollctl/internal/core/domain"
	"github.com/vncsmyrnk/pollctl/internal/core/ports"
)

type feedService struct {
	api    ports.PollAPI
	logger *zap.Logger
	now    func() time.Time

	mu         sync.Mutex
	mode       domain.FeedMode
	filter     domain.FeedFilter
	generation uint64
	cancel     context.CancelFunc
	current    domain.Feed
}

func NewFeedService(api ports.PollAPI, logger *zap.Logger) ports.FeedService {
	return &feedService{
		api:    api,
		logger: logger,
		now:    time.Now,
		filter: domain.DefaultFeedFilter(),
	}
}

func (s *feedService) SetMode(mode domain.FeedMode) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mode == mode {
		return false
	}
	s.mode = mode
	return true
}

func (s *feedService) SetSearch(term string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.filter.Search == term {
		return false
	}
	s.filter.Search = term
	return true
}

func (s *feedService) SetStatus(status domain.StatusFilter) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.filter.Status == status || !status.Valid() {
		return false
	}
	s.filter.Status = status
	return true
}

func (s *feedService) SetSort(sort domain.SortKey) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.filter.Sort == sort || !sort.Valid() {
		return false
	}
	s.filter.Sort = sort
	return true
}

func (s *feedService) SetFilter(filter domain.FeedFilter) (bool, error) {
	if err := filter.Validate(); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.filter == filter {
		return false, nil
	}
	s.filter = filter
	return true, nil
}

func (s *feedService) Mode() domain.FeedMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

func (s *feedService) Filter() domain.FeedFilter {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter
}

// Refresh fetches the collection for the current mode and filter. A newer
// Refresh or a Reset supersedes this one: its request is cancelled and its
// result is dropped with ErrStaleFeed instead of overwriting newer state.
func (s *feedService) Refresh(ctx context.Context) (domain.Feed, error) {
	s.mu.Lock()
	s.generation++
	generation := s.generation
	if s.cancel != nil {
		s.cancel()
	}
	fetchCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	mode, filter := s.mode, s.filter
	s.mu.Unlock()

	defer cancel()

	page, err := s.fetch(fetchCtx, mode, filter)

	s.mu.Lock()
	defer s.mu.Unlock()

	if generation != s.generation {
		s.logger.Debug("dropping stale feed response",
			zap.Uint64("generation", generation),
			zap.Uint64("current", s.generation),
		)
		return domain.Feed{}, domain.ErrStaleFeed
	}
	s.cancel = nil

	if err != nil {
		return domain.Feed{}, fmt.Errorf("failed to fetch %s polls: %w", mode, err)
	}

	polls := page.Items
	if mode == domain.FeedAll && filter.Status == domain.StatusExpired {
		polls = expiredOnly(polls)
	}

	s.current = domain.Feed{
		Mode:       mode,
		Filter:     filter,
		Polls:      polls,
		Generation: generation,
		FetchedAt:  s.now(),
	}
	return s.current, nil
}

func (s *feedService) fetch(ctx context.Context, mode domain.FeedMode, filter domain.FeedFilter) (domain.PollPage, error) {
	switch mode {
	case domain.FeedMine:
		return s.api.MyPolls(ctx)
	case domain.FeedVoted:
		return s.api.MyVotes(ctx)
	default:
		return s.api.ListPolls(ctx, filter.Query())
	}
}

// Reset drops the committed feed and invalidates any fetch in flight. It is
// called when the session changes.
func (s *feedService) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.current = domain.Feed{}
}

func (s *feedService) Current() domain.Feed {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

func (s *feedService) Poll(ctx context.Context, id int64) (*domain.Poll, error) {
	poll, err := s.api.GetPoll(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch poll %d: %w", id, err)
	}
	return poll, nil
}

func expiredOnly(polls []domain.Poll) []domain.Poll {
	out := make([]domain.Poll, 0, len(polls))
	for _, p := range polls {
		if p.IsExpired {
			out = append(out, p)
		}
	}
	return out
}
