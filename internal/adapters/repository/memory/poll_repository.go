package memory

import (
	"context"
	"slices"

	"github.com/vncsmyrnk/pollctl/internal/core/domain"
	"github.com/vncsmyrnk/pollctl/internal/core/ports"
)

type pollRepository struct {
	store *Store
}

func NewPollRepository(store *Store) ports.PollRepository {
	return &pollRepository{
		store: store,
	}
}

// List hides inactive and expired polls unless ShowAll is set.
func (r *pollRepository) List(ctx context.Context, query domain.ListQuery) ([]domain.Poll, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.now()
	return s.collect(parseOrdering(query.Ordering), func(p *pollRecord) bool {
		if !query.ShowAll && (!p.isActive || p.expired(now)) {
			return false
		}
		return matchesSearch(p, query.Search)
	}), nil
}

func (r *pollRepository) ListCreatedBy(ctx context.Context, userID int64) ([]domain.Poll, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.collect(parseOrdering(domain.SortNewest), func(p *pollRecord) bool {
		return p.createdBy == userID
	}), nil
}

func (r *pollRepository) ListVotedBy(ctx context.Context, userID int64) ([]domain.Poll, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	voted := make(map[int64]struct{})
	for _, v := range s.votes {
		if v.userID == userID {
			voted[v.pollID] = struct{}{}
		}
	}
	return s.collect(parseOrdering(domain.SortNewest), func(p *pollRecord) bool {
		_, ok := voted[p.id]
		return ok
	}), nil
}

// collect returns the list views of the records accepted by keep, sorted.
// Callers hold mu.
func (s *Store) collect(key orderKey, keep func(*pollRecord) bool) []domain.Poll {
	records := make([]*pollRecord, 0, len(s.polls))
	for _, p := range s.polls {
		if keep(p) {
			records = append(records, p)
		}
	}
	sortPolls(records, key)

	polls := make([]domain.Poll, 0, len(records))
	for _, p := range records {
		polls = append(polls, s.listView(p))
	}
	return polls
}

func (r *pollRepository) GetByID(ctx context.Context, id, viewerID int64) (*domain.Poll, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.polls[id]
	if !ok {
		return nil, domain.ErrPollNotFound
	}
	poll := s.detailView(p, viewerID)
	return &poll, nil
}

// Save stores a poll whose input already passed domain.NormalizeCreatePoll.
func (r *pollRepository) Save(ctx context.Context, userID int64, input domain.CreatePollInput) (*domain.Poll, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[userID]; !ok {
		return nil, domain.ErrUserNotFound
	}

	s.lastPollID++
	p := &pollRecord{
		id:                 s.lastPollID,
		title:              input.Title,
		description:        input.Description,
		createdBy:          userID,
		createdAt:          s.now(),
		expiresAt:          input.ExpiresAt,
		isActive:           input.IsActive == nil || *input.IsActive,
		allowMultipleVotes: input.AllowMultipleVotes,
	}
	for i, text := range input.Options {
		s.lastOptionID++
		p.options = append(p.options, domain.Option{ID: s.lastOptionID, Text: text, Order: i})
	}
	s.polls[p.id] = p

	poll := s.detailView(p, userID)
	return &poll, nil
}

// Vote records userID's vote for optionID. The checks run in the order the
// production backend applies them, so the first failing rule is reported.
func (r *pollRepository) Vote(ctx context.Context, userID, pollID, optionID int64) (*domain.Vote, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	poll, ok := s.polls[pollID]
	if !ok {
		return nil, domain.ErrPollNotFound
	}

	var owner *pollRecord
	for _, p := range s.polls {
		if p.hasOption(optionID) {
			owner = p
			break
		}
	}
	if owner == nil {
		return nil, domain.ErrOptionNotFound
	}

	now := s.now()
	if !owner.isActive {
		return nil, domain.ErrPollInactive
	}
	if owner.expired(now) {
		return nil, domain.ErrPollExpired
	}
	for _, v := range s.votes {
		if v.userID != userID || v.pollID != owner.id {
			continue
		}
		if !owner.allowMultipleVotes {
			return nil, domain.ErrAlreadyVoted
		}
		if v.optionID == optionID {
			return nil, domain.ErrOptionAlreadyVoted
		}
	}
	if owner.id != poll.id {
		return nil, domain.ErrForeignOption
	}

	s.lastVoteID++
	record := voteRecord{
		id:       s.lastVoteID,
		userID:   userID,
		pollID:   poll.id,
		optionID: optionID,
		votedAt:  now,
	}
	s.votes = append(s.votes, record)

	counts, total := s.counts(poll)
	vote := &domain.Vote{
		ID:      record.id,
		User:    s.users[userID].user,
		VotedAt: record.votedAt,
	}
	for _, opt := range poll.options {
		if opt.ID == optionID {
			opt.VoteCount = counts[opt.ID]
			opt.VotePercentage = domain.Percentage(opt.VoteCount, total)
			vote.Option = opt
		}
	}
	return vote, nil
}

func (r *pollRepository) Results(ctx context.Context, pollID int64) (*domain.PollResults, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.polls[pollID]
	if !ok {
		return nil, domain.ErrPollNotFound
	}

	counts, total := s.counts(p)
	results := &domain.PollResults{
		PollID:     p.id,
		PollTitle:  p.title,
		TotalVotes: total,
		Results:    make([]domain.OptionResult, 0, len(p.options)),
		IsExpired:  p.expired(s.now()),
		IsActive:   p.isActive,
	}
	for _, opt := range p.options {
		results.Results = append(results.Results, domain.OptionResult{
			ID:         opt.ID,
			Text:       opt.Text,
			VoteCount:  counts[opt.ID],
			Percentage: domain.Percentage(counts[opt.ID], total),
		})
	}
	return results, nil
}

func (r *pollRepository) Delete(ctx context.Context, id, userID int64) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.polls[id]
	if !ok {
		return domain.ErrPollNotFound
	}
	if p.createdBy != userID {
		return domain.ErrNotPollCreator
	}

	delete(s.polls, id)
	s.votes = slices.DeleteFunc(s.votes, func(v voteRecord) bool {
		return v.pollID == id
	})
	return nil
}
