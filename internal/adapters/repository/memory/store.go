// Package memory keeps the development server's users, polls and votes in
// process memory.
package memory

import (
	"cmp"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/vncsmyrnk/pollctl/internal/core/domain"
)

type userRecord struct {
	user         domain.User
	passwordHash string
}

type pollRecord struct {
	id                 int64
	title              string
	description        string
	createdBy          int64
	createdAt          time.Time
	expiresAt          *time.Time
	isActive           bool
	allowMultipleVotes bool
	options            []domain.Option
}

type voteRecord struct {
	id       int64
	userID   int64
	pollID   int64
	optionID int64
	votedAt  time.Time
}

// Store is the shared state behind the memory repositories. All access goes
// through mu.
type Store struct {
	mu  sync.RWMutex
	now func() time.Time

	lastUserID   int64
	lastPollID   int64
	lastOptionID int64
	lastVoteID   int64

	users     map[int64]*userRecord
	usernames map[string]int64
	polls     map[int64]*pollRecord
	votes     []voteRecord
}

func NewStore() *Store {
	return &Store{
		now:       time.Now,
		users:     make(map[int64]*userRecord),
		usernames: make(map[string]int64),
		polls:     make(map[int64]*pollRecord),
	}
}

// SetClock replaces the time source. Used by tests and seeding.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	s.now = now
	s.mu.Unlock()
}

func (p *pollRecord) expired(now time.Time) bool {
	return p.expiresAt != nil && now.After(*p.expiresAt)
}

func (p *pollRecord) hasOption(optionID int64) bool {
	for _, opt := range p.options {
		if opt.ID == optionID {
			return true
		}
	}
	return false
}

// counts returns the votes per option of p and their total. Callers hold mu.
func (s *Store) counts(p *pollRecord) (map[int64]int, int) {
	counts := make(map[int64]int, len(p.options))
	total := 0
	for _, v := range s.votes {
		if v.pollID == p.id {
			counts[v.optionID]++
			total++
		}
	}
	return counts, total
}

// listView renders the list representation of p. Callers hold mu.
func (s *Store) listView(p *pollRecord) domain.Poll {
	_, total := s.counts(p)
	poll := domain.Poll{
		ID:                 p.id,
		Title:              p.title,
		Description:        p.description,
		CreatedAt:          p.createdAt,
		ExpiresAt:          p.expiresAt,
		IsActive:           p.isActive,
		IsExpired:          p.expired(s.now()),
		AllowMultipleVotes: p.allowMultipleVotes,
		TotalVotes:         total,
		OptionCount:        len(p.options),
	}
	if author, ok := s.users[p.createdBy]; ok {
		poll.CreatedBy = author.user
	}
	return poll
}

// detailView adds options with their counts and the viewer's votes.
func (s *Store) detailView(p *pollRecord, viewerID int64) domain.Poll {
	poll := s.listView(p)
	counts, total := s.counts(p)

	poll.Options = make([]domain.Option, 0, len(p.options))
	for _, opt := range p.options {
		opt.VoteCount = counts[opt.ID]
		opt.VotePercentage = domain.Percentage(opt.VoteCount, total)
		poll.Options = append(poll.Options, opt)
	}

	poll.UserVotes = []int64{}
	if viewerID != 0 {
		for _, v := range s.votes {
			if v.pollID == p.id && v.userID == viewerID {
				poll.UserVotes = append(poll.UserVotes, v.optionID)
			}
		}
	}
	return poll
}

type orderKey struct {
	field string
	desc  bool
}

func parseOrdering(ordering domain.SortKey) orderKey {
	field, desc := ordering.OrderField()
	return orderKey{field: field, desc: desc}
}

// sortPolls orders records by key with id as the tie breaker. Missing expiry
// dates sort after every date, as they do in PostgreSQL.
func sortPolls(records []*pollRecord, key orderKey) {
	slices.SortStableFunc(records, func(a, b *pollRecord) int {
		var c int
		switch key.field {
		case "title":
			c = cmp.Compare(strings.ToLower(a.title), strings.ToLower(b.title))
		case "expires_at":
			c = compareExpiry(a.expiresAt, b.expiresAt)
		default:
			c = a.createdAt.Compare(b.createdAt)
		}
		if c == 0 {
			c = cmp.Compare(a.id, b.id)
		}
		if key.desc {
			return -c
		}
		return c
	})
}

func compareExpiry(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	default:
		return a.Compare(*b)
	}
}

// matchesSearch requires every whitespace separated term to appear in the
// title or the description, ignoring case.
func matchesSearch(p *pollRecord, search string) bool {
	title, description := strings.ToLower(p.title), strings.ToLower(p.description)
	for _, term := range strings.Fields(strings.ToLower(search)) {
		if !strings.Contains(title, term) && !strings.Contains(description, term) {
			return false
		}
	}
	return true
}
