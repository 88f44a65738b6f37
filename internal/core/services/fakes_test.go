package services

import (
	"context"
	"errors"
	"sync"

	"github.com/vncsmyrnk/pollctl/internal/core/domain"
)

type fakeAuthAPI struct {
	mu         sync.Mutex
	users      map[string]string
	profiles   map[string]domain.User
	profileErr error
	// refreshes maps a refresh token to the access token it yields.
	refreshes  map[string]string
	refreshErr error
	calls      []string
}

func newFakeAuthAPI() *fakeAuthAPI {
	return &fakeAuthAPI{
		users:     map[string]string{},
		profiles:  map[string]domain.User{},
		refreshes: map[string]string{},
	}
}

func (f *fakeAuthAPI) record(call string) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
}

func (f *fakeAuthAPI) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeAuthAPI) Login(ctx context.Context, username, password string) (*domain.AuthResult, error) {
	f.record("login")
	if pw, ok := f.users[username]; !ok || pw != password {
		return nil, &domain.AuthError{Message: "Invalid credentials"}
	}
	token := "token-" + username
	user := domain.User{ID: int64(len(f.profiles) + 1), Username: username}
	f.profiles[token] = user
	return &domain.AuthResult{User: user, Tokens: domain.Tokens{Access: token, Refresh: "refresh-" + username}}, nil
}

func (f *fakeAuthAPI) Register(ctx context.Context, input domain.RegisterInput) (*domain.AuthResult, error) {
	f.record("register")
	if _, taken := f.users[input.Username]; taken {
		return nil, domain.ValidationErrors{"username": {domain.ErrUsernameTaken.Error()}}
	}
	f.users[input.Username] = input.Password
	return f.Login(ctx, input.Username, input.Password)
}

func (f *fakeAuthAPI) Refresh(ctx context.Context, refresh string) (*domain.Tokens, error) {
	f.record("refresh")
	if f.refreshErr != nil {
		return nil, f.refreshErr
	}
	access, ok := f.refreshes[refresh]
	if !ok {
		return nil, &domain.RequestError{StatusCode: 401, Message: domain.ErrTokenNotValid.Error()}
	}
	return &domain.Tokens{Access: access, Refresh: refresh}, nil
}

func (f *fakeAuthAPI) Profile(ctx context.Context, token string) (*domain.User, error) {
	f.record("profile")
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.profileErr != nil {
		return nil, f.profileErr
	}
	user, ok := f.profiles[token]
	if !ok {
		return nil, &domain.RequestError{StatusCode: 401, Message: "Given token not valid for any token type"}
	}
	return &user, nil
}

type fakeTokenStore struct {
	tokens  domain.Tokens
	saveErr error
	loadErr error
	saves   int
	clears  int
}

func (s *fakeTokenStore) Load() (domain.Tokens, error) {
	return s.tokens, s.loadErr
}

func (s *fakeTokenStore) Save(tokens domain.Tokens) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saves++
	s.tokens = tokens
	return nil
}

func (s *fakeTokenStore) Clear() error {
	s.clears++
	s.tokens = domain.Tokens{}
	return nil
}

// fakePollAPI records calls and answers from canned data. Hooks let a test
// block or fail individual calls.
type fakePollAPI struct {
	mu sync.Mutex

	polls   []domain.Poll
	mine    []domain.Poll
	voted   []domain.Poll
	detail  map[int64]domain.Poll
	created *domain.Poll

	listErr   error
	voteErr   error
	createErr error
	deleteErr error

	// onList runs before ListPolls answers; it may block.
	onList func(ctx context.Context, query domain.ListQuery) error
	// onVote runs before Vote answers; it may block.
	onVote func(ctx context.Context) error

	listQueries []domain.ListQuery
	calls       []string
	votes       [][2]int64
	creates     []domain.CreatePollInput
	deletes     []int64
}

func (f *fakePollAPI) record(call string) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
}

func (f *fakePollAPI) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakePollAPI) ListPolls(ctx context.Context, query domain.ListQuery) (domain.PollPage, error) {
	f.record("list")
	f.mu.Lock()
	f.listQueries = append(f.listQueries, query)
	hook, polls, err := f.onList, f.polls, f.listErr
	f.mu.Unlock()

	if hook != nil {
		if err := hook(ctx, query); err != nil {
			return domain.PollPage{}, err
		}
	}
	if err != nil {
		return domain.PollPage{}, err
	}
	return domain.PollPage{Items: polls, Count: len(polls)}, nil
}

func (f *fakePollAPI) MyPolls(ctx context.Context) (domain.PollPage, error) {
	f.record("my_polls")
	return domain.PollPage{Items: f.mine, Count: len(f.mine)}, nil
}

func (f *fakePollAPI) MyVotes(ctx context.Context) (domain.PollPage, error) {
	f.record("my_votes")
	return domain.PollPage{Items: f.voted, Count: len(f.voted)}, nil
}

func (f *fakePollAPI) GetPoll(ctx context.Context, id int64) (*domain.Poll, error) {
	f.record("get")
	p, ok := f.detail[id]
	if !ok {
		return nil, &domain.RequestError{StatusCode: 404, Message: "Not found."}
	}
	return &p, nil
}

func (f *fakePollAPI) CreatePoll(ctx context.Context, input domain.CreatePollInput) (*domain.Poll, error) {
	f.record("create")
	f.mu.Lock()
	f.creates = append(f.creates, input)
	f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	if f.created != nil {
		return f.created, nil
	}
	return &domain.Poll{ID: 1, Title: input.Title}, nil
}

func (f *fakePollAPI) DeletePoll(ctx context.Context, id int64) error {
	f.record("delete")
	f.mu.Lock()
	f.deletes = append(f.deletes, id)
	f.mu.Unlock()
	return f.deleteErr
}

func (f *fakePollAPI) Vote(ctx context.Context, pollID, optionID int64) (*domain.Vote, error) {
	f.record("vote")
	f.mu.Lock()
	f.votes = append(f.votes, [2]int64{pollID, optionID})
	hook, err := f.onVote, f.voteErr
	f.mu.Unlock()

	if hook != nil {
		if err := hook(ctx); err != nil {
			return nil, err
		}
	}
	if err != nil {
		return nil, err
	}
	return &domain.Vote{ID: 1, Option: domain.Option{ID: optionID}}, nil
}

func (f *fakePollAPI) Results(ctx context.Context, pollID int64) (*domain.PollResults, error) {
	f.record("results")
	p, ok := f.detail[pollID]
	if !ok {
		return nil, errors.New("not found")
	}
	return &domain.PollResults{PollID: p.ID, PollTitle: p.Title, TotalVotes: p.TotalVotes}, nil
}

// fixedSession is a read-only SessionService for poll and vote tests.
type fixedSession struct {
	session domain.Session
}

func authenticated() *fixedSession {
	return &fixedSession{session: domain.Session{Token: "t", User: &domain.User{ID: 1, Username: "alice"}}}
}

func anonymous() *fixedSession {
	return &fixedSession{}
}

func (s *fixedSession) Token() string                    { return s.session.Token }
func (s *fixedSession) Current() domain.Session          { return s.session }
func (s *fixedSession) Ready() bool                      { return true }
func (s *fixedSession) OnChange(fn func(domain.Session)) {}
func (s *fixedSession) Logout()                          { s.session = domain.Session{} }
func (s *fixedSession) Restore(ctx context.Context) domain.Session {
	return s.session
}
func (s *fixedSession) Login(ctx context.Context, username, password string) error {
	return errors.New("not supported")
}
func (s *fixedSession) Register(ctx context.Context, input domain.RegisterInput) error {
	return errors.New("not supported")
}
