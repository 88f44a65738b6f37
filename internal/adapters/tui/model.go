// Package tui is the interactive poll dashboard.
package tui

import (
	"context"
	"errors"
	"maps"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vncsmyrnk/pollctl/internal/adapters/render"
	"github.com/vncsmyrnk/pollctl/internal/core/domain"
	"github.com/vncsmyrnk/pollctl/internal/core/ports"
)

type Services struct {
	Session ports.SessionService
	Feed    ports.FeedService
	Votes   ports.VoteService
	Polls   ports.PollService
}

// Focus identifies which region receives key events.
type Focus int

const (
	FocusList Focus = iota
	FocusOptions
	FocusSearch
	FocusForm
)

type feedLoadedMsg struct {
	feed domain.Feed
	err  error
}

type pollLoadedMsg struct {
	id   int64
	poll *domain.Poll
	err  error
}

type voteResultMsg struct {
	pollID int64
	err    error
}

type pollCreatedMsg struct {
	poll *domain.Poll
	err  error
}

// votedMsg and createdMsg are forwarded from service listeners.
type votedMsg struct {
	pollID int64
}

type createdMsg struct {
	poll domain.Poll
}

type Model struct {
	ctx      context.Context
	services Services
	renderer *render.Renderer
	keys     KeyMap
	help     help.Model

	focus   Focus
	feed    domain.Feed
	cursor  int
	loading bool

	// detail is the poll whose options are focused; nil while it loads.
	detailID     int64
	detail       *domain.Poll
	optionCursor int
	resultsMode  bool

	// voting holds the polls whose vote command has not answered yet.
	voting map[int64]bool

	search textinput.Model
	form   *pollForm

	// err is shown as a banner until dismissed.
	err    error
	notice string

	width  int
	height int
}

func NewModel(ctx context.Context, services Services) Model {
	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "search title or description"
	search.SetValue(services.Feed.Filter().Search)

	return Model{
		ctx:      ctx,
		services: services,
		renderer: render.New(render.DefaultTheme),
		keys:     DefaultKeyMap,
		help:     help.New(),
		search:   search,
		feed:     services.Feed.Current(),
		loading:  true,
	}
}

func (model Model) Init() tea.Cmd {
	return model.refreshFeed()
}

// Run starts the dashboard and blocks until the user quits or ctx ends.
func Run(ctx context.Context, services Services, opts ...tea.ProgramOption) error {
	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts...)
	program := tea.NewProgram(NewModel(ctx, services), opts...)

	// Listeners may fire from inside Update, where a synchronous Send
	// would block the event loop.
	services.Votes.OnVoted(func(pollID int64) {
		go program.Send(votedMsg{pollID: pollID})
	})
	services.Polls.OnCreated(func(poll domain.Poll) {
		go program.Send(createdMsg{poll: poll})
	})

	_, err := program.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func (model Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch message := message.(type) {
	case tea.WindowSizeMsg:
		model.width = message.Width
		model.height = message.Height
		model.help.Width = message.Width
		model.search.Width = max(message.Width-4, 10)
		return model, nil

	case feedLoadedMsg:
		return model.handleFeedLoaded(message)

	case pollLoadedMsg:
		if message.id != model.detailID {
			return model, nil
		}
		if message.err != nil {
			model.err = message.err
			return model, nil
		}
		model.detail = message.poll
		model.optionCursor = min(model.optionCursor, max(len(message.poll.Options)-1, 0))
		return model, nil

	case voteResultMsg:
		model.voting = without(model.voting, message.pollID)
		if message.err != nil && !errors.Is(message.err, domain.ErrVoteInFlight) {
			model.err = message.err
		}
		return model, nil

	case votedMsg:
		commands := []tea.Cmd{model.refreshFeed()}
		if message.pollID == model.detailID {
			commands = append(commands, model.loadPoll(message.pollID))
		}
		return model, tea.Batch(commands...)

	case pollCreatedMsg:
		if model.form == nil {
			return model, nil
		}
		model.form.submitting = false
		if message.err != nil {
			model.form.err = message.err
			return model, nil
		}
		model.form = nil
		model.focus = FocusList
		model.notice = "Created poll \"" + message.poll.Title + "\""
		return model, nil

	case createdMsg:
		return model, model.refreshFeed()

	case tea.KeyMsg:
		return model.handleKey(message)
	}

	if model.focus == FocusSearch {
		var cmd tea.Cmd
		model.search, cmd = model.search.Update(message)
		return model, cmd
	}
	return model, nil
}

func (model Model) handleFeedLoaded(message feedLoadedMsg) (tea.Model, tea.Cmd) {
	if errors.Is(message.err, domain.ErrStaleFeed) {
		return model, nil
	}
	model.loading = false
	if message.err != nil {
		model.err = message.err
		return model, nil
	}
	model.feed = message.feed
	model.cursor = min(model.cursor, max(len(model.feed.Polls)-1, 0))
	return model, nil
}

func (model Model) handleKey(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	if message.Type == tea.KeyCtrlC {
		return model, tea.Quit
	}
	if model.err != nil {
		if key.Matches(message, model.keys.Dismiss) {
			model.err = nil
		}
		return model, nil
	}

	switch model.focus {
	case FocusSearch:
		return model.handleSearchKeys(message)
	case FocusForm:
		return model.handleFormKeys(message)
	case FocusOptions:
		return model.handleDetailKeys(message)
	}
	return model.handleListKeys(message)
}

func (model Model) handleListKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	model.notice = ""

	switch {
	case key.Matches(message, model.keys.Quit):
		return model, tea.Quit

	case key.Matches(message, model.keys.Up):
		if model.cursor > 0 {
			model.cursor--
		}

	case key.Matches(message, model.keys.Down):
		if model.cursor < len(model.feed.Polls)-1 {
			model.cursor++
		}

	case key.Matches(message, model.keys.TabAll):
		return model.switchMode(domain.FeedAll)
	case key.Matches(message, model.keys.TabMine):
		return model.switchMode(domain.FeedMine)
	case key.Matches(message, model.keys.TabVoted):
		return model.switchMode(domain.FeedVoted)

	case key.Matches(message, model.keys.Open):
		if model.cursor < len(model.feed.Polls) {
			return model.openPoll(model.feed.Polls[model.cursor].ID)
		}

	case key.Matches(message, model.keys.Search):
		model.focus = FocusSearch
		model.search.SetValue(model.services.Feed.Filter().Search)
		model.search.CursorEnd()
		return model, model.search.Focus()

	case key.Matches(message, model.keys.Status):
		next := model.services.Feed.Filter().Status.Next()
		if model.services.Feed.SetStatus(next) {
			return model.startRefresh()
		}

	case key.Matches(message, model.keys.Sort):
		next := model.services.Feed.Filter().Sort.Next()
		if model.services.Feed.SetSort(next) {
			return model.startRefresh()
		}

	case key.Matches(message, model.keys.Refresh):
		return model.startRefresh()

	case key.Matches(message, model.keys.NewPoll):
		if !model.services.Session.Current().Authenticated() {
			model.err = domain.ErrNotAuthenticated
			return model, nil
		}
		model.form = newPollForm()
		model.focus = FocusForm
		return model, model.form.focusField(0)

	case key.Matches(message, model.keys.Logout):
		return model.logout()

	case key.Matches(message, model.keys.Help):
		model.help.ShowAll = !model.help.ShowAll
	}
	return model, nil
}

func (model Model) handleDetailKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(message, model.keys.Quit):
		return model, tea.Quit

	case key.Matches(message, model.keys.Back):
		model.focus = FocusList
		model.detailID = 0
		model.detail = nil

	case key.Matches(message, model.keys.Up):
		if model.optionCursor > 0 {
			model.optionCursor--
		}

	case key.Matches(message, model.keys.Down):
		if model.detail != nil && model.optionCursor < len(model.detail.Options)-1 {
			model.optionCursor++
		}

	case key.Matches(message, model.keys.Vote):
		if model.detail == nil || model.optionCursor >= len(model.detail.Options) {
			return model, nil
		}
		pollID := model.detail.ID
		if model.voting[pollID] || model.services.Votes.InFlight(pollID) {
			return model, nil
		}
		model.voting = with(model.voting, pollID)
		return model, model.castVote(*model.detail, model.detail.Options[model.optionCursor].ID)

	case key.Matches(message, model.keys.Results):
		model.resultsMode = !model.resultsMode

	case key.Matches(message, model.keys.Refresh):
		return model, tea.Batch(model.refreshFeed(), model.loadPoll(model.detailID))
	}
	return model, nil
}

func (model Model) handleSearchKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch message.Type {
	case tea.KeyEsc:
		model.focus = FocusList
		model.search.Blur()
		model.search.SetValue(model.services.Feed.Filter().Search)
		return model, nil

	case tea.KeyEnter:
		model.focus = FocusList
		model.search.Blur()
		if model.services.Feed.SetSearch(model.search.Value()) {
			return model.startRefresh()
		}
		return model, nil
	}

	var cmd tea.Cmd
	model.search, cmd = model.search.Update(message)
	return model, cmd
}

func (model Model) switchMode(mode domain.FeedMode) (tea.Model, tea.Cmd) {
	if mode != domain.FeedAll && !model.services.Session.Current().Authenticated() {
		return model, nil
	}
	if !model.services.Feed.SetMode(mode) {
		return model, nil
	}
	model.cursor = 0
	return model.startRefresh()
}

func (model Model) openPoll(id int64) (tea.Model, tea.Cmd) {
	model.focus = FocusOptions
	model.detailID = id
	model.detail = nil
	model.optionCursor = 0
	return model, model.loadPoll(id)
}

// logout drops the session and falls back to the public feed.
func (model Model) logout() (tea.Model, tea.Cmd) {
	if !model.services.Session.Current().Authenticated() {
		return model, nil
	}
	model.services.Session.Logout()
	model.services.Feed.SetMode(domain.FeedAll)
	model.focus = FocusList
	model.detailID = 0
	model.detail = nil
	model.cursor = 0
	model.feed = domain.Feed{}
	model.notice = "Logged out"
	return model.startRefresh()
}

func (model Model) startRefresh() (tea.Model, tea.Cmd) {
	model.loading = true
	return model, model.refreshFeed()
}

func (model Model) refreshFeed() tea.Cmd {
	ctx, feed := model.ctx, model.services.Feed
	return func() tea.Msg {
		result, err := feed.Refresh(ctx)
		return feedLoadedMsg{feed: result, err: err}
	}
}

func (model Model) loadPoll(id int64) tea.Cmd {
	if id == 0 {
		return nil
	}
	ctx, feed := model.ctx, model.services.Feed
	return func() tea.Msg {
		poll, err := feed.Poll(ctx, id)
		return pollLoadedMsg{id: id, poll: poll, err: err}
	}
}

func (model Model) castVote(poll domain.Poll, optionID int64) tea.Cmd {
	ctx, votes := model.ctx, model.services.Votes
	return func() tea.Msg {
		return voteResultMsg{pollID: poll.ID, err: votes.Vote(ctx, poll, optionID)}
	}
}

// submitPoll sends a snapshot of draft so the form keeps its own state while
// the request runs.
func (model Model) submitPoll(draft *domain.PollDraft) tea.Cmd {
	ctx, polls := model.ctx, model.services.Polls
	draft = draft.Clone()
	return func() tea.Msg {
		poll, err := polls.Submit(ctx, draft)
		return pollCreatedMsg{poll: poll, err: err}
	}
}

// with and without return updated copies so earlier Model values keep their
// own set.
func with(set map[int64]bool, id int64) map[int64]bool {
	out := maps.Clone(set)
	if out == nil {
		out = map[int64]bool{}
	}
	out[id] = true
	return out
}

func without(set map[int64]bool, id int64) map[int64]bool {
	if !set[id] {
		return set
	}
	out := maps.Clone(set)
	delete(out, id)
	return out
}
