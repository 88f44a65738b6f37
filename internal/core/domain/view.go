package domain

const (
	NoticeLoginToVote = "Please log in to vote"
	NoticeVoted       = "You have voted in this poll"
)

// PollView is everything a surface needs to draw one poll card.
type PollView struct {
	Poll        Poll
	CanVote     bool
	ShowResults bool
	Voting      bool
	Options     []OptionView
	Notices     []string
}

type OptionView struct {
	Option   Option
	Selected bool
	// Enabled is false when the option is rendered as a choice that cannot
	// be clicked right now.
	Enabled bool
}

func NewPollView(session Session, p Poll, resultsMode, voting bool) PollView {
	view := PollView{
		Poll:        p,
		CanVote:     CanVote(session, p),
		ShowResults: p.ShowsResults(resultsMode),
		Voting:      voting,
	}

	for _, opt := range p.Options {
		view.Options = append(view.Options, OptionView{
			Option:   opt,
			Selected: p.VotedFor(opt.ID),
			Enabled:  !view.ShowResults && view.CanVote && !voting,
		})
	}

	if !session.Authenticated() {
		view.Notices = append(view.Notices, NoticeLoginToVote)
	}
	if p.HasVoted() && !resultsMode {
		view.Notices = append(view.Notices, NoticeVoted)
	}
	return view
}
