package domain

import (
	"fmt"
	"math"
	"slices"
	"strings"
	"time"
)

type Poll struct {
	ID                 int64      `json:"id"`
	Title              string     `json:"title"`
	Description        string     `json:"description,omitempty"`
	CreatedBy          User       `json:"created_by"`
	CreatedAt          time.Time  `json:"created_at"`
	ExpiresAt          *time.Time `json:"expires_at"`
	IsActive           bool       `json:"is_active"`
	IsExpired          bool       `json:"is_expired"`
	AllowMultipleVotes bool       `json:"allow_multiple_votes"`
	TotalVotes         int        `json:"total_votes"`
	OptionCount        int        `json:"option_count"`
	Options            []Option   `json:"options,omitempty"`
	UserVotes          []int64    `json:"user_votes,omitempty"`
}

type Option struct {
	ID             int64   `json:"id"`
	Text           string  `json:"text"`
	Order          int     `json:"order"`
	VoteCount      int     `json:"vote_count"`
	VotePercentage float64 `json:"vote_percentage"`
}

type PollResults struct {
	PollID     int64          `json:"poll_id"`
	PollTitle  string         `json:"poll_title"`
	TotalVotes int            `json:"total_votes"`
	Results    []OptionResult `json:"results"`
	IsExpired  bool           `json:"is_expired"`
	IsActive   bool           `json:"is_active"`
}

type OptionResult struct {
	ID         int64   `json:"id"`
	Text       string  `json:"text"`
	VoteCount  int     `json:"vote_count"`
	Percentage float64 `json:"percentage"`
}

type Vote struct {
	ID      int64     `json:"id"`
	Option  Option    `json:"option"`
	User    User      `json:"user"`
	VotedAt time.Time `json:"voted_at"`
}

type CreatePollInput struct {
	Title              string     `json:"title"`
	Description        string     `json:"description"`
	ExpiresAt          *time.Time `json:"expires_at"`
	AllowMultipleVotes bool       `json:"allow_multiple_votes"`
	Options            []string   `json:"options"`
	// IsActive defaults to true when omitted.
	IsActive *bool `json:"is_active,omitempty"`
}

// PollPage is the normalized poll collection. The API returns either a bare
// array or a paginated envelope; both decode into this shape.
type PollPage struct {
	Items    []Poll
	Count    int
	Next     string
	Previous string
}

// PollStatus is the badge shown on a poll card.
type PollStatus string

const (
	PollStatusActive   PollStatus = "Active"
	PollStatusExpired  PollStatus = "Expired"
	PollStatusInactive PollStatus = "Inactive"
)

func (p Poll) Status() PollStatus {
	switch {
	case p.IsExpired:
		return PollStatusExpired
	case !p.IsActive:
		return PollStatusInactive
	default:
		return PollStatusActive
	}
}

// HasVoted reports whether the viewer cast at least one vote on p.
func (p Poll) HasVoted() bool {
	return len(p.UserVotes) > 0
}

func (p Poll) VotedFor(optionID int64) bool {
	return slices.Contains(p.UserVotes, optionID)
}

func (p Poll) Option(optionID int64) (Option, bool) {
	for _, opt := range p.Options {
		if opt.ID == optionID {
			return opt, true
		}
	}
	return Option{}, false
}

// CanVote is the vote eligibility predicate: the viewer is authenticated, the
// poll is active and not expired, and the viewer has not voted yet unless the
// poll allows multiple votes.
func CanVote(session Session, p Poll) bool {
	if !session.Authenticated() {
		return false
	}
	if !p.IsActive || p.IsExpired {
		return false
	}
	return !p.HasVoted() || p.AllowMultipleVotes
}

// ShowsResults reports whether options render as read-only result bars.
func (p Poll) ShowsResults(resultsMode bool) bool {
	return resultsMode || p.HasVoted()
}

// NormalizeCreatePoll applies the server's creation rules: title required,
// options trimmed and deduplicated case-insensitively keeping the first
// spelling, between 2 and 10 of them, and an expiry in the future.
func NormalizeCreatePoll(input CreatePollInput, now time.Time) (CreatePollInput, ValidationErrors) {
	errs := ValidationErrors{}

	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" {
		errs.Add("title", FieldRequiredMessage)
	}
	input.Description = strings.TrimSpace(input.Description)

	switch n := len(input.Options); {
	case input.Options == nil:
		errs.Add("options", FieldRequiredMessage)
	case n < MinPollOptions:
		errs.Add("options", fmt.Sprintf("Ensure this field has at least %d elements.", MinPollOptions))
	case n > MaxPollOptions:
		errs.Add("options", fmt.Sprintf("Ensure this field has no more than %d elements.", MaxPollOptions))
	default:
		seen := make(map[string]struct{}, n)
		unique := make([]string, 0, n)
		for _, opt := range input.Options {
			text := strings.TrimSpace(opt)
			key := strings.ToLower(text)
			if _, dup := seen[key]; dup || text == "" {
				continue
			}
			seen[key] = struct{}{}
			unique = append(unique, text)
		}
		if len(unique) < MinPollOptions {
			errs.Add("options", "At least 2 unique options are required.")
		}
		input.Options = unique
	}

	if input.ExpiresAt != nil && !input.ExpiresAt.After(now) {
		errs.Add("expires_at", ErrExpiryInPast.Error())
	}

	if errs.Empty() {
		return input, nil
	}
	return input, errs
}

// Percentage is count's share of total in percent, rounded to two decimals.
func Percentage(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(count)/float64(total)*100*100) / 100
}
