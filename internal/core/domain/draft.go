package domain

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

const (
	MinPollOptions = 2
	MaxPollOptions = 10
)

// Accepted layouts for a draft's expiry, tried in order. The first two are
// interpreted in the local time zone.
var expiryLayouts = []string{
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	time.RFC3339,
}

// PollDraft is the editable state of the poll authoring form.
type PollDraft struct {
	Title              string
	Description        string
	ExpiresAt          string
	AllowMultipleVotes bool
	Options            []string
}

func NewPollDraft() *PollDraft {
	d := &PollDraft{}
	d.Reset()
	return d
}

// Reset puts the draft back to its initial shape: empty title, two empty
// options, single vote.
func (d *PollDraft) Reset() {
	d.Title = ""
	d.Description = ""
	d.ExpiresAt = ""
	d.AllowMultipleVotes = false
	d.Options = make([]string, MinPollOptions)
}

// Clone returns a copy that shares no state with d.
func (d *PollDraft) Clone() *PollDraft {
	c := *d
	c.Options = slices.Clone(d.Options)
	return &c
}

func (d *PollDraft) AddOption() error {
	if len(d.Options) >= MaxPollOptions {
		return ErrTooManyOptions
	}
	d.Options = append(d.Options, "")
	return nil
}

func (d *PollDraft) RemoveOption(index int) error {
	if index < 0 || index >= len(d.Options) {
		return fmt.Errorf("option %d out of range", index+1)
	}
	if len(d.Options) <= MinPollOptions {
		return ErrTooFewOptions
	}
	d.Options = append(d.Options[:index], d.Options[index+1:]...)
	return nil
}

func (d *PollDraft) SetOption(index int, text string) error {
	if index < 0 || index >= len(d.Options) {
		return fmt.Errorf("option %d out of range", index+1)
	}
	d.Options[index] = text
	return nil
}

// Validate turns the draft into a creation request or explains why it
// cannot be submitted. Blank options are dropped and the rest trimmed; an
// empty expiry becomes nil so it is sent as null.
func (d *PollDraft) Validate() (CreatePollInput, error) {
	title := strings.TrimSpace(d.Title)
	if title == "" {
		return CreatePollInput{}, ErrTitleRequired
	}

	options := NormalizeOptions(d.Options)
	if len(options) < MinPollOptions {
		return CreatePollInput{}, ErrTooFewOptions
	}
	if len(options) > MaxPollOptions {
		return CreatePollInput{}, ErrTooManyOptions
	}

	expiresAt, err := ParseExpiry(d.ExpiresAt)
	if err != nil {
		return CreatePollInput{}, err
	}

	return CreatePollInput{
		Title:              title,
		Description:        strings.TrimSpace(d.Description),
		ExpiresAt:          expiresAt,
		AllowMultipleVotes: d.AllowMultipleVotes,
		Options:            options,
	}, nil
}

func NormalizeOptions(options []string) []string {
	out := make([]string, 0, len(options))
	for _, opt := range options {
		if t := strings.TrimSpace(opt); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func ParseExpiry(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	for _, layout := range expiryLayouts {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrInvalidExpiry, value)
}
