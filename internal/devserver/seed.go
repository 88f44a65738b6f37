package devserver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vncsmyrnk/pollctl/internal/core/domain"
)

const (
	DemoUsername = "demo"
	DemoPassword = "demo"
)

var ErrAlreadySeeded = errors.New("demo data already present")

type seedPoll struct {
	title    string
	desc     string
	options  []string
	multiple bool
	inactive bool
	expires  time.Duration
	// votes maps a seeded voter to the option indexes they pick.
	votes map[string][]int
}

var seedPolls = []seedPoll{
	{
		title:   "Favorite programming language",
		desc:    "Pick the one you reach for first.",
		options: []string{"Go", "Python", "Rust", "TypeScript"},
		votes:   map[string][]int{"alice": {0}, "bob": {2}},
	},
	{
		title:    "Which snacks for the offsite?",
		options:  []string{"Fruit", "Chips", "Cookies"},
		multiple: true,
		votes:    map[string][]int{"alice": {0, 2}, "bob": {1}},
	},
	{
		title:   "Retro format",
		desc:    "Closes soon.",
		options: []string{"Start/Stop/Continue", "4Ls", "Sailboat"},
		expires: 2 * time.Hour,
		votes:   map[string][]int{"bob": {1}},
	},
	{
		title:    "Old office layout survey",
		options:  []string{"Open plan", "Pods"},
		inactive: true,
	},
}

// Seed creates the demo account plus a few voters and polls. The demo
// account starts without votes. Seeding a database that already has the demo
// account returns ErrAlreadySeeded.
func (s *Server) Seed(ctx context.Context) error {
	demo, err := s.createUser(ctx, DemoUsername, DemoPassword, "Demo", "User")
	if errors.Is(err, domain.ErrUsernameTaken) {
		return ErrAlreadySeeded
	}
	if err != nil {
		return err
	}
	authors := []int64{demo.ID}
	voters := make(map[string]int64)
	for _, name := range []string{"alice", "bob"} {
		u, err := s.createUser(ctx, name, name, "", "")
		if err != nil {
			return err
		}
		authors = append(authors, u.ID)
		voters[name] = u.ID
	}

	for i, sp := range seedPolls {
		input := domain.CreatePollInput{
			Title:              sp.title,
			Description:        sp.desc,
			Options:            sp.options,
			AllowMultipleVotes: sp.multiple,
		}
		if sp.inactive {
			active := false
			input.IsActive = &active
		}
		if sp.expires > 0 {
			at := time.Now().Add(sp.expires)
			input.ExpiresAt = &at
		}

		author := authors[i%len(authors)]
		poll, err := s.Polls.Save(ctx, author, input)
		if err != nil {
			return fmt.Errorf("failed to seed poll %q: %w", sp.title, err)
		}

		for name, picks := range sp.votes {
			for _, idx := range picks {
				if _, err := s.Polls.Vote(ctx, voters[name], poll.ID, poll.Options[idx].ID); err != nil {
					return fmt.Errorf("failed to seed vote on %q: %w", sp.title, err)
				}
			}
		}
	}
	return nil
}

func (s *Server) createUser(ctx context.Context, username, password, first, last string) (*domain.User, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user, err := s.Users.Create(ctx, domain.User{
		Username:  username,
		Email:     username + "@example.com",
		FirstName: first,
		LastName:  last,
	}, hash)
	if err != nil {
		return nil, fmt.Errorf("failed to seed user %s: %w", username, err)
	}
	return user, nil
}
