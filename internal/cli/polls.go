package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/pflag"

	"github.com/vncsmyrnk/pollctl/internal/adapters/render"
	"github.com/vncsmyrnk/pollctl/internal/adapters/tui"
	"github.com/vncsmyrnk/pollctl/internal/core/domain"
)

const cardWidth = 60

func (a *app) pollsCommand() *Command {
	return &Command{
		Name:    "polls",
		Summary: "List, show, create and delete polls",
		Subcommands: []*Command{
			a.pollsListCommand(),
			a.pollsShowCommand(),
			a.pollsResultsCommand(),
			a.pollsCreateCommand(),
			a.pollsDeleteCommand(),
		},
	}
}

func (a *app) pollsListCommand() *Command {
	var (
		mode   string
		filter = domain.DefaultFeedFilter()
		status string
		sort   string
		asJSON bool
	)

	return &Command{
		Name:    "list",
		Summary: "List polls",
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("list", pflag.ContinueOnError)
			fs.StringVar(&mode, "mode", "all", "which polls: all, mine or voted")
			fs.StringVar(&filter.Search, "search", "", "match title or description")
			fs.StringVar(&status, "status", string(domain.StatusActive), "active, all or expired")
			fs.StringVar(&sort, "sort", string(domain.SortNewest), "-created_at, created_at or title")
			fs.BoolVar(&asJSON, "json", false, "print JSON")
			return fs
		},
		Run: a.run(func(ctx context.Context, args []string) error {
			feedMode, err := domain.ParseFeedMode(mode)
			if err != nil {
				return err
			}
			if feedMode != domain.FeedAll {
				if err := a.requireLogin(); err != nil {
					return err
				}
			}

			filter.Status = domain.StatusFilter(status)
			filter.Sort = domain.SortKey(sort)
			if _, err := a.feed.SetFilter(filter); err != nil {
				return err
			}
			a.feed.SetMode(feedMode)

			feed, err := a.feed.Refresh(ctx)
			if err != nil {
				return err
			}

			if asJSON {
				return a.printJSON(feed.Polls)
			}
			a.printPollTable(feed.Polls)
			return nil
		}),
	}
}

func (a *app) printPollTable(polls []domain.Poll) {
	if len(polls) == 0 {
		fmt.Fprintln(a.stdout, render.EmptyFeedMessage)
		return
	}

	tw := tabwriter.NewWriter(a.stdout, 2, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tSTATUS\tVOTES\tAUTHOR\tCREATED")
	for _, p := range polls {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			p.ID,
			p.Title,
			p.Status(),
			humanize.Comma(int64(p.TotalVotes)),
			p.CreatedBy.DisplayName(),
			humanize.Time(p.CreatedAt),
		)
	}
	tw.Flush()
}

func (a *app) pollsShowCommand() *Command {
	var results, asJSON bool

	return &Command{
		Name:    "show",
		Summary: "Show a poll and its options",
		Usage:   "pollctl polls show <id> [--results] [--json]",
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("show", pflag.ContinueOnError)
			fs.BoolVar(&results, "results", false, "show result bars even before voting")
			fs.BoolVar(&asJSON, "json", false, "print JSON")
			return fs
		},
		Run: a.run(func(ctx context.Context, args []string) error {
			id, err := pollIDArg(args)
			if err != nil {
				return err
			}
			poll, err := a.polls.Get(ctx, id)
			if err != nil {
				return err
			}
			if asJSON {
				return a.printJSON(poll)
			}
			fmt.Fprintln(a.stdout, a.renderer.PollCard(a.votes.View(*poll, results), cardWidth))
			return nil
		}),
	}
}

func (a *app) pollsResultsCommand() *Command {
	return &Command{
		Name:    "results",
		Summary: "Show the results of a poll",
		Usage:   "pollctl polls results <id>",
		Run: a.run(func(ctx context.Context, args []string) error {
			id, err := pollIDArg(args)
			if err != nil {
				return err
			}
			results, err := a.polls.Results(ctx, id)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.stdout, a.renderer.Results(*results, cardWidth))
			return nil
		}),
	}
}

func (a *app) pollsCreateCommand() *Command {
	var (
		draft   = domain.NewPollDraft()
		options []string
	)

	return &Command{
		Name:    "create",
		Summary: "Create a poll",
		Usage:   `pollctl polls create --title TITLE --option A --option B [flags]`,
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("create", pflag.ContinueOnError)
			fs.StringVar(&draft.Title, "title", "", "poll question")
			fs.StringVar(&draft.Description, "description", "", "longer description")
			fs.StringVar(&draft.ExpiresAt, "expires", "", `expiry, "2006-01-02 15:04" local time or RFC 3339`)
			fs.BoolVar(&draft.AllowMultipleVotes, "multiple", false, "allow voting for more than one option")
			fs.StringArrayVar(&options, "option", nil, "an option (repeat 2 to 10 times)")
			return fs
		},
		Run: a.run(func(ctx context.Context, args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument: %s", args[0])
			}
			if len(options) > 0 {
				draft.Options = options
			}

			poll, err := a.polls.Submit(ctx, draft)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "Created poll #%d\n\n", poll.ID)
			fmt.Fprintln(a.stdout, a.renderer.PollCard(a.votes.View(*poll, false), cardWidth))
			return nil
		}),
	}
}

func (a *app) pollsDeleteCommand() *Command {
	return &Command{
		Name:    "delete",
		Summary: "Delete a poll you created",
		Usage:   "pollctl polls delete <id>",
		Run: a.run(func(ctx context.Context, args []string) error {
			id, err := pollIDArg(args)
			if err != nil {
				return err
			}
			if err := a.requireLogin(); err != nil {
				return err
			}
			if err := a.polls.Delete(ctx, id); err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "Deleted poll #%d\n", id)
			return nil
		}),
	}
}

func (a *app) voteCommand() *Command {
	var byID bool

	return &Command{
		Name:    "vote",
		Summary: "Vote for an option of a poll",
		Usage:   "pollctl vote <poll-id> <option-number> [--option-id]",
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("vote", pflag.ContinueOnError)
			fs.BoolVar(&byID, "option-id", false, "treat the option as an option ID instead of its number")
			return fs
		},
		Run: a.run(func(ctx context.Context, args []string) error {
			if len(args) != 2 {
				return errors.New("usage: pollctl vote <poll-id> <option-number>")
			}
			pollID, err := pollIDArg(args[:1])
			if err != nil {
				return err
			}
			if err := a.requireLogin(); err != nil {
				return err
			}

			poll, err := a.polls.Get(ctx, pollID)
			if err != nil {
				return err
			}
			option, err := resolveOption(*poll, args[1], byID)
			if err != nil {
				return err
			}

			if err := a.votes.Vote(ctx, *poll, option.ID); err != nil {
				return err
			}

			fmt.Fprintf(a.stdout, "Voted for %q\n\n", option.Text)
			if updated, err := a.polls.Get(ctx, pollID); err == nil {
				fmt.Fprintln(a.stdout, a.renderer.PollCard(a.votes.View(*updated, true), cardWidth))
			}
			return nil
		}),
	}
}

func (a *app) tuiCommand() *Command {
	return &Command{
		Name:    "tui",
		Summary: "Open the interactive dashboard",
		Run: func(ctx context.Context, _ []string) error {
			if err := a.open(true); err != nil {
				return err
			}
			a.session.Restore(ctx)
			return tui.Run(ctx, tui.Services{
				Session: a.session,
				Feed:    a.feed,
				Votes:   a.votes,
				Polls:   a.polls,
			})
		},
	}
}

// resolveOption accepts the option's 1-based position as listed by
// "polls show", or its ID when byID is set.
func resolveOption(poll domain.Poll, arg string, byID bool) (domain.Option, error) {
	n, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return domain.Option{}, fmt.Errorf("invalid option %q", arg)
	}
	if byID {
		if opt, ok := poll.Option(n); ok {
			return opt, nil
		}
		return domain.Option{}, fmt.Errorf("%w: no option with ID %d", domain.ErrInvalidOption, n)
	}
	if n < 1 || int(n) > len(poll.Options) {
		return domain.Option{}, fmt.Errorf("%w: pick 1 to %d", domain.ErrInvalidOption, len(poll.Options))
	}
	return poll.Options[n-1], nil
}

func pollIDArg(args []string) (int64, error) {
	if len(args) != 1 {
		return 0, errors.New("a poll ID is required")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid poll ID %q", args[0])
	}
	return id, nil
}

func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

