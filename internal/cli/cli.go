// Package cli implements the pollctl command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/vncsmyrnk/pollctl/internal/adapters/api"
	"github.com/vncsmyrnk/pollctl/internal/adapters/render"
	"github.com/vncsmyrnk/pollctl/internal/adapters/tokenstore"
	"github.com/vncsmyrnk/pollctl/internal/config"
	"github.com/vncsmyrnk/pollctl/internal/core/domain"
	"github.com/vncsmyrnk/pollctl/internal/core/ports"
	"github.com/vncsmyrnk/pollctl/internal/core/services"
	"github.com/vncsmyrnk/pollctl/internal/logging"
)

const userAgent = "pollctl"

var errLoginRequired = fmt.Errorf("%w: run 'pollctl login' first", domain.ErrNotAuthenticated)

// app holds the global options and, once opened, the wired services shared
// by every command.
type app struct {
	stdout io.Writer
	stderr io.Writer
	cfg    *config.Config

	apiURL    string
	tokenFile string
	verbose   bool

	logger   *zap.Logger
	session  ports.SessionService
	feed     ports.FeedService
	votes    ports.VoteService
	polls    ports.PollService
	renderer *render.Renderer
}

// Run executes one pollctl invocation and returns the process exit status.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	a := &app{stdout: stdout, stderr: stderr, cfg: cfg}

	flags := pflag.NewFlagSet("pollctl", pflag.ContinueOnError)
	flags.SetInterspersed(false)
	flags.SetOutput(io.Discard)
	flags.StringVar(&a.apiURL, "api-url", cfg.Client.APIURL, "poll API base URL")
	flags.StringVar(&a.tokenFile, "token-file", cfg.Client.TokenFile, "where the access token is kept")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "log API requests to stderr")

	root := a.rootCommand()
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			a.printRootHelp(root, flags)
			return 0
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if flags.NArg() == 0 {
		a.printRootHelp(root, flags)
		return 1
	}
	if isHelpFlag(flags.Arg(0)) {
		a.printRootHelp(root, flags)
		return 0
	}

	defer func() {
		if a.logger != nil {
			_ = a.logger.Sync()
		}
	}()

	if err := root.Execute(ctx, flags.Args(), stdout); err != nil {
		reportError(stderr, err)
		return 1
	}
	return 0
}

func (a *app) printRootHelp(root *Command, globals *pflag.FlagSet) {
	root.PrintHelp(a.stdout)
	fmt.Fprintf(a.stdout, "\nGlobal flags:\n%s", globals.FlagUsages())
}

func (a *app) rootCommand() *Command {
	return &Command{
		Name:    "pollctl",
		Summary: "Browse, vote on and create polls from the terminal.",
		Subcommands: []*Command{
			a.loginCommand(),
			a.registerCommand(),
			a.logoutCommand(),
			a.whoamiCommand(),
			a.pollsCommand(),
			a.voteCommand(),
			a.tuiCommand(),
		},
	}
}

// open wires the services. The TUI owns the terminal, so its logs go to the
// configured log file instead.
func (a *app) open(interactive bool) error {
	level := a.cfg.Log.Level
	if a.verbose {
		level = "debug"
	}

	var err error
	if interactive {
		a.logger, err = logging.NewFile(level, a.cfg.Log.File)
	} else {
		a.logger, err = logging.New(level)
	}
	if err != nil {
		return err
	}

	client, err := api.NewClient(a.apiURL, nil, a.logger, api.WithUserAgent(userAgent))
	if err != nil {
		return err
	}

	session := services.NewSessionService(client, tokenstore.NewFileStore(a.tokenFile), a.logger)
	client.SetTokenSource(session)

	a.session = session
	a.feed = services.NewFeedService(client, a.logger)
	a.votes = services.NewVoteService(client, session, a.logger)
	a.polls = services.NewPollService(client, session, a.logger)
	a.renderer = render.New(render.DefaultTheme)

	a.session.OnChange(func(domain.Session) {
		a.feed.Reset()
	})
	return nil
}

// run wraps a command body so the session is restored before it runs.
func (a *app) run(fn func(ctx context.Context, args []string) error) func(context.Context, []string) error {
	return func(ctx context.Context, args []string) error {
		if err := a.open(false); err != nil {
			return err
		}
		a.session.Restore(ctx)
		return fn(ctx, args)
	}
}

// runOffline wraps a command body that only touches the stored session and
// sends no request.
func (a *app) runOffline(fn func(ctx context.Context, args []string) error) func(context.Context, []string) error {
	return func(ctx context.Context, args []string) error {
		if err := a.open(false); err != nil {
			return err
		}
		return fn(ctx, args)
	}
}

func (a *app) requireLogin() error {
	if !a.session.Current().Authenticated() {
		return errLoginRequired
	}
	return nil
}

// readPassword prompts on the terminal with echo disabled.
func (a *app) readPassword(label string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("no terminal available for a password prompt (use --password)")
	}

	fmt.Fprintf(a.stderr, "%s: ", label)
	password, err := term.ReadPassword(fd)
	fmt.Fprintln(a.stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(password), nil
}

// reportError prints err once. Validation maps print one line per message;
// API errors without a detail or error field fall back to their field map.
func reportError(w io.Writer, err error) {
	var validation domain.ValidationErrors
	var reqErr *domain.RequestError

	switch {
	case errors.As(err, &validation):
		printValidation(w, validation)
	case errors.As(err, &reqErr) && reqErr.Message == domain.GenericErrorMessage:
		printValidation(w, api.FieldErrors(reqErr))
	default:
		fmt.Fprintf(w, "Error: %v\n", err)
	}
}

func printValidation(w io.Writer, errs domain.ValidationErrors) {
	for _, field := range errs.Fields() {
		for _, msg := range errs[field] {
			if field == domain.NonFieldErrorsKey {
				fmt.Fprintf(w, "Error: %s\n", msg)
				continue
			}
			fmt.Fprintf(w, "Error: %s: %s\n", field, msg)
		}
	}
}
