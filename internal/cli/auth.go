package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/pflag"

	"github.com/vncsmyrnk/pollctl/internal/core/domain"
)

func (a *app) loginCommand() *Command {
	var password string

	return &Command{
		Name:    "login",
		Summary: "Log in and keep the session for later commands",
		Usage:   "pollctl login <username> [--password PASSWORD]",
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("login", pflag.ContinueOnError)
			fs.StringVarP(&password, "password", "p", "", "password (prompted when omitted)")
			return fs
		},
		Run: a.run(func(ctx context.Context, args []string) error {
			if len(args) != 1 {
				return errors.New("usage: pollctl login <username>")
			}

			if password == "" {
				var err error
				if password, err = a.readPassword("Password"); err != nil {
					return err
				}
			}

			if err := a.session.Login(ctx, args[0], password); err != nil {
				return err
			}
			user := a.session.Current().User
			fmt.Fprintf(a.stdout, "Logged in as %s (%s)\n", user.DisplayName(), user.Username)
			return nil
		}),
	}
}

func (a *app) registerCommand() *Command {
	var input domain.RegisterInput

	return &Command{
		Name:    "register",
		Summary: "Create an account and log in",
		Usage:   "pollctl register --username NAME --email EMAIL [flags]",
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("register", pflag.ContinueOnError)
			fs.StringVar(&input.Username, "username", "", "username")
			fs.StringVar(&input.Email, "email", "", "email address")
			fs.StringVar(&input.FirstName, "first-name", "", "first name")
			fs.StringVar(&input.LastName, "last-name", "", "last name")
			fs.StringVar(&input.Password, "password", "", "password (prompted when omitted)")
			fs.StringVar(&input.PasswordConfirm, "password-confirm", "", "password again (prompted when omitted)")
			return fs
		},
		Run: a.run(func(ctx context.Context, args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument: %s", args[0])
			}

			var err error
			if input.Password == "" {
				if input.Password, err = a.readPassword("Password"); err != nil {
					return err
				}
			}
			if input.PasswordConfirm == "" {
				if input.PasswordConfirm, err = a.readPassword("Confirm password"); err != nil {
					return err
				}
			}

			if err := a.session.Register(ctx, input); err != nil {
				return err
			}
			user := a.session.Current().User
			fmt.Fprintf(a.stdout, "Registered and logged in as %s\n", user.Username)
			return nil
		}),
	}
}

func (a *app) logoutCommand() *Command {
	return &Command{
		Name:    "logout",
		Summary: "Forget the stored session",
		Run: a.runOffline(func(context.Context, []string) error {
			a.session.Logout()
			fmt.Fprintln(a.stdout, "Logged out")
			return nil
		}),
	}
}

func (a *app) whoamiCommand() *Command {
	return &Command{
		Name:    "whoami",
		Summary: "Show the logged in user",
		Run: a.run(func(context.Context, []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			user := a.session.Current().User
			fmt.Fprintf(a.stdout, "%s (%s)\n", user.Username, user.DisplayName())
			if user.Email != "" {
				fmt.Fprintln(a.stdout, user.Email)
			}
			return nil
		}),
	}
}
