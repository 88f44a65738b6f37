package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/vncsmyrnk/pollctl/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/pollctl/internal/config"
	"github.com/vncsmyrnk/pollctl/internal/devserver"
	"github.com/vncsmyrnk/pollctl/internal/logging"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "pollserver:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	flags := pflag.NewFlagSet("pollserver", pflag.ContinueOnError)
	addr := flags.String("addr", cfg.Server.Addr, "listen address")
	seed := flags.Bool("seed", false, "create a demo user and sample polls")
	databaseURL := flags.String("database-url", cfg.Server.DatabaseURL, "PostgreSQL connection string, in-memory storage when empty")
	migrateOnly := flags.Bool("migrate-only", false, "apply database migrations and exit")
	logLevel := flags.String("log-level", "info", "log level")
	if err := flags.Parse(args); err != nil {
		return err
	}

	logger, err := logging.New(*logLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.Server.JWTSecret == config.DefaultJWTSecret {
		logger.Warn("using the default JWT secret, set JWT_SECRET outside development")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := devserver.Options{
		JWTSecret: cfg.Server.JWTSecret,
		TokenTTL:  cfg.Server.TokenTTL,
		AccessLog: true,
		Logger:    logger,
	}

	if *databaseURL != "" {
		db, err := postgres.Open(ctx, *databaseURL)
		if err != nil {
			return err
		}
		defer db.Close()

		applied, err := postgres.Migrate(ctx, db)
		if err != nil {
			return err
		}
		for _, name := range applied {
			logger.Info("applied migration", zap.String("name", name))
		}
		if *migrateOnly {
			return nil
		}

		opts.Users = postgres.NewUserRepository(db)
		opts.Polls = postgres.NewPollRepository(db)
		logger.Info("using postgres storage")
	} else if *migrateOnly {
		return errors.New("--migrate-only requires --database-url or DATABASE_URL")
	}

	dev := devserver.New(opts)

	if *seed {
		err := dev.Seed(ctx)
		switch {
		case errors.Is(err, devserver.ErrAlreadySeeded):
			logger.Info("demo data already present, skipping seed")
		case err != nil:
			return err
		default:
			logger.Info("seeded demo data",
				zap.String("username", devserver.DemoUsername),
				zap.String("password", devserver.DemoPassword),
			)
		}
	}

	server := &http.Server{
		Addr:              *addr,
		Handler:           dev.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", *addr), zap.String("api", "http://"+*addr+"/api"))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to serve: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info("gracefully shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return nil
}
