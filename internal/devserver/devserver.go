// Package devserver wires the development API server. Data lives in memory
// unless repositories are supplied.
package devserver

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/vncsmyrnk/pollctl/internal/adapters/auth"
	handler "github.com/vncsmyrnk/pollctl/internal/adapters/handler/http"
	"github.com/vncsmyrnk/pollctl/internal/adapters/repository/memory"
	"github.com/vncsmyrnk/pollctl/internal/core/ports"
)

type Options struct {
	JWTSecret string
	TokenTTL  time.Duration
	AccessLog bool
	Logger    *zap.Logger
	// Users and Polls replace the in-memory repositories when both are set.
	Users ports.UserRepository
	Polls ports.PollRepository
}

type Server struct {
	// Store is nil when the server runs on supplied repositories.
	Store *memory.Store
	Users ports.UserRepository
	Polls ports.PollRepository

	hasher  ports.PasswordHasher
	handler http.Handler
}

func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	ttl := opts.TokenTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	var store *memory.Store
	users, polls := opts.Users, opts.Polls
	if users == nil || polls == nil {
		store = memory.NewStore()
		users = memory.NewUserRepository(store)
		polls = memory.NewPollRepository(store)
	}
	tokens := auth.NewTokenManager(opts.JWTSecret, ttl)
	hasher := auth.BcryptHasher{}

	return &Server{
		Store:  store,
		Users:  users,
		Polls:  polls,
		hasher: hasher,
		handler: handler.NewHandler(handler.Handlers{
			Auth:          handler.NewAuthHandler(users, tokens, hasher, logger),
			User:          handler.NewUserHandler(),
			Poll:          handler.NewPollHandler(polls, logger),
			Vote:          handler.NewVoteHandler(polls, logger),
			Authenticator: handler.NewAuthenticator(tokens, users),
			AccessLog:     opts.AccessLog,
		}),
	}
}

func (s *Server) Handler() http.Handler {
	return s.handler
}
