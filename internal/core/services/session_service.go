package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/vncsmyrnk/pollctl/internal/core/domain"
	"github.com/vncsmyrnk/pollctl/internal/core/ports"
)

type sessionService struct {
	auth   ports.AuthAPI
	store  ports.TokenStore
	logger *zap.Logger
	now    func() time.Time

	mu        sync.RWMutex
	session   domain.Session
	ready     bool
	listeners []func(domain.Session)
}

func NewSessionService(auth ports.AuthAPI, store ports.TokenStore, logger *zap.Logger) ports.SessionService {
	return &sessionService{
		auth:   auth,
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

func (s *sessionService) Login(ctx context.Context, username, password string) error {
	result, err := s.auth.Login(ctx, username, password)
	if err != nil {
		return err
	}
	return s.establish(result)
}

func (s *sessionService) Register(ctx context.Context, input domain.RegisterInput) error {
	if errs := input.Validate(); errs != nil {
		return errs
	}

	result, err := s.auth.Register(ctx, input)
	if err != nil {
		return err
	}
	return s.establish(result)
}

// establish persists the token pair before publishing the session so a
// failed write leaves both untouched.
func (s *sessionService) establish(result *domain.AuthResult) error {
	if result == nil || result.Tokens.Access == "" {
		return &domain.AuthError{Message: "server did not return an access token"}
	}
	if err := s.store.Save(result.Tokens); err != nil {
		return fmt.Errorf("failed to persist token: %w", err)
	}

	user := result.User
	s.set(domain.Session{Token: result.Tokens.Access, User: &user})
	s.logger.Debug("session established", zap.String("username", user.Username))
	return nil
}

func (s *sessionService) Logout() {
	if err := s.store.Clear(); err != nil {
		s.logger.Warn("failed to clear persisted token", zap.Error(err))
	}
	s.set(domain.Session{})
}

// Restore rebuilds the session from the persisted tokens. It never fails:
// any problem with the tokens clears them and yields an anonymous session.
// An expired access token is refreshed first. A cancelled ctx leaves the
// stored tokens alone.
func (s *sessionService) Restore(ctx context.Context) domain.Session {
	session := s.restore(ctx)

	s.mu.Lock()
	s.session = session
	s.ready = true
	s.mu.Unlock()

	s.notify(session)
	return session
}

func (s *sessionService) restore(ctx context.Context) domain.Session {
	tokens, err := s.store.Load()
	if err != nil {
		s.logger.Warn("failed to read persisted token", zap.Error(err))
		s.discard()
		return domain.Session{}
	}
	if tokens.Access == "" {
		return domain.Session{}
	}

	if tokenExpired(tokens.Access, s.now()) {
		refreshed, err := s.refresh(ctx, tokens.Refresh)
		if err != nil {
			s.logger.Debug("persisted token expired", zap.Error(err))
			s.discardUnlessCanceled(err)
			return domain.Session{}
		}
		tokens = *refreshed
	}

	user, err := s.auth.Profile(ctx, tokens.Access)
	if err != nil {
		s.logger.Debug("persisted token rejected", zap.Error(err))
		s.discardUnlessCanceled(err)
		return domain.Session{}
	}
	return domain.Session{Token: tokens.Access, User: user}
}

// refresh trades the refresh token for a new pair and persists it. A failed
// write is logged; the new pair still serves this run.
func (s *sessionService) refresh(ctx context.Context, refresh string) (*domain.Tokens, error) {
	if refresh == "" || tokenExpired(refresh, s.now()) {
		return nil, domain.ErrTokenNotValid
	}

	tokens, err := s.auth.Refresh(ctx, refresh)
	if err != nil {
		return nil, err
	}
	if err := s.store.Save(*tokens); err != nil {
		s.logger.Warn("failed to persist refreshed token", zap.Error(err))
	}
	s.logger.Debug("access token refreshed")
	return tokens, nil
}

// discardUnlessCanceled clears the stored tokens unless err only says the
// caller gave up waiting.
func (s *sessionService) discardUnlessCanceled(err error) {
	if errors.Is(err, context.Canceled) {
		return
	}
	s.discard()
}

func (s *sessionService) discard() {
	if err := s.store.Clear(); err != nil {
		s.logger.Warn("failed to clear persisted token", zap.Error(err))
	}
}

func (s *sessionService) Current() domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session
}

func (s *sessionService) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.Token
}

func (s *sessionService) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

func (s *sessionService) OnChange(fn func(domain.Session)) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

func (s *sessionService) set(session domain.Session) {
	s.mu.Lock()
	s.session = session
	s.mu.Unlock()
	s.notify(session)
}

func (s *sessionService) notify(session domain.Session) {
	s.mu.RLock()
	listeners := append([]func(domain.Session){}, s.listeners...)
	s.mu.RUnlock()

	for _, fn := range listeners {
		fn(session)
	}
}

// tokenExpired reads the exp claim without verifying the signature. Tokens
// that are not JWTs, or carry no exp, are left for the server to judge.
func tokenExpired(token string, now time.Time) bool {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return !now.Before(claims.ExpiresAt.Time)
}
