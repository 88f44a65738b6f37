package memory

import (
	"context"

	"github.com/vncsmyrnk/pollctl/internal/core/domain"
	"github.com/vncsmyrnk/pollctl/internal/core/ports"
)

type userRepository struct {
	store *Store
}

func NewUserRepository(store *Store) ports.UserRepository {
	return &userRepository{
		store: store,
	}
}

func (r *userRepository) Create(ctx context.Context, user domain.User, passwordHash string) (*domain.User, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.usernames[user.Username]; taken {
		return nil, domain.ErrUsernameTaken
	}

	s.lastUserID++
	user.ID = s.lastUserID
	s.users[user.ID] = &userRecord{user: user, passwordHash: passwordHash}
	s.usernames[user.Username] = user.ID
	return &user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*domain.User, string, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.usernames[username]
	if !ok {
		return nil, "", domain.ErrUserNotFound
	}
	record := s.users[id]
	user := record.user
	return &user, record.passwordHash, nil
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	user := record.user
	return &user, nil
}
