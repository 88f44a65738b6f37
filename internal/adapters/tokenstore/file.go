// Package tokenstore persists the token pair on disk.
package tokenstore

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/vncsmyrnk/pollctl/internal/core/domain"
)

// FileStore keeps the access token on the first line of the file and the
// refresh token, when there is one, on the second.
type FileStore struct {
	path string
	mu   sync.Mutex
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Path() string {
	return s.path
}

// Load returns the persisted tokens, or empty ones when none have been
// saved. A file holding a single line yields an access token only.
func (s *FileStore) Load() (domain.Tokens, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return domain.Tokens{}, nil
	}
	if err != nil {
		return domain.Tokens{}, fmt.Errorf("failed to read token file: %w", err)
	}

	access, refresh, _ := strings.Cut(strings.TrimSpace(string(data)), "\n")
	return domain.Tokens{
		Access:  strings.TrimSpace(access),
		Refresh: strings.TrimSpace(refresh),
	}, nil
}

// Save replaces the tokens atomically. The file is readable by the owner
// only.
func (s *FileStore) Save(tokens domain.Tokens) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".token-*")
	if err != nil {
		return fmt.Errorf("failed to create token file: %w", err)
	}
	defer os.Remove(tmp.Name())

	content := tokens.Access + "\n"
	if tokens.Refresh != "" {
		content += tokens.Refresh + "\n"
	}

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to set token file mode: %w", err)
	}
	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write token file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace token file: %w", err)
	}
	return nil
}

func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove token file: %w", err)
	}
	return nil
}

// MemoryStore keeps the tokens for the lifetime of the process.
type MemoryStore struct {
	mu     sync.Mutex
	tokens domain.Tokens
}

func NewMemoryStore(tokens domain.Tokens) *MemoryStore {
	return &MemoryStore{tokens: tokens}
}

func (s *MemoryStore) Load() (domain.Tokens, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokens, nil
}

func (s *MemoryStore) Save(tokens domain.Tokens) error {
	s.mu.Lock()
	s.tokens = tokens
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	s.tokens = domain.Tokens{}
	s.mu.Unlock()
	return nil
}
