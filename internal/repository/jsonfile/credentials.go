package jsonfile

import (
	"bytes"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// CredentialStore implements repository.CredentialStore on top of a JSON object
// {"username": "hex digest"} stored in a single file.
type CredentialStore struct {
	mu     sync.RWMutex
	path   string
	logger *zap.Logger
	creds  map[string]string
}

// NewCredentialStore reads path once and keeps the mapping in memory.
// A missing, unreadable or corrupt file yields an empty store.
func NewCredentialStore(path string, logger *zap.Logger) *CredentialStore {
	s := &CredentialStore{
		path:   path,
		logger: logger,
	}
	s.creds = s.load()
	return s
}

func (s *CredentialStore) load() map[string]string {
	empty := make(map[string]string)

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return empty
	}
	if err != nil {
		s.logger.Warn("Failed to read credentials, starting empty",
			zap.String("path", s.path),
			zap.Error(err),
		)
		return empty
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return empty
	}

	var creds map[string]string
	if err := json.Unmarshal(data, &creds); err != nil {
		s.logger.Warn("Credentials file is corrupt, starting empty",
			zap.String("path", s.path),
			zap.Error(err),
		)
		return empty
	}
	if creds == nil {
		return empty
	}
	return creds
}

// Get returns the stored hash for username
func (s *CredentialStore) Get(username string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	hash, ok := s.creds[username]
	return hash, ok
}

// Contains reports whether username has a record
func (s *CredentialStore) Contains(username string) bool {
	_, ok := s.Get(username)
	return ok
}

// AllUsernames returns every stored username in lexical order
func (s *CredentialStore) AllUsernames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.creds))
	for name := range s.creds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Put stores the hash for username. The in-memory mapping changes only after the
// file has been written.
func (s *CredentialStore) Put(username, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.cloneLocked()
	next[username] = passwordHash

	if err := writeJSON(s.path, next); err != nil {
		return err
	}
	s.creds = next
	return nil
}

// Remove deletes the record for username. Removing an unknown username is a no-op.
func (s *CredentialStore) Remove(username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.creds[username]; !ok {
		return nil
	}

	next := s.cloneLocked()
	delete(next, username)

	if err := writeJSON(s.path, next); err != nil {
		return err
	}
	s.creds = next
	return nil
}

func (s *CredentialStore) cloneLocked() map[string]string {
	next := make(map[string]string, len(s.creds)+1)
	for k, v := range s.creds {
		next[k] = v
	}
	return next
}
