package jsonfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"finboard/internal/domain"
)

type sessionDocument struct {
	Username string `json:"username"`
	SignedIn bool   `json:"signed_in"`
	JoinDate string `json:"join_date,omitempty"`
}

// SessionStore implements repository.SessionStore with a JSON file
type SessionStore struct {
	path string
}

// NewSessionStore creates a session store backed by path
func NewSessionStore(path string) *SessionStore {
	return &SessionStore{path: path}
}

// Load returns the saved session. A missing file is an empty session, not an error.
func (s *SessionStore) Load() (domain.Session, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return domain.Session{}, nil
	}
	if err != nil {
		return domain.Session{}, fmt.Errorf("read session: %w", err)
	}

	var doc sessionDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return domain.Session{}, fmt.Errorf("decode session: %w", err)
	}

	return domain.Session{
		Username: doc.Username,
		SignedIn: doc.SignedIn,
		JoinDate: doc.JoinDate,
	}, nil
}

// Save overwrites the saved session
func (s *SessionStore) Save(session domain.Session) error {
	return writeJSON(s.path, sessionDocument{
		Username: session.Username,
		SignedIn: session.SignedIn,
		JoinDate: session.JoinDate,
	})
}
