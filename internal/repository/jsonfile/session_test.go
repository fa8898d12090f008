package jsonfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finboard/internal/domain"
)

func TestSessionStore_LoadMissing(t *testing.T) {
	store := NewSessionStore(filepath.Join(t.TempDir(), "session.json"))

	session, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, domain.Session{}, session)
}

func TestSessionStore_RoundTrip(t *testing.T) {
	store := NewSessionStore(filepath.Join(t.TempDir(), "session.json"))
	want := domain.Session{Username: "alice", SignedIn: true, JoinDate: "Mar 4, 2025"}

	require.NoError(t, store.Save(want))

	got, err := NewSessionStore(store.path).Load()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestSessionStore_LoadCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("]["), 0o600))

	_, err := NewSessionStore(path).Load()
	assert.Error(t, err)
}
