package service

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finboard/internal/domain"
	"finboard/internal/notify"
	"finboard/internal/testutil"
)

func newTestIdentity(t *testing.T) (*Identity, *testutil.FakeCredentialStore, *testutil.FakeSessionStore, *notify.Hub) {
	t.Helper()
	creds := testutil.NewFakeCredentialStore()
	sessions := &testutil.FakeSessionStore{}
	hub := notify.NewHub()
	id := NewIdentity(creds, sessions, hub, testutil.NewTestLogger())
	id.now = func() time.Time { return time.Date(2025, 3, 4, 9, 30, 0, 0, time.UTC) }
	return id, creds, sessions, hub
}

func TestHashPassword(t *testing.T) {
	a := HashPassword("secret1")

	assert.Equal(t, a, HashPassword("secret1"))
	assert.NotEqual(t, a, HashPassword("secret2"))
	assert.Len(t, a, 64)
	assert.Equal(t, strings.ToLower(a), a)
	// sha256("")
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", HashPassword(""))
}

func TestSanitizeUsername(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "already clean", input: "alice_01", expected: "alice_01"},
		{name: "drops spaces and punctuation", input: "al ice!@#", expected: "alice"},
		{name: "keeps unicode letters", input: "zo\u00eb-\u00fc", expected: "zo\u00eb\u00fc"},
		{name: "truncates to 16 runes", input: "abcdefghijklmnopqrstuvwxyz", expected: "abcdefghijklmnop"},
		{name: "empty", input: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeUsername(tt.input))
		})
	}
}

func TestIdentity_ValidateUsername(t *testing.T) {
	id, creds, _, _ := newTestIdentity(t)
	creds.Creds["taken"] = HashPassword("whatever")

	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{name: "too short", input: "ab", expected: false},
		{name: "empty", input: "", expected: false},
		{name: "minimum length", input: "abc", expected: true},
		{name: "maximum length", input: strings.Repeat("a", 16), expected: true},
		{name: "too long", input: strings.Repeat("a", 17), expected: false},
		{name: "already taken", input: "taken", expected: false},
		{name: "case sensitive", input: "Taken", expected: true},
		{name: "disallowed characters", input: "bad name", expected: false},
		{name: "multibyte runes counted once", input: "\u00eb\u00eb\u00eb", expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, id.ValidateUsername(tt.input))
		})
	}
}

func TestIdentity_ValidatePassword(t *testing.T) {
	id, _, _, _ := newTestIdentity(t)

	tests := []struct {
		name     string
		pw       string
		confirm  string
		expected bool
	}{
		{name: "valid", pw: "secret1", confirm: "secret1", expected: true},
		{name: "exactly six", pw: "123456", confirm: "123456", expected: true},
		{name: "too short", pw: "12345", confirm: "12345", expected: false},
		{name: "mismatch", pw: "secret1", confirm: "secret2", expected: false},
		{name: "empty", pw: "", confirm: "", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, id.ValidatePassword(tt.pw, tt.confirm))
		})
	}
}

func TestIdentity_SignUpThenLogin(t *testing.T) {
	id, creds, sessions, hub := newTestIdentity(t)
	var events []domain.Session
	hub.Subscribe(notify.TopicSession, func(ev notify.Event) {
		events = append(events, ev.Payload.(domain.Session))
	})

	require.NoError(t, id.SignUp("alice", "secret1"))

	session := id.Session()
	assert.True(t, session.Active())
	assert.Equal(t, "alice", session.Username)
	assert.Equal(t, "Mar 4, 2025", session.JoinDate)
	assert.Equal(t, HashPassword("secret1"), creds.Creds["alice"])
	assert.Equal(t, session, sessions.Session)
	require.Len(t, events, 1)
	assert.Equal(t, "alice", events[0].Username)

	id.SignOut()
	assert.True(t, id.Login("alice", "secret1"))
	assert.Equal(t, domain.Session{Username: "alice", SignedIn: true}, id.Session())

	id.SignOut()
	assert.False(t, id.Login("alice", "wrong"))
	assert.False(t, id.Login("bob", "secret1"))
	assert.Equal(t, domain.Session{}, id.Session())
}

func TestIdentity_SignUpRejections(t *testing.T) {
	tests := []struct {
		name     string
		username string
		password string
		expected error
	}{
		{name: "taken username", username: "alice", password: "another1", expected: domain.ErrUsernameTaken},
		{name: "short username", username: "al", password: "secret1", expected: domain.ErrInvalidUsername},
		{name: "bad characters", username: "al ice", password: "secret1", expected: domain.ErrInvalidUsername},
		{name: "short password", username: "bob", password: "12345", expected: domain.ErrInvalidPassword},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, creds, _, _ := newTestIdentity(t)
			creds.Creds["alice"] = HashPassword("secret1")

			err := id.SignUp(tt.username, tt.password)

			assert.ErrorIs(t, err, tt.expected)
			assert.Equal(t, HashPassword("secret1"), creds.Creds["alice"])
			assert.False(t, id.Session().Active())
		})
	}
}

func TestIdentity_SignUpStoreFailure(t *testing.T) {
	id, creds, sessions, _ := newTestIdentity(t)
	creds.PutErr = errors.New("disk full")

	err := id.SignUp("alice", "secret1")

	assert.Error(t, err)
	assert.ErrorIs(t, err, creds.PutErr)
	assert.False(t, id.Session().Active())
	assert.Equal(t, 0, sessions.Saves)
}

func TestIdentity_SignOutAlwaysClears(t *testing.T) {
	id, _, sessions, _ := newTestIdentity(t)

	id.SignOut()
	assert.Equal(t, domain.Session{}, id.Session())

	require.NoError(t, id.SignUp("alice", "secret1"))
	id.SignOut()

	session := id.Session()
	assert.False(t, session.SignedIn)
	assert.Equal(t, "", session.Username)
	assert.Equal(t, domain.Session{}, sessions.Session)
}

func TestIdentity_DeleteAccount(t *testing.T) {
	id, creds, _, _ := newTestIdentity(t)
	require.NoError(t, id.SignUp("alice", "secret1"))

	require.NoError(t, id.DeleteAccount())

	assert.False(t, creds.Contains("alice"))
	assert.False(t, id.Session().Active())
	assert.False(t, id.Login("alice", "secret1"))
	assert.True(t, id.ValidateUsername("alice"))
}

func TestIdentity_DeleteAccountErrors(t *testing.T) {
	t.Run("not signed in", func(t *testing.T) {
		id, _, _, _ := newTestIdentity(t)
		assert.ErrorIs(t, id.DeleteAccount(), domain.ErrNotSignedIn)
	})

	t.Run("removal fails", func(t *testing.T) {
		id, creds, _, _ := newTestIdentity(t)
		require.NoError(t, id.SignUp("alice", "secret1"))
		creds.RemoveErr = errors.New("read-only file system")

		err := id.DeleteAccount()

		assert.ErrorIs(t, err, creds.RemoveErr)
		assert.True(t, id.Session().Active())
		assert.True(t, creds.Contains("alice"))
	})
}

func TestIdentity_IsPasswordCorrect(t *testing.T) {
	id, creds, sessions, _ := newTestIdentity(t)
	creds.Creds["alice"] = HashPassword("secret1")

	assert.True(t, id.IsPasswordCorrect("alice", "secret1"))
	assert.False(t, id.IsPasswordCorrect("alice", "secret2"))
	assert.False(t, id.IsPasswordCorrect("nobody", "secret1"))
	assert.False(t, id.Session().Active())
	assert.Equal(t, 0, sessions.Saves)
}

func TestNewIdentity_RestoresSession(t *testing.T) {
	tests := []struct {
		name     string
		saved    domain.Session
		users    []string
		expected domain.Session
	}{
		{
			name:     "known user",
			saved:    domain.Session{Username: "alice", SignedIn: true, JoinDate: "Jan 5, 2025"},
			users:    []string{"alice"},
			expected: domain.Session{Username: "alice", SignedIn: true, JoinDate: "Jan 5, 2025"},
		},
		{
			name:     "unknown user",
			saved:    domain.Session{Username: "ghost", SignedIn: true},
			users:    []string{"alice"},
			expected: domain.Session{},
		},
		{
			name:     "signed out",
			saved:    domain.Session{Username: "alice", SignedIn: false},
			users:    []string{"alice"},
			expected: domain.Session{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			creds := testutil.NewFakeCredentialStore()
			for _, u := range tt.users {
				creds.Creds[u] = HashPassword("secret1")
			}
			sessions := &testutil.FakeSessionStore{Session: tt.saved}

			id := NewIdentity(creds, sessions, notify.NewHub(), testutil.NewTestLogger())

			assert.Equal(t, tt.expected, id.Session())
		})
	}
}

func TestNewIdentity_SessionLoadError(t *testing.T) {
	sessions := new(testutil.MockSessionStore)
	sessions.On("Load").Return(domain.Session{}, errors.New("corrupt session"))

	id := NewIdentity(testutil.NewFakeCredentialStore(), sessions, notify.NewHub(), testutil.NewTestLogger())

	assert.False(t, id.Session().Active())
	sessions.AssertExpectations(t)
}
