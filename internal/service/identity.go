package service

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator"
	"go.uber.org/zap"

	"finboard/internal/domain"
	"finboard/internal/notify"
	"finboard/internal/repository"
)

const (
	MinUsernameLength = 3
	MaxUsernameLength = 16
	MinPasswordLength = 6
)

var usernameRule = fmt.Sprintf("min=%d,max=%d,username_chars", MinUsernameLength, MaxUsernameLength)

// Identity owns the credential records and the session of the local user
type Identity struct {
	mu       sync.Mutex
	creds    repository.CredentialStore
	sessions repository.SessionStore
	hub      *notify.Hub
	logger   *zap.Logger
	validate *validator.Validate
	now      func() time.Time

	session domain.Session
}

// NewIdentity creates the identity manager and restores the saved session.
// A saved session whose user no longer has a credential record is discarded.
func NewIdentity(creds repository.CredentialStore, sessions repository.SessionStore, hub *notify.Hub, logger *zap.Logger) *Identity {
	v := validator.New()
	_ = v.RegisterValidation("username_chars", func(fl validator.FieldLevel) bool {
		return validUsernameChars(fl.Field().String())
	})

	s := &Identity{
		creds:    creds,
		sessions: sessions,
		hub:      hub,
		logger:   logger,
		validate: v,
		now:      time.Now,
	}
	s.restore()
	return s
}

func (s *Identity) restore() {
	saved, err := s.sessions.Load()
	if err != nil {
		s.logger.Warn("Failed to load session, starting signed out", zap.Error(err))
		return
	}
	if !saved.Active() {
		return
	}
	if !s.creds.Contains(saved.Username) {
		s.logger.Warn("Discarding session of unknown user", zap.String("username", saved.Username))
		s.persistLocked()
		return
	}

	s.session = saved
	s.logger.Info("Session restored", zap.String("username", saved.Username))
}

// HashPassword returns the hex-encoded SHA-256 digest of pw
func HashPassword(pw string) string {
	sum := sha256.Sum256([]byte(pw))
	return hex.EncodeToString(sum[:])
}

// SanitizeUsername drops every rune other than letters, digits and underscore and
// truncates the result to the maximum username length.
func SanitizeUsername(raw string) string {
	out := make([]rune, 0, MaxUsernameLength)
	for _, r := range raw {
		if len(out) == MaxUsernameLength {
			break
		}
		if usernameRune(r) {
			out = append(out, r)
		}
	}
	return string(out)
}

func usernameRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func validUsernameChars(name string) bool {
	for _, r := range name {
		if !usernameRune(r) {
			return false
		}
	}
	return true
}

// UsernameWellFormed checks the length and charset rules only
func (s *Identity) UsernameWellFormed(candidate string) bool {
	return s.validate.Var(candidate, usernameRule) == nil
}

// UsernameTaken reports whether candidate already has a credential record
func (s *Identity) UsernameTaken(candidate string) bool {
	return s.creds.Contains(candidate)
}

// ValidateUsername reports whether candidate is well formed and still available
func (s *Identity) ValidateUsername(candidate string) bool {
	return s.UsernameWellFormed(candidate) && !s.UsernameTaken(candidate)
}

// ValidatePassword reports whether pw is long enough and equals confirm
func (s *Identity) ValidatePassword(pw, confirm string) bool {
	return utf8.RuneCountInString(pw) >= MinPasswordLength && pw == confirm
}

// SignUp stores a new credential record and signs the user in. A taken username
// is rejected with domain.ErrUsernameTaken and the existing record is kept.
func (s *Identity) SignUp(username, pw string) error {
	if !s.UsernameWellFormed(username) {
		return domain.ErrInvalidUsername
	}
	if utf8.RuneCountInString(pw) < MinPasswordLength {
		return domain.ErrInvalidPassword
	}

	s.mu.Lock()
	if s.creds.Contains(username) {
		s.mu.Unlock()
		return domain.ErrUsernameTaken
	}
	if err := s.creds.Put(username, HashPassword(pw)); err != nil {
		s.mu.Unlock()
		s.logger.Error("Failed to store credentials",
			zap.String("username", username),
			zap.Error(err),
		)
		return fmt.Errorf("sign up %s: %w", username, err)
	}
	s.session = domain.Session{
		Username: username,
		SignedIn: true,
		JoinDate: s.now().Format(domain.JoinDateLayout),
	}
	s.persistLocked()
	snapshot := s.session
	s.mu.Unlock()

	s.logger.Info("User signed up", zap.String("username", username))
	s.hub.Publish(notify.TopicSession, snapshot)
	return nil
}

// Login signs username in when the password matches. A failed attempt leaves the
// session unchanged.
func (s *Identity) Login(username, pw string) bool {
	if !s.IsPasswordCorrect(username, pw) {
		s.logger.Info("Login rejected", zap.String("username", username))
		return false
	}

	s.mu.Lock()
	s.session = domain.Session{
		Username: username,
		SignedIn: true,
	}
	s.persistLocked()
	snapshot := s.session
	s.mu.Unlock()

	s.logger.Info("User logged in", zap.String("username", username))
	s.hub.Publish(notify.TopicSession, snapshot)
	return true
}

// IsPasswordCorrect compares the digest of pw with the stored one
func (s *Identity) IsPasswordCorrect(username, pw string) bool {
	stored, ok := s.creds.Get(username)
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(HashPassword(pw)), []byte(stored)) == 1
}

// SignOut clears the session
func (s *Identity) SignOut() {
	s.mu.Lock()
	username := s.session.Username
	s.session = domain.Session{}
	s.persistLocked()
	s.mu.Unlock()

	s.logger.Info("User signed out", zap.String("username", username))
	s.hub.Publish(notify.TopicSession, domain.Session{})
}

// DeleteAccount removes the signed-in user's credential record and clears the
// session. When the record cannot be removed the session is kept.
func (s *Identity) DeleteAccount() error {
	s.mu.Lock()
	if !s.session.Active() {
		s.mu.Unlock()
		return domain.ErrNotSignedIn
	}
	username := s.session.Username
	if err := s.creds.Remove(username); err != nil {
		s.mu.Unlock()
		s.logger.Error("Failed to delete account",
			zap.String("username", username),
			zap.Error(err),
		)
		return fmt.Errorf("delete account %s: %w", username, err)
	}
	s.session = domain.Session{}
	s.persistLocked()
	s.mu.Unlock()

	s.logger.Info("Account deleted", zap.String("username", username))
	s.hub.Publish(notify.TopicSession, domain.Session{})
	return nil
}

// Session returns a snapshot of the current session
func (s *Identity) Session() domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session
}

// persistLocked saves the session. Callers hold mu.
func (s *Identity) persistLocked() {
	if err := s.sessions.Save(s.session); err != nil {
		s.logger.Error("Failed to save session", zap.Error(err))
	}
}
