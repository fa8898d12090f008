package service

import (
	"sync"
	"unicode/utf8"

	"go.uber.org/zap"

	"finboard/internal/domain"
	"finboard/internal/notify"
)

// Hint texts shown next to the onboarding inputs
const (
	HintUsernameTooShort = "Username must be at least 3 characters."
	HintUsernameTaken    = "Username is unavailable."
	HintPasswordTooShort = "Password must be at least 6 characters."
	HintPasswordMismatch = "Passwords do not match."
	HintLoginFailed      = "Incorrect username and/or password."
)

// Onboarding drives the first-run flow: sign up or log in before the main
// screens are shown.
type Onboarding struct {
	mu       sync.Mutex
	identity *Identity
	hub      *notify.Hub
	logger   *zap.Logger

	state          domain.OnboardingState
	username       string
	password       string
	confirm        string
	attemptedLogin bool

	unsubscribe func()
}

// NewOnboarding creates the state machine. It starts at Confirmation when a
// session was restored and returns to Welcome whenever the user signs out.
func NewOnboarding(identity *Identity, hub *notify.Hub, logger *zap.Logger) *Onboarding {
	o := &Onboarding{
		identity: identity,
		hub:      hub,
		logger:   logger,
		state:    domain.StateWelcome,
	}
	if identity.Session().Active() {
		o.state = domain.StateConfirmation
	}

	if hub != nil {
		o.unsubscribe = hub.Subscribe(notify.TopicSession, o.onSession)
	}
	return o
}

// onSession only reacts to signed-out sessions: SignUp and Login publish while
// Next holds the lock.
func (o *Onboarding) onSession(ev notify.Event) {
	session, ok := ev.Payload.(domain.Session)
	if !ok || session.Active() {
		return
	}
	o.Reset()
}

// Close stops listening for session changes
func (o *Onboarding) Close() {
	if o.unsubscribe != nil {
		o.unsubscribe()
	}
}

// State returns the current step
func (o *Onboarding) State() domain.OnboardingState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// ChooseSignUp moves from Welcome to the username step
func (o *Onboarding) ChooseSignUp() error {
	return o.change(func() error {
		if o.state != domain.StateWelcome {
			return domain.ErrInvalidTransition
		}
		if err := o.moveLocked(domain.StateEnterUsername); err != nil {
			return err
		}
		o.clearInputsLocked()
		return nil
	})
}

// ChooseLogin moves from Welcome to the login step
func (o *Onboarding) ChooseLogin() error {
	return o.change(func() error {
		if o.state != domain.StateWelcome {
			return domain.ErrInvalidTransition
		}
		if err := o.moveLocked(domain.StateLogin); err != nil {
			return err
		}
		o.clearInputsLocked()
		return nil
	})
}

// SetUsername records the typed username. On the sign-up step the input is
// sanitized the way it is stored.
func (o *Onboarding) SetUsername(raw string) {
	_ = o.change(func() error {
		if o.state == domain.StateEnterUsername {
			raw = SanitizeUsername(raw)
		}
		o.username = raw
		return nil
	})
}

// SetPassword records the typed password
func (o *Onboarding) SetPassword(pw string) {
	_ = o.change(func() error {
		o.password = pw
		return nil
	})
}

// SetConfirmPassword records the typed password confirmation
func (o *Onboarding) SetConfirmPassword(pw string) {
	_ = o.change(func() error {
		o.confirm = pw
		return nil
	})
}

// ContinueEnabled reports whether Next would pass its guard
func (o *Onboarding) ContinueEnabled() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.continueEnabledLocked()
}

func (o *Onboarding) continueEnabledLocked() bool {
	switch o.state {
	case domain.StateEnterUsername:
		return o.identity.ValidateUsername(o.username)
	case domain.StateEnterPassword:
		return o.identity.ValidatePassword(o.password, o.confirm)
	case domain.StateLogin:
		return o.username != "" && o.password != ""
	default:
		return false
	}
}

// Next advances along the forward edge of the current step. Guards that fail
// return domain.ErrTransitionBlocked, or domain.ErrLoginFailed on the login step.
func (o *Onboarding) Next() error {
	return o.change(func() error {
		switch o.state {
		case domain.StateEnterUsername:
			if !o.identity.ValidateUsername(o.username) {
				return domain.ErrTransitionBlocked
			}
			return o.moveLocked(domain.StateEnterPassword)

		case domain.StateEnterPassword:
			if !o.identity.ValidatePassword(o.password, o.confirm) {
				return domain.ErrTransitionBlocked
			}
			if err := o.identity.SignUp(o.username, o.password); err != nil {
				return err
			}
			o.password, o.confirm = "", ""
			return o.moveLocked(domain.StateConfirmation)

		case domain.StateLogin:
			if !o.identity.Login(o.username, o.password) {
				o.attemptedLogin = true
				o.password = ""
				return domain.ErrLoginFailed
			}
			o.attemptedLogin = false
			o.password = ""
			return o.moveLocked(domain.StateConfirmation)

		default:
			return domain.ErrInvalidTransition
		}
	})
}

// Back returns to the previous step
func (o *Onboarding) Back() error {
	return o.change(func() error {
		switch o.state {
		case domain.StateEnterUsername, domain.StateLogin:
			o.clearInputsLocked()
			return o.moveLocked(domain.StateWelcome)
		case domain.StateEnterPassword:
			o.password, o.confirm = "", ""
			return o.moveLocked(domain.StateEnterUsername)
		default:
			return domain.ErrInvalidTransition
		}
	})
}

// AttemptedLogin reports whether the last login attempt failed
func (o *Onboarding) AttemptedLogin() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.attemptedLogin
}

// Reset returns to Welcome and clears every input
func (o *Onboarding) Reset() {
	_ = o.change(func() error {
		o.state = domain.StateWelcome
		o.clearInputsLocked()
		return nil
	})
}

// View returns the snapshot the UI renders
func (o *Onboarding) View() domain.OnboardingView {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.viewLocked()
}

func (o *Onboarding) viewLocked() domain.OnboardingView {
	return domain.OnboardingView{
		State:           o.state,
		Username:        o.username,
		ContinueEnabled: o.continueEnabledLocked(),
		AttemptedLogin:  o.attemptedLogin,
		Hint:            o.hintLocked(),
	}
}

func (o *Onboarding) hintLocked() string {
	switch o.state {
	case domain.StateEnterUsername:
		if o.username == "" {
			return ""
		}
		if utf8.RuneCountInString(o.username) < MinUsernameLength {
			return HintUsernameTooShort
		}
		if o.identity.UsernameTaken(o.username) {
			return HintUsernameTaken
		}
	case domain.StateEnterPassword:
		if o.password != "" && utf8.RuneCountInString(o.password) < MinPasswordLength {
			return HintPasswordTooShort
		}
		if o.confirm != "" && o.password != o.confirm {
			return HintPasswordMismatch
		}
	case domain.StateLogin:
		if o.attemptedLogin {
			return HintLoginFailed
		}
	}
	return ""
}

// change runs fn under the lock and publishes the resulting view
func (o *Onboarding) change(fn func() error) error {
	o.mu.Lock()
	err := fn()
	view := o.viewLocked()
	o.mu.Unlock()

	o.hub.Publish(notify.TopicOnboarding, view)
	return err
}

func (o *Onboarding) moveLocked(next domain.OnboardingState) error {
	if !o.state.CanTransition(next) {
		return domain.ErrInvalidTransition
	}
	o.logger.Debug("Onboarding transition",
		zap.Stringer("from", o.state),
		zap.Stringer("to", next),
	)
	o.state = next
	return nil
}

func (o *Onboarding) clearInputsLocked() {
	o.username, o.password, o.confirm = "", "", ""
	o.attemptedLogin = false
}
