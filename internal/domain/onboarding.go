package domain

// OnboardingState is the active step of the first-run flow
type OnboardingState int

const (
	StateWelcome OnboardingState = iota
	StateEnterUsername
	StateEnterPassword
	StateConfirmation
	StateLogin
)

var onboardingStateNames = map[OnboardingState]string{
	StateWelcome:       "welcome",
	StateEnterUsername: "enter_username",
	StateEnterPassword: "enter_password",
	StateConfirmation:  "confirmation",
	StateLogin:         "login",
}

// onboardingEdges lists the allowed moves besides "any state -> Welcome".
var onboardingEdges = map[OnboardingState][]OnboardingState{
	StateWelcome:       {StateEnterUsername, StateLogin},
	StateEnterUsername: {StateEnterPassword},
	StateEnterPassword: {StateConfirmation, StateEnterUsername},
	StateLogin:         {StateConfirmation},
}

func (s OnboardingState) String() string {
	if name, ok := onboardingStateNames[s]; ok {
		return name
	}
	return "unknown"
}

// Valid reports whether s is one of the defined states.
func (s OnboardingState) Valid() bool {
	_, ok := onboardingStateNames[s]
	return ok
}

// CanTransition reports whether moving from s to next follows a defined edge.
// Every state may return to Welcome.
func (s OnboardingState) CanTransition(next OnboardingState) bool {
	if !s.Valid() || !next.Valid() {
		return false
	}
	if next == StateWelcome {
		return true
	}
	for _, to := range onboardingEdges[s] {
		if to == next {
			return true
		}
	}
	return false
}

// Terminal reports whether the flow is finished.
func (s OnboardingState) Terminal() bool {
	return s == StateConfirmation
}

// OnboardingView is the read-only projection the UI renders
type OnboardingView struct {
	State           OnboardingState
	Username        string
	ContinueEnabled bool
	AttemptedLogin  bool
	Hint            string // inline validation text, empty when nothing to show
}
