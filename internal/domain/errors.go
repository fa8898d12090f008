package domain

import "errors"

// Sentinel errors shared by services and stores.
var (
	// ErrUsernameTaken indicates a sign-up for a username that already has a credential record.
	ErrUsernameTaken = errors.New("username taken")

	// ErrInvalidUsername indicates a username that breaks the length or charset rule.
	ErrInvalidUsername = errors.New("invalid username")

	// ErrInvalidPassword indicates a password shorter than the minimum or a confirmation mismatch.
	ErrInvalidPassword = errors.New("invalid password")

	// ErrNotSignedIn indicates an operation that needs an active session.
	ErrNotSignedIn = errors.New("not signed in")

	// ErrInvalidTransition indicates an onboarding move along an undefined edge.
	ErrInvalidTransition = errors.New("invalid onboarding transition")

	// ErrTransitionBlocked indicates a defined edge whose guard is not satisfied.
	ErrTransitionBlocked = errors.New("onboarding transition blocked")

	// ErrLoginFailed indicates an unknown username or a wrong password.
	ErrLoginFailed = errors.New("incorrect username and/or password")

	// ErrEmptyItemID indicates a watchlist mutation without an item identifier.
	ErrEmptyItemID = errors.New("empty item id")

	// ErrArticleNetwork marks transport failures and non-success responses of the article source.
	ErrArticleNetwork = errors.New("network error")

	// ErrArticleDecode marks unreadable or malformed article payloads.
	ErrArticleDecode = errors.New("decoding error")
)

// FetchError carries the class of an article fetch failure (ErrArticleNetwork or
// ErrArticleDecode) together with its cause.
type FetchError struct {
	Kind error
	Err  error
}

func (e *FetchError) Error() string {
	return e.Kind.Error() + ": " + e.Err.Error()
}

func (e *FetchError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}
