package session

import (
	"errors"

	"github.com/edusurvey/edusurvey/internal/models"
)

// State is the position of the session in its lifecycle
type State int

const (
	// StateInitializing is the state from process start until the persisted
	// credential has been validated or discarded.
	StateInitializing State = iota
	StateAnonymous
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Session is a read-only snapshot of the store.
// User is non-nil only when State is StateAuthenticated.
type Session struct {
	State   State
	Token   string
	User    *models.UserProfile
	Loading bool
}

// Authenticated reports whether a validated user is present
func (s Session) Authenticated() bool {
	return s.State == StateAuthenticated && s.User != nil
}

// IsAdmin reports whether the validated user is an administrator
func (s Session) IsAdmin() bool {
	return s.Authenticated() && s.User.IsAdmin
}

var (
	// ErrNotAuthenticated is wrapped by failures of operations that need a user
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrAlreadyAuthenticated is wrapped when Login or Signup start from Authenticated
	ErrAlreadyAuthenticated = errors.New("already authenticated")
	// ErrIncompleteResponse is wrapped when the API answers without a token or user
	ErrIncompleteResponse = errors.New("incomplete response from API")
)

// Failure is the structured failure signal of a session operation.
// Message is safe to show to the user.
type Failure struct {
	Op      string
	Message string
	Err     error
}

func (f *Failure) Error() string {
	return f.Message
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// FailureMessage returns the user-facing message carried by err
func FailureMessage(err error) string {
	var f *Failure
	if errors.As(err, &f) {
		return f.Message
	}
	return err.Error()
}
