// Package guard decides whether a protected page may render for a session.
package guard

import "github.com/edusurvey/edusurvey/internal/session"

// Redirect targets
const (
	LoginPath = "/login"
	HomePath  = "/"
)

// Requirement is the capability a page needs
type Requirement int

const (
	// Authenticated pages need a validated user
	Authenticated Requirement = iota
	// Admin pages need a validated user with the admin flag
	Admin
)

func (r Requirement) String() string {
	switch r {
	case Authenticated:
		return "authenticated"
	case Admin:
		return "admin"
	default:
		return "unknown"
	}
}

// Action is what the caller must do with the request
type Action int

const (
	// Render lets the protected content through
	Render Action = iota
	// Wait shows a neutral loading indicator; nothing protected is shown
	Wait
	// Redirect sends the visitor to Decision.Location
	Redirect
)

// Decision is the outcome of a guard check
type Decision struct {
	Action   Action
	Location string
}

// Decide is a pure function of the snapshot. While the session initializes it
// always waits. Anonymous visitors go to the login page for Authenticated
// pages and to the home page for Admin pages.
func Decide(req Requirement, s session.Session) Decision {
	if s.Loading || s.State == session.StateInitializing {
		return Decision{Action: Wait}
	}

	switch req {
	case Admin:
		if s.IsAdmin() {
			return Decision{Action: Render}
		}
		return Decision{Action: Redirect, Location: HomePath}
	default:
		if s.Authenticated() {
			return Decision{Action: Render}
		}
		return Decision{Action: Redirect, Location: LoginPath}
	}
}
