package guard

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/edusurvey/edusurvey/internal/models"
	"github.com/edusurvey/edusurvey/internal/session"
)

func TestDecide(t *testing.T) {
	loading := session.Session{State: session.StateInitializing, Loading: true}
	anonymous := session.Session{State: session.StateAnonymous}
	member := session.Session{State: session.StateAuthenticated, Token: "T", User: &models.UserProfile{ID: "1"}}
	admin := session.Session{State: session.StateAuthenticated, Token: "T", User: &models.UserProfile{ID: "2", IsAdmin: true}}

	tests := []struct {
		name string
		req  Requirement
		s    session.Session
		want Decision
	}{
		{name: "authenticated page while loading", req: Authenticated, s: loading, want: Decision{Action: Wait}},
		{name: "admin page while loading", req: Admin, s: loading, want: Decision{Action: Wait}},
		{name: "anonymous to login", req: Authenticated, s: anonymous, want: Decision{Action: Redirect, Location: "/login"}},
		{name: "anonymous admin to home", req: Admin, s: anonymous, want: Decision{Action: Redirect, Location: "/"}},
		{name: "member renders", req: Authenticated, s: member, want: Decision{Action: Render}},
		{name: "member denied admin", req: Admin, s: member, want: Decision{Action: Redirect, Location: "/"}},
		{name: "admin renders authenticated", req: Authenticated, s: admin, want: Decision{Action: Render}},
		{name: "admin renders admin", req: Admin, s: admin, want: Decision{Action: Render}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Decide(tt.req, tt.s))
		})
	}
}

func TestDecide_NeverRendersWhileLoading(t *testing.T) {
	// Even a snapshot carrying a user must not render until resolved
	s := session.Session{
		State:   session.StateInitializing,
		Loading: true,
		User:    &models.UserProfile{ID: "1", IsAdmin: true},
	}
	for _, req := range []Requirement{Authenticated, Admin} {
		assert.Equal(t, Wait, Decide(req, s).Action, req.String())
	}
}
