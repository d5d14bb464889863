package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/edusurvey/edusurvey/internal/app"
	"github.com/edusurvey/edusurvey/internal/guard"
	"github.com/edusurvey/edusurvey/internal/notify"
	"github.com/edusurvey/edusurvey/internal/session"
)

var (
	errNotLoggedIn = errors.New("not logged in, run 'edusurvey login' first")
	errNotAdmin    = errors.New("admin access required")

	// errReported marks failures whose message was already printed
	errReported = errors.New("command failed")
)

// Reported reports whether err has already been shown to the user as a
// notification and should not be printed again.
func Reported(err error) bool {
	var f *session.Failure
	return errors.Is(err, errReported) || errors.As(err, &f)
}

// Env is what every command runs against. Open builds the application with
// session notifications routed to the given notifier.
type Env struct {
	Out  io.Writer
	Err  io.Writer
	Open func(n notify.Notifier) (*app.App, error)

	// readSecret reads a password without echo; replaced in tests
	readSecret func(label string) (string, error)
}

// NewEnv returns an Env writing to the process streams
func NewEnv(open func(n notify.Notifier) (*app.App, error)) *Env {
	e := &Env{Out: os.Stdout, Err: os.Stderr, Open: open}
	e.readSecret = e.promptSecret
	return e
}

// start builds the application and resolves the session before returning
func (e *Env) start(ctx context.Context) (*app.App, error) {
	a, err := e.Open(notify.NewWriter(e.Err))
	if err != nil {
		return nil, err
	}

	a.Session.Initialize(ctx)
	return a, nil
}

// require resolves the session and checks it grants req
func (e *Env) require(ctx context.Context, req guard.Requirement) (*app.App, error) {
	a, err := e.start(ctx)
	if err != nil {
		return nil, err
	}

	d := guard.Decide(req, a.Session.Snapshot())
	if d.Action == guard.Render {
		return a, nil
	}

	a.Close()
	if d.Location == guard.LoginPath {
		return nil, errNotLoggedIn
	}
	return nil, errNotAdmin
}

// secret returns value, falling back to the environment and then to an
// interactive prompt when stdin is a terminal
func (e *Env) secret(value, envKey, label string) (string, error) {
	if value != "" {
		return value, nil
	}
	if v := os.Getenv(envKey); v != "" {
		return v, nil
	}
	return e.readSecret(label)
}

func (e *Env) promptSecret(label string) (string, error) {
	if !term.IsTerminal(int(syscall.Stdin)) {
		return "", fmt.Errorf("%s is required in non-interactive mode", strings.ToLower(label))
	}

	fmt.Fprintf(e.Err, "%s: ", label)
	b, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(e.Err)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", strings.ToLower(label), err)
	}
	return string(b), nil
}

func (e *Env) table() *tabwriter.Writer {
	return tabwriter.NewWriter(e.Out, 0, 0, 2, ' ', 0)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// anyChanged reports whether any of the named flags was set on the command line
func anyChanged(cmd *cobra.Command, names ...string) bool {
	for _, name := range names {
		if cmd.Flags().Changed(name) {
			return true
		}
	}
	return false
}
