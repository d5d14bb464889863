package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/edusurvey/edusurvey/internal/forms"
	"github.com/edusurvey/edusurvey/internal/guard"
	"github.com/edusurvey/edusurvey/internal/models"
)

// NewLoginCmd creates the login command
func NewLoginCmd(env *Env) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to the survey service",
		RunE: func(cmd *cobra.Command, args []string) error {
			return env.runLogin(cmd, email, password)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address (or set EDUSURVEY_EMAIL)")
	cmd.Flags().StringVar(&password, "password", "", "Password (or set EDUSURVEY_PASSWORD, will prompt if not provided)")

	return cmd
}

func (e *Env) runLogin(cmd *cobra.Command, email, password string) error {
	if email == "" {
		email = os.Getenv("EDUSURVEY_EMAIL")
	}

	password, err := e.secret(password, "EDUSURVEY_PASSWORD", "Password")
	if err != nil {
		return err
	}

	form := forms.Login{Email: email, Password: password}
	if err := forms.Validate(form); err != nil {
		return err
	}

	a, err := e.start(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.Session.Login(cmd.Context(), form.Email, form.Password); err != nil {
		return err
	}

	fmt.Fprintln(e.Out, "✓ Login successful!")
	printUser(e, a.Session.Snapshot().User)
	return nil
}

// NewSignupCmd creates the signup command
func NewSignupCmd(env *Env) *cobra.Command {
	var name, email, password string

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and log in",
		RunE: func(cmd *cobra.Command, args []string) error {
			return env.runSignup(cmd, name, email, password)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Full name")
	cmd.Flags().StringVar(&email, "email", "", "Email address (or set EDUSURVEY_EMAIL)")
	cmd.Flags().StringVar(&password, "password", "", "Password (or set EDUSURVEY_PASSWORD, will prompt if not provided)")

	return cmd
}

func (e *Env) runSignup(cmd *cobra.Command, name, email, password string) error {
	if email == "" {
		email = os.Getenv("EDUSURVEY_EMAIL")
	}

	confirm := password
	if password == "" && os.Getenv("EDUSURVEY_PASSWORD") == "" {
		var err error
		if password, err = e.readSecret("Password"); err != nil {
			return err
		}
		if confirm, err = e.readSecret("Confirm password"); err != nil {
			return err
		}
	} else if password == "" {
		password = os.Getenv("EDUSURVEY_PASSWORD")
		confirm = password
	}

	form := forms.Signup{Name: name, Email: email, Password: password, ConfirmPassword: confirm}
	if err := forms.Validate(form); err != nil {
		return err
	}

	a, err := e.start(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.Session.Signup(cmd.Context(), form.Name, form.Email, form.Password); err != nil {
		return err
	}

	fmt.Fprintln(e.Out, "✓ Account created!")
	printUser(e, a.Session.Snapshot().User)
	fmt.Fprintln(e.Out, "\nNext: edusurvey survey submit")
	return nil
}

// NewLogoutCmd creates the logout command
func NewLogoutCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out and forget the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := env.start(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			a.Session.Logout()
			return nil
		},
	}
}

// NewWhoamiCmd creates the whoami command
func NewWhoamiCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := env.require(cmd.Context(), guard.Authenticated)
			if err != nil {
				return err
			}
			defer a.Close()

			printUser(env, a.Session.Snapshot().User)
			return nil
		},
	}
}

func printUser(e *Env, u *models.UserProfile) {
	if u == nil {
		return
	}
	fmt.Fprintf(e.Out, "  User: %s (%s)\n", u.Name, u.Email)
	if u.IsAdmin {
		fmt.Fprintln(e.Out, "  Role: Admin")
	}
}
