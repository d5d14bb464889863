package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/edusurvey/edusurvey/internal/forms"
	"github.com/edusurvey/edusurvey/internal/guard"
	"github.com/edusurvey/edusurvey/internal/models"
)

// NewProfileCmd creates the profile command. Without flags it shows the
// profile; any of --name, --phone or --notifications updates just those fields.
func NewProfileCmd(env *Env) *cobra.Command {
	var name, phone string
	var notifications bool

	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show or update your profile",
		Example: `  $ edusurvey profile
  $ edusurvey profile --name "Ann Lee" --notifications=false`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := env.require(cmd.Context(), guard.Authenticated)
			if err != nil {
				return err
			}
			defer a.Close()

			current := a.Session.Snapshot().User
			flags := cmd.Flags()
			if !anyChanged(cmd, "name", "phone", "notifications") {
				env.printProfile(current)
				return nil
			}

			form := forms.Profile{
				Name:          current.Name,
				Phone:         current.Phone,
				Notifications: current.NotificationsEnabled(),
			}
			var update models.ProfileUpdate
			if flags.Changed("name") {
				form.Name = name
				update.Name = &form.Name
			}
			if flags.Changed("phone") {
				form.Phone = phone
				update.Phone = &form.Phone
			}
			if flags.Changed("notifications") {
				form.Notifications = notifications
				update.Notifications = &form.Notifications
			}

			if err := forms.Validate(form); err != nil {
				return err
			}

			user, err := a.Session.UpdateProfile(cmd.Context(), update)
			if err != nil {
				return err
			}

			env.printProfile(user)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Full name")
	cmd.Flags().StringVar(&phone, "phone", "", "Phone number (empty to clear)")
	cmd.Flags().BoolVar(&notifications, "notifications", true, "Receive email notifications")

	return cmd
}

func (e *Env) printProfile(u *models.UserProfile) {
	w := e.table()
	fmt.Fprintf(w, "Name:\t%s\n", u.Name)
	fmt.Fprintf(w, "Email:\t%s\n", u.Email)
	fmt.Fprintf(w, "Phone:\t%s\n", orDash(u.Phone))
	fmt.Fprintf(w, "Notifications:\t%s\n", onOff(u.NotificationsEnabled()))
	fmt.Fprintf(w, "Role:\t%s\n", roleName(u.IsAdmin))
	if !u.CreatedAt.IsZero() {
		fmt.Fprintf(w, "Member since:\t%s\n", u.CreatedAt.Format("2006-01-02"))
	}
	w.Flush()
}

// NewPasswordCmd creates the password command
func NewPasswordCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "password",
		Short: "Change your password",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := env.require(cmd.Context(), guard.Authenticated)
			if err != nil {
				return err
			}
			defer a.Close()

			var form forms.Password
			if form.CurrentPassword, err = env.readSecret("Current password"); err != nil {
				return err
			}
			if form.NewPassword, err = env.readSecret("New password"); err != nil {
				return err
			}
			if form.ConfirmPassword, err = env.readSecret("Confirm new password"); err != nil {
				return err
			}

			if err := forms.Validate(form); err != nil {
				return err
			}

			return a.Session.UpdatePassword(cmd.Context(), form.CurrentPassword, form.NewPassword)
		},
	}
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func roleName(admin bool) string {
	if admin {
		return "Admin"
	}
	return "User"
}
