package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/edusurvey/edusurvey/internal/app"
	"github.com/edusurvey/edusurvey/internal/client"
	"github.com/edusurvey/edusurvey/internal/guard"
	"github.com/edusurvey/edusurvey/internal/models"
	"github.com/edusurvey/edusurvey/internal/notify"
	"github.com/edusurvey/edusurvey/internal/stats"
)

const (
	msgAdminLoadFailed  = "Failed to load admin data"
	msgUserDeleted      = "User deleted successfully"
	msgUserDeleteFailed = "Failed to delete user"
	msgAdminToggled     = "User admin status updated"
	msgAdminToggleFail  = "Failed to update user admin status"
	msgSurveyDeleted    = "Survey deleted successfully"
	msgSurveyDelFailed  = "Failed to delete survey"
)

// NewAdminCmd creates the admin command group
func NewAdminCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Administer users and surveys (admins only)",
	}

	cmd.AddCommand(newAdminStatsCmd(env))
	cmd.AddCommand(newAdminUsersCmd(env))
	cmd.AddCommand(newAdminSurveysCmd(env))
	cmd.AddCommand(newAdminSurveyCmd(env))
	cmd.AddCommand(newAdminActionCmd(env, "delete-user <user-id>", "Delete a user", "Delete user %s", msgUserDeleted, msgUserDeleteFailed,
		func(ctx context.Context, a *app.App, id string) error {
			return a.Client.DeleteUser(ctx, id)
		}))
	cmd.AddCommand(newAdminActionCmd(env, "toggle-admin <user-id>", "Grant or revoke admin rights", "Toggle admin rights of user %s", msgAdminToggled, msgAdminToggleFail,
		func(ctx context.Context, a *app.App, id string) error {
			_, err := a.Client.ToggleAdmin(ctx, id)
			return err
		}))
	cmd.AddCommand(newAdminActionCmd(env, "delete-survey <survey-id>", "Delete a survey", "Delete survey %s", msgSurveyDeleted, msgSurveyDelFailed,
		func(ctx context.Context, a *app.App, id string) error {
			return a.Client.DeleteSurvey(ctx, id)
		}))

	return cmd
}

// adminData fetches users and surveys in parallel
func adminData(ctx context.Context, a *app.App) ([]models.UserProfile, []models.Survey, error) {
	var (
		users   []models.UserProfile
		surveys []models.Survey
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		users, err = a.Client.ListUsers(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		surveys, err = a.Client.ListSurveys(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		a.Logger.Error().Err(err).Msg("Failed to load admin data")
		return nil, nil, fmt.Errorf("%s: %s", msgAdminLoadFailed, client.MessageFrom(err, "request failed"))
	}

	return users, surveys, nil
}

func newAdminStatsCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show user and survey statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := env.require(cmd.Context(), guard.Admin)
			if err != nil {
				return err
			}
			defer a.Close()

			users, surveys, err := adminData(cmd.Context(), a)
			if err != nil {
				return err
			}

			o := stats.Compute(users, surveys, time.Now())

			w := env.table()
			fmt.Fprintf(w, "Total users:\t%d\t(+%d in the last %d days)\n", o.TotalUsers, o.NewUsers, stats.WindowDays)
			fmt.Fprintf(w, "Surveys completed:\t%d\t(%.1f%% completion rate)\n", o.TotalSurveys, o.CompletionRate)
			fmt.Fprintf(w, "Migrated students:\t%d\t(%.1f%% of respondents)\n", o.MigratedStudents, o.MigrationRate)
			w.Flush()

			fmt.Fprintln(env.Out, "\nLast 7 days:")
			w = env.table()
			fmt.Fprintln(w, "DAY\tSIGNUPS\tSUBMISSIONS")
			fmt.Fprintln(w, "───\t───────\t───────────")
			for i, day := range o.Signups {
				fmt.Fprintf(w, "%s\t%d\t%d\n", day.Label(), day.Count, o.Submissions[i].Count)
			}
			w.Flush()

			return nil
		},
	}
}

func newAdminUsersCmd(env *Env) *cobra.Command {
	var search string

	cmd := &cobra.Command{
		Use:   "users",
		Short: "List users",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := env.require(cmd.Context(), guard.Admin)
			if err != nil {
				return err
			}
			defer a.Close()

			users, err := a.Client.ListUsers(cmd.Context())
			if err != nil {
				return fmt.Errorf("%s: %s", msgAdminLoadFailed, client.MessageFrom(err, "request failed"))
			}

			users = stats.FilterUsers(users, search)
			if len(users) == 0 {
				fmt.Fprintln(env.Out, "No users found.")
				return nil
			}

			w := env.table()
			fmt.Fprintln(w, "ID\tNAME\tEMAIL\tROLE\tJOINED")
			fmt.Fprintln(w, "──\t────\t─────\t────\t──────")
			for _, u := range users {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", u.ID, u.Name, u.Email, roleName(u.IsAdmin), day(u.CreatedAt))
			}
			w.Flush()

			return nil
		},
	}

	cmd.Flags().StringVar(&search, "search", "", "Filter by name or email")

	return cmd
}

func newAdminSurveysCmd(env *Env) *cobra.Command {
	var search string
	var csvOut bool

	cmd := &cobra.Command{
		Use:   "surveys",
		Short: "List submitted surveys",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := env.require(cmd.Context(), guard.Admin)
			if err != nil {
				return err
			}
			defer a.Close()

			surveys, err := a.Client.ListSurveys(cmd.Context())
			if err != nil {
				return fmt.Errorf("%s: %s", msgAdminLoadFailed, client.MessageFrom(err, "request failed"))
			}

			surveys = stats.FilterSurveys(surveys, search)
			if csvOut {
				return stats.WriteCSV(env.Out, surveys)
			}

			if len(surveys) == 0 {
				fmt.Fprintln(env.Out, "No surveys found.")
				return nil
			}

			w := env.table()
			fmt.Fprintln(w, "ID\tUSER\tINSTITUTION\tLEVEL\tMIGRATED\tSUBMITTED")
			fmt.Fprintln(w, "──\t────\t───────────\t─────\t────────\t─────────")
			for _, s := range surveys {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					s.ID,
					orDash(s.UserName),
					s.CurrentInstitution,
					models.EducationLevelLabel(s.EducationLevel),
					s.IsMigrated,
					day(s.SubmittedAt),
				)
			}
			w.Flush()

			return nil
		},
	}

	cmd.Flags().StringVar(&search, "search", "", "Filter by respondent or institution")
	cmd.Flags().BoolVar(&csvOut, "csv", false, "Write CSV to stdout")

	return cmd
}

func newAdminSurveyCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "survey <survey-id>",
		Short: "Show a single survey",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := env.require(cmd.Context(), guard.Admin)
			if err != nil {
				return err
			}
			defer a.Close()

			surveys, err := a.Client.ListSurveys(cmd.Context())
			if err != nil {
				return fmt.Errorf("%s: %s", msgAdminLoadFailed, client.MessageFrom(err, "request failed"))
			}

			survey, ok := stats.FindSurvey(surveys, args[0])
			if !ok {
				return fmt.Errorf("survey '%s' not found", args[0])
			}

			fmt.Fprintf(env.Out, "Respondent: %s (%s)\n\n", orDash(survey.UserName), orDash(survey.UserEmail))
			env.printSurvey(survey)
			return nil
		},
	}
}

// newAdminActionCmd builds a confirmed single-id admin mutation
func newAdminActionCmd(env *Env, use, short, confirm, success, failure string, fn func(ctx context.Context, a *app.App, id string) error) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]

			a, err := env.require(cmd.Context(), guard.Admin)
			if err != nil {
				return err
			}
			defer a.Close()

			if !yes {
				prompt := promptui.Prompt{
					Label:     fmt.Sprintf(confirm, id),
					IsConfirm: true,
				}
				if _, err := prompt.Run(); err != nil {
					fmt.Fprintln(env.Out, "Cancelled.")
					return nil
				}
			}

			out := notify.NewWriter(env.Err)
			if err := fn(cmd.Context(), a, id); err != nil {
				a.Logger.Error().Err(err).Str("id", id).Msg("Admin action failed")
				out.Notify(notify.LevelError, client.MessageFrom(err, failure))
				return errReported
			}
			out.Notify(notify.LevelSuccess, success)

			// Acting on the own account may revoke the rights this session holds
			if u := a.Session.Snapshot().User; u != nil && u.ID == id {
				if err := a.Session.Revalidate(cmd.Context()); err != nil {
					a.Logger.Debug().Err(err).Msg("Session revalidation after admin action failed")
				}
			}

			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")

	return cmd
}

func day(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02")
}
