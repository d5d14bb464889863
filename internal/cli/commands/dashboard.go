package commands

import (
	"fmt"
	"math"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/edusurvey/edusurvey/internal/client"
	"github.com/edusurvey/edusurvey/internal/guard"
	"github.com/edusurvey/edusurvey/internal/models"
)

// NewDashboardCmd creates the dashboard command
func NewDashboardCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show your survey and the community analytics",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := env.require(cmd.Context(), guard.Authenticated)
			if err != nil {
				return err
			}
			defer a.Close()

			var (
				survey    *models.Survey
				analytics *models.Analytics
			)

			g, ctx := errgroup.WithContext(cmd.Context())
			g.Go(func() error {
				var err error
				survey, err = a.Client.MySurvey(ctx)
				return err
			})
			g.Go(func() error {
				var err error
				analytics, err = a.Client.Analytics(ctx)
				return err
			})
			if err := g.Wait(); err != nil {
				return fmt.Errorf("failed to load dashboard: %s", client.MessageFrom(err, "request failed"))
			}

			if survey == nil {
				fmt.Fprintln(env.Out, "You haven't completed the survey yet.")
				fmt.Fprintln(env.Out, "\nFill it in with: edusurvey survey submit")
				return nil
			}

			fmt.Fprintln(env.Out, "Your survey:")
			fmt.Fprintln(env.Out)
			env.printSurvey(survey)

			if analytics == nil {
				return nil
			}
			env.printAnalytics(analytics)
			return nil
		},
	}
}

func (e *Env) printAnalytics(an *models.Analytics) {
	fmt.Fprintf(e.Out, "\n%d responses, %d%% of students migrated for education\n",
		an.TotalResponses, int(math.Round(an.MigrationRate*100)))

	if len(an.TopReasons) > 0 {
		fmt.Fprintln(e.Out, "\nTop reasons for migration:")
		w := e.table()
		fmt.Fprintln(w, "REASON\tSHARE")
		fmt.Fprintln(w, "──────\t─────")
		for _, r := range an.TopReasons {
			fmt.Fprintf(w, "%s\t%.1f%%\n", r.Reason, r.Percentage)
		}
		w.Flush()
	}

	if len(an.EducationLevelDistribution) > 0 {
		fmt.Fprintln(e.Out, "\nEducation levels:")
		w := e.table()
		fmt.Fprintln(w, "LEVEL\tCOUNT")
		fmt.Fprintln(w, "─────\t─────")
		for _, l := range an.EducationLevelDistribution {
			fmt.Fprintf(w, "%s\t%d\n", models.EducationLevelLabel(l.Level), l.Count)
		}
		w.Flush()
	}
}
