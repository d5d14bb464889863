package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/edusurvey/edusurvey/internal/app"
	"github.com/edusurvey/edusurvey/internal/client"
	"github.com/edusurvey/edusurvey/internal/forms"
	"github.com/edusurvey/edusurvey/internal/guard"
	"github.com/edusurvey/edusurvey/internal/models"
	"github.com/edusurvey/edusurvey/internal/notify"
)

var surveyFlags = []string{"institution", "location", "residence", "level", "migrated", "reason"}

const (
	msgSurveySubmitted = "Survey submitted successfully!"
	msgSurveyUpdated   = "Survey updated successfully!"
	msgSurveyFailed    = "Failed to submit survey"
)

// NewSurveyCmd creates the survey command group
func NewSurveyCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "survey",
		Short: "Show or submit your education survey",
	}

	cmd.AddCommand(newSurveyShowCmd(env))
	cmd.AddCommand(newSurveySubmitCmd(env))

	return cmd
}

func newSurveyShowCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show your submitted survey",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := env.require(cmd.Context(), guard.Authenticated)
			if err != nil {
				return err
			}
			defer a.Close()

			survey, err := a.Client.MySurvey(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to load survey: %s", client.MessageFrom(err, "request failed"))
			}

			if survey == nil {
				fmt.Fprintln(env.Out, "You haven't completed the survey yet.")
				fmt.Fprintln(env.Out, "\nFill it in with: edusurvey survey submit")
				return nil
			}

			env.printSurvey(survey)
			return nil
		},
	}
}

func newSurveySubmitCmd(env *Env) *cobra.Command {
	var form forms.Survey

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit or update your survey",
		Long: `Submit or update your education survey.

Without flags an interactive prompt is shown, prefilled with your current answers.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := env.require(cmd.Context(), guard.Authenticated)
			if err != nil {
				return err
			}
			defer a.Close()

			existing, err := a.Client.MySurvey(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to load survey: %s", client.MessageFrom(err, "request failed"))
			}

			if !anyChanged(cmd, surveyFlags...) {
				if form, err = promptSurvey(forms.SurveyFrom(existing)); err != nil {
					return err
				}
			}

			if err := forms.Validate(form); err != nil {
				return err
			}

			return env.submitSurvey(cmd.Context(), a, existing, form)
		},
	}

	cmd.Flags().StringVar(&form.CurrentInstitution, "institution", "", "Current institution")
	cmd.Flags().StringVar(&form.InstitutionLocation, "location", "", "Institution location")
	cmd.Flags().StringVar(&form.CurrentResidence, "residence", "", "Current residence")
	cmd.Flags().StringVar(&form.EducationLevel, "level", "", "Education level (high_school, bachelors, masters, phd, other)")
	cmd.Flags().StringVar(&form.IsMigrated, "migrated", "", "Migrated for education (yes, no)")
	cmd.Flags().StringVar(&form.MigrationReason, "reason", "", "Reason for migrating")

	return cmd
}

// submitSurvey updates the existing survey when there is one, otherwise creates it
func (e *Env) submitSurvey(ctx context.Context, a *app.App, existing *models.Survey, form forms.Survey) error {
	out := notify.NewWriter(e.Err)

	var err error
	if existing != nil {
		_, err = a.Client.UpdateSurvey(ctx, existing.ID, form.Input())
	} else {
		_, err = a.Client.SubmitSurvey(ctx, form.Input())
	}
	if err != nil {
		a.Logger.Error().Err(err).Msg("Survey submission failed")
		out.Notify(notify.LevelError, client.MessageFrom(err, msgSurveyFailed))
		return errReported
	}

	if existing != nil {
		out.Notify(notify.LevelSuccess, msgSurveyUpdated)
	} else {
		out.Notify(notify.LevelSuccess, msgSurveySubmitted)
	}
	return nil
}

func promptSurvey(current forms.Survey) (forms.Survey, error) {
	var f forms.Survey
	var err error

	if f.CurrentInstitution, err = promptText("Current institution", current.CurrentInstitution); err != nil {
		return f, err
	}
	if f.InstitutionLocation, err = promptText("Institution location", current.InstitutionLocation); err != nil {
		return f, err
	}
	if f.CurrentResidence, err = promptText("Current residence", current.CurrentResidence); err != nil {
		return f, err
	}

	labels := make([]string, len(models.EducationLevels))
	for i, l := range models.EducationLevels {
		labels[i] = l.Label
	}
	idx, err := promptSelect("Education level", labels, levelIndex(current.EducationLevel))
	if err != nil {
		return f, err
	}
	f.EducationLevel = models.EducationLevels[idx].Value

	cursor := 1
	if current.IsMigrated == "yes" {
		cursor = 0
	}
	idx, err = promptSelect("Did you migrate for your education?", []string{"Yes", "No"}, cursor)
	if err != nil {
		return f, err
	}
	f.IsMigrated = []string{"yes", "no"}[idx]

	if f.IsMigrated == "yes" {
		if f.MigrationReason, err = promptText("Reason for migration", current.MigrationReason); err != nil {
			return f, err
		}
	}

	return f, nil
}

func promptText(label, def string) (string, error) {
	prompt := promptui.Prompt{
		Label:     label,
		Default:   def,
		AllowEdit: true,
		Validate: func(s string) error {
			if strings.TrimSpace(s) == "" {
				return errors.New("this field is required")
			}
			return nil
		},
	}

	v, err := prompt.Run()
	if err != nil {
		return "", fmt.Errorf("survey cancelled: %w", err)
	}
	return strings.TrimSpace(v), nil
}

func promptSelect(label string, items []string, cursor int) (int, error) {
	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}",
		Active:   "> {{ . | cyan }}",
		Inactive: "  {{ . }}",
		Selected: "{{ . | green }}",
	}

	prompt := promptui.Select{
		Label:     label,
		Items:     items,
		Templates: templates,
		CursorPos: cursor,
		Size:      len(items),
	}

	idx, _, err := prompt.Run()
	if err != nil {
		return 0, fmt.Errorf("survey cancelled: %w", err)
	}
	return idx, nil
}

func levelIndex(level string) int {
	for i, l := range models.EducationLevels {
		if l.Value == level {
			return i
		}
	}
	return 0
}

func (e *Env) printSurvey(s *models.Survey) {
	w := e.table()
	fmt.Fprintf(w, "Institution:\t%s\n", s.CurrentInstitution)
	fmt.Fprintf(w, "Location:\t%s\n", s.InstitutionLocation)
	fmt.Fprintf(w, "Residence:\t%s\n", s.CurrentResidence)
	fmt.Fprintf(w, "Education level:\t%s\n", models.EducationLevelLabel(s.EducationLevel))
	fmt.Fprintf(w, "Migrated:\t%s\n", s.IsMigrated)
	if s.Migrated() {
		fmt.Fprintf(w, "Reason:\t%s\n", orDash(s.MigrationReason))
	}
	if !s.SubmittedAt.IsZero() {
		fmt.Fprintf(w, "Submitted:\t%s\n", s.SubmittedAt.Local().Format("2006-01-02 15:04"))
	}
	w.Flush()
}
