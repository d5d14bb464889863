package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/edusurvey/edusurvey/internal/client"
	"github.com/edusurvey/edusurvey/internal/forms"
	"github.com/edusurvey/edusurvey/internal/models"
	"github.com/edusurvey/edusurvey/internal/notify"
	"github.com/edusurvey/edusurvey/internal/views"
)

const (
	msgSurveySubmitted = "Survey submitted successfully!"
	msgSurveyUpdated   = "Survey updated successfully!"
	msgSurveyFailed    = "Failed to submit survey"
)

func surveyValues(f forms.Survey) map[string]string {
	return map[string]string{
		"currentInstitution":  f.CurrentInstitution,
		"institutionLocation": f.InstitutionLocation,
		"currentResidence":    f.CurrentResidence,
		"educationLevel":      f.EducationLevel,
		"isMigrated":          f.IsMigrated,
		"migrationReason":     f.MigrationReason,
	}
}

func (s *Server) surveyPage(c *gin.Context) {
	snap := s.snapshot(c)

	existing, err := s.api.MySurvey(c.Request.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to fetch existing survey")
	}

	state := s.loadForm(c, formSurvey)
	if state.Values == nil {
		state.Values = surveyValues(forms.SurveyFrom(existing))
	}

	s.render(c, http.StatusOK, views.SurveyPage(s.page(c, snap, "Survey"), state, existing != nil))
}

// submitSurvey updates the existing survey when there is one, otherwise creates it
func (s *Server) submitSurvey(c *gin.Context) {
	var form forms.Survey
	if err := c.ShouldBind(&form); err != nil {
		badRequest(c)
		return
	}

	if err := forms.Validate(form); err != nil {
		s.formFailure(c, formSurvey, "/survey", forms.Fields(err), surveyValues(form))
		return
	}

	err := s.guarded(formSurvey, func() error {
		ctx := c.Request.Context()

		existing, err := s.api.MySurvey(ctx)
		if err != nil {
			s.notices.Notify(notify.LevelError, client.MessageFrom(err, msgSurveyFailed))
			return err
		}

		if existing != nil {
			_, err = s.api.UpdateSurvey(ctx, existing.ID, form.Input())
		} else {
			_, err = s.api.SubmitSurvey(ctx, form.Input())
		}
		if err != nil {
			s.logger.Error().Err(err).Msg("Survey submission failed")
			s.notices.Notify(notify.LevelError, client.MessageFrom(err, msgSurveyFailed))
			return err
		}

		if existing != nil {
			s.notices.Notify(notify.LevelSuccess, msgSurveyUpdated)
		} else {
			s.notices.Notify(notify.LevelSuccess, msgSurveySubmitted)
		}
		return nil
	})
	if err != nil {
		s.formFailure(c, formSurvey, "/survey", nil, surveyValues(form))
		return
	}

	redirect(c, "/dashboard")
}

func (s *Server) dashboard(c *gin.Context) {
	snap := s.snapshot(c)

	var (
		survey    *models.Survey
		analytics *models.Analytics
	)

	eg, ctx := errgroup.WithContext(c.Request.Context())
	eg.Go(func() error {
		var err error
		survey, err = s.api.MySurvey(ctx)
		return err
	})
	eg.Go(func() error {
		var err error
		analytics, err = s.api.Analytics(ctx)
		return err
	})
	if err := eg.Wait(); err != nil {
		s.logger.Error().Err(err).Msg("Error fetching dashboard data")
	}

	s.render(c, http.StatusOK, views.DashboardPage(s.page(c, snap, "Dashboard"), survey, analytics))
}
