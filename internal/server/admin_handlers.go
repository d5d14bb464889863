package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/edusurvey/edusurvey/internal/models"
	"github.com/edusurvey/edusurvey/internal/notify"
	"github.com/edusurvey/edusurvey/internal/stats"
	"github.com/edusurvey/edusurvey/internal/views"
)

const (
	msgAdminLoadFailed  = "Failed to load admin data"
	msgUserDeleted      = "User deleted successfully"
	msgUserDeleteFailed = "Failed to delete user"
	msgAdminToggled     = "User admin status updated"
	msgAdminToggleFail  = "Failed to update user admin status"
	msgSurveyDeleted    = "Survey deleted successfully"
	msgSurveyDelFailed  = "Failed to delete survey"
	msgSurveyNotFound   = "Survey not found"
)

// loadAdminData fetches users and surveys in parallel
func (s *Server) loadAdminData(ctx context.Context) ([]models.UserProfile, []models.Survey, error) {
	var (
		users   []models.UserProfile
		surveys []models.Survey
	)

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		users, err = s.api.ListUsers(ctx)
		return err
	})
	eg.Go(func() error {
		var err error
		surveys, err = s.api.ListSurveys(ctx)
		return err
	})
	if err := eg.Wait(); err != nil {
		return nil, nil, err
	}

	return users, surveys, nil
}

// adminPage renders the dashboard, users and surveys tabs. q filters the lists.
func (s *Server) adminPage(c *gin.Context) {
	snap := s.snapshot(c)

	tab := c.Query("tab")
	switch tab {
	case views.TabUsers, views.TabSurveys:
	default:
		tab = views.TabDashboard
	}
	query := strings.TrimSpace(c.Query("q"))

	data := views.AdminData{Tab: tab, Query: query}

	users, surveys, err := s.loadAdminData(c.Request.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("Error fetching admin data")
		s.notices.Notify(notify.LevelError, msgAdminLoadFailed)
		data.Failed = true
	}

	data.Overview = stats.Compute(users, surveys, s.now())
	data.Users = stats.FilterUsers(users, query)
	data.Surveys = stats.FilterSurveys(surveys, query)

	s.render(c, http.StatusOK, views.AdminPage(s.page(c, snap, "Admin"), data))
}

// exportSurveys downloads the (filtered) survey responses as CSV
func (s *Server) exportSurveys(c *gin.Context) {
	surveys, err := s.api.ListSurveys(c.Request.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list surveys for export")
		s.notices.Notify(notify.LevelError, msgAdminLoadFailed)
		redirect(c, views.AdminURL(views.TabSurveys, ""))
		return
	}

	surveys = stats.FilterSurveys(surveys, c.Query("q"))

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="surveys.csv"`)
	c.Status(http.StatusOK)
	if err := stats.WriteCSV(c.Writer, surveys); err != nil {
		s.logger.Error().Err(err).Msg("Failed to write survey export")
	}
}

func (s *Server) surveyDetail(c *gin.Context) {
	snap := s.snapshot(c)

	surveys, err := s.api.ListSurveys(c.Request.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list surveys")
		s.notices.Notify(notify.LevelError, msgAdminLoadFailed)
		redirect(c, views.AdminURL(views.TabSurveys, ""))
		return
	}

	survey, ok := stats.FindSurvey(surveys, c.Param("id"))
	if !ok {
		s.notices.Notify(notify.LevelWarning, msgSurveyNotFound)
		redirect(c, views.AdminURL(views.TabSurveys, ""))
		return
	}

	s.render(c, http.StatusOK, views.SurveyDetailPage(s.page(c, snap, "Survey Details"), *survey))
}

func (s *Server) deleteUser(c *gin.Context) {
	id := c.Param("id")
	s.adminAction(c, views.TabUsers, msgUserDeleted, msgUserDeleteFailed, func(ctx context.Context) error {
		if err := s.api.DeleteUser(ctx, id); err != nil {
			return err
		}
		s.refreshIfSelf(ctx, c, id)
		return nil
	})
}

// toggleAdmin flips a user's admin flag
func (s *Server) toggleAdmin(c *gin.Context) {
	id := c.Param("id")
	s.adminAction(c, views.TabUsers, msgAdminToggled, msgAdminToggleFail, func(ctx context.Context) error {
		isAdmin, err := s.api.ToggleAdmin(ctx, id)
		if err != nil {
			return err
		}
		s.logger.Info().Str("user_id", id).Bool("is_admin", isAdmin).Msg("Admin flag toggled")
		s.refreshIfSelf(ctx, c, id)
		return nil
	})
}

// refreshIfSelf revalidates the session when an admin changed their own account
func (s *Server) refreshIfSelf(ctx context.Context, c *gin.Context, id string) {
	snap := s.snapshot(c)
	if snap.User == nil || snap.User.ID != id {
		return
	}
	if err := s.session.Revalidate(ctx); err != nil {
		s.logger.Debug().Err(err).Msg("Revalidation after self change failed")
	}
}

func (s *Server) deleteSurvey(c *gin.Context) {
	id := c.Param("id")
	s.adminAction(c, views.TabSurveys, msgSurveyDeleted, msgSurveyDelFailed, func(ctx context.Context) error {
		return s.api.DeleteSurvey(ctx, id)
	})
}

// adminAction runs one admin mutation and returns to the page it came from
func (s *Server) adminAction(c *gin.Context, tab, success, failure string, fn func(ctx context.Context) error) {
	back := c.Query("back")
	if !strings.HasPrefix(back, "/admin") {
		back = views.AdminURL(tab, "")
	}

	err := s.guarded(formAdmin, func() error {
		if err := fn(c.Request.Context()); err != nil {
			s.logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Admin action failed")
			s.notices.Notify(notify.LevelError, failure)
			return err
		}
		s.notices.Notify(notify.LevelSuccess, success)
		return nil
	})
	if err != nil {
		s.logger.Debug().Err(err).Msg("Admin action not applied")
	}

	redirect(c, back)
}
