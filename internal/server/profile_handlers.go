package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/edusurvey/edusurvey/internal/forms"
	"github.com/edusurvey/edusurvey/internal/views"
)

func (s *Server) profilePage(c *gin.Context) {
	snap := s.snapshot(c)
	user := *snap.User

	details := s.loadForm(c, formProfile)
	if details.Values == nil {
		details.Values = map[string]string{
			"name":          user.Name,
			"phone":         user.Phone,
			"notifications": strconv.FormatBool(user.NotificationsEnabled()),
		}
	}
	password := s.loadForm(c, formPassword)

	s.render(c, http.StatusOK, views.ProfilePage(s.page(c, snap, "Profile"), user, details, password))
}

func (s *Server) updateProfile(c *gin.Context) {
	var form forms.Profile
	if err := c.ShouldBind(&form); err != nil {
		badRequest(c)
		return
	}

	values := map[string]string{
		"name":          form.Name,
		"phone":         form.Phone,
		"notifications": strconv.FormatBool(form.Notifications),
	}

	if err := forms.Validate(form); err != nil {
		s.formFailure(c, formProfile, "/profile", forms.Fields(err), values)
		return
	}

	err := s.guarded(formProfile, func() error {
		_, err := s.session.UpdateProfile(c.Request.Context(), form.Update())
		return err
	})
	if err != nil {
		s.formFailure(c, formProfile, "/profile", nil, values)
		return
	}

	redirect(c, "/profile")
}

func (s *Server) updatePassword(c *gin.Context) {
	var form forms.Password
	if err := c.ShouldBind(&form); err != nil {
		badRequest(c)
		return
	}

	if err := forms.Validate(form); err != nil {
		s.formFailure(c, formPassword, "/profile", forms.Fields(err), nil)
		return
	}

	err := s.guarded(formPassword, func() error {
		return s.session.UpdatePassword(c.Request.Context(), form.CurrentPassword, form.NewPassword)
	})
	if err != nil {
		s.formFailure(c, formPassword, "/profile", nil, nil)
		return
	}

	redirect(c, "/profile")
}
