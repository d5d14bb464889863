package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edusurvey/edusurvey/internal/forms"
	"github.com/edusurvey/edusurvey/internal/inflight"
	"github.com/edusurvey/edusurvey/internal/notify"
	"github.com/edusurvey/edusurvey/internal/views"
)

const msgBusy = "Request already in progress"

// Form names, also used as in-flight gate keys
const (
	formLogin    = "login"
	formSignup   = "signup"
	formProfile  = "profile"
	formPassword = "password"
	formSurvey   = "survey"
	formAdmin    = "admin"
)

// guarded runs fn unless the same form is already being submitted
func (s *Server) guarded(form string, fn func() error) error {
	err := s.gates.For(form).Do(fn)
	if errors.Is(err, inflight.ErrBusy) {
		s.logger.Debug().Str("form", form).Msg("Rejected concurrent submission")
		s.notices.Notify(notify.LevelWarning, msgBusy)
	}
	return err
}

func (s *Server) home(c *gin.Context) {
	snap := s.snapshot(c)
	s.render(c, http.StatusOK, views.HomePage(s.page(c, snap, "")))
}

func (s *Server) loginPage(c *gin.Context) {
	snap := s.snapshot(c)
	s.render(c, http.StatusOK, views.LoginPage(s.page(c, snap, "Login"), s.loadForm(c, formLogin)))
}

func (s *Server) login(c *gin.Context) {
	var form forms.Login
	if err := c.ShouldBind(&form); err != nil {
		badRequest(c)
		return
	}

	values := map[string]string{"email": form.Email}

	if err := forms.Validate(form); err != nil {
		s.formFailure(c, formLogin, "/login", forms.Fields(err), values)
		return
	}

	err := s.guarded(formLogin, func() error {
		return s.session.Login(c.Request.Context(), form.Email, form.Password)
	})
	if err != nil {
		s.formFailure(c, formLogin, "/login", nil, values)
		return
	}

	redirect(c, "/dashboard")
}

func (s *Server) signupPage(c *gin.Context) {
	snap := s.snapshot(c)
	s.render(c, http.StatusOK, views.SignupPage(s.page(c, snap, "Sign up"), s.loadForm(c, formSignup)))
}

// signup creates an account and logs into it
func (s *Server) signup(c *gin.Context) {
	var form forms.Signup
	if err := c.ShouldBind(&form); err != nil {
		badRequest(c)
		return
	}

	values := map[string]string{"name": form.Name, "email": form.Email}

	// A mismatched confirmation never reaches the API
	if err := forms.Validate(form); err != nil {
		s.formFailure(c, formSignup, "/signup", forms.Fields(err), values)
		return
	}

	err := s.guarded(formSignup, func() error {
		return s.session.Signup(c.Request.Context(), form.Name, form.Email, form.Password)
	})
	if err != nil {
		s.formFailure(c, formSignup, "/signup", nil, values)
		return
	}

	redirect(c, "/survey")
}

func (s *Server) logout(c *gin.Context) {
	s.session.Logout()
	redirect(c, "/")
}
