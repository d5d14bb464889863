// Package server serves the local web UI over gin.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
	"github.com/rs/zerolog"

	"github.com/edusurvey/edusurvey/internal/config"
	"github.com/edusurvey/edusurvey/internal/inflight"
	"github.com/edusurvey/edusurvey/internal/models"
	"github.com/edusurvey/edusurvey/internal/notify"
	"github.com/edusurvey/edusurvey/internal/session"
)

// SurveyAPI is the part of the survey API the pages call directly
type SurveyAPI interface {
	MySurvey(ctx context.Context) (*models.Survey, error)
	SubmitSurvey(ctx context.Context, input models.SurveyInput) (*models.Survey, error)
	UpdateSurvey(ctx context.Context, id string, input models.SurveyInput) (*models.Survey, error)
	Analytics(ctx context.Context) (*models.Analytics, error)
	ListUsers(ctx context.Context) ([]models.UserProfile, error)
	DeleteUser(ctx context.Context, id string) error
	ToggleAdmin(ctx context.Context, id string) (bool, error)
	ListSurveys(ctx context.Context) ([]models.Survey, error)
	DeleteSurvey(ctx context.Context, id string) error
}

// Server represents the HTTP server
type Server struct {
	router  *gin.Engine
	config  *config.Config
	logger  zerolog.Logger
	session *session.Store
	api     SurveyAPI
	notices *notify.Queue
	cookies sessions.Store
	gates   *inflight.Gates
	now     func() time.Time
	version string
}

// New creates a new server instance
func New(cfg *config.Config, store *session.Store, api SurveyAPI, notices *notify.Queue, zlog zerolog.Logger, version string) *Server {
	cookies := sessions.NewCookieStore([]byte(cfg.Web.SessionSecret))
	cookies.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   3600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	server := &Server{
		config:  cfg,
		logger:  zlog,
		session: store,
		api:     api,
		notices: notices,
		cookies: cookies,
		gates:   inflight.NewGates(),
		now:     time.Now,
		version: version,
	}

	server.setupRouter()

	return server
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRouter configures the Gin router with routes and middleware
func (s *Server) setupRouter() {
	gin.SetMode(gin.ReleaseMode)

	s.router = gin.New()

	s.router.Use(gin.Recovery())
	s.router.Use(s.loggingMiddleware())

	if len(s.config.Web.AllowOrigins) > 0 {
		s.router.Use(cors.New(cors.Config{
			AllowOrigins:     s.config.Web.AllowOrigins,
			AllowMethods:     []string{"GET", "POST", "HEAD", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "HX-Request", "HX-Current-URL"},
			ExposeHeaders:    []string{"Content-Length", "HX-Refresh"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	s.router.Use(s.SameOrigin())

	s.router.GET("/health", s.healthCheck)
	s.router.GET("/session", s.sessionStatus)

	s.router.GET("/", s.home)

	// Guest pages; authenticated visitors are sent to the dashboard
	guest := s.router.Group("")
	guest.Use(s.RedirectAuthenticated("/dashboard"))
	{
		guest.GET("/login", s.loginPage)
		guest.POST("/login", s.login)
		guest.GET("/signup", s.signupPage)
		guest.POST("/signup", s.signup)
	}

	s.router.POST("/logout", s.logout)

	member := s.router.Group("")
	member.Use(s.RequireAuthenticated())
	{
		member.GET("/survey", s.surveyPage)
		member.POST("/survey", s.submitSurvey)
		member.GET("/dashboard", s.dashboard)
		member.GET("/profile", s.profilePage)
		member.POST("/profile", s.updateProfile)
		member.POST("/profile/password", s.updatePassword)
	}

	admin := s.router.Group("/admin")
	admin.Use(s.RequireAdmin())
	{
		admin.GET("", s.adminPage)
		admin.GET("/surveys.csv", s.exportSurveys)
		admin.GET("/surveys/:id", s.surveyDetail)
		admin.POST("/users/:id/delete", s.deleteUser)
		admin.POST("/users/:id/toggle-admin", s.toggleAdmin)
		admin.POST("/surveys/:id/delete", s.deleteSurvey)
	}

	s.router.NoRoute(func(c *gin.Context) {
		redirect(c, "/")
	})
}

// loggingMiddleware creates a custom logging middleware using zerolog
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start)

		s.logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", duration).
			Str("client_ip", c.ClientIP()).
			Msg("HTTP request")
	}
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.config.Web.Address,
		Handler:           s.router,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("address", s.config.Web.Address).Msg("Starting web UI")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("web server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info().Msg("Received shutdown signal, shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Error().Err(err).Msg("Error shutting down HTTP server")
		return err
	}

	s.logger.Info().Msg("Server shutdown complete")
	return nil
}
