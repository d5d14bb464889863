package server

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/edusurvey/edusurvey/internal/guard"
	"github.com/edusurvey/edusurvey/internal/session"
	"github.com/edusurvey/edusurvey/internal/views"
)

const sessionKey = "session"

func setSession(c *gin.Context, snap session.Session) {
	c.Set(sessionKey, snap)
}

// GetSession returns the snapshot the guard admitted the request with
func GetSession(c *gin.Context) (session.Session, bool) {
	v, exists := c.Get(sessionKey)
	if !exists {
		return session.Session{}, false
	}

	snap, ok := v.(session.Session)
	return snap, ok
}

// RequireAuthenticated admits only visitors with a validated user
func (s *Server) RequireAuthenticated() gin.HandlerFunc {
	return s.guardMiddleware(guard.Authenticated)
}

// RequireAdmin admits only administrators
func (s *Server) RequireAdmin() gin.HandlerFunc {
	return s.guardMiddleware(guard.Admin)
}

// guardMiddleware takes one snapshot per request and acts on the decision
// for it exactly once
func (s *Server) guardMiddleware(req guard.Requirement) gin.HandlerFunc {
	return func(c *gin.Context) {
		snap := s.session.Snapshot()

		decision := guard.Decide(req, snap)
		switch decision.Action {
		case guard.Wait:
			s.render(c, http.StatusOK, views.LoadingPage(s.page(c, snap, "Loading")))
			c.Abort()
		case guard.Redirect:
			s.logger.Debug().
				Str("path", c.Request.URL.Path).
				Str("requirement", req.String()).
				Str("location", decision.Location).
				Msg("Guard redirect")
			redirect(c, decision.Location)
			c.Abort()
		default:
			setSession(c, snap)
			c.Next()
		}
	}
}

// RedirectAuthenticated sends visitors who are already logged in to location.
// While the session initializes the guest page renders as usual.
func (s *Server) RedirectAuthenticated(location string) gin.HandlerFunc {
	return func(c *gin.Context) {
		snap := s.session.Snapshot()
		if snap.Authenticated() {
			redirect(c, location)
			c.Abort()
			return
		}

		setSession(c, snap)
		c.Next()
	}
}

// SameOrigin rejects state-changing requests sent from another site. The
// Origin header decides, falling back to Referer. Requests carrying neither
// come from non-browser clients and pass.
func (s *Server) SameOrigin() gin.HandlerFunc {
	trusted := make(map[string]bool, len(s.config.Web.AllowOrigins))
	for _, origin := range s.config.Web.AllowOrigins {
		trusted[origin] = true
	}

	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}

		source := c.GetHeader("Origin")
		if source == "" {
			source = c.GetHeader("Referer")
		}

		allowed := true
		switch {
		case source != "":
			allowed = sameHost(source, c.Request.Host) || trusted[originOf(source)]
		case c.GetHeader("Sec-Fetch-Site") == "cross-site":
			allowed = false
		}

		if !allowed {
			s.logger.Warn().
				Str("method", c.Request.Method).
				Str("path", c.Request.URL.Path).
				Str("origin", source).
				Msg("Rejected cross-origin request")
			c.String(http.StatusForbidden, "Cross-origin request rejected")
			c.Abort()
			return
		}
		c.Next()
	}
}

// sameHost reports whether the URL in source points at host. "null" and
// other unparsable origins never match.
func sameHost(source, host string) bool {
	u, err := url.Parse(source)
	if err != nil || u.Host == "" {
		return false
	}
	return u.Host == host
}

// originOf reduces a Referer to scheme://host
func originOf(source string) string {
	u, err := url.Parse(source)
	if err != nil || u.Host == "" {
		return source
	}
	return u.Scheme + "://" + u.Host
}

// redirect answers with 303 so that a POST is followed by a GET. htmx
// requests get HX-Redirect instead.
func redirect(c *gin.Context, location string) {
	if c.GetHeader("HX-Request") == "true" {
		c.Header("HX-Redirect", location)
		c.Status(http.StatusNoContent)
		return
	}
	c.Redirect(http.StatusSeeOther, location)
}
