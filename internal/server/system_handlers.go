package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/edusurvey/edusurvey/internal/models"
)

// SessionResponse is the JSON view of the current session. The token is
// never exposed.
type SessionResponse struct {
	State   string              `json:"state"`
	Loading bool                `json:"loading"`
	User    *models.UserProfile `json:"user,omitempty"`
}

// @Summary Health check
// @Description Reports that the web UI is serving, with its version
// @Tags system
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health [get]
func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "online",
		"timestamp": time.Now().UTC(),
		"service":   "edusurvey-web",
		"version":   s.version,
	})
}

// @Summary Current session state
// @Description Polled by the loading indicator. htmx callers get HX-Refresh once resolved.
// @Tags session
// @Produce json
// @Success 200 {object} SessionResponse
// @Router /session [get]
func (s *Server) sessionStatus(c *gin.Context) {
	snap := s.session.Snapshot()

	if !snap.Loading && c.GetHeader("HX-Request") == "true" {
		c.Header("HX-Refresh", "true")
	}

	c.JSON(http.StatusOK, SessionResponse{
		State:   snap.State.String(),
		Loading: snap.Loading,
		User:    snap.User,
	})
}
