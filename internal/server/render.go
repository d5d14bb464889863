package server

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	g "maragu.dev/gomponents"

	"github.com/edusurvey/edusurvey/internal/session"
	"github.com/edusurvey/edusurvey/internal/views"
)

const formSessionName = "edusurvey-form"

// page builds the shared page data and drains pending notifications
func (s *Server) page(c *gin.Context, snap session.Session, title string) views.PageData {
	return views.PageData{
		Title:   title,
		Session: snap,
		Notices: s.notices.Drain(),
		Path:    c.Request.URL.Path,
	}
}

// snapshot returns the guard's snapshot, or a fresh one for unguarded routes
func (s *Server) snapshot(c *gin.Context) session.Session {
	if snap, ok := GetSession(c); ok {
		return snap
	}
	return s.session.Snapshot()
}

func (s *Server) render(c *gin.Context, status int, node g.Node) {
	c.Header("Cache-Control", "no-store")
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(status)
	if err := node.Render(c.Writer); err != nil {
		s.logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Failed to render page")
	}
}

// saveForm keeps a form's errors and values for the page the redirect lands on
func (s *Server) saveForm(c *gin.Context, name string, state views.FormState) {
	data, err := json.Marshal(state)
	if err != nil {
		s.logger.Error().Err(err).Str("form", name).Msg("Failed to encode form state")
		return
	}

	sess, _ := s.cookies.Get(c.Request, formSessionName)
	sess.AddFlash(string(data), name)
	if err := sess.Save(c.Request, c.Writer); err != nil {
		s.logger.Warn().Err(err).Str("form", name).Msg("Failed to save form state")
	}
}

// loadForm returns and clears the state saved for a form
func (s *Server) loadForm(c *gin.Context, name string) views.FormState {
	var state views.FormState

	sess, _ := s.cookies.Get(c.Request, formSessionName)
	flashes := sess.Flashes(name)
	if len(flashes) == 0 {
		return state
	}

	if err := sess.Save(c.Request, c.Writer); err != nil {
		s.logger.Warn().Err(err).Str("form", name).Msg("Failed to clear form state")
	}

	if data, ok := flashes[len(flashes)-1].(string); ok {
		if err := json.Unmarshal([]byte(data), &state); err != nil {
			s.logger.Warn().Err(err).Str("form", name).Msg("Discarding unreadable form state")
		}
	}
	return state
}

// formFailure stores the state of a rejected form and sends the visitor back
func (s *Server) formFailure(c *gin.Context, name, back string, errs map[string]string, values map[string]string) {
	s.saveForm(c, name, views.FormState{Errors: errs, Values: values})
	redirect(c, back)
}

func badRequest(c *gin.Context) {
	c.String(http.StatusBadRequest, "bad request")
}
