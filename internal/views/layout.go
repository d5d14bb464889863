// Package views renders the local web UI as gomponents nodes.
package views

import (
	g "maragu.dev/gomponents"
	h "maragu.dev/gomponents/html"

	"github.com/edusurvey/edusurvey/internal/notify"
	"github.com/edusurvey/edusurvey/internal/session"
)

const htmxSrc = "https://unpkg.com/htmx.org@2.0.4"

// PageData is what every page needs besides its own content
type PageData struct {
	Title   string
	Session session.Session
	Notices []notify.Notice
	Path    string
}

// Layout wraps body in the document shell with navigation and toasts
func Layout(p PageData, body ...g.Node) g.Node {
	title := "EduSurvey"
	if p.Title != "" {
		title = p.Title + " | EduSurvey"
	}

	return h.Doctype(
		h.HTML(
			h.Lang("en"),
			h.Head(
				h.Meta(h.Charset("utf-8")),
				h.Meta(h.Name("viewport"), h.Content("width=device-width, initial-scale=1")),
				g.El("title", g.Text(title)),
				h.Script(h.Src(htmxSrc), h.Defer()),
			),
			h.Body(
				navigation(p),
				toasts(p.Notices),
				h.Main(h.Class("container"), g.Group(body)),
				h.Footer(h.Class("footer"), h.Small(g.Text("Student Migration & Education Quality Survey"))),
			),
		),
	)
}

func navigation(p PageData) g.Node {
	s := p.Session

	var links []g.Node
	switch {
	case s.Loading:
		// Nothing session dependent until the session resolves
	case s.Authenticated():
		links = append(links,
			navLink(p.Path, "/survey", "Survey"),
			navLink(p.Path, "/dashboard", "Dashboard"),
			navLink(p.Path, "/profile", "Profile"),
		)
		if s.IsAdmin() {
			links = append(links, navLink(p.Path, "/admin", "Admin"))
		}
		links = append(links, h.Li(
			postButton("/logout", "Logout", ""),
		))
	default:
		links = append(links,
			navLink(p.Path, "/login", "Login"),
			navLink(p.Path, "/signup", "Sign up"),
		)
	}

	return h.Header(
		h.Class("header"),
		h.Nav(
			h.A(h.Href("/"), h.Class("brand"), g.Text("EduSurvey")),
			h.Ul(g.Group(links)),
			g.If(s.Authenticated(), h.Span(h.Class("greeting"), g.Textf("Hi, %s", userName(s)))),
		),
	)
}

func navLink(current, href, label string) g.Node {
	return h.Li(
		h.A(
			h.Href(href),
			g.If(current == href, h.Aria("current", "page")),
			g.Text(label),
		),
	)
}

func userName(s session.Session) string {
	if s.User == nil {
		return ""
	}
	return s.User.Name
}

func toasts(notices []notify.Notice) g.Node {
	if len(notices) == 0 {
		return nil
	}

	return h.Div(
		h.Class("toasts"),
		g.Map(notices, func(n notify.Notice) g.Node {
			return h.Div(
				h.Class("toast toast-"+string(n.Level)),
				g.Attr("role", "alert"),
				g.Text(n.Message),
			)
		}),
	)
}

// postButton renders a one-button form. confirm, when set, asks first.
func postButton(action, label, confirm string) g.Node {
	return g.El("form",
		h.Method("post"),
		h.Action(action),
		h.Class("inline"),
		g.If(confirm != "", g.Attr("onsubmit", "return confirm('"+confirm+"')")),
		h.Button(h.Type("submit"), g.Text(label)),
	)
}
