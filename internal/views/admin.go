package views

import (
	"net/url"

	g "maragu.dev/gomponents"
	h "maragu.dev/gomponents/html"

	"github.com/edusurvey/edusurvey/internal/models"
	"github.com/edusurvey/edusurvey/internal/stats"
)

// Admin tabs
const (
	TabDashboard = "dashboard"
	TabUsers     = "users"
	TabSurveys   = "surveys"
)

// AdminData is the content of the admin page
type AdminData struct {
	Tab      string
	Query    string
	Overview stats.Overview
	Users    []models.UserProfile
	Surveys  []models.Survey
	// Failed is set when the lists could not be loaded
	Failed bool
}

// AdminURL builds the admin page location for a tab and search term
func AdminURL(tab, query string) string {
	v := url.Values{}
	if tab != "" && tab != TabDashboard {
		v.Set("tab", tab)
	}
	if query != "" {
		v.Set("q", query)
	}
	if len(v) == 0 {
		return "/admin"
	}
	return "/admin?" + v.Encode()
}

// AdminPage renders the admin dashboard
func AdminPage(p PageData, d AdminData) g.Node {
	var content g.Node
	switch d.Tab {
	case TabUsers:
		content = usersTab(d)
	case TabSurveys:
		content = surveysTab(d)
	default:
		content = overviewTab(d.Overview)
	}

	return Layout(p,
		h.H1(g.Text("Admin Dashboard")),
		h.Nav(
			h.Class("tabs"),
			tabLink(d, TabDashboard, "Dashboard"),
			tabLink(d, TabUsers, "Users"),
			tabLink(d, TabSurveys, "Surveys"),
		),
		g.If(d.Failed, h.P(h.Class("field-error"), g.Text("Failed to load admin data"))),
		content,
	)
}

func tabLink(d AdminData, tab, label string) g.Node {
	return h.A(
		h.Href(AdminURL(tab, d.Query)),
		g.If(d.Tab == tab, h.Aria("current", "page")),
		g.Text(label),
	)
}

func overviewTab(o stats.Overview) g.Node {
	return h.Section(
		h.Div(
			h.Class("stats"),
			statCard("Total Users", g.Textf("%d", o.TotalUsers), g.Textf("+%d in the last %d days", o.NewUsers, stats.WindowDays)),
			statCard("Survey Responses", g.Textf("%d", o.TotalSurveys), g.Textf("%.1f%% completion rate", o.CompletionRate)),
			statCard("Migration Rate", g.Textf("%.1f%%", o.MigrationRate), g.Textf("%d out of %d students", o.MigratedStudents, o.TotalSurveys)),
		),
		h.H2(g.Text("Activity")),
		h.Table(
			h.Caption(g.Textf("New user sign-ups and survey responses over the last %d days", stats.WindowDays)),
			h.THead(h.Tr(h.Th(g.Text("Day")), h.Th(g.Text("New Users")), h.Th(g.Text("Survey Responses")))),
			h.TBody(activityRows(o)),
		),
	)
}

func activityRows(o stats.Overview) g.Group {
	rows := make(g.Group, 0, len(o.Signups))
	for i, day := range o.Signups {
		submissions := 0
		if i < len(o.Submissions) {
			submissions = o.Submissions[i].Count
		}
		rows = append(rows, h.Tr(
			h.Td(g.Text(day.Label())),
			h.Td(g.Textf("%d", day.Count)),
			h.Td(g.Textf("%d", submissions)),
		))
	}
	return rows
}

func statCard(title string, value, detail g.Node) g.Node {
	return h.Div(
		h.Class("card stat"),
		h.P(h.Class("stat-title"), g.Text(title)),
		h.P(h.Class("stat-value"), value),
		h.Small(detail),
	)
}

func searchForm(tab, query, placeholder string) g.Node {
	return g.El("form",
		h.Method("get"),
		h.Action("/admin"),
		h.Class("search"),
		h.Input(h.Type("hidden"), h.Name("tab"), h.Value(tab)),
		h.Input(h.Type("search"), h.Name("q"), h.Value(query), h.Placeholder(placeholder)),
		h.Button(h.Type("submit"), g.Text("Search")),
	)
}

func usersTab(d AdminData) g.Node {
	back := url.QueryEscape(AdminURL(TabUsers, d.Query))

	var rows g.Node
	if len(d.Users) == 0 {
		rows = h.Tr(h.Td(g.Attr("colspan", "5"), g.Text("No users found")))
	} else {
		rows = g.Map(d.Users, func(u models.UserProfile) g.Node {
			toggle := "Make Admin"
			if u.IsAdmin {
				toggle = "Remove Admin"
			}
			return h.Tr(
				h.Td(g.Text(u.Name)),
				h.Td(g.Text(u.Email)),
				h.Td(g.Text(role(u.IsAdmin))),
				h.Td(g.Text(joined(u))),
				h.Td(
					postButton("/admin/users/"+url.PathEscape(u.ID)+"/toggle-admin?back="+back, toggle, ""),
					postButton("/admin/users/"+url.PathEscape(u.ID)+"/delete?back="+back, "Delete", "Are you sure you want to delete this user?"),
				),
			)
		})
	}

	return h.Section(
		h.H2(g.Text("User Management")),
		searchForm(TabUsers, d.Query, "Search users..."),
		h.Table(
			h.THead(h.Tr(
				h.Th(g.Text("Name")), h.Th(g.Text("Email")), h.Th(g.Text("Role")),
				h.Th(g.Text("Joined")), h.Th(g.Text("Actions")),
			)),
			h.TBody(rows),
		),
	)
}

func joined(u models.UserProfile) string {
	if u.CreatedAt.IsZero() {
		return ""
	}
	return u.CreatedAt.Format("Jan 2, 2006")
}

func surveysTab(d AdminData) g.Node {
	back := url.QueryEscape(AdminURL(TabSurveys, d.Query))

	var rows g.Node
	if len(d.Surveys) == 0 {
		rows = h.Tr(h.Td(g.Attr("colspan", "6"), g.Text("No surveys found")))
	} else {
		rows = g.Map(d.Surveys, func(s models.Survey) g.Node {
			migrated := "No"
			if s.Migrated() {
				migrated = "Yes"
			}
			submitted := ""
			if !s.SubmittedAt.IsZero() {
				submitted = s.SubmittedAt.Format("Jan 2, 2006")
			}
			return h.Tr(
				h.Td(h.Strong(g.Text(s.UserName)), h.Br(), h.Small(g.Text(s.UserEmail))),
				h.Td(g.Text(s.CurrentInstitution)),
				h.Td(g.Text(models.EducationLevelLabel(s.EducationLevel))),
				h.Td(g.Text(migrated)),
				h.Td(g.Text(submitted)),
				h.Td(
					h.A(h.Href("/admin/surveys/"+url.PathEscape(s.ID)), g.Text("View")),
					postButton("/admin/surveys/"+url.PathEscape(s.ID)+"/delete?back="+back, "Delete", "Are you sure you want to delete this survey?"),
				),
			)
		})
	}

	export := "/admin/surveys.csv"
	if d.Query != "" {
		export += "?q=" + url.QueryEscape(d.Query)
	}

	return h.Section(
		h.H2(g.Text("Survey Responses")),
		searchForm(TabSurveys, d.Query, "Search surveys..."),
		h.A(h.Href(export), h.Class("button"), g.Text("Export to CSV")),
		h.Table(
			h.THead(h.Tr(
				h.Th(g.Text("Student")), h.Th(g.Text("Institution")), h.Th(g.Text("Education Level")),
				h.Th(g.Text("Migrated")), h.Th(g.Text("Submitted")), h.Th(g.Text("Actions")),
			)),
			h.TBody(rows),
		),
	)
}

// SurveyDetailPage shows one survey record to an admin
func SurveyDetailPage(p PageData, s models.Survey) g.Node {
	return Layout(p,
		h.H1(g.Text("Survey Details")),
		h.Section(
			h.Class("card"),
			h.H2(g.Text(s.UserName)),
			h.P(g.Text(s.UserEmail)),
			surveySummary(s),
			g.If(!s.SubmittedAt.IsZero(), h.P(h.Small(g.Textf("Submitted %s", s.SubmittedAt.Format("January 2, 2006 15:04"))))),
		),
		h.A(h.Href(AdminURL(TabSurveys, "")), g.Text("Back to surveys")),
	)
}
