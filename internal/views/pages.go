package views

import (
	"fmt"
	"math"

	g "maragu.dev/gomponents"
	hx "maragu.dev/gomponents-htmx"
	h "maragu.dev/gomponents/html"

	"github.com/edusurvey/edusurvey/internal/models"
)

// HomePage is the public landing page
func HomePage(p PageData) g.Node {
	start := "/signup"
	if p.Session.Authenticated() {
		start = "/survey"
	}

	return Layout(p,
		h.Section(
			h.Class("hero"),
			h.H1(g.Text("Student Migration & Education Quality Survey")),
			h.P(g.Text("Help us understand student migration patterns and improve educational quality by participating in our survey.")),
			h.A(h.Href(start), h.Class("button primary"), g.Text("Get Started")),
		),
		h.Section(
			h.H2(g.Text("How It Works")),
			h.Ol(
				h.Li(h.H3(g.Text("Create an Account")), h.P(g.Text("Sign up with your email to get started with the survey."))),
				h.Li(h.H3(g.Text("Complete the Survey")), h.P(g.Text("Share details about your education history and current situation."))),
				h.Li(h.H3(g.Text("View Insights")), h.P(g.Text("Access personalized recommendations and contribute to educational improvements."))),
			),
		),
	)
}

// LoadingPage is the neutral indicator shown while the session resolves.
// It polls the session and reloads once it is ready.
func LoadingPage(p PageData) g.Node {
	return Layout(p,
		h.Div(
			h.Class("loading"),
			g.Attr("role", "status"),
			hx.Get("/session"),
			hx.Trigger("every 500ms"),
			hx.Swap("none"),
			h.Span(h.Class("spinner"), h.Aria("hidden", "true")),
			h.Span(g.Text("Loading…")),
		),
		h.NoScript(h.Meta(g.Attr("http-equiv", "refresh"), h.Content("1"))),
	)
}

// LoginPage renders the login form
func LoginPage(p PageData, f FormState) g.Node {
	return Layout(p,
		h.H1(g.Text("Login")),
		form("/login",
			field(f, "email", "Email", "email", h.Placeholder("you@example.com")),
			field(f, "password", "Password", "password"),
			submit("Login"),
		),
		h.P(g.Text("Don't have an account? "), h.A(h.Href("/signup"), g.Text("Sign up"))),
	)
}

// SignupPage renders the registration form
func SignupPage(p PageData, f FormState) g.Node {
	return Layout(p,
		h.H1(g.Text("Create an account")),
		form("/signup",
			field(f, "name", "Full Name", "text"),
			field(f, "email", "Email", "email", h.Placeholder("you@example.com")),
			field(f, "password", "Password", "password"),
			field(f, "confirmPassword", "Confirm Password", "password"),
			submit("Sign up"),
		),
		h.P(g.Text("Already have an account? "), h.A(h.Href("/login"), g.Text("Login"))),
	)
}

// SurveyPage renders the survey form, prefilled when a survey exists
func SurveyPage(p PageData, f FormState, existing bool) g.Node {
	label := "Submit Survey"
	if existing {
		label = "Update Survey"
	}

	level := f.Value("educationLevel")
	migrated := f.Value("isMigrated")

	return Layout(p,
		h.H1(g.Text("Education Survey")),
		h.P(g.Textf("Hello %s, please fill out this survey about your education journey.", userName(p.Session))),
		form("/survey",
			field(f, "currentInstitution", "Current Educational Institution", "text"),
			field(f, "institutionLocation", "Institution Location", "text"),
			field(f, "currentResidence", "Current Residence", "text"),
			h.Div(
				h.Class("field"),
				h.Label(h.For("educationLevel"), g.Text("Current Education Level")),
				h.Select(
					h.ID("educationLevel"),
					h.Name("educationLevel"),
					h.Option(h.Value(""), g.Text("Select your education level")),
					g.Map(models.EducationLevels, func(l models.EducationLevel) g.Node {
						return h.Option(h.Value(l.Value), g.If(l.Value == level, h.Selected()), g.Text(l.Label))
					}),
				),
				fieldError(f.Error("educationLevel")),
			),
			h.FieldSet(
				h.Class("field"),
				h.Legend(g.Text("Did you migrate to another city/country for your education?")),
				radio("isMigrated", "yes", "Yes", migrated == "yes"),
				radio("isMigrated", "no", "No", migrated == "no"),
				fieldError(f.Error("isMigrated")),
			),
			h.Div(
				h.Class("field"),
				h.Label(h.For("migrationReason"), g.Text("Reason for Migration")),
				h.Textarea(h.ID("migrationReason"), h.Name("migrationReason"), g.Text(f.Value("migrationReason"))),
				h.Small(g.Text("Required if you migrated.")),
				fieldError(f.Error("migrationReason")),
			),
			submit(label),
		),
	)
}

func radio(name, value, label string, checked bool) g.Node {
	id := name + "-" + value
	return h.Div(
		h.Input(h.Type("radio"), h.ID(id), h.Name(name), h.Value(value), g.If(checked, h.Checked())),
		h.Label(h.For(id), g.Text(label)),
	)
}

// DashboardPage shows the user's survey and the aggregate analytics
func DashboardPage(p PageData, survey *models.Survey, analytics *models.Analytics) g.Node {
	if survey == nil {
		return Layout(p,
			h.H1(g.Text("Dashboard")),
			h.Div(
				h.Class("card"),
				h.P(g.Text("You haven't completed the survey yet.")),
				h.A(h.Href("/survey"), h.Class("button primary"), g.Text("Take Survey Now")),
			),
		)
	}

	return Layout(p,
		h.H1(g.Text("Dashboard")),
		h.Section(
			h.Class("card"),
			h.H2(g.Text("Your Survey")),
			surveySummary(*survey),
			h.A(h.Href("/survey"), g.Text("Edit your responses")),
		),
		analyticsSection(analytics),
	)
}

func analyticsSection(a *models.Analytics) g.Node {
	if a == nil {
		return nil
	}

	return h.Section(
		h.Class("card"),
		h.H2(g.Text("Survey Insights")),
		h.P(g.Textf("%d responses so far", a.TotalResponses)),
		h.P(g.Textf("%d%% of students migrated for education", int(math.Round(a.MigrationRate*100)))),
		h.H3(g.Text("Top Reasons for Migration")),
		h.Table(
			h.THead(h.Tr(h.Th(g.Text("Reason")), h.Th(g.Text("Share")))),
			h.TBody(g.Map(a.TopReasons, func(r models.ReasonShare) g.Node {
				return h.Tr(h.Td(g.Text(r.Reason)), h.Td(g.Text(percent(r.Percentage))))
			})),
		),
		h.H3(g.Text("Education Level Distribution")),
		h.Table(
			h.THead(h.Tr(h.Th(g.Text("Level")), h.Th(g.Text("Respondents")))),
			h.TBody(g.Map(a.EducationLevelDistribution, func(l models.LevelCount) g.Node {
				return h.Tr(h.Td(g.Text(models.EducationLevelLabel(l.Level))), h.Td(g.Textf("%d", l.Count)))
			})),
		),
	)
}

func surveySummary(s models.Survey) g.Node {
	migrated := "No"
	if s.Migrated() {
		migrated = "Yes"
	}

	return h.Dl(
		h.Dt(g.Text("Institution")), h.Dd(g.Text(s.CurrentInstitution)),
		h.Dt(g.Text("Location")), h.Dd(g.Text(s.InstitutionLocation)),
		h.Dt(g.Text("Residence")), h.Dd(g.Text(s.CurrentResidence)),
		h.Dt(g.Text("Education Level")), h.Dd(g.Text(models.EducationLevelLabel(s.EducationLevel))),
		h.Dt(g.Text("Migrated for Education")), h.Dd(g.Text(migrated)),
		g.If(s.Migrated() && s.MigrationReason != "", g.Group{
			h.Dt(g.Text("Reason for Migration")), h.Dd(g.Text(s.MigrationReason)),
		}),
	)
}

// ProfilePage shows the profile and password forms
func ProfilePage(p PageData, user models.UserProfile, details, password FormState) g.Node {
	return Layout(p,
		h.H1(g.Text("Profile")),
		h.Section(
			h.Class("card"),
			h.H2(g.Text("Account")),
			h.Dl(
				h.Dt(g.Text("Email")), h.Dd(g.Text(user.Email)),
				h.Dt(g.Text("Role")), h.Dd(g.Text(role(user.IsAdmin))),
				g.If(!user.CreatedAt.IsZero(), g.Group{
					h.Dt(g.Text("Member since")), h.Dd(g.Text(user.CreatedAt.Format("January 2, 2006"))),
				}),
			),
		),
		h.Section(
			h.Class("card"),
			h.H2(g.Text("Personal Information")),
			form("/profile",
				field(details, "name", "Full Name", "text"),
				field(details, "phone", "Phone Number", "tel"),
				h.Div(
					h.Class("field"),
					h.Input(
						h.Type("checkbox"), h.ID("notifications"), h.Name("notifications"), h.Value("true"),
						g.If(details.Value("notifications") == "true", h.Checked()),
					),
					h.Label(h.For("notifications"), g.Text("Receive email notifications")),
				),
				submit("Save Changes"),
			),
		),
		h.Section(
			h.Class("card"),
			h.H2(g.Text("Change Password")),
			form("/profile/password",
				field(password, "currentPassword", "Current Password", "password"),
				field(password, "newPassword", "New Password", "password"),
				field(password, "confirmPassword", "Confirm New Password", "password"),
				submit("Update Password"),
			),
		),
	)
}

func role(admin bool) string {
	if admin {
		return "Admin"
	}
	return "User"
}

func percent(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}
