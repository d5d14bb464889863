package views

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	g "maragu.dev/gomponents"

	"github.com/edusurvey/edusurvey/internal/models"
	"github.com/edusurvey/edusurvey/internal/notify"
	"github.com/edusurvey/edusurvey/internal/session"
	"github.com/edusurvey/edusurvey/internal/stats"
)

func render(t *testing.T, n g.Node) string {
	t.Helper()
	var b strings.Builder
	require.NoError(t, n.Render(&b))
	return b.String()
}

func TestLayout_Navigation(t *testing.T) {
	anonymous := render(t, HomePage(PageData{Session: session.Session{State: session.StateAnonymous}}))
	assert.Contains(t, anonymous, `href="/login"`)
	assert.NotContains(t, anonymous, `action="/logout"`)

	member := session.Session{State: session.StateAuthenticated, User: &models.UserProfile{Name: "Ann"}}
	out := render(t, HomePage(PageData{Session: member}))
	assert.Contains(t, out, `action="/logout"`)
	assert.Contains(t, out, "Hi, Ann")
	assert.NotContains(t, out, `href="/admin"`)

	member.User.IsAdmin = true
	assert.Contains(t, render(t, HomePage(PageData{Session: member})), `href="/admin"`)
}

func TestLoadingPage_PollsSession(t *testing.T) {
	out := render(t, LoadingPage(PageData{Session: session.Session{State: session.StateInitializing, Loading: true}}))
	assert.Contains(t, out, `hx-get="/session"`)
	assert.Contains(t, out, `hx-trigger="every 500ms"`)
	assert.NotContains(t, out, `href="/login"`, "no session dependent links while loading")
}

func TestToasts(t *testing.T) {
	out := render(t, HomePage(PageData{Notices: []notify.Notice{{Level: notify.LevelError, Message: "Login failed"}}}))
	assert.Contains(t, out, "toast-error")
	assert.Contains(t, out, "Login failed")
}

func TestLoginPage_KeepsValuesAndErrors(t *testing.T) {
	f := FormState{
		Values: map[string]string{"email": "a@b.com", "password": "secret"},
		Errors: map[string]string{"password": "Password is required"},
	}
	out := render(t, LoginPage(PageData{}, f))
	assert.Contains(t, out, `value="a@b.com"`)
	assert.Contains(t, out, "Password is required")
	assert.NotContains(t, out, "secret", "passwords are never echoed")
}

func TestSurveyPage_Prefill(t *testing.T) {
	f := FormState{Values: map[string]string{"educationLevel": "phd", "isMigrated": "yes"}}
	out := render(t, SurveyPage(PageData{}, f, true))
	assert.Contains(t, out, `<option value="phd" selected>PhD/Doctorate</option>`)
	assert.Contains(t, out, `value="yes" checked`)
	assert.Contains(t, out, "Update Survey")
}

func TestDashboardPage(t *testing.T) {
	empty := render(t, DashboardPage(PageData{}, nil, nil))
	assert.Contains(t, empty, "You haven&#39;t completed the survey yet.")

	survey := &models.Survey{SurveyInput: models.SurveyInput{CurrentInstitution: "MIT", EducationLevel: "masters", IsMigrated: "no"}}
	analytics := &models.Analytics{
		TotalResponses:             10,
		MigrationRate:              0.456,
		TopReasons:                 []models.ReasonShare{{Reason: "Quality", Percentage: 60}},
		EducationLevelDistribution: []models.LevelCount{{Level: "high_school", Count: 3}},
	}
	out := render(t, DashboardPage(PageData{}, survey, analytics))
	assert.Contains(t, out, "46% of students migrated for education")
	assert.Contains(t, out, "High School")
	assert.Contains(t, out, "60.0%")
	assert.Contains(t, out, "Master&#39;s Degree")
}

func TestAdminPage(t *testing.T) {
	now := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	users := []models.UserProfile{{ID: "u1", Name: "Ann", IsAdmin: true}}
	d := AdminData{
		Tab:      TabUsers,
		Query:    "an",
		Overview: stats.Compute(users, nil, now),
		Users:    users,
	}

	out := render(t, AdminPage(PageData{}, d))
	assert.Contains(t, out, "Remove Admin")
	assert.Contains(t, out, `/admin/users/u1/delete?back=%2Fadmin%3Fq%3Dan%26tab%3Dusers`)

	d.Tab = TabSurveys
	assert.Contains(t, render(t, AdminPage(PageData{}, d)), "No surveys found")

	d.Tab = ""
	overview := render(t, AdminPage(PageData{}, d))
	assert.Contains(t, overview, "0.0% completion rate")
	assert.Contains(t, overview, "+0 in the last 7 days")
}

func TestAdminURL(t *testing.T) {
	assert.Equal(t, "/admin", AdminURL(TabDashboard, ""))
	assert.Equal(t, "/admin?tab=surveys", AdminURL(TabSurveys, ""))
	assert.Equal(t, "/admin?q=a+b&tab=users", AdminURL(TabUsers, "a b"))
}
