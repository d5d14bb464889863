package stats

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edusurvey/edusurvey/internal/models"
)

var now = time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC)

func daysAgo(n int) time.Time {
	return now.AddDate(0, 0, -n)
}

func TestCompute(t *testing.T) {
	users := []models.UserProfile{
		{ID: "1", CreatedAt: daysAgo(0)},
		{ID: "2", CreatedAt: daysAgo(0)},
		{ID: "3", CreatedAt: daysAgo(6)},
		{ID: "4", CreatedAt: daysAgo(30)},
		{ID: "5"},
	}
	surveys := []models.Survey{
		{ID: "a", SurveyInput: models.SurveyInput{IsMigrated: "yes"}, SubmittedAt: daysAgo(1)},
		{ID: "b", SurveyInput: models.SurveyInput{IsMigrated: "no"}, SubmittedAt: daysAgo(1)},
	}

	o := Compute(users, surveys, now)

	assert.Equal(t, 5, o.TotalUsers)
	assert.Equal(t, 2, o.TotalSurveys)
	assert.InDelta(t, 40.0, o.CompletionRate, 0.001)
	assert.Equal(t, 1, o.MigratedStudents)
	assert.InDelta(t, 50.0, o.MigrationRate, 0.001)
	assert.Equal(t, 3, o.NewUsers, "zero timestamps and old users are not new")

	require.Len(t, o.Signups, WindowDays)
	require.Len(t, o.Submissions, WindowDays)
	assert.Equal(t, "3/8", o.Signups[0].Label(), "oldest first")
	assert.Equal(t, "3/14", o.Signups[6].Label())

	signups := make([]int, 0, WindowDays)
	for _, d := range o.Signups {
		signups = append(signups, d.Count)
	}
	assert.Equal(t, []int{1, 0, 0, 0, 0, 0, 2}, signups)
	assert.Equal(t, 2, o.Submissions[5].Count)
}

func TestCompute_Empty(t *testing.T) {
	o := Compute(nil, nil, now)
	assert.Zero(t, o.CompletionRate)
	assert.Zero(t, o.MigrationRate)
	assert.Len(t, o.Signups, WindowDays)
}

func TestFilters(t *testing.T) {
	users := []models.UserProfile{
		{ID: "1", Name: "Ann Lee", Email: "ann@uni.edu"},
		{ID: "2", Name: "Bob", Email: "bob@mail.com"},
	}
	surveys := []models.Survey{
		{ID: "a", UserName: "Ann Lee", SurveyInput: models.SurveyInput{CurrentInstitution: "MIT"}},
		{ID: "b", UserEmail: "bob@mail.com", SurveyInput: models.SurveyInput{CurrentInstitution: "Oxford"}},
	}

	tests := []struct {
		term    string
		users   []string
		surveys []string
	}{
		{term: "", users: []string{"1", "2"}, surveys: []string{"a", "b"}},
		{term: "ANN", users: []string{"1"}, surveys: []string{"a"}},
		{term: "mail.com", users: []string{"2"}, surveys: []string{"b"}},
		{term: "oxf", surveys: []string{"b"}},
		{term: "nobody"},
	}

	for _, tt := range tests {
		t.Run(tt.term, func(t *testing.T) {
			var gotUsers, gotSurveys []string
			for _, u := range FilterUsers(users, tt.term) {
				gotUsers = append(gotUsers, u.ID)
			}
			for _, s := range FilterSurveys(surveys, tt.term) {
				gotSurveys = append(gotSurveys, s.ID)
			}
			assert.Equal(t, tt.users, gotUsers)
			assert.Equal(t, tt.surveys, gotSurveys)
		})
	}
}

func TestFindSurvey(t *testing.T) {
	surveys := []models.Survey{{ID: "a"}, {ID: "b", UserName: "Bob"}}

	s, ok := FindSurvey(surveys, "b")
	require.True(t, ok)
	assert.Equal(t, "Bob", s.UserName)

	_, ok = FindSurvey(surveys, "zzz")
	assert.False(t, ok)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	err := WriteCSV(&buf, []models.Survey{{
		ID:       "a",
		UserName: "Lee, Ann",
		SurveyInput: models.SurveyInput{
			CurrentInstitution: "MIT",
			EducationLevel:     models.EducationPhD,
			IsMigrated:         "yes",
			MigrationReason:    "Research",
		},
		SubmittedAt: now,
	}})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "id,user_name,"))
	assert.Equal(t, `a,"Lee, Ann",,MIT,,,PhD/Doctorate,yes,Research,2026-03-14T15:00:00Z`, lines[1])
}
