// Package stats derives the admin overview from the user and survey lists.
package stats

import (
	"fmt"
	"strings"
	"time"

	"github.com/edusurvey/edusurvey/internal/models"
)

// WindowDays is the length of the recent-activity window
const WindowDays = 7

// DayCount is the number of events on one UTC calendar day
type DayCount struct {
	Date  time.Time
	Count int
}

// Label formats the day as month/day, e.g. "3/14"
func (d DayCount) Label() string {
	return fmt.Sprintf("%d/%d", int(d.Date.Month()), d.Date.Day())
}

// Overview holds the admin statistics. Rates are percentages.
type Overview struct {
	TotalUsers       int
	TotalSurveys     int
	CompletionRate   float64
	MigratedStudents int
	MigrationRate    float64
	NewUsers         int
	Signups          []DayCount
	Submissions      []DayCount
}

// Compute builds the overview as of now. The daily series cover the last
// WindowDays days including today, oldest first.
func Compute(users []models.UserProfile, surveys []models.Survey, now time.Time) Overview {
	o := Overview{
		TotalUsers:   len(users),
		TotalSurveys: len(surveys),
	}

	if o.TotalUsers > 0 {
		o.CompletionRate = float64(o.TotalSurveys) / float64(o.TotalUsers) * 100
	}

	for i := range surveys {
		if surveys[i].Migrated() {
			o.MigratedStudents++
		}
	}
	if o.TotalSurveys > 0 {
		o.MigrationRate = float64(o.MigratedStudents) / float64(o.TotalSurveys) * 100
	}

	window := WindowDays * 24 * time.Hour
	for _, u := range users {
		if u.CreatedAt.IsZero() {
			continue
		}
		if now.Sub(u.CreatedAt).Abs() <= window {
			o.NewUsers++
		}
	}

	signups := make([]time.Time, 0, len(users))
	for _, u := range users {
		signups = append(signups, u.CreatedAt)
	}
	submissions := make([]time.Time, 0, len(surveys))
	for _, s := range surveys {
		submissions = append(submissions, s.SubmittedAt)
	}

	o.Signups = daily(signups, now)
	o.Submissions = daily(submissions, now)

	return o
}

func daily(events []time.Time, now time.Time) []DayCount {
	today := truncateDay(now)
	days := make([]DayCount, WindowDays)
	index := make(map[time.Time]int, WindowDays)
	for i := range days {
		day := today.AddDate(0, 0, i-(WindowDays-1))
		days[i].Date = day
		index[day] = i
	}

	for _, t := range events {
		if t.IsZero() {
			continue
		}
		if i, ok := index[truncateDay(t)]; ok {
			days[i].Count++
		}
	}
	return days
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// FilterUsers keeps users whose name or email contains term, ignoring case
func FilterUsers(users []models.UserProfile, term string) []models.UserProfile {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return users
	}

	var out []models.UserProfile
	for _, u := range users {
		if contains(u.Name, term) || contains(u.Email, term) {
			out = append(out, u)
		}
	}
	return out
}

// FilterSurveys keeps surveys whose respondent or institution contains term
func FilterSurveys(surveys []models.Survey, term string) []models.Survey {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return surveys
	}

	var out []models.Survey
	for _, s := range surveys {
		if contains(s.UserName, term) || contains(s.UserEmail, term) || contains(s.CurrentInstitution, term) {
			out = append(out, s)
		}
	}
	return out
}

// FindSurvey returns the survey with id from a loaded list
func FindSurvey(surveys []models.Survey, id string) (*models.Survey, bool) {
	for i := range surveys {
		if surveys[i].ID == id {
			s := surveys[i]
			return &s, true
		}
	}
	return nil, false
}

func contains(s, lowerTerm string) bool {
	return strings.Contains(strings.ToLower(s), lowerTerm)
}
