package models

import (
	"encoding/json"
	"strings"
	"time"
)

// Education levels accepted by the survey
const (
	EducationHighSchool = "high_school"
	EducationBachelors  = "bachelors"
	EducationMasters    = "masters"
	EducationPhD        = "phd"
	EducationOther      = "other"
)

// EducationLevel pairs a stored value with its display label
type EducationLevel struct {
	Value string
	Label string
}

// EducationLevels lists the survey choices in display order
var EducationLevels = []EducationLevel{
	{Value: EducationHighSchool, Label: "High School"},
	{Value: EducationBachelors, Label: "Bachelor's Degree"},
	{Value: EducationMasters, Label: "Master's Degree"},
	{Value: EducationPhD, Label: "PhD/Doctorate"},
	{Value: EducationOther, Label: "Other"},
}

// EducationLevelLabel returns a human-readable label for a stored level.
// Unknown values are title-cased with underscores turned into spaces.
func EducationLevelLabel(level string) string {
	for _, l := range EducationLevels {
		if l.Value == level {
			return l.Label
		}
	}
	words := strings.Fields(strings.ReplaceAll(level, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// SurveyInput holds the fields a user submits
type SurveyInput struct {
	CurrentInstitution  string `json:"currentInstitution"`
	InstitutionLocation string `json:"institutionLocation"`
	CurrentResidence    string `json:"currentResidence"`
	EducationLevel      string `json:"educationLevel"`
	IsMigrated          string `json:"isMigrated"`
	MigrationReason     string `json:"migrationReason,omitempty"`
}

// Survey is a stored survey record
type Survey struct {
	SurveyInput
	ID          string    `json:"id"`
	UserName    string    `json:"userName,omitempty"`
	UserEmail   string    `json:"userEmail,omitempty"`
	SubmittedAt time.Time `json:"submittedAt"`
}

func (s *Survey) UnmarshalJSON(data []byte) error {
	type alias Survey
	aux := struct {
		*alias
		MongoID string `json:"_id"`
	}{alias: (*alias)(s)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if s.ID == "" {
		s.ID = aux.MongoID
	}
	return nil
}

// Migrated reports whether the respondent moved for their education
func (s *Survey) Migrated() bool {
	return s.IsMigrated == "yes"
}

// ReasonShare is one slice of the migration reasons breakdown
type ReasonShare struct {
	Reason     string  `json:"reason"`
	Percentage float64 `json:"percentage"`
}

// LevelCount is one bar of the education level distribution
type LevelCount struct {
	Level string `json:"level"`
	Count int    `json:"count"`
}

// Analytics is the aggregate computed by the API across all surveys
type Analytics struct {
	TotalResponses             int           `json:"totalResponses"`
	MigrationRate              float64       `json:"migrationRate"`
	TopReasons                 []ReasonShare `json:"topReasons"`
	EducationLevelDistribution []LevelCount  `json:"educationLevelDistribution"`
}
