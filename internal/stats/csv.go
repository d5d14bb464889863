package stats

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/edusurvey/edusurvey/internal/models"
)

var csvHeader = []string{
	"id", "user_name", "user_email", "current_institution", "institution_location",
	"current_residence", "education_level", "migrated", "migration_reason", "submitted_at",
}

// WriteCSV exports surveys as CSV with a header row
func WriteCSV(w io.Writer, surveys []models.Survey) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, s := range surveys {
		submitted := ""
		if !s.SubmittedAt.IsZero() {
			submitted = s.SubmittedAt.UTC().Format(time.RFC3339)
		}
		record := []string{
			s.ID,
			s.UserName,
			s.UserEmail,
			s.CurrentInstitution,
			s.InstitutionLocation,
			s.CurrentResidence,
			models.EducationLevelLabel(s.EducationLevel),
			s.IsMigrated,
			s.MigrationReason,
			submitted,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write survey %s: %w", s.ID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
