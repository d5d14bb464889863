// Package forms validates user input before it reaches the API.
package forms

import (
	"errors"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/edusurvey/edusurvey/internal/models"
)

// FieldErrors maps a form field name to its message
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	fields := make([]string, 0, len(e))
	for field := range e {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+": "+e[field])
	}
	return strings.Join(parts, "; ")
}

// Login is the login form
type Login struct {
	Email    string `form:"email" validate:"required,address"`
	Password string `form:"password" validate:"required"`
}

// Signup is the registration form
type Signup struct {
	Name            string `form:"name" validate:"required,min=2"`
	Email           string `form:"email" validate:"required,address"`
	Password        string `form:"password" validate:"required,min=8"`
	ConfirmPassword string `form:"confirmPassword" validate:"eqfield=Password"`
}

// Profile is the profile details form
type Profile struct {
	Name          string `form:"name" validate:"required,min=2"`
	Phone         string `form:"phone"`
	Notifications bool   `form:"notifications"`
}

// Update converts the form into a partial profile update
func (p Profile) Update() models.ProfileUpdate {
	name, phone, notifications := p.Name, p.Phone, p.Notifications
	return models.ProfileUpdate{Name: &name, Phone: &phone, Notifications: &notifications}
}

// Password is the change password form
type Password struct {
	CurrentPassword string `form:"currentPassword" validate:"required"`
	NewPassword     string `form:"newPassword" validate:"required,min=8"`
	ConfirmPassword string `form:"confirmPassword" validate:"eqfield=NewPassword"`
}

// Survey is the education survey form
type Survey struct {
	CurrentInstitution  string `form:"currentInstitution" validate:"required"`
	InstitutionLocation string `form:"institutionLocation" validate:"required"`
	CurrentResidence    string `form:"currentResidence" validate:"required"`
	EducationLevel      string `form:"educationLevel" validate:"required,oneof=high_school bachelors masters phd other"`
	IsMigrated          string `form:"isMigrated" validate:"required,oneof=yes no"`
	MigrationReason     string `form:"migrationReason" validate:"required_if=IsMigrated yes"`
}

// SurveyFrom prefills the form from a stored survey
func SurveyFrom(s *models.Survey) Survey {
	if s == nil {
		return Survey{}
	}
	return Survey(s.SurveyInput)
}

// Input converts the form into the API payload. The reason is only sent for
// respondents who migrated.
func (s Survey) Input() models.SurveyInput {
	in := models.SurveyInput(s)
	if in.IsMigrated != "yes" {
		in.MigrationReason = ""
	}
	return in
}

// messages are keyed by "<field>.<tag>"
var messages = map[string]string{
	"name.required":                "Name is required",
	"name.min":                     "Name must be at least 2 characters",
	"email.required":               "Email is required",
	"email.address":                "Email is invalid",
	"password.required":            "Password is required",
	"password.min":                 "Password must be at least 8 characters",
	"confirmPassword.eqfield":      "Passwords do not match",
	"currentPassword.required":     "Current password is required",
	"newPassword.required":         "New password is required",
	"newPassword.min":              "New password must be at least 8 characters",
	"currentInstitution.required":  "Institution name is required",
	"institutionLocation.required": "Institution location is required",
	"currentResidence.required":    "Current residence is required",
	"educationLevel.required":      "Education level is required",
	"educationLevel.oneof":         "Education level is required",
	"isMigrated.required":          "This field is required",
	"isMigrated.oneof":             "This field is required",
	"migrationReason.required_if":  "Please provide a reason for migration",
}

// emailPattern accepts anything shaped like name@host.tld
var emailPattern = regexp.MustCompile(`\S+@\S+\.\S+`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// Report fields by their form name so messages line up with inputs
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	v.RegisterValidation("address", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	})

	return v
}

// Validate checks form and returns FieldErrors, or nil when it is valid.
// Only the first failing rule of each field is reported.
func Validate(form any) error {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fields := make(FieldErrors, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		if _, seen := fields[field]; seen {
			continue
		}
		msg, ok := messages[field+"."+fe.Tag()]
		if !ok {
			msg = "This field is invalid"
		}
		fields[field] = msg
	}
	return fields
}

// Fields returns the per-field messages carried by err, if any
func Fields(err error) FieldErrors {
	var fields FieldErrors
	if errors.As(err, &fields) {
		return fields
	}
	return nil
}
