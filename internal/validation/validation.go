// Package validation checks submissions against the full and lite request
// contracts and reports problems per JSON field.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/good-yellow-bee/anfrage/internal/models"
	"github.com/good-yellow-bee/anfrage/internal/sanitize"
)

// Messages shown for common failures.
const (
	MsgWebsiteURLRequired = "Bitte gib die URL deiner bestehenden Seite an."
	MsgWebsiteURLInvalid  = "Bitte gib eine gültige URL an (inkl. https://)."
	MsgFeaturesRequired   = "Wähle mindestens ein Feature aus."
	MsgInvalidChoice      = "Ungültige Auswahl."
	MsgRequired           = "Pflichtfeld."
)

// fieldMessages overrides the generic message for presence and shape
// failures of specific fields.
var fieldMessages = map[string]string{
	"industry":           "Bitte gib deine Branche an.",
	"hasExistingWebsite": "Bitte wähle aus, ob es schon eine Website gibt.",
	"targetAudience":     "Bitte beschreibe kurz deine Zielgruppe.",
	"contactName":        "Bitte gib deinen Namen an.",
	"contactEmail":       "Bitte gib eine gültige E-Mail-Adresse an.",
	"contactPhone":       "Bitte gib eine gültige Telefonnummer an.",
	"consent":            "Bitte bestätige die Kontakt-Einwilligung.",
	"existingWebsiteUrl": MsgWebsiteURLRequired,
}

var sets = map[string][]string{
	"projecttype": models.ProjectTypes,
	"goal":        models.PrimaryGoals,
	"feature":     models.Features,
	"budget":      models.BudgetRanges,
	"timeline":    models.Timelines,
	"channel":     models.ContactChannels,
	"yesno":       models.YesNo,
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	mustRegister(v, "oneofset", func(fl validator.FieldLevel) bool {
		set, ok := sets[fl.Param()]
		return ok && models.Contains(set, fl.Field().String())
	})
	mustRegister(v, "emailshape", func(fl validator.FieldLevel) bool {
		return sanitize.IsEmail(fl.Field().String())
	})
	mustRegister(v, "phonedigits", func(fl validator.FieldLevel) bool {
		return sanitize.IsPhone(fl.Field().String())
	})

	v.RegisterStructValidation(fullSubmissionRules, models.FullSubmission{})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register validation %s: %v", tag, err))
	}
}

// fullSubmissionRules adds the cross-field rule: an existing website needs its URL.
func fullSubmissionRules(sl validator.StructLevel) {
	s := sl.Current().Interface().(models.FullSubmission)
	if s.HasExistingWebsite == "yes" && strings.TrimSpace(s.ExistingWebsiteURL) == "" {
		sl.ReportError(s.ExistingWebsiteURL, "existingWebsiteUrl", "ExistingWebsiteURL", "websiteurl", "")
	}
}

// Full validates a full-wizard submission.
func Full(s *models.FullSubmission) *Issues {
	return run(s)
}

// Lite validates a lite submission.
func Lite(s *models.LiteSubmission) *Issues {
	return run(s)
}

// Summary validates a notification payload.
func Summary(s *models.Summary) *Issues {
	return run(s)
}

func run(s any) *Issues {
	issues := NewIssues()
	err := validate.Struct(s)
	if err == nil {
		return issues
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		issues.Add("_", err.Error())
		return issues
	}
	for _, fe := range verrs {
		field := fieldName(fe.Field())
		issues.Add(field, message(field, fe))
	}
	return issues
}

// fieldName strips element indexes so dive failures group under the list field.
func fieldName(name string) string {
	if i := strings.IndexByte(name, '['); i >= 0 {
		return name[:i]
	}
	return name
}

func message(field string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "min", "emailshape", "phonedigits", "websiteurl":
		if m, ok := fieldMessages[field]; ok {
			return m
		}
		if fe.Tag() == "min" {
			return fmt.Sprintf("Mindestens %s Zeichen.", fe.Param())
		}
		return MsgRequired
	case "max":
		return fmt.Sprintf("Höchstens %s Zeichen.", fe.Param())
	case "oneofset":
		return MsgInvalidChoice
	case "url":
		return MsgWebsiteURLInvalid
	default:
		return fmt.Sprintf("Ungültiger Wert (%s).", fe.Tag())
	}
}
