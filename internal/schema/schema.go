package schema

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"chess-directory/internal/apierr"
)

// handle is the username charset shared by route parameters and
// upstream payloads.
var handleRegex = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Must return an error only for non-string fields, which we never
	// tag; ignore the impossible registration failure.
	_ = v.RegisterValidation("handle", func(fl validator.FieldLevel) bool {
		return handleRegex.MatchString(fl.Field().String())
	})

	// Issue paths use json field names, matching the wire payload.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return v
}

// Validate checks value against its declared constraints. Unknown
// fields in the source payload were already dropped at decode time;
// constraint failures come back as a *apierr.ValidationError with one
// issue per offending field.
func Validate(value any, context string) error {
	err := validate.Struct(value)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apierr.NewValidationError(context, []apierr.Issue{{
			Path:    "",
			Message: err.Error(),
			Code:    "invalid",
		}})
	}

	issues := make([]apierr.Issue, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		issue := apierr.Issue{
			Path:     issuePath(fe.Namespace()),
			Message:  fe.Error(),
			Code:     fe.Tag(),
			Received: fe.Value(),
		}
		if param := fe.Param(); param != "" {
			issue.Expected = param
		}
		issues = append(issues, issue)
	}
	return apierr.NewValidationError(context, issues)
}

// ValidateUsername checks a username route or query parameter before
// it reaches the upstream call.
func ValidateUsername(username string) error {
	err := validate.Var(username, "required,min=1,max=50,handle")
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apierr.NewValidationError("username", nil)
	}

	issues := make([]apierr.Issue, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		issue := apierr.Issue{
			Path:     "username",
			Message:  fe.Error(),
			Code:     fe.Tag(),
			Received: username,
		}
		if param := fe.Param(); param != "" {
			issue.Expected = param
		}
		issues = append(issues, issue)
	}
	return apierr.NewValidationError("username", issues)
}

// issuePath drops the root struct name from a validator namespace,
// leaving the json path of the field ("profile.username" style).
func issuePath(namespace string) string {
	if i := strings.IndexByte(namespace, '.'); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}
