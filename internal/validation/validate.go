// Package validation provides per-step field validation for résumé drafts.
//
// Validation is synchronous and pure: a step only reads the draft subtree it
// owns (see package steps) and never mutates the draft.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/cv-builder/internal/steps"
	"github.com/jonathan/cv-builder/internal/types"
)

// emailPattern is the loose email shape accepted by the personal step.
var emailPattern = regexp.MustCompile(`(?i)^[A-Z0-9._%+-]+@[A-Z0-9.-]+\.[A-Z]{2,}$`)

// validate is shared; validator.Validate caches struct metadata and is safe for concurrent use.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report JSON names so error keys match the draft's wire field names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	mustRegister(v, "nonblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	mustRegister(v, "emailshape", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(strings.TrimSpace(fl.Field().String()))
	})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register validation %s: %v", tag, err))
	}
}

// Result is the outcome of validating one step.
type Result struct {
	Valid bool
	// FieldErrors maps a path relative to the step's subtree
	// ("email", "0.company", "2") to a human-readable message.
	FieldErrors map[string]string
}

// Fields returns the failing field paths in stable order.
func (r Result) Fields() []string {
	keys := make([]string, 0, len(r.FieldErrors))
	for k := range r.FieldErrors {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Summary returns a one-line description suitable for a step-level notice.
func (r Result) Summary() string {
	switch n := len(r.FieldErrors); n {
	case 0:
		return "All fields are valid."
	case 1:
		return "1 required field is missing or invalid."
	default:
		return fmt.Sprintf("%d required fields are missing or invalid.", n)
	}
}

// Validate checks the subtree owned by stepID.
func Validate(stepID string, draft types.ResumeDraft) (Result, error) {
	if _, err := steps.Lookup(stepID); err != nil {
		return Result{}, err
	}

	fieldErrors := map[string]string{}
	var err error

	switch stepID {
	case steps.Personal:
		err = collect(fieldErrors, "", draft.PersonalInfo)
	case steps.Experience:
		err = collectEach(fieldErrors, draft.Experience)
	case steps.Education:
		err = collectEach(fieldErrors, draft.Education)
	case steps.Skills:
		for i, skill := range draft.Skills {
			if vErr := validate.Var(skill, "nonblank"); vErr != nil {
				fieldErrors[strconv.Itoa(i)] = "Skill cannot be empty"
			}
		}
	case steps.Activities:
		err = collectEach(fieldErrors, draft.Activities)
	case steps.Awards:
		err = collectEach(fieldErrors, draft.Awards)
	}
	if err != nil {
		return Result{}, &Error{Message: fmt.Sprintf("failed to validate step %s", stepID), Cause: err}
	}

	return Result{Valid: len(fieldErrors) == 0, FieldErrors: fieldErrors}, nil
}

// InvalidSteps returns the ids of every step whose data currently fails validation.
func InvalidSteps(draft types.ResumeDraft) []string {
	var invalid []string
	for _, def := range steps.Registry {
		res, err := Validate(def.ID, draft)
		if err != nil || !res.Valid {
			invalid = append(invalid, def.ID)
		}
	}
	return invalid
}

func collectEach[T any](dst map[string]string, entries []T) error {
	for i, entry := range entries {
		if err := collect(dst, strconv.Itoa(i)+".", entry); err != nil {
			return err
		}
	}
	return nil
}

func collect(dst map[string]string, prefix string, s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	for _, fe := range fieldErrs {
		dst[prefix+fe.Field()] = message(fe.Field(), fe.Tag())
	}
	return nil
}
