package harness

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/roach88/genealogy/internal/strain"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their file names (steps[0].expect_error), not Go names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	if err := v.RegisterValidation("strainid", validStrainID); err != nil {
		panic(fmt.Sprintf("harness: register strainid validation: %v", err))
	}
	return v
}

func validStrainID(fl validator.FieldLevel) bool {
	_, err := strain.ParseID(fl.Field().String())
	return err == nil
}

// Validate checks a scenario's fields and the rules that tie them together.
// It reports the first problem found.
func Validate(s *Scenario) error {
	if err := validate.Struct(s); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fieldError(verrs[0])
		}
		return err
	}

	for i, step := range s.Steps {
		if err := validateStep(i, &step); err != nil {
			return err
		}
	}
	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}
	return nil
}

// fieldError renders a validator failure as "<path>: <problem>".
func fieldError(fe validator.FieldError) error {
	field := fe.Namespace()
	if _, rest, ok := strings.Cut(field, "."); ok {
		field = rest
	}

	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%s is required", field)
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Errorf("%s must have at least %s entries", field, fe.Param())
		}
		return fmt.Errorf("%s must be at least %s", field, fe.Param())
	case "oneof":
		return fmt.Errorf("%s must be one of [%s], got %q", field, fe.Param(), fe.Value())
	case "strainid":
		raw, _ := fe.Value().(string)
		if _, err := strain.ParseID(raw); err != nil {
			return fmt.Errorf("%s: %w", field, err)
		}
		return fmt.Errorf("%s is not a valid strain id", field)
	default:
		return fmt.Errorf("%s failed %s validation", field, fe.Tag())
	}
}

// validateStep checks the parent arity each operation needs.
func validateStep(index int, step *Step) error {
	switch step.Op {
	case OpCreate:
		if len(step.Parents) == 0 && step.ExpectError != "not_found" {
			return fmt.Errorf("steps[%d]: create needs at least one parent unless expect_error is not_found", index)
		}
	case OpConnect:
		if len(step.Parents) != 1 {
			return fmt.Errorf("steps[%d]: connect takes exactly one parent, got %d", index, len(step.Parents))
		}
	case OpRemove:
		if len(step.Parents) != 0 {
			return fmt.Errorf("steps[%d]: remove takes no parents", index)
		}
	}
	return nil
}

// validateAssertion checks that an assertion carries exactly the fields its
// type reads.
func validateAssertion(index int, a *Assertion) error {
	takesIDs := a.Type == AssertParents || a.Type == AssertChildren ||
		a.Type == AssertAncestors || a.Type == AssertDescendants
	needsID := takesIDs || a.Type == AssertExists || a.Type == AssertAbsent

	if needsID && a.ID == "" {
		return fmt.Errorf("assertions[%d]: id is required for %s", index, a.Type)
	}
	if !needsID && a.ID != "" {
		return fmt.Errorf("assertions[%d]: %s does not take id", index, a.Type)
	}
	if !takesIDs && len(a.IDs) > 0 {
		return fmt.Errorf("assertions[%d]: %s does not take ids", index, a.Type)
	}
	if a.Type == AssertCount && a.Count == nil {
		return fmt.Errorf("assertions[%d]: count is required for count", index)
	}
	if a.Type != AssertCount && a.Count != nil {
		return fmt.Errorf("assertions[%d]: %s does not take count", index, a.Type)
	}
	return nil
}
