package harness

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

// CompileError reports a CUE scenario that does not have the expected shape.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ParseCUE compiles a CUE scenario and validates it. The document must be
// concrete; field names match the YAML format.
//
//	name:        "cascade"
//	description: "removing A prunes B"
//	stem:        "R"
//	steps: [
//		{op: "create", id: "A", parents: ["R"]},
//		{op: "remove", id: "A"},
//	]
func ParseCUE(filename string, data []byte) (*Scenario, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("failed to parse CUE: %w", formatCUEError(err))
	}
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, fmt.Errorf("failed to parse CUE: %w", formatCUEError(err))
	}

	scenario, err := compileScenario(v)
	if err != nil {
		return nil, fmt.Errorf("failed to parse CUE: %w", err)
	}

	if err := Validate(scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return scenario, nil
}

func compileScenario(v cue.Value) (*Scenario, error) {
	s := &Scenario{}
	err := walkFields(v, "", func(label string, fv cue.Value) error {
		var err error
		switch label {
		case "name":
			s.Name, err = stringField(fv, label)
		case "description":
			s.Description, err = stringField(fv, label)
		case "stem":
			s.Stem, err = stringField(fv, label)
		case "steps":
			s.Steps, err = compileList(fv, label, compileStep)
		case "assertions":
			s.Assertions, err = compileList(fv, label, compileAssertion)
		default:
			return unknownField(fv, label)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

func compileStep(v cue.Value, path string) (Step, error) {
	var step Step
	err := walkFields(v, path, func(label string, fv cue.Value) error {
		field := path + "." + label
		var err error
		switch label {
		case "op":
			step.Op, err = stringField(fv, field)
		case "id":
			step.ID, err = stringField(fv, field)
		case "parents":
			step.Parents, err = stringList(fv, field)
		case "expect_error":
			step.ExpectError, err = stringField(fv, field)
		default:
			return unknownField(fv, field)
		}
		return err
	})
	return step, err
}

func compileAssertion(v cue.Value, path string) (Assertion, error) {
	var a Assertion
	err := walkFields(v, path, func(label string, fv cue.Value) error {
		field := path + "." + label
		var err error
		switch label {
		case "type":
			a.Type, err = stringField(fv, field)
		case "id":
			a.ID, err = stringField(fv, field)
		case "ids":
			a.IDs, err = stringList(fv, field)
		case "count":
			n, ierr := fv.Int64()
			if ierr != nil {
				return &CompileError{Field: field, Message: "must be an integer", Pos: fv.Pos()}
			}
			count := int(n)
			a.Count = &count
		default:
			return unknownField(fv, field)
		}
		return err
	})
	return a, err
}

// walkFields calls fn for every regular field of the struct v.
func walkFields(v cue.Value, path string, fn func(label string, fv cue.Value) error) error {
	if v.IncompleteKind() != cue.StructKind {
		field := path
		if field == "" {
			field = "scenario"
		}
		return &CompileError{Field: field, Message: "must be a struct", Pos: v.Pos()}
	}

	iter, err := v.Fields()
	if err != nil {
		return formatCUEError(err)
	}
	for iter.Next() {
		if err := fn(iter.Label(), iter.Value()); err != nil {
			return err
		}
	}
	return nil
}

func compileList[T any](v cue.Value, field string, compile func(cue.Value, string) (T, error)) ([]T, error) {
	iter, err := v.List()
	if err != nil {
		return nil, &CompileError{Field: field, Message: "must be a list", Pos: v.Pos()}
	}

	var out []T
	for i := 0; iter.Next(); i++ {
		item, err := compile(iter.Value(), fmt.Sprintf("%s[%d]", field, i))
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

func stringField(v cue.Value, field string) (string, error) {
	s, err := v.String()
	if err != nil {
		return "", &CompileError{Field: field, Message: "must be a string", Pos: v.Pos()}
	}
	return s, nil
}

func stringList(v cue.Value, field string) ([]string, error) {
	return compileList(v, field, stringField)
}

func unknownField(v cue.Value, field string) error {
	return &CompileError{Field: field, Message: "unknown field", Pos: v.Pos()}
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	// Return first error with position info
	first := errs[0]
	if positions := errors.Positions(first); len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: first.Error(),
			Pos:     positions[0],
		}
	}
	return err
}
