package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/genealogy/internal/strain"
)

// AssertionError is returned when an assertion fails.
// It includes the trace to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFull trace:\n")
	for _, event := range e.Trace {
		fmt.Fprintf(&buf, "  [%d] %s %s", event.Seq, event.Op, event.ID)
		if len(event.Parents) > 0 {
			fmt.Fprintf(&buf, " <- %s", strings.Join(event.Parents, ","))
		}
		fmt.Fprintf(&buf, " => %s\n", event.Outcome)
	}

	return buf.String()
}

// EvaluateAssertions checks every assertion against g and returns the
// failure messages, in assertion order.
func EvaluateAssertions(g *strain.Genealogy, trace []TraceEvent, assertions []Assertion) []string {
	var errs []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertExists:
			err = assertExists(g, trace, assertion, true)
		case AssertAbsent:
			err = assertExists(g, trace, assertion, false)
		case AssertParents:
			err = assertNeighbours(g, trace, assertion, g.Parents)
		case AssertChildren:
			err = assertNeighbours(g, trace, assertion, g.Children)
		case AssertAncestors:
			err = assertNeighbours(g, trace, assertion, g.Ancestors)
		case AssertDescendants:
			err = assertNeighbours(g, trace, assertion, g.Descendants)
		case AssertCount:
			err = assertCount(g, trace, assertion)
		case AssertValid:
			if verr := g.Validate(); verr != nil {
				err = &AssertionError{
					Type:     AssertValid,
					Expected: "genealogy invariants hold",
					Actual:   verr.Error(),
					Trace:    trace,
				}
			}
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errs = append(errs, err.Error())
		}
	}

	return errs
}

func assertExists(g *strain.Genealogy, trace []TraceEvent, a Assertion, want bool) error {
	id, err := strain.ParseID(a.ID)
	if err != nil {
		return fmt.Errorf("%s: %w", a.Type, err)
	}
	if g.Exists(id) == want {
		return nil
	}

	expected, actual := "present", "absent"
	if !want {
		expected, actual = actual, expected
	}
	return &AssertionError{
		Type:     a.Type,
		Expected: fmt.Sprintf("strain %s %s", id, expected),
		Actual:   fmt.Sprintf("strain %s %s", id, actual),
		Trace:    trace,
	}
}

func assertNeighbours(g *strain.Genealogy, trace []TraceEvent, a Assertion, lookup func(strain.ID) ([]strain.ID, error)) error {
	id, err := strain.ParseID(a.ID)
	if err != nil {
		return fmt.Errorf("%s: %w", a.Type, err)
	}
	want, err := strain.ParseIDs(a.IDs)
	if err != nil {
		return fmt.Errorf("%s: ids%w", a.Type, err)
	}
	slices.Sort(want)
	want = slices.Compact(want)

	got, err := lookup(id)
	if err != nil {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("%s of %s = %v", a.Type, id, want),
			Actual:   err.Error(),
			Trace:    trace,
		}
	}
	if slices.Equal(got, want) {
		return nil
	}
	return &AssertionError{
		Type:     a.Type,
		Expected: fmt.Sprintf("%s of %s = %v", a.Type, id, want),
		Actual:   fmt.Sprintf("%v", got),
		Trace:    trace,
	}
}

func assertCount(g *strain.Genealogy, trace []TraceEvent, a Assertion) error {
	if a.Count == nil {
		return fmt.Errorf("count: expected count is missing")
	}
	if g.Len() == *a.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertCount,
		Expected: fmt.Sprintf("%d strains", *a.Count),
		Actual:   fmt.Sprintf("%d strains", g.Len()),
		Trace:    trace,
	}
}
