package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/genealogy/internal/genealogy"
	"github.com/roach88/genealogy/internal/harness"
	"github.com/roach88/genealogy/internal/strain"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Trace bool

	// RunIDs allows overriding the run id generator (for testing).
	// If nil, runs get UUIDv7 ids.
	RunIDs harness.RunIDGenerator
}

// RunOutput is the JSON payload of the run command.
type RunOutput struct {
	Scenario string                        `json:"scenario"`
	Pass     bool                          `json:"pass"`
	Errors   []string                      `json:"errors,omitempty"`
	Final    genealogy.Snapshot[strain.ID] `json:"final"`
	Digest   string                        `json:"digest"`
	Trace    []harness.TraceEvent          `json:"trace,omitempty"`

	// Fingerprints maps each strain in Final to its payload fingerprint.
	Fingerprints map[string]string `json:"fingerprints"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <scenario>",
		Short: "Run one scenario and print the resulting lineage",
		Long: `Run a single YAML or CUE scenario against a fresh genealogy.

Prints the final lineage as a tree (text) or snapshot (json), the run id
and the snapshot digest. With --trace every step and its outcome is
printed as well.

Exit codes:
  0 - Scenario passed
  1 - A step expectation or assertion failed
  2 - Command error (missing file, invalid scenario)

Examples:
  genealogy run ./scenarios/cascade.yaml
  genealogy run ./scenarios/diamond.cue --trace
  genealogy run ./scenarios/cascade.yaml --format json`,
		Args:          commandArgs(cobra.ExactArgs(1)),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenarioFile(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Trace, "trace", false, "print every step and its outcome")

	return cmd
}

func runScenarioFile(opts *RunOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return formatter.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("scenario file not found: %s", path), nil)
	}

	scenario, err := harness.LoadScenario(path)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeLoadFailed, "failed to load scenario", err)
	}
	formatter.VerboseLog("Loaded scenario %s (%d steps, %d assertions)", scenario.Name, len(scenario.Steps), len(scenario.Assertions))

	result, err := harness.Run(scenario,
		harness.WithLogger(logger),
		harness.WithRunIDGenerator(opts.RunIDs),
	)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeRunFailed, "failed to run scenario", err)
	}

	if formatter.JSON() {
		if err := outputRunJSON(formatter, opts, scenario, result); err != nil {
			return err
		}
	} else {
		outputRunText(formatter.Writer, opts, scenario, result)
	}

	if !result.Pass {
		return NewExitError(ExitFailure, fmt.Sprintf("scenario %s failed", scenario.Name))
	}
	return nil
}

func outputRunJSON(f *OutputFormatter, opts *RunOptions, scenario *harness.Scenario, result *harness.Result) error {
	out := RunOutput{
		Scenario: scenario.Name,
		Pass:     result.Pass,
		Errors:   result.Errors,
		Final:    result.Final,
		Digest:   result.Digest,

		Fingerprints: result.Fingerprints,
	}
	if opts.Trace {
		out.Trace = result.Trace
	}

	resp := CLIResponse{Status: "ok", Data: out, TraceID: result.RunID}
	if !result.Pass {
		resp.Status = "error"
		resp.Error = &CLIError{
			Code:    ErrCodeScenarioFailed,
			Message: fmt.Sprintf("scenario %s failed", scenario.Name),
			Details: result.Errors,
		}
	}
	return f.Respond(resp)
}

func outputRunText(w io.Writer, opts *RunOptions, scenario *harness.Scenario, result *harness.Result) {
	status := "✓"
	if !result.Pass {
		status = "✗"
	}
	fmt.Fprintf(w, "%s %s\n", status, scenario.Name)
	fmt.Fprintf(w, "Run:    %s\n", result.RunID)
	fmt.Fprintf(w, "Digest: %s\n", result.Digest)

	if opts.Trace {
		fmt.Fprintln(w, "\nTrace:")
		for _, event := range result.Trace {
			fmt.Fprintf(w, "  %s\n", formatEvent(event))
		}
	}

	fmt.Fprintln(w, "\nLineage:")
	for _, line := range RenderTree(result.Final) {
		fmt.Fprintf(w, "  %s\n", line)
	}

	if len(result.Errors) > 0 {
		fmt.Fprintln(w, "\nFailures:")
		for _, e := range result.Errors {
			for _, line := range strings.Split(strings.TrimRight(e, "\n"), "\n") {
				fmt.Fprintf(w, "  %s\n", line)
			}
		}
	}
}

// formatEvent renders a trace event on one line:
// "[3] create C <- A,R => ok".
func formatEvent(e harness.TraceEvent) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%d] %s %s", e.Seq, e.Op, e.ID)
	if len(e.Parents) > 0 {
		fmt.Fprintf(&b, " <- %s", strings.Join(e.Parents, ","))
	}
	fmt.Fprintf(&b, " => %s", e.Outcome)
	if len(e.Removed) > 0 {
		fmt.Fprintf(&b, " (removed %s)", strings.Join(e.Removed, ","))
	}
	return b.String()
}
