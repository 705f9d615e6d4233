package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/genealogy/internal/harness"
)

// FileValidation is the validation outcome for one scenario file.
type FileValidation struct {
	Path  string `json:"path"`
	Name  string `json:"name,omitempty"`
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid bool             `json:"valid"`
	Files []FileValidation `json:"files"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <path>...",
		Short: "Validate scenario files without running them",
		Long: `Parse and validate scenario files without running them.

Each path may be a scenario file or a directory, which is searched for
*.yaml, *.yml and *.cue files. Checks field names, required fields,
operations, expected errors, strain identifiers and assertion shapes.`,
		Args:          commandArgs(cobra.MinimumNArgs(1)),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args, cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, paths []string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}

	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if os.IsNotExist(err) {
			return formatter.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("path not found: %s", p), nil)
		}
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeGeneric, "failed to stat path", err)
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}

		found, err := findScenarioFiles(p, "")
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeScanError, "failed to find scenarios", err)
		}
		formatter.VerboseLog("Found %d scenario file(s) in %s", len(found), p)
		files = append(files, found...)
	}

	result := ValidationResult{Valid: true, Files: make([]FileValidation, 0, len(files))}
	for _, file := range files {
		fv := FileValidation{Path: file, Valid: true}
		scenario, err := harness.LoadScenario(file)
		if err != nil {
			fv.Valid = false
			fv.Error = err.Error()
			result.Valid = false
		} else {
			fv.Name = scenario.Name
		}
		result.Files = append(result.Files, fv)
	}

	invalid := 0
	for _, fv := range result.Files {
		if !fv.Valid {
			invalid++
		}
	}

	if formatter.JSON() {
		resp := CLIResponse{Status: "ok", Data: result}
		if !result.Valid {
			resp.Status = "error"
			resp.Error = &CLIError{
				Code:    ErrCodeLoadFailed,
				Message: fmt.Sprintf("%d invalid scenario file(s)", invalid),
			}
		}
		if err := formatter.Respond(resp); err != nil {
			return err
		}
	} else {
		outputValidateText(formatter.Writer, result)
	}

	if !result.Valid {
		return NewExitError(ExitFailure, fmt.Sprintf("%d invalid scenario file(s)", invalid))
	}
	return nil
}

func outputValidateText(w io.Writer, result ValidationResult) {
	if len(result.Files) == 0 {
		fmt.Fprintln(w, "No scenario files found.")
		return
	}
	for _, fv := range result.Files {
		if fv.Valid {
			fmt.Fprintf(w, "✓ %s (%s)\n", filepath.ToSlash(fv.Path), fv.Name)
			continue
		}
		fmt.Fprintf(w, "✗ %s\n  %s\n", filepath.ToSlash(fv.Path), fv.Error)
	}
}
