package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Cook1eMonster/Ralph/internal/app"
	"github.com/Cook1eMonster/Ralph/internal/domain"
	"github.com/Cook1eMonster/Ralph/internal/tui"
	"github.com/Cook1eMonster/Ralph/internal/usecase"
)

// Errors returned after the report was printed, so main exits non-zero.
var (
	errValidationFailed = errors.New("acceptance checks failed")
	errHealFailed       = errors.New("healing failed")
)

// printValidations writes one PASS/FAIL line per command and the output of
// failed commands.
func printValidations(w io.Writer, results []domain.ValidationResult) {
	for _, r := range results {
		if r.Success {
			_, _ = fmt.Fprintf(w, "  %s %s\n", tui.StatusStyle(domain.StatusDone).Render("PASS"), r.Command)
			continue
		}
		_, _ = fmt.Fprintf(w, "  %s %s (exit %d)\n", tui.StatusStyle(domain.StatusBlocked).Render("FAIL"), r.Command, r.ExitCode)
		for _, stream := range []string{r.Stdout, r.Stderr} {
			if s := strings.TrimSpace(stream); s != "" {
				_, _ = fmt.Fprintf(w, "    %s\n", strings.ReplaceAll(s, "\n", "\n    "))
			}
		}
	}
}

// newValidateCommand creates the validate command.
func newValidateCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [path]",
		Short: "Run a task's acceptance commands",
		Long: `Run every acceptance command of a task in the project directory and report
each result. Exits with status 1 if any command failed.

Without a path, the next pending task is validated.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := c.ValidateTaskUseCase().Execute(cmd.Context(), usecase.ValidateTaskInput{
				ProjectID: projectID(cmd, c),
				Path:      optionalArg(args),
			})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(w, "Validating %s in %s\n", out.Task.Path, out.Dir)
			printValidations(w, out.Results)
			if !out.Passed {
				return errValidationFailed
			}
			_, _ = fmt.Fprintln(w, "All checks passed.")
			return nil
		},
	}
}

// newHealCommand creates the heal command.
func newHealCommand(c *app.Container) *cobra.Command {
	var maxAttempts int

	cmd := &cobra.Command{
		Use:   "heal [path]",
		Short: "Validate a task and let the AI repair failures",
		Long: `Run a task's acceptance commands and, while they fail, ask the AI provider
for a corrected version of the task's first file, write it and validate
again. Stops at the first full pass or after --max-attempts validations.

Examples:
  ralph heal
  ralph heal Backend.Auth.Login --max-attempts 5`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			out, err := c.HealTaskUseCase().Execute(cmd.Context(), usecase.HealTaskInput{
				ProjectID:   projectID(cmd, c),
				Path:        optionalArg(args),
				MaxAttempts: maxAttempts,
				OnAttempt: func(ev usecase.HealEvent) {
					_, _ = fmt.Fprintf(w, "Attempt %d/%d\n", ev.Attempt, ev.MaxAttempts)
					printValidations(w, ev.Validations)
					switch {
					case ev.Unchanged:
						_, _ = fmt.Fprintln(w, "  fix was identical to the current file")
					case ev.Fixed:
						_, _ = fmt.Fprintln(w, "  applied fix")
					}
				},
			})
			if err != nil {
				return err
			}

			r := out.Result
			if r.Warning != "" {
				_, _ = fmt.Fprintf(w, "Warning: %s\n", r.Warning)
			}
			if r.Success {
				_, _ = fmt.Fprintf(w, "Healed %s after %d attempt(s)", out.Task.Path, r.Attempts)
				if r.FileFixed != "" {
					_, _ = fmt.Fprintf(w, " (file: %s)", r.FileFixed)
				}
				_, _ = fmt.Fprintln(w)
				return nil
			}
			_, _ = fmt.Fprintf(w, "Could not heal %s after %d attempt(s): %s\n", out.Task.Path, r.Attempts, r.Error)
			return errHealFailed
		},
	}

	cmd.Flags().IntVar(&maxAttempts, "max-attempts", 0, "Maximum validation attempts (default: [heal] max_attempts)")

	return cmd
}
