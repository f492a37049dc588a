package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Cook1eMonster/Ralph/internal/app"
	"github.com/Cook1eMonster/Ralph/internal/domain"
	"github.com/Cook1eMonster/Ralph/internal/infra/jsonstore"
	"github.com/Cook1eMonster/Ralph/internal/tui"
	"github.com/Cook1eMonster/Ralph/internal/usecase"
)

// optionalArg returns the first argument or "".
func optionalArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return ""
}

// newNextCommand creates the next command.
func newNextCommand(c *app.Container) *cobra.Command {
	var suggest bool

	cmd := &cobra.Command{
		Use:   "next",
		Short: "Print the prompt for the next pending task",
		Long: `Print the next pending task formatted as an agent prompt.

The prompt carries the task spec, files, acceptance commands, the context
accumulated from requirements.md and every ancestor, and the context budget
estimate.

Examples:
  ralph next
  ralph next --suggest     # also list repository files relevant to the task`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := c.GetNextTaskUseCase().Execute(cmd.Context(), usecase.GetNextTaskInput{
				ProjectID: projectID(cmd, c),
				Suggest:   suggest,
			})
			if errors.Is(err, domain.ErrNoPendingTasks) {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No pending tasks. All done!")
				return nil
			}
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			_, _ = fmt.Fprintln(w, out.Prompt)
			if suggest {
				_, _ = fmt.Fprintln(w)
				if len(out.Suggestions) == 0 {
					_, _ = fmt.Fprintln(w, "No relevant files found.")
				}
				printList(w, "Suggested files", out.Suggestions)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&suggest, "suggest", false, "Suggest relevant repository files")

	return cmd
}

// newStartCommand creates the start command.
func newStartCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "start [path]",
		Short: "Mark a task in progress",
		Long: `Mark a pending leaf task in progress.

Without a path, the next pending task is started. Paths are dot-joined task
names; the tree name may be omitted.

Examples:
  ralph start
  ralph start Backend.Auth.Login`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := c.StartTaskUseCase().Execute(cmd.Context(), usecase.StartTaskInput{
				ProjectID: projectID(cmd, c),
				Path:      optionalArg(args),
			})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Started: %s\n", out.Task.Path)
			return nil
		},
	}
}

// newDoneCommand creates the done command.
func newDoneCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "done [path]",
		Short: "Mark a task done",
		Long: `Mark a leaf task done and append it to progress.txt.

Without a path, the first in-progress task is completed, or the next pending
task if none is in progress.

Examples:
  ralph done
  ralph done Backend.Auth.Login`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := c.CompleteTaskUseCase().Execute(cmd.Context(), usecase.CompleteTaskInput{
				ProjectID: projectID(cmd, c),
				Path:      optionalArg(args),
			})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(w, "Done: %s\n", out.Task.Path)
			printStats(w, out.Stats)
			if out.Next == nil {
				_, _ = fmt.Fprintln(w, "All tasks complete!")
			} else {
				_, _ = fmt.Fprintf(w, "Next: %s\n", out.Next.Path)
			}
			return nil
		},
	}
}

// newBlockCommand creates the block command.
func newBlockCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "block <path>",
		Short: "Mark a task blocked",
		Long: `Mark a pending or in-progress task blocked. Blocked tasks are never
scheduled until they are unblocked.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := c.BlockTaskUseCase().Execute(cmd.Context(), usecase.BlockTaskInput{
				ProjectID: projectID(cmd, c),
				Path:      args[0],
			})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Blocked: %s\n", out.Task.Path)
			return nil
		},
	}
}

// newUnblockCommand creates the unblock command.
func newUnblockCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "unblock <path>",
		Short: "Return a blocked task to pending",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := c.BlockTaskUseCase().Execute(cmd.Context(), usecase.BlockTaskInput{
				ProjectID: projectID(cmd, c),
				Path:      args[0],
				Unblock:   true,
			})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Unblocked: %s\n", out.Task.Path)
			return nil
		},
	}
}

// newShowCommand creates the show command.
func newShowCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "show <path>",
		Short: "Show a task or group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := c.ShowTaskUseCase().Execute(cmd.Context(), usecase.ShowTaskInput{
				ProjectID: projectID(cmd, c),
				Path:      args[0],
			})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			n := out.Task.Task
			_, _ = fmt.Fprintf(w, "# %s\n", n.Name)
			_, _ = fmt.Fprintf(w, "Path: %s\n", out.Task.Path)
			if !n.IsLeaf() {
				_, _ = fmt.Fprintf(w, "Tasks: %d/%d done (%.1f%%)\n", out.Stats.Done, out.Stats.Total, out.Stats.Progress)
				if n.Context != "" {
					_, _ = fmt.Fprintf(w, "Context: %s\n", n.Context)
				}
				return nil
			}

			_, _ = fmt.Fprintf(w, "Status: %s\n", n.Status.Display())
			if n.Spec != "" {
				_, _ = fmt.Fprintf(w, "Spec: %s\n", n.Spec)
			}
			printList(w, "Read first", n.ReadFirst)
			printList(w, "Files", n.Files)
			printList(w, "Acceptance", n.Acceptance)
			if out.Estimate != nil {
				printEstimate(w, *out.Estimate)
			}
			if out.Context != "" {
				_, _ = fmt.Fprintf(w, "\n## Context\n%s\n", out.Context)
			}
			return nil
		},
	}
}

// newAddCommand creates the add command.
func newAddCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "add <parent-path> <json>",
		Short: "Add a task under a parent",
		Long: `Add a task (or a whole subtree) under the parent path.

The node is given as JSON; comments and trailing commas are accepted.
Use the tree name (or ".") as the parent to add at the top level.

Examples:
  ralph add Backend.Auth '{"name": "Refresh tokens", "files": ["auth/refresh.go"]}'
  ralph add . '{"name": "Docs", "children": [{"name": "README"}]}'`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			node, err := jsonstore.DecodeNode([]byte(args[1]))
			if err != nil {
				return fmt.Errorf("parse task json: %w", err)
			}
			parent := args[0]
			if strings.TrimSpace(parent) == "." {
				parent = ""
			}

			out, err := c.AddTaskUseCase().Execute(cmd.Context(), usecase.AddTaskInput{
				ProjectID: projectID(cmd, c),
				Parent:    parent,
				Node:      node,
			})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Added: %s\n", out.Path)
			return nil
		},
	}
}

// newPruneCommand creates the prune command.
func newPruneCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "prune <path>",
		Short: "Remove a task or group from the tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := c.PruneTaskUseCase().Execute(cmd.Context(), usecase.PruneTaskInput{
				ProjectID: projectID(cmd, c),
				Path:      args[0],
			})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Pruned: %s (%d tasks)\n", out.Removed.Path, out.Leaves)
			return nil
		},
	}
}

// newStatusCommand creates the status command.
func newStatusCommand(c *app.Container) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show progress and the task tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := c.ShowStatusUseCase().Execute(cmd.Context(), usecase.ShowStatusInput{
				ProjectID: projectID(cmd, c),
			})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}

			printStats(w, out.Stats)
			if out.Slice != "" {
				_, _ = fmt.Fprintf(w, "Current slice: %s\n", out.Slice)
			}
			if out.Next != nil {
				_, _ = fmt.Fprintf(w, "Next: %s\n", out.Next.Path)
			}
			if len(out.Workers) > 0 {
				_, _ = fmt.Fprintf(w, "Active workers: %d\n", len(out.Workers))
			}
			_, _ = fmt.Fprintln(w)
			printTree(w, out.Tree)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print machine-readable JSON")

	return cmd
}

// newEstimateCommand creates the estimate command.
func newEstimateCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "estimate",
		Short: "Estimate the context budget of every pending task",
		Long: `Print one row per pending task with the share of the context budget it is
expected to use. Tasks marked OVER should be split.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := c.EstimateTasksUseCase().Execute(cmd.Context(), usecase.EstimateTasksInput{
				ProjectID: projectID(cmd, c),
			})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if len(out.Rows) == 0 {
				_, _ = fmt.Fprintln(w, "No pending tasks.")
				return nil
			}
			_, _ = fmt.Fprintf(w, "Target: %s tokens\n\n", domain.FormatThousands(out.Target))
			_, _ = fmt.Fprintln(w, domain.EstimateHeader())
			for _, row := range out.Rows {
				_, _ = fmt.Fprintln(w, domain.EstimateRow(row.Name, row.Estimate))
			}
			_, _ = fmt.Fprintf(w, "\n%d of %d tasks over budget\n", out.Over, len(out.Rows))
			return nil
		},
	}
}

// newExportCommand creates the export command.
func newExportCommand(c *app.Container) *cobra.Command {
	var opts struct {
		Color string
		YAML  bool
	}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Print the task tree as JSON or YAML",
		Long: `Print the task tree as JSON (the tree.json format) or YAML.

Output is syntax highlighted when written to a color terminal.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := c.ExportTreeUseCase().Execute(cmd.Context(), usecase.ExportTreeInput{
				ProjectID: projectID(cmd, c),
			})
			if err != nil {
				return err
			}

			var data []byte
			language := "json"
			if opts.YAML {
				language = "yaml"
				data, err = yaml.Marshal(out.Tree)
			} else {
				data, err = jsonstore.EncodeTree(out.Tree)
			}
			if err != nil {
				return fmt.Errorf("encode tree: %w", err)
			}

			w := cmd.OutOrStdout()
			color, err := useColor(w, opts.Color)
			if err != nil {
				return err
			}
			if color {
				return tui.Highlight(w, string(data), language)
			}
			_, err = w.Write(data)
			return err
		},
	}

	cmd.Flags().BoolVar(&opts.YAML, "yaml", false, "Print YAML instead of JSON")
	cmd.Flags().StringVar(&opts.Color, "color", "auto", "Highlight output: auto, always or never")

	return cmd
}
