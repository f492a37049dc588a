package cli

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Cook1eMonster/Ralph/internal/app"
	"github.com/Cook1eMonster/Ralph/internal/usecase"
)

// printAssignment writes one worker prompt between separators.
func printAssignment(w io.Writer, a usecase.WorkerAssignment) {
	_, _ = fmt.Fprintf(w, "==================== WORKER %d ====================\n", a.Worker.ID)
	_, _ = fmt.Fprintf(w, "Branch: %s\n", a.Worker.Branch)
	if a.Worktree != "" {
		_, _ = fmt.Fprintf(w, "Worktree: %s\n", a.Worktree)
	}
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, a.Prompt)
	_, _ = fmt.Fprintln(w)
}

// newAssignCommand creates the assign command.
func newAssignCommand(c *app.Container) *cobra.Command {
	var opts struct {
		Count    int
		Force    bool
		Worktree bool
	}

	cmd := &cobra.Command{
		Use:   "assign",
		Short: "Assign pending tasks to parallel workers",
		Long: `Assign the next pending tasks to a fresh pool of workers and print one
prompt per worker. Each worker gets its own branch, and optionally its own
worktree under .ralph/worktrees/<id>.

Examples:
  ralph assign
  ralph assign --count 2 --worktree`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := c.AssignWorkersUseCase().Execute(cmd.Context(), usecase.AssignWorkersInput{
				ProjectID: projectID(cmd, c),
				Count:     opts.Count,
				Force:     opts.Force,
				Worktrees: opts.Worktree,
			})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if len(out.Assignments) == 0 {
				_, _ = fmt.Fprintln(w, "No pending tasks to assign.")
				return nil
			}
			for _, a := range out.Assignments {
				printAssignment(w, a)
			}
			_, _ = fmt.Fprintf(w, "Assigned %d workers (base branch %s). Finish each with 'ralph done-one <id>'.\n",
				len(out.Assignments), out.BaseBranch)
			return nil
		},
	}

	cmd.Flags().IntVarP(&opts.Count, "count", "n", 0, "Number of workers (default: [workers] count)")
	cmd.Flags().BoolVar(&opts.Force, "force", false, "Replace a pool that still has active workers")
	cmd.Flags().BoolVar(&opts.Worktree, "worktree", false, "Create a git worktree per worker")

	return cmd
}

// newAssignOneCommand creates the assign-one command.
func newAssignOneCommand(c *app.Container) *cobra.Command {
	var opts struct {
		ID       int
		Worktree bool
	}

	cmd := &cobra.Command{
		Use:   "assign-one",
		Short: "Assign the next pending task to one more worker",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := c.AssignWorkerUseCase().Execute(cmd.Context(), usecase.AssignWorkerInput{
				ProjectID: projectID(cmd, c),
				ID:        opts.ID,
				Worktree:  opts.Worktree,
			})
			if err != nil {
				return err
			}
			printAssignment(cmd.OutOrStdout(), out.Assignment)
			return nil
		},
	}

	cmd.Flags().IntVar(&opts.ID, "id", 0, "Worker id (default: next unused id)")
	cmd.Flags().BoolVar(&opts.Worktree, "worktree", false, "Create a git worktree for the worker")

	return cmd
}

// newWorkersCommand creates the workers command.
func newWorkersCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "workers",
		Short: "List worker lanes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := c.ListWorkersUseCase().Execute(cmd.Context(), usecase.ListWorkersInput{
				ProjectID: projectID(cmd, c),
			})
			if err != nil {
				return err
			}
			if len(out.Workers) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No workers assigned. Run 'ralph assign'.")
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(tw, "ID\tSTATUS\tBRANCH\tTASK\tWORKTREE")
			for _, a := range out.Workers {
				worktree := a.Worktree
				if worktree == "" {
					worktree = "-"
				}
				_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", a.Worker.ID, a.Worker.Status, a.Worker.Branch, a.Worker.Path, worktree)
			}
			return tw.Flush()
		},
	}
}

// newDoneOneCommand creates the done-one command.
func newDoneOneCommand(c *app.Container) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "done-one <id>",
		Short: "Finish one worker and mark its task done",
		Long: `Finish a worker lane: remove its worktree (if any), drop it from the pool,
mark its task done and print the merge instructions for its branch.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid worker id %q: %w", args[0], err)
			}
			out, err := c.CompleteWorkerUseCase().Execute(cmd.Context(), usecase.CompleteWorkerInput{
				ProjectID: projectID(cmd, c),
				ID:        id,
				Force:     force,
			})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(w, "Worker %d finished: %s\n", out.Event.WorkerID, out.Event.TaskPath)
			if out.TaskMarked {
				_, _ = fmt.Fprintln(w, "Task marked done.")
			}
			if out.Warning != "" {
				_, _ = fmt.Fprintf(w, "Warning: task left unchanged: %s\n", out.Warning)
			}
			if out.RemovedWorktree != "" {
				_, _ = fmt.Fprintf(w, "Removed worktree %s\n", out.RemovedWorktree)
			}
			_, _ = fmt.Fprintf(w, "\nMerge %s:\n%s", out.Event.Branch, out.MergeInstructions)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Remove a dirty worktree and drop the lane even if its task no longer exists")

	return cmd
}

// newDoneAllCommand creates the done-all command.
func newDoneAllCommand(c *app.Container) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "done-all",
		Short: "Mark every worker task done and clear the pool",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := c.CompleteAllWorkersUseCase().Execute(cmd.Context(), usecase.CompleteAllWorkersInput{
				ProjectID: projectID(cmd, c),
				Force:     force,
			})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			for _, wk := range out.Marked {
				_, _ = fmt.Fprintf(w, "Done: %s (worker %d)\n", wk.Path, wk.ID)
			}
			for _, wk := range out.Skipped {
				_, _ = fmt.Fprintf(w, "Skipped: %s (worker %d, already done)\n", wk.Path, wk.ID)
			}
			for _, wk := range out.Orphaned {
				_, _ = fmt.Fprintf(w, "Dropped: %s (worker %d, task could not be completed)\n", wk.Path, wk.ID)
			}
			_, _ = fmt.Fprintf(w, "Cleared %d workers.\n", out.Cleared)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Remove dirty worktrees and drop lanes whose task no longer exists")

	return cmd
}

// newMergeCommand creates the merge command.
func newMergeCommand(c *app.Container) *cobra.Command {
	var opts struct {
		Apply bool
		Prune bool
	}

	cmd := &cobra.Command{
		Use:   "merge",
		Short: "Print or apply merges of worker branches",
		Long: `Print the commands that merge every worker branch into the base branch.

With --apply, ralph merges the branches itself. The base branch must be
checked out and the working tree must be clean. Branches that do not exist
locally are skipped; the first failing merge stops the run. --prune deletes
each branch once it merged.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := c.MergeWorkersUseCase().Execute(cmd.Context(), usecase.MergeWorkersInput{
				ProjectID: projectID(cmd, c),
				Apply:     opts.Apply,
				Prune:     opts.Prune,
			})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if !opts.Apply {
				_, _ = fmt.Fprint(w, out.Instructions)
				return nil
			}
			for _, b := range out.Merged {
				_, _ = fmt.Fprintf(w, "Merged %s\n", b)
			}
			for _, b := range out.Missing {
				_, _ = fmt.Fprintf(w, "Skipped %s (branch not found)\n", b)
			}
			for _, b := range out.Pruned {
				_, _ = fmt.Fprintf(w, "Deleted %s\n", b)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.Apply, "apply", false, "Merge the branches with git instead of printing instructions")
	cmd.Flags().BoolVar(&opts.Prune, "prune", false, "Delete merged branches (with --apply)")

	return cmd
}
