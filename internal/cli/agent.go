package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Cook1eMonster/Ralph/internal/app"
	"github.com/Cook1eMonster/Ralph/internal/usecase"
)

// newPlanCommand creates the plan command.
func newPlanCommand(c *app.Container) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Generate the task tree from requirements.md",
		Long: `Ask the configured AI provider to decompose requirements.md into a task
tree sized to the context budget. An existing tree is only replaced with --force.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := c.PlanTreeUseCase().Execute(cmd.Context(), usecase.PlanTreeInput{
				ProjectID: projectID(cmd, c),
				Force:     force,
			})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(w, "Planned %d tasks.\n\n", out.Stats.Total)
			printTree(w, out.Tree)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Replace a tree that already has tasks")

	return cmd
}

// newCodeCommand creates the code command.
func newCodeCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "code [path]",
		Short: "Generate the first file of a task with the AI provider",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := c.GenerateCodeUseCase().Execute(cmd.Context(), usecase.GenerateCodeInput{
				ProjectID: projectID(cmd, c),
				Path:      optionalArg(args),
			})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d bytes) for %s\n", out.File, out.Bytes, out.Task.Path)
			return nil
		},
	}
}

// newEnrichCommand creates the enrich command.
func newEnrichCommand(c *app.Container) *cobra.Command {
	var opts struct {
		TopK   int
		DryRun bool
	}

	cmd := &cobra.Command{
		Use:   "enrich",
		Short: "Fill read_first for pending tasks from repository search",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := c.EnrichTasksUseCase().Execute(cmd.Context(), usecase.EnrichTasksInput{
				ProjectID: projectID(cmd, c),
				TopK:      opts.TopK,
				DryRun:    opts.DryRun,
			})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			for _, e := range out.Enriched {
				printList(w, e.Path.String(), e.Files)
			}
			verb := "Enriched"
			if opts.DryRun {
				verb = "Would enrich"
			}
			_, _ = fmt.Fprintf(w, "%s %d tasks (%d without matches).\n", verb, len(out.Enriched), out.Skipped)
			return nil
		},
	}

	cmd.Flags().IntVar(&opts.TopK, "top-k", 0, "Files per task (default: [search] top_k)")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Show suggestions without saving them")

	return cmd
}

// newGovernCommand creates the govern command.
func newGovernCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "govern",
		Short: "Print a prompt that reconciles the tree with the codebase",
		Long: `Print a prompt asking an agent to review the tree against the codebase and
requirements: mark finished work done, prune unneeded tasks, split tasks that
exceed the context budget and add missing ones.

Example:
  ralph govern | claude -p`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := c.GovernTreeUseCase().Execute(cmd.Context(), usecase.GovernTreeInput{
				ProjectID: projectID(cmd, c),
			})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), out.Prompt)
			return nil
		},
	}
}

// newSyncCommand creates the sync command.
func newSyncCommand(c *app.Container) *cobra.Command {
	var list bool

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Record a snapshot of the tree (git store only)",
		Long: `Record the current tree as a numbered snapshot under
refs/<namespace>/<project>/snapshots/. Requires [store] type = "git".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := c.SyncTreeUseCase().Execute(cmd.Context(), usecase.SyncTreeInput{
				ProjectID: projectID(cmd, c),
				List:      list,
			})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if !list {
				s := out.Snapshot
				_, _ = fmt.Fprintf(w, "Recorded snapshot %d (%s) %s\n", s.Seq, s.Digest, s.Ref)
				return nil
			}
			if len(out.Snapshots) == 0 {
				_, _ = fmt.Fprintln(w, "No snapshots.")
				return nil
			}
			tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(tw, "SEQ\tCREATED\tDONE\tDIGEST")
			for _, s := range out.Snapshots {
				_, _ = fmt.Fprintf(tw, "%d\t%s\t%d/%d\t%s\n",
					s.Seq, s.CreatedAt.Format("2006-01-02 15:04"), s.Stats.Done, s.Stats.Total, s.Digest)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVar(&list, "list", false, "List snapshots instead of recording one")

	return cmd
}
