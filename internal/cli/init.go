package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Cook1eMonster/Ralph/internal/app"
	"github.com/Cook1eMonster/Ralph/internal/usecase"
)

// newInitCommand creates the init command.
func newInitCommand(c *app.Container) *cobra.Command {
	var opts struct {
		Name         string
		Path         string
		GithubURL    string
		TargetTokens int
	}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a ralph project",
		Long: `Initialize a project in the current repository.

This command creates .ralph/projects/<id>/ with:
- project.json: project metadata
- tree.json: an empty task tree
- requirements.md: a requirements stub to fill in
and writes .ralph/config.toml if it does not exist yet.

Examples:
  # Initialize the default project
  ralph init --name "Billing service"

  # Initialize a second project living in a subdirectory
  ralph init -p web --name "Web app" --path ./web

Error conditions:
- Already initialized: "ralph already initialized"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			id := projectID(cmd, c)
			name := opts.Name
			if name == "" {
				name = id
			}
			out, err := c.InitProjectUseCase().Execute(cmd.Context(), usecase.InitProjectInput{
				ProjectID:    id,
				Name:         name,
				Path:         opts.Path,
				GithubURL:    opts.GithubURL,
				RepoRoot:     c.Config.RepoRoot,
				TargetTokens: opts.TargetTokens,
			})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(w, "Initialized project %q in %s\n", out.Project.ID, c.Config.RalphDir)
			if out.ConfigCreated {
				_, _ = fmt.Fprintf(w, "Created %s\n", c.ConfigManager.GetRepoConfigInfo().Path)
			}
			_, _ = fmt.Fprintln(w, "\nNext steps:")
			_, _ = fmt.Fprintln(w, "  1. Describe the project in requirements.md")
			_, _ = fmt.Fprintln(w, "  2. Run 'ralph plan' or add tasks with 'ralph add'")
			if out.GitignoreNeedsAdd {
				_, _ = fmt.Fprintln(w, "\nHint: add .ralph/ to .gitignore")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Name, "name", "", "Display name, also used as the tree root (default: project id)")
	cmd.Flags().StringVar(&opts.Path, "path", "", "Working directory of the project (default: repository root)")
	cmd.Flags().StringVar(&opts.GithubURL, "github", "", "GitHub URL of the project")
	cmd.Flags().IntVar(&opts.TargetTokens, "target-tokens", 0, "Context budget per task (default: [estimate] target_tokens)")

	return cmd
}

// newProjectsCommand creates the projects command.
func newProjectsCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "projects",
		Short: "List projects with their progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := c.ListProjectsUseCase().Execute(cmd.Context(), usecase.ListProjectsInput{})
			if err != nil {
				return err
			}
			if len(out.Summaries) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No projects. Run 'ralph init' first.")
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(tw, "ID\tNAME\tDONE\tPROGRESS\tPATH")
			for _, s := range out.Summaries {
				_, _ = fmt.Fprintf(tw, "%s\t%s\t%d/%d\t%.1f%%\t%s\n",
					s.Project.ID, s.Project.Name, s.Completed, s.Total, s.ProgressPercent, s.Project.Path)
			}
			return tw.Flush()
		},
	}
}
