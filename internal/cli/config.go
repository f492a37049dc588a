package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Cook1eMonster/Ralph/internal/app"
	"github.com/Cook1eMonster/Ralph/internal/usecase"
)

// newConfigCommand creates the config command.
func newConfigCommand(c *app.Container) *cobra.Command {
	var initFlag, global bool

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or create configuration",
		Long: `Display the effective configuration after merging all sources.

Merge order: defaults <- global (~/.config/ralph/config.toml) <- repository (.ralph/config.toml).

Use --init to write a commented template instead.

Examples:
  ralph config
  ralph config --init
  ralph config --init --global`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := cmd.OutOrStdout()
			if initFlag {
				out, err := c.InitConfigUseCase().Execute(cmd.Context(), usecase.InitConfigInput{
					Config: c.AppConfig,
					Global: global,
				})
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(w, "Created config file: %s\n", out.Path)
				return nil
			}

			out, err := c.ShowConfigUseCase().Execute(cmd.Context(), usecase.ShowConfigInput{})
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintln(w, "[Loaded from]")
			for _, info := range []struct {
				path   string
				exists bool
			}{
				{out.GlobalConfig.Path, out.GlobalConfig.Exists},
				{out.RepoConfig.Path, out.RepoConfig.Exists},
			} {
				if info.exists {
					_, _ = fmt.Fprintf(w, "- %s\n", info.path)
				} else {
					_, _ = fmt.Fprintf(w, "- %s (not found)\n", info.path)
				}
			}
			_, _ = fmt.Fprintln(w)
			_, _ = fmt.Fprintln(w, "[Effective Config]")
			_, _ = fmt.Fprint(w, out.Effective)
			return nil
		},
	}

	cmd.Flags().BoolVar(&initFlag, "init", false, "Write a commented config template")
	cmd.Flags().BoolVar(&global, "global", false, "With --init, write the global config instead of the repository config")

	return cmd
}
