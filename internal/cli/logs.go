package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Cook1eMonster/Ralph/internal/app"
	"github.com/Cook1eMonster/Ralph/internal/usecase"
)

// newLogsCommand creates the logs command.
func newLogsCommand(c *app.Container) *cobra.Command {
	var opts struct {
		Worker int
		Lines  int
	}

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the global or a worker lane log",
		Long: `Display log entries from .ralph/logs/.

Examples:
  # Show the global log
  ralph logs

  # Show the last 20 lines of worker 2
  ralph logs --worker 2 -n 20`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := c.ShowLogsUseCase().Execute(cmd.Context(), usecase.ShowLogsInput{
				WorkerID: opts.Worker,
				Lines:    opts.Lines,
			})
			if err != nil {
				return err
			}
			if out.Content == "" {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s is empty\n", out.LogPath)
				return nil
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), out.Content)
			return nil
		},
	}

	cmd.Flags().IntVar(&opts.Worker, "worker", 0, "Worker lane to show (0 = global log)")
	cmd.Flags().IntVarP(&opts.Lines, "lines", "n", 0, "Number of lines to show from the end (0 = all)")

	return cmd
}
