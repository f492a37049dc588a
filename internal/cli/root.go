// Package cli provides the command-line interface for ralph.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Cook1eMonster/Ralph/internal/app"
	"github.com/Cook1eMonster/Ralph/internal/tui"
)

// Command group IDs.
const (
	groupSetup   = "setup"
	groupTask    = "task"
	groupWorkers = "workers"
	groupAgent   = "agent"
)

// launchTUIFunc is a function variable for launching the TUI, allowing it to be mocked in tests.
var launchTUIFunc = tui.Run

// NewRootCommand creates the root command for ralph.
// It receives the container for dependency injection and version for display.
func NewRootCommand(c *app.Container, version string) *cobra.Command {
	root := &cobra.Command{
		Use:   "ralph",
		Short: "Task tree scheduler for AI coding agents",
		Long: `ralph keeps a hierarchical task tree for a project and hands out one
context-sized task at a time to AI coding agents.

It picks the next pending leaf, estimates whether it fits the agent's context
budget, spreads tasks over parallel worker branches, and runs acceptance
commands with an AI repair loop until they pass.

Run 'ralph init' to create a project, then 'ralph plan' or 'ralph add' to
build the tree.`,
		Version: version,
		// SilenceUsage prevents usage from being printed on errors
		SilenceUsage: true,
		// SilenceErrors prevents Cobra from printing errors (we handle it in main)
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "init" {
				return nil
			}

			// Skip if container is nil (e.g. in tests)
			if c == nil {
				return nil
			}

			cfg, err := c.ConfigLoader.Load()
			if err != nil {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v (using defaults)\n", err)
				return nil
			}
			for _, w := range cfg.Warnings {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %s\n", w)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	root.PersistentFlags().StringP("project", "p", "", "Project to operate on (default: [project] default, then \"default\")")

	root.AddGroup(
		&cobra.Group{ID: groupSetup, Title: "Setup Commands:"},
		&cobra.Group{ID: groupTask, Title: "Task Management:"},
		&cobra.Group{ID: groupWorkers, Title: "Parallel Workers:"},
		&cobra.Group{ID: groupAgent, Title: "Validation and AI:"},
	)

	add := func(group string, cmds ...*cobra.Command) {
		for _, cmd := range cmds {
			cmd.GroupID = group
			root.AddCommand(cmd)
		}
	}

	add(groupSetup,
		newInitCommand(c),
		newProjectsCommand(c),
		newConfigCommand(c),
		newLogsCommand(c),
	)
	add(groupTask,
		newNextCommand(c),
		newStartCommand(c),
		newDoneCommand(c),
		newBlockCommand(c),
		newUnblockCommand(c),
		newShowCommand(c),
		newAddCommand(c),
		newPruneCommand(c),
		newStatusCommand(c),
		newEstimateCommand(c),
		newExportCommand(c),
		newTUICommand(c),
	)
	add(groupWorkers,
		newAssignCommand(c),
		newAssignOneCommand(c),
		newWorkersCommand(c),
		newDoneOneCommand(c),
		newDoneAllCommand(c),
		newMergeCommand(c),
	)
	add(groupAgent,
		newValidateCommand(c),
		newHealCommand(c),
		newPlanCommand(c),
		newCodeCommand(c),
		newEnrichCommand(c),
		newGovernCommand(c),
		newSyncCommand(c),
	)

	return root
}

// projectID resolves the --project flag against the container defaults.
func projectID(cmd *cobra.Command, c *app.Container) string {
	flag, _ := cmd.Flags().GetString("project")
	return c.ProjectID(flag)
}

// newTUICommand creates the tui command.
func newTUICommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Browse the task tree interactively",
		Long: `Browse the task tree in a terminal UI.

Keys:
  n  jump to the next pending task
  d  mark the selected task done
  s  start the selected task
  b  block or unblock the selected task
  r  reload the tree
  ?  toggle help
  q  quit`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return launchTUIFunc(c, projectID(cmd, c))
		},
	}
}
