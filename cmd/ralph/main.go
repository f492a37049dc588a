// Package main is the entry point for the ralph CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/Cook1eMonster/Ralph/internal/app"
	"github.com/Cook1eMonster/Ralph/internal/cli"
	"github.com/Cook1eMonster/Ralph/internal/domain"
)

// version is set at build time using -ldflags.
var version = "dev"

// newRootCommand is replaced in tests.
var newRootCommand = cli.NewRootCommand

// shutdownTimeout bounds flushing traces and closing log files on exit.
const shutdownTimeout = 5 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() (err error) {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current directory: %w", err)
	}

	container, err := app.New(cwd)
	if err != nil {
		// Allow running without git repo for no-args/help/version
		if errors.Is(err, domain.ErrNotGitRepository) {
			return runWithoutContainer(err)
		}
		return fmt.Errorf("failed to initialize: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if closeErr := container.Close(ctx); closeErr != nil && err == nil {
			err = fmt.Errorf("shutdown: %w", closeErr)
		}
	}()

	return newRootCommand(container, version).Execute()
}

// runWithoutContainer handles cases where git repo is not found.
// Only help and version output work without a repository.
func runWithoutContainer(gitErr error) error {
	if canRunWithoutGit(os.Args[1:]) {
		return newRootCommand(nil, version).Execute()
	}
	return gitErr
}

func canRunWithoutGit(args []string) bool {
	if len(args) == 0 {
		return true
	}
	if args[0] == "help" {
		return true
	}
	for _, arg := range args {
		if arg == "--version" || arg == "--help" || arg == "-h" {
			return true
		}
	}
	return false
}
