package usecase

import (
	"context"

	"github.com/Cook1eMonster/Ralph/internal/domain"
)

// checker runs acceptance commands in a project directory.
type checker struct {
	runner domain.CommandRunner
	tracer domain.Tracer
	logger domain.Logger
}

// run executes commands in order. With failFast it stops after the first
// failure so a repair only has one problem to look at. A command that could
// not be started is reported as a failed result.
func (c checker) run(ctx context.Context, dir string, commands []string, failFast bool) []domain.ValidationResult {
	results := make([]domain.ValidationResult, 0, len(commands))
	for _, command := range commands {
		cmdCtx, span := c.tracer.Start(ctx, "validate.command")
		span.SetAttributes("command", command, "dir", dir)

		c.logger.Debug(0, "validate", "running: "+command)
		res, err := c.runner.Run(cmdCtx, dir, command)
		var v domain.ValidationResult
		if err != nil {
			v = domain.ValidationResult{Command: command, Stderr: err.Error(), ExitCode: -1}
			span.RecordError(err)
		} else {
			v = res.Validation(command)
		}
		span.SetAttributes("exit_code", v.ExitCode, "success", v.Success)
		span.End()

		results = append(results, v)
		if !v.Success {
			c.logger.Warn(0, "validate", "failed: "+command)
			if failFast {
				break
			}
		}
	}
	return results
}
