package domain

// ExecCommand represents an external command to be executed.
// This type is used to pass command information between layers
// without exposing implementation details.
type ExecCommand struct {
	Program string
	Dir     string
	Args    []string
}

// NewShellCommand wraps a shell command line for execution in dir.
func NewShellCommand(dir, script string) *ExecCommand {
	return &ExecCommand{Program: "sh", Args: []string{"-c", script}, Dir: dir}
}

// CommandResult is the captured outcome of one command.
// Fields are ordered to minimize memory padding.
type CommandResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
	TimedOut bool
}

// Validation converts the result into a validation record for command.
func (r CommandResult) Validation(command string) ValidationResult {
	return ValidationResult{
		Command:  command,
		Stdout:   r.Stdout,
		Stderr:   r.Stderr,
		ExitCode: r.ExitCode,
		Success:  r.ExitCode == 0 && !r.TimedOut,
	}
}
