package usecase

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/Cook1eMonster/Ralph/internal/domain"
)

// ShowLogsInput contains the parameters for showing lane logs.
type ShowLogsInput struct {
	WorkerID int // Lane to show; 0 is the global log
	Lines    int // Number of lines to display from the end (0 = all)
}

// ShowLogsOutput contains the result of showing lane logs.
type ShowLogsOutput struct {
	LogPath string // Path to the log file
	Content string // Log file content
}

// ShowLogs is the use case for viewing the global log or one worker's log.
type ShowLogs struct {
	ralphDir string
}

// NewShowLogs creates a new ShowLogs use case.
func NewShowLogs(ralphDir string) *ShowLogs {
	return &ShowLogs{ralphDir: ralphDir}
}

// Execute reads and returns the log content.
func (uc *ShowLogs) Execute(_ context.Context, in ShowLogsInput) (*ShowLogsOutput, error) {
	logPath := domain.GlobalLogPath(uc.ralphDir)
	if in.WorkerID > 0 {
		logPath = domain.WorkerLogPath(uc.ralphDir, in.WorkerID)
	}

	content, err := os.ReadFile(logPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("no log file found for lane %s: %w", domain.LaneName(in.WorkerID), err)
		}
		return nil, fmt.Errorf("read log file: %w", err)
	}

	// If lines is specified, get only the last N lines
	result := strings.TrimRight(string(content), "\n")
	if in.Lines > 0 {
		lines := strings.Split(result, "\n")
		if len(lines) > in.Lines {
			lines = lines[len(lines)-in.Lines:]
		}
		result = strings.Join(lines, "\n")
	}

	return &ShowLogsOutput{
		LogPath: logPath,
		Content: result,
	}, nil
}
