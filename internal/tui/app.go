// Package tui provides the interactive task tree browser.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Cook1eMonster/Ralph/internal/app"
	"github.com/Cook1eMonster/Ralph/internal/domain"
	"github.com/Cook1eMonster/Ralph/internal/usecase"
	"github.com/Cook1eMonster/Ralph/internal/usecase/shared"
)

// row is one visible line of the tree.
type row struct {
	Path  domain.Path
	Node  domain.TaskNode
	Depth int
}

// Model is the main bubbletea model for the TUI.
type Model struct {
	// Dependencies (pointers first for alignment)
	container *app.Container
	next      *domain.TaskWithPath
	err       error

	// State
	all  []row // Every node of the tree
	rows []row // Nodes matching the filter
	tree domain.Tree

	// Components
	keys     KeyMap
	styles   Styles
	help     help.Model
	progress progress.Model
	detail   viewport.Model
	filter   textinput.Model

	projectID    string
	requirements string
	message      string
	stats        domain.TreeStats

	// Numeric state (smaller types last)
	target    int
	cursor    int
	width     int
	height    int
	showHelp  bool
	filtering bool
}

// New creates a new TUI Model for one project.
func New(c *app.Container, projectID string) *Model {
	return &Model{
		container: c,
		projectID: projectID,
		keys:      DefaultKeyMap(),
		styles:    DefaultStyles(),
		help:      help.New(),
		progress:  progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		detail:    viewport.New(60, 10),
		filter:    newFilterInput(),
	}
}

func newFilterInput() textinput.Model {
	ti := textinput.New()
	ti.Prompt = "/"
	ti.Placeholder = "filter by path"
	ti.CharLimit = 100
	_ = ti.Cursor.SetMode(cursor.CursorStatic)
	return ti
}

// Run starts the program in the alternate screen and blocks until it exits.
func Run(c *app.Container, projectID string) error {
	_, err := tea.NewProgram(New(c, projectID), tea.WithAltScreen()).Run()
	return err
}

// Init initializes the model and returns the initial command.
func (m *Model) Init() tea.Cmd {
	return m.loadTree()
}

// loadTree returns a command that loads the tree and project info.
func (m *Model) loadTree() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		out, err := m.container.ShowStatusUseCase().Execute(ctx, usecase.ShowStatusInput{ProjectID: m.projectID})
		if err != nil {
			return MsgError{Err: err}
		}
		cfg, err := shared.LoadConfig(m.container.ConfigLoader)
		if err != nil {
			return MsgError{Err: err}
		}
		info, err := shared.LoadProjectInfo(m.container.Projects, m.projectID, cfg)
		if err != nil {
			return MsgError{Err: err}
		}
		return MsgTreeLoaded{
			Tree:         out.Tree,
			Next:         out.Next,
			Requirements: info.Requirements,
			Target:       info.Budget,
		}
	}
}

// completeTask returns a command that marks the task done.
func (m *Model) completeTask(p domain.Path) tea.Cmd {
	return func() tea.Msg {
		out, err := m.container.CompleteTaskUseCase().Execute(context.Background(), usecase.CompleteTaskInput{
			ProjectID: m.projectID,
			Path:      p.String(),
		})
		if err != nil {
			return MsgError{Err: err}
		}
		return MsgTaskChanged{Action: "done", Path: out.Task.Path}
	}
}

// startTask returns a command that moves the task to in-progress.
func (m *Model) startTask(p domain.Path) tea.Cmd {
	return func() tea.Msg {
		out, err := m.container.StartTaskUseCase().Execute(context.Background(), usecase.StartTaskInput{
			ProjectID: m.projectID,
			Path:      p.String(),
		})
		if err != nil {
			return MsgError{Err: err}
		}
		return MsgTaskChanged{Action: "started", Path: out.Task.Path}
	}
}

// toggleBlock returns a command that blocks the task, or unblocks it if it
// is already blocked.
func (m *Model) toggleBlock(r row) tea.Cmd {
	unblock := r.Node.Status == domain.StatusBlocked
	return func() tea.Msg {
		out, err := m.container.BlockTaskUseCase().Execute(context.Background(), usecase.BlockTaskInput{
			ProjectID: m.projectID,
			Path:      r.Path.String(),
			Unblock:   unblock,
		})
		if err != nil {
			return MsgError{Err: err}
		}
		action := "blocked"
		if unblock {
			action = "unblocked"
		}
		return MsgTaskChanged{Action: action, Path: out.Task.Path}
	}
}

// selected returns the row under the cursor.
func (m *Model) selected() (row, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return row{}, false
	}
	return m.rows[m.cursor], true
}

// selectedLeaf returns the row under the cursor if it is a leaf task.
func (m *Model) selectedLeaf() (row, error) {
	r, ok := m.selected()
	if !ok {
		return row{}, errors.New("no task selected")
	}
	if !r.Node.IsLeaf() {
		return row{}, fmt.Errorf("%s: %w", r.Path, domain.ErrNotLeaf)
	}
	return r, nil
}

// applyFilter narrows rows to nodes whose path contains the filter text,
// keeping the cursor on the same node when it is still visible.
func (m *Model) applyFilter() {
	var current domain.Path
	if r, ok := m.selected(); ok {
		current = r.Path
	}

	query := strings.ToLower(strings.TrimSpace(m.filter.Value()))
	if query == "" {
		m.rows = m.all
	} else {
		m.rows = nil
		for _, r := range m.all {
			if strings.Contains(strings.ToLower(r.Path.String()), query) {
				m.rows = append(m.rows, r)
			}
		}
	}

	m.cursor = min(m.cursor, max(len(m.rows)-1, 0))
	for i, r := range m.rows {
		if current != nil && r.Path.Equal(current) {
			m.cursor = i
			break
		}
	}
	m.refreshDetail()
}

// clearFilter shows every row again.
func (m *Model) clearFilter() {
	m.filtering = false
	m.filter.Blur()
	m.filter.SetValue("")
	m.applyFilter()
}

// flatten lists every node depth-first with its depth below the root.
func flatten(t domain.Tree) []row {
	return domain.Fold(t, []row(nil), func(acc []row, n domain.TaskNode, p domain.Path) []row {
		return append(acc, row{Path: p, Node: n, Depth: len(p) - 2})
	})
}
