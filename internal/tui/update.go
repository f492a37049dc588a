package tui

import (
	"fmt"
	"slices"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Cook1eMonster/Ralph/internal/domain"
)

// Update handles messages and updates the model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = max(msg.Width/3, 10)
		m.help.Width = msg.Width
		m.detail.Width = max(msg.Width-4, 20)
		m.detail.Height = detailHeight
		m.refreshDetail()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case MsgTreeLoaded:
		m.tree = msg.Tree
		m.next = msg.Next
		m.requirements = msg.Requirements
		m.target = msg.Target
		m.all = flatten(msg.Tree)
		m.stats = domain.Stats(msg.Tree)
		m.err = nil
		m.applyFilter()
		return m, nil

	case MsgTaskChanged:
		m.message = fmt.Sprintf("%s: %s", msg.Action, msg.Path)
		m.err = nil
		return m, m.loadTree()

	case MsgError:
		m.err = msg.Err
		m.message = ""
		return m, nil
	}

	return m, nil
}

// handleKeyMsg handles keyboard input.
func (m *Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.filtering {
		return m.handleFilterKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
			m.refreshDetail()
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.rows)-1 {
			m.cursor++
			m.refreshDetail()
		}
		return m, nil

	case key.Matches(msg, m.keys.Filter):
		m.filtering = true
		return m, m.filter.Focus()

	case key.Matches(msg, m.keys.Clear):
		m.clearFilter()
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		m.message = ""
		return m, m.loadTree()

	case key.Matches(msg, m.keys.Next):
		m.jumpToNext()
		return m, nil

	case key.Matches(msg, m.keys.Done):
		r, err := m.selectedLeaf()
		if err != nil {
			m.err = err
			return m, nil
		}
		return m, m.completeTask(r.Path)

	case key.Matches(msg, m.keys.Start):
		r, err := m.selectedLeaf()
		if err != nil {
			m.err = err
			return m, nil
		}
		return m, m.startTask(r.Path)

	case key.Matches(msg, m.keys.Block):
		r, err := m.selectedLeaf()
		if err != nil {
			m.err = err
			return m, nil
		}
		return m, m.toggleBlock(r)
	}

	var cmd tea.Cmd
	m.detail, cmd = m.detail.Update(msg)
	return m, cmd
}

// handleFilterKey edits the filter. Enter keeps it, Esc clears it.
func (m *Model) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.filtering = false
		m.filter.Blur()
		return m, nil
	case tea.KeyEsc:
		m.clearFilter()
		return m, nil
	case tea.KeyCtrlC:
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.applyFilter()
	return m, cmd
}

// jumpToNext moves the cursor to the next pending task.
func (m *Model) jumpToNext() {
	m.err = nil
	if m.next == nil {
		m.message = "no pending tasks"
		return
	}
	if !slices.ContainsFunc(m.rows, func(r row) bool { return r.Path.Equal(m.next.Path) }) {
		m.clearFilter()
	}
	for i, r := range m.rows {
		if r.Path.Equal(m.next.Path) {
			m.cursor = i
			break
		}
	}
	m.message = fmt.Sprintf("next: %s", m.next.Path)
	m.refreshDetail()
}

// refreshDetail renders the selected task into the detail viewport.
func (m *Model) refreshDetail() {
	m.detail.SetContent(m.detailContent())
	m.detail.GotoTop()
}
