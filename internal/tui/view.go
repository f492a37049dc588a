package tui

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/truncate"

	"github.com/Cook1eMonster/Ralph/internal/domain"
)

const (
	detailHeight = 10
	chromeHeight = detailHeight + 10 // Header, borders, filter, status and help lines
)

// View renders the TUI.
func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(m.headerView())
	b.WriteString("\n")
	b.WriteString(m.treeView())
	b.WriteString(m.filterView())
	b.WriteString("\n")
	b.WriteString(m.styles.Detail.Render(m.detail.View()))
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString(m.styles.Footer.Render(m.help.View(m.keys)))
	return b.String()
}

func (m *Model) headerView() string {
	title := m.styles.HeaderText.Render("Ralph · " + m.projectID)
	bar := m.progress.ViewAs(m.stats.Progress / 100)
	counts := fmt.Sprintf("%.1f%% (%d/%d done)", m.stats.Progress, m.stats.Done, m.stats.Total)
	return m.styles.Header.Render(m.clamp(title + "  " + bar + "  " + counts))
}

// clamp cuts a styled line to the window width.
func (m *Model) clamp(line string) string {
	if m.width <= 0 {
		return line
	}
	return truncate.StringWithTail(line, uint(m.width), "")
}

func (m *Model) filterView() string {
	if !m.filtering && m.filter.Value() == "" {
		return ""
	}
	return m.filter.View() + m.styles.Group.Render(fmt.Sprintf("  %d matches", len(m.rows))) + "\n"
}

// treeView renders the rows that fit the window, keeping the cursor visible.
func (m *Model) treeView() string {
	if len(m.rows) == 0 {
		if len(m.all) > 0 {
			return m.styles.Group.Render("  (no matching tasks)") + "\n"
		}
		return m.styles.Group.Render("  (no tasks; run 'ralph plan' or 'ralph add')") + "\n"
	}

	visible := len(m.rows)
	if m.height > 0 {
		visible = max(m.height-chromeHeight, 3)
	}
	start := 0
	if m.cursor >= visible {
		start = m.cursor - visible + 1
	}
	end := min(start+visible, len(m.rows))

	var b strings.Builder
	for i := start; i < end; i++ {
		b.WriteString(m.rowView(m.rows[i], i == m.cursor))
		b.WriteString("\n")
	}
	return b.String()
}

func (m *Model) rowView(r row, selected bool) string {
	prefix := "  "
	nameStyle := m.styles.Row
	if selected {
		prefix = "> "
		nameStyle = m.styles.RowSelected
	}
	indent := strings.Repeat("  ", r.Depth)

	if !r.Node.IsLeaf() {
		stats := domain.Stats(domain.Tree{Name: r.Node.Name, Children: r.Node.Children})
		counts := fmt.Sprintf("(%d/%d)", stats.Done, stats.Total)
		title := m.fitName(r.Node.Name, len(prefix)+len(indent)+3+len(counts))
		name := nameStyle.Render(title)
		if !selected {
			name = m.styles.Group.Render(title)
		}
		return fmt.Sprintf("%s%s▸ %s %s", prefix, indent, name, m.styles.Group.Render(counts))
	}

	icon := StatusStyle(r.Node.Status).Render(StatusIcon(r.Node.Status))
	title := m.fitName(r.Node.Name, len(prefix)+len(indent)+runewidth.StringWidth(StatusIcon(r.Node.Status))+1)
	return fmt.Sprintf("%s%s%s %s", prefix, indent, icon, nameStyle.Render(title))
}

// fitName truncates name so a row with used columns of chrome fits the window.
func (m *Model) fitName(name string, used int) string {
	if m.width <= 0 {
		return name
	}
	limit := max(m.width-used, 8)
	if runewidth.StringWidth(name) > limit {
		return runewidth.Truncate(name, limit, "...")
	}
	return name
}

func (m *Model) statusLine() string {
	switch {
	case m.err != nil:
		return m.styles.Error.Render("Error: "+m.err.Error()) + "\n"
	case m.message != "":
		return m.styles.Message.Render(m.message) + "\n"
	default:
		return ""
	}
}

// detailContent describes the selected node.
func (m *Model) detailContent() string {
	r, ok := m.selected()
	if !ok {
		return ""
	}
	n := r.Node

	var b strings.Builder
	b.WriteString(m.styles.DetailTitle.Render(n.Name))
	b.WriteString("\n")
	m.field(&b, "Path", r.Path.String())

	if !n.IsLeaf() {
		stats := domain.Stats(domain.Tree{Name: n.Name, Children: n.Children})
		m.field(&b, "Progress", fmt.Sprintf("%.1f%% (%d/%d done)", stats.Progress, stats.Done, stats.Total))
		if n.Context != "" {
			m.field(&b, "Context", n.Context)
		}
		return b.String()
	}

	m.field(&b, "Status", StatusIcon(n.Status)+" "+n.Status.Display())
	if n.Spec != "" {
		m.field(&b, "Spec", n.Spec)
	}
	if len(n.ReadFirst) > 0 {
		m.field(&b, "Read first", strings.Join(n.ReadFirst, ", "))
	}
	if len(n.Files) > 0 {
		m.field(&b, "Files", strings.Join(n.Files, ", "))
	}
	if len(n.Acceptance) > 0 {
		m.field(&b, "Acceptance", strings.Join(n.Acceptance, "; "))
	}

	est := domain.EstimateTask(n, domain.BuildContext(m.tree, r.Path, m.requirements), m.target)
	fit := "fits"
	if !est.Fits {
		fit = "OVER budget"
	}
	m.field(&b, "Estimate", fmt.Sprintf("~%s of %s tokens (%.1f%%, %s, %s)",
		domain.FormatThousands(est.Total), domain.FormatThousands(est.Target), est.Utilization, est.Complexity, fit))
	return b.String()
}

func (m *Model) field(b *strings.Builder, label, value string) {
	b.WriteString(m.styles.DetailLabel.Render(label + ": "))
	b.WriteString(value)
	b.WriteString("\n")
}
