package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"

	"github.com/Cook1eMonster/Ralph/internal/domain"
	"github.com/Cook1eMonster/Ralph/internal/tui"
)

// printTree writes the indented tree with status markers. Groups show their
// leaf progress instead of a marker.
func printTree(w io.Writer, t domain.Tree) {
	_, _ = fmt.Fprintln(w, t.Name)
	domain.Fold(t, struct{}{}, func(acc struct{}, n domain.TaskNode, p domain.Path) struct{} {
		indent := strings.Repeat("  ", len(p)-1)
		if n.IsLeaf() {
			marker := tui.StatusStyle(n.Status).Render(n.Status.Marker())
			_, _ = fmt.Fprintf(w, "%s%s %s\n", indent, marker, n.Name)
			return acc
		}
		s := domain.Stats(domain.Tree{Name: n.Name, Children: n.Children})
		_, _ = fmt.Fprintf(w, "%s%s (%d/%d)\n", indent, n.Name, s.Done, s.Total)
		return acc
	})
}

// printStats writes the progress summary line and the per-status counts.
func printStats(w io.Writer, s domain.TreeStats) {
	_, _ = fmt.Fprintf(w, "Progress: %d/%d (%.1f%%)\n", s.Done, s.Total, s.Progress)
	_, _ = fmt.Fprintf(w, "  %s  %s  %s  %s\n",
		tui.StatusStyle(domain.StatusPending).Render(fmt.Sprintf("pending %d", s.Pending)),
		tui.StatusStyle(domain.StatusInProgress).Render(fmt.Sprintf("in-progress %d", s.InProgress)),
		tui.StatusStyle(domain.StatusDone).Render(fmt.Sprintf("done %d", s.Done)),
		tui.StatusStyle(domain.StatusBlocked).Render(fmt.Sprintf("blocked %d", s.Blocked)),
	)
}

// printList writes a titled bullet list, or nothing if items is empty.
func printList(w io.Writer, title string, items []string) {
	if len(items) == 0 {
		return
	}
	_, _ = fmt.Fprintf(w, "%s:\n", title)
	for _, item := range items {
		_, _ = fmt.Fprintf(w, "  - %s\n", item)
	}
}

// printEstimate writes the budget breakdown of one task.
func printEstimate(w io.Writer, e domain.Estimate) {
	fit := "fits"
	if !e.Fits {
		fit = "OVER budget, consider splitting"
	}
	_, _ = fmt.Fprintf(w, "Estimate: ~%s / %s tokens (%.1f%%, %s, %s)\n",
		domain.FormatThousands(e.Total), domain.FormatThousands(e.Target), e.Utilization, e.Complexity, fit)
}

// useColor resolves a --color mode. In auto mode color is used only when w is
// a terminal that supports it.
func useColor(w io.Writer, mode string) (bool, error) {
	switch mode {
	case "always":
		return true, nil
	case "never":
		return false, nil
	case "auto", "":
		return termenv.NewOutput(w).Profile != termenv.Ascii, nil
	default:
		return false, fmt.Errorf("invalid --color %q (want auto, always or never)", mode)
	}
}
