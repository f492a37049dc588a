package domain

// ScheduleOptions tunes task selection.
type ScheduleOptions struct {
	// Slices treats the root's direct children as ordered slices: only the
	// first slice that still has an unfinished leaf is visible.
	Slices bool
}

func isPendingLeaf(n TaskNode, _ Path) bool {
	return n.IsLeaf() && n.Status == StatusPending
}

// FindNextPending returns the first pending leaf in depth-first document order.
func FindNextPending(t Tree) (TaskWithPath, bool) {
	found := FindNPending(t, 1)
	if len(found) == 0 {
		return TaskWithPath{}, false
	}
	return found[0], true
}

// FindNPending collects up to n pending leaves in depth-first document order,
// stopping as soon as n have been found.
func FindNPending(t Tree, n int) []TaskWithPath {
	if n <= 0 {
		return nil
	}
	return FoldWhile(t, []TaskWithPath(nil), func(acc []TaskWithPath, node TaskNode, p Path) ([]TaskWithPath, bool) {
		if isPendingLeaf(node, p) {
			acc = append(acc, TaskWithPath{Task: node, Path: p})
		}
		return acc, len(acc) < n
	})
}

// FindFirstInProgress returns the first in-progress leaf in document order.
func FindFirstInProgress(t Tree) (TaskWithPath, bool) {
	return Find(t, func(n TaskNode, _ Path) bool {
		return n.IsLeaf() && n.Status == StatusInProgress
	})
}

// Visible restricts the tree to the part the scheduler may pick from.
// Without slices the tree is returned as is.
func Visible(t Tree, opts ScheduleOptions) Tree {
	if !opts.Slices {
		return t
	}
	slice, ok := CurrentSlice(t)
	if !ok {
		return t
	}
	out := t
	out.Children = []TaskNode{slice}
	return out
}

// CurrentSlice returns the first direct child of the root that still has a
// leaf that is not done.
func CurrentSlice(t Tree) (TaskNode, bool) {
	for _, c := range t.Children {
		if hasUnfinishedLeaf(c) {
			return c, true
		}
	}
	return TaskNode{}, false
}

func hasUnfinishedLeaf(n TaskNode) bool {
	if n.IsLeaf() {
		return n.Status != StatusDone
	}
	for _, c := range n.Children {
		if hasUnfinishedLeaf(c) {
			return true
		}
	}
	return false
}

// NextPending applies the schedule options and returns the next pending leaf.
func NextPending(t Tree, opts ScheduleOptions) (TaskWithPath, bool) {
	return FindNextPending(Visible(t, opts))
}

// NPending applies the schedule options and returns up to n pending leaves.
func NPending(t Tree, n int, opts ScheduleOptions) []TaskWithPath {
	return FindNPending(Visible(t, opts), n)
}
