package domain

import (
	"fmt"
	"math"
	"slices"
	"strings"
)

// FoldWhile visits every node depth-first in document order, passing the
// accumulator, the node and its full path (tree name first). Traversal stops
// as soon as fn returns false. It is the primitive every other traversal is
// derived from.
func FoldWhile[A any](t Tree, seed A, fn func(acc A, node TaskNode, path Path) (A, bool)) A {
	acc := seed
	var walk func(nodes []TaskNode, prefix Path) bool
	walk = func(nodes []TaskNode, prefix Path) bool {
		for _, n := range nodes {
			p := prefix.child(n.Name)
			var more bool
			if acc, more = fn(acc, n, p); !more {
				return false
			}
			if !walk(n.Children, p) {
				return false
			}
		}
		return true
	}
	walk(t.Children, t.RootPath())
	return acc
}

// Fold visits every node depth-first and accumulates a result.
func Fold[A any](t Tree, seed A, fn func(acc A, node TaskNode, path Path) A) A {
	return FoldWhile(t, seed, func(acc A, n TaskNode, p Path) (A, bool) {
		return fn(acc, n, p), true
	})
}

// Filter returns every node matching pred, in depth-first order.
func Filter(t Tree, pred func(TaskNode, Path) bool) []TaskWithPath {
	return Fold(t, []TaskWithPath(nil), func(acc []TaskWithPath, n TaskNode, p Path) []TaskWithPath {
		if pred(n, p) {
			acc = append(acc, TaskWithPath{Task: n, Path: p})
		}
		return acc
	})
}

// Find returns the first node matching pred in depth-first order.
func Find(t Tree, pred func(TaskNode, Path) bool) (TaskWithPath, bool) {
	var found *TaskWithPath
	found = FoldWhile(t, found, func(acc *TaskWithPath, n TaskNode, p Path) (*TaskWithPath, bool) {
		if pred(n, p) {
			return &TaskWithPath{Task: n, Path: p}, false
		}
		return acc, true
	})
	if found == nil {
		return TaskWithPath{}, false
	}
	return *found, true
}

// Map returns a new tree where every node has been replaced by fn(node).
// Children are mapped before their parent, so fn sees already-mapped children.
func Map(t Tree, fn func(TaskNode, Path) TaskNode) Tree {
	var mapNodes func(nodes []TaskNode, prefix Path) []TaskNode
	mapNodes = func(nodes []TaskNode, prefix Path) []TaskNode {
		if nodes == nil {
			return nil
		}
		out := make([]TaskNode, len(nodes))
		for i, n := range nodes {
			p := prefix.child(n.Name)
			n.Children = mapNodes(n.Children, p)
			out[i] = fn(n, p)
		}
		return out
	}
	out := t
	out.Children = mapNodes(t.Children, t.RootPath())
	return out
}

// childIndex returns the index of the first child named name, or -1.
func childIndex(nodes []TaskNode, name string) int {
	for i, n := range nodes {
		if n.Name == name {
			return i
		}
	}
	return -1
}

// FindByPath resolves a path. The first segment must equal the tree name;
// each following segment matches the first child with that exact name.
// The root path resolves to a status-less node carrying the root's name,
// context and children.
func FindByPath(t Tree, p Path) (TaskNode, bool) {
	if len(p) == 0 || p[0] != t.Name {
		return TaskNode{}, false
	}
	node := t.rootNode()
	for _, name := range p[1:] {
		i := childIndex(node.Children, name)
		if i < 0 {
			return TaskNode{}, false
		}
		node = node.Children[i]
	}
	return node, true
}

// UpdateAtPath returns a new tree in which the node addressed by p has been
// replaced by fn(node). Every ancestor along the path is rebuilt; untouched
// subtrees are shared with t. If p does not resolve, t is returned unchanged
// with ok=false.
func UpdateAtPath(t Tree, p Path, fn func(TaskNode) TaskNode) (Tree, bool) {
	if len(p) == 0 || p[0] != t.Name {
		return t, false
	}
	root, ok := updateNode(t.rootNode(), p[1:], fn)
	if !ok {
		return t, false
	}
	return treeFromNode(root), true
}

func updateNode(n TaskNode, rest Path, fn func(TaskNode) TaskNode) (TaskNode, bool) {
	if len(rest) == 0 {
		return fn(n), true
	}
	i := childIndex(n.Children, rest[0])
	if i < 0 {
		return n, false
	}
	child, ok := updateNode(n.Children[i], rest[1:], fn)
	if !ok {
		return n, false
	}
	children := slices.Clone(n.Children)
	children[i] = child
	n.Children = children
	return n, true
}

// AddChild appends node under the node addressed by parent.
// Adding under a leaf turns that leaf into a grouping.
func AddChild(t Tree, parent Path, node TaskNode) (Tree, error) {
	if err := ValidateName(node.Name); err != nil {
		return t, err
	}
	if err := validateNodes(node.Children, Path{node.Name}); err != nil {
		return t, err
	}
	if node.Status == "" {
		node.Status = StatusPending
	}

	var dupErr error
	out, ok := UpdateAtPath(t, parent, func(n TaskNode) TaskNode {
		if childIndex(n.Children, node.Name) >= 0 {
			dupErr = fmt.Errorf("%w: %q under %s", ErrDuplicateSibling, node.Name, parent)
			return n
		}
		children := make([]TaskNode, len(n.Children), len(n.Children)+1)
		copy(children, n.Children)
		n.Children = append(children, node)
		return n
	})
	if !ok {
		return t, fmt.Errorf("%w: %s", ErrPathNotFound, parent)
	}
	if dupErr != nil {
		return t, dupErr
	}
	return out, nil
}

// PruneAtPath removes the node addressed by p together with its subtree.
func PruneAtPath(t Tree, p Path) (Tree, error) {
	if len(p) == 0 {
		return t, ErrEmptyPath
	}
	if len(p) == 1 {
		return t, ErrRootPath
	}
	name := p.Last()
	removed := false
	out, ok := UpdateAtPath(t, p.Parent(), func(n TaskNode) TaskNode {
		i := childIndex(n.Children, name)
		if i < 0 {
			return n
		}
		removed = true
		n.Children = slices.Delete(slices.Clone(n.Children), i, i+1)
		return n
	})
	if !ok || !removed {
		return t, fmt.Errorf("%w: %s", ErrPathNotFound, p)
	}
	return out, nil
}

// SetStatus returns a new tree with the status of the node at p replaced.
func SetStatus(t Tree, p Path, status Status) (Tree, bool) {
	return UpdateAtPath(t, p, func(n TaskNode) TaskNode {
		n.Status = status
		return n
	})
}

// Validate checks the structural invariants of a tree: non-empty names,
// names that survive a path round trip, known statuses and unique sibling
// names.
func Validate(t Tree) error {
	if err := ValidateName(t.Name); err != nil {
		return fmt.Errorf("tree: %w", err)
	}
	return validateNodes(t.Children, t.RootPath())
}

// ValidateName rejects names that a serialized path cannot carry: paths are
// joined with PathSeparator and segments are matched exactly.
func ValidateName(name string) error {
	switch {
	case name == "":
		return ErrEmptyName
	case strings.Contains(name, PathSeparator):
		return fmt.Errorf("%w: %q contains %q", ErrInvalidName, name, PathSeparator)
	case strings.TrimSpace(name) != name:
		return fmt.Errorf("%w: %q has leading or trailing whitespace", ErrInvalidName, name)
	}
	return nil
}

func validateNodes(nodes []TaskNode, prefix Path) error {
	seen := make(map[string]struct{}, len(nodes))
	for _, n := range nodes {
		if err := ValidateName(n.Name); err != nil {
			return fmt.Errorf("child of %s: %w", prefix, err)
		}
		if _, dup := seen[n.Name]; dup {
			return fmt.Errorf("%w: %q under %s", ErrDuplicateSibling, n.Name, prefix)
		}
		seen[n.Name] = struct{}{}
		if n.Status != "" && !n.Status.IsValid() {
			return fmt.Errorf("%s: %w: %q", prefix.child(n.Name), ErrInvalidStatus, n.Status)
		}
		if err := validateNodes(n.Children, prefix.child(n.Name)); err != nil {
			return err
		}
	}
	return nil
}

// Normalize returns the stored form of a tree: missing statuses are set to
// pending and the root always carries a (possibly empty) children list.
func Normalize(t Tree) Tree {
	out := Map(t, func(n TaskNode, _ Path) TaskNode {
		if n.Status == "" {
			n.Status = StatusPending
		}
		return n
	})
	if out.Children == nil {
		out.Children = []TaskNode{}
	}
	return out
}

// Leaves returns every leaf task in depth-first order.
func Leaves(t Tree) []TaskWithPath {
	return Filter(t, func(n TaskNode, _ Path) bool { return n.IsLeaf() })
}

// CountByStatus counts leaf tasks per status.
func CountByStatus(t Tree) map[Status]int {
	return Fold(t, map[Status]int{}, func(acc map[Status]int, n TaskNode, _ Path) map[Status]int {
		if n.IsLeaf() {
			acc[n.Status]++
		}
		return acc
	})
}

// TreeStats summarizes leaf progress.
// Fields are ordered to minimize memory padding.
type TreeStats struct {
	Progress   float64 // Percent of leaves done, one decimal place
	Total      int
	Pending    int
	InProgress int
	Done       int
	Blocked    int
}

// Stats computes leaf counts and progress for a tree.
func Stats(t Tree) TreeStats {
	counts := CountByStatus(t)
	s := TreeStats{
		Pending:    counts[StatusPending],
		InProgress: counts[StatusInProgress],
		Done:       counts[StatusDone],
		Blocked:    counts[StatusBlocked],
	}
	for _, c := range counts {
		s.Total += c
	}
	s.Progress = Percent(s.Done, s.Total)
	return s
}

// Percent returns part/whole as a percentage rounded to one decimal place.
// A zero whole yields zero.
func Percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return math.Round(float64(part)/float64(whole)*1000) / 10
}

// Transition moves the leaf at p to target. The original tree is returned
// unchanged with an error when the path does not resolve to a leaf or the
// status change is not allowed.
func Transition(t Tree, p Path, target Status) (Tree, TaskNode, error) {
	node, ok := FindByPath(t, p)
	if !ok {
		return t, TaskNode{}, fmt.Errorf("%w: %s", ErrPathNotFound, p)
	}
	if len(p) == 1 || !node.IsLeaf() {
		return t, TaskNode{}, fmt.Errorf("%s: %w", p, ErrNotLeaf)
	}
	if node.Status == StatusDone && target == StatusDone {
		return t, TaskNode{}, fmt.Errorf("%s: %w", p, ErrAlreadyDone)
	}
	if !node.Status.CanTransitionTo(target) {
		return t, TaskNode{}, fmt.Errorf("%s: %w: %s -> %s", p, ErrInvalidTransition, node.Status, target)
	}
	out, _ := SetStatus(t, p, target)
	node.Status = target
	return out, node, nil
}
