package domain

import (
	"encoding/json"
	"slices"
	"strings"
)

// PathSeparator joins path segments in serialized form (worker documents, CLI arguments).
const PathSeparator = "."

// Path addresses a node by the names from the tree root down to the node.
// The first segment is always the tree name.
type Path []string

// ParsePath splits a dot-joined path. Segments are kept verbatim; empty ones
// are dropped.
func ParsePath(s string) Path {
	var p Path
	for _, seg := range strings.Split(s, PathSeparator) {
		if seg != "" {
			p = append(p, seg)
		}
	}
	return p
}

// String returns the dot-joined form of the path.
func (p Path) String() string {
	return strings.Join(p, PathSeparator)
}

// Parent returns the path of the parent node, or nil for the root.
func (p Path) Parent() Path {
	if len(p) < 2 {
		return nil
	}
	return slices.Clone(p[:len(p)-1])
}

// Last returns the final segment, or "" for an empty path.
func (p Path) Last() string {
	if len(p) == 0 {
		return ""
	}
	return p[len(p)-1]
}

// Equal reports whether both paths name the same node.
func (p Path) Equal(other Path) bool {
	return slices.Equal(p, other)
}

// child returns a new path extended by name without aliasing p's backing array.
func (p Path) child(name string) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, name)
}

// TaskNode is a node in the task hierarchy. A node without children is a leaf
// (an executable task); nodes with children are groupings.
// TaskNode values are treated as immutable: every mutation goes through the
// tree algebra and produces new nodes along the affected path.
type TaskNode struct {
	Name       string     `json:"name" yaml:"name"`
	Status     Status     `json:"status" yaml:"status"`
	Spec       string     `json:"spec,omitempty" yaml:"spec,omitempty"`
	Context    string     `json:"context,omitempty" yaml:"context,omitempty"`
	ReadFirst  []string   `json:"read_first,omitempty" yaml:"read_first,omitempty"`
	Files      []string   `json:"files,omitempty" yaml:"files,omitempty"`
	Acceptance []string   `json:"acceptance,omitempty" yaml:"acceptance,omitempty"`
	Children   []TaskNode `json:"children,omitempty" yaml:"children,omitempty"`
}

// IsLeaf returns true if the node has no children.
func (n TaskNode) IsLeaf() bool {
	return len(n.Children) == 0
}

// Clone returns a deep copy of the node.
func (n TaskNode) Clone() TaskNode {
	out := n
	out.ReadFirst = slices.Clone(n.ReadFirst)
	out.Files = slices.Clone(n.Files)
	out.Acceptance = slices.Clone(n.Acceptance)
	if n.Children != nil {
		out.Children = make([]TaskNode, len(n.Children))
		for i, c := range n.Children {
			out.Children[i] = c.Clone()
		}
	}
	return out
}

// UnmarshalJSON decodes a node, defaulting the status to pending.
func (n *TaskNode) UnmarshalJSON(data []byte) error {
	type alias TaskNode
	a := alias{Status: StatusPending}
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*n = TaskNode(a)
	return nil
}

// Tree is the root of a project's task hierarchy. It has no status of its own.
type Tree struct {
	Name     string     `json:"name" yaml:"name"`
	Context  string     `json:"context" yaml:"context"`
	Children []TaskNode `json:"children" yaml:"children"`
}

// NewTree returns an empty tree with the given root name.
func NewTree(name string) Tree {
	return Tree{Name: name, Children: []TaskNode{}}
}

// IsEmpty returns true if the tree has no tasks.
func (t Tree) IsEmpty() bool {
	return len(t.Children) == 0
}

// RootPath returns the path addressing the tree root.
func (t Tree) RootPath() Path {
	return Path{t.Name}
}

// rootNode views the tree root as a node so the algebra can treat it uniformly.
func (t Tree) rootNode() TaskNode {
	return TaskNode{Name: t.Name, Context: t.Context, Children: t.Children}
}

func treeFromNode(n TaskNode) Tree {
	return Tree{Name: n.Name, Context: n.Context, Children: n.Children}
}

// TaskWithPath pairs a node with its path. It is a snapshot: later tree
// mutations do not affect it.
type TaskWithPath struct {
	Task TaskNode
	Path Path
}
