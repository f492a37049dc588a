package domain

import (
	"fmt"
	"strings"
)

// BuildContext accumulates the context for the node at path: the project
// requirements followed by the context of the root and of every node along
// the path, skipping empty ones. Sections are separated by a blank line.
func BuildContext(t Tree, p Path, requirements string) string {
	var parts []string
	if strings.TrimSpace(requirements) != "" {
		parts = append(parts, "# Project Requirements\n"+requirements)
	}
	if len(p) == 0 || p[0] != t.Name {
		return strings.Join(parts, "\n\n")
	}
	node := t.rootNode()
	if node.Context != "" {
		parts = append(parts, fmt.Sprintf("# %s\n%s", node.Name, node.Context))
	}
	for _, name := range p[1:] {
		i := childIndex(node.Children, name)
		if i < 0 {
			break
		}
		node = node.Children[i]
		if node.Context != "" {
			parts = append(parts, fmt.Sprintf("# %s\n%s", node.Name, node.Context))
		}
	}
	return strings.Join(parts, "\n\n")
}
