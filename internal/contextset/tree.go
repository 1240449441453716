package contextset

import (
	"sort"
	"strings"

	"github.com/samber/lo"
)

const (
	treeRootHeader       = "."
	treeBranchConnector  = "├── "
	treeLastConnector    = "└── "
	treeNestedPrefix     = "│   "
	treeLastNestedPrefix = "    "
)

// treeNode is one directory or file name inside the rendered tree. A file is
// a node without children.
type treeNode struct {
	children map[string]*treeNode
}

func newTreeNode() *treeNode {
	return &treeNode{children: make(map[string]*treeNode)}
}

// Tree renders the included files as a prefix-drawn directory tree rooted at
// a literal "." line. Entries at every level are sorted lexicographically by
// name with directories and files intermixed. An empty selection renders as
// the empty string.
func (selection *Context) Tree() string {
	if len(selection.included) == 0 {
		return ""
	}
	rootNode := newTreeNode()
	for _, includedPath := range selection.IncludedFiles() {
		relativePath := selection.relativeToRoot(includedPath)
		currentNode := rootNode
		for _, segment := range strings.Split(relativePath, pathSeparator) {
			childNode, exists := currentNode.children[segment]
			if !exists {
				childNode = newTreeNode()
				currentNode.children[segment] = childNode
			}
			currentNode = childNode
		}
	}
	var treeBuilder strings.Builder
	treeBuilder.WriteString(treeRootHeader + "\n")
	writeTreeChildren(&treeBuilder, rootNode, "")
	return treeBuilder.String()
}

// writeTreeChildren renders the children of node beneath the accumulated
// line prefix, using the last-sibling connector for the final entry.
func writeTreeChildren(treeBuilder *strings.Builder, node *treeNode, linePrefix string) {
	childNames := lo.Keys(node.children)
	sort.Strings(childNames)
	for childIndex, childName := range childNames {
		connector := treeBranchConnector
		childPrefix := linePrefix + treeNestedPrefix
		if childIndex == len(childNames)-1 {
			connector = treeLastConnector
			childPrefix = linePrefix + treeLastNestedPrefix
		}
		treeBuilder.WriteString(linePrefix + connector + childName + "\n")
		writeTreeChildren(treeBuilder, node.children[childName], childPrefix)
	}
}
