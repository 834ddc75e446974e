package internal

import (
	"strings"
)

type NodeKind int

const (
	TerminalNode NodeKind = iota
	NonTerminalNode
)

const noNode = -1

// Node lives in a Tree arena and refers to its parent and children by index.
type Node struct {
	Kind     NodeKind
	Name     string
	Token    *Token // set for CST terminals only
	Loc      Location
	Children []int
	Parent   int
}

func (node *Node) IsTerminal() bool {
	return node.Kind == TerminalNode
}

// Tree is used for both the CST and the AST. Non-terminals become the insertion point for
// the nodes added after them until Ascend is called.
type Tree struct {
	nodes   []*Node
	root    int
	current int
}

func NewTree() *Tree {
	return &Tree{root: noNode, current: noNode}
}

// AddNode appends a node under the current node and returns its index.
func (tree *Tree) AddNode(kind NodeKind, name string, token *Token, loc Location) int {
	id := len(tree.nodes)
	node := &Node{Kind: kind, Name: name, Token: token, Loc: loc, Parent: tree.current}
	tree.nodes = append(tree.nodes, node)
	if tree.current == noNode {
		if tree.root == noNode {
			tree.root = id
		}
	} else {
		parent := tree.nodes[tree.current]
		parent.Children = append(parent.Children, id)
	}
	if kind == NonTerminalNode {
		tree.current = id
	}
	return id
}

// AddChild appends a node under parent without moving the insertion point.
func (tree *Tree) AddChild(parent int, kind NodeKind, name string, token *Token, loc Location) int {
	current := tree.current
	tree.current = parent
	id := tree.AddNode(kind, name, token, loc)
	tree.current = current
	return id
}

// Ascend moves the insertion point back to the parent of the current node.
func (tree *Tree) Ascend() {
	if tree.current != noNode {
		tree.current = tree.nodes[tree.current].Parent
	}
}

func (tree *Tree) Root() int {
	return tree.root
}

func (tree *Tree) Current() int {
	return tree.current
}

func (tree *Tree) Len() int {
	return len(tree.nodes)
}

func (tree *Tree) Node(id int) *Node {
	return tree.nodes[id]
}

// Terminals returns the terminal leaves below id in document order.
func (tree *Tree) Terminals(id int) []int {
	var ret []int
	var walk func(int)
	walk = func(n int) {
		node := tree.nodes[n]
		if node.IsTerminal() {
			ret = append(ret, n)
		}
		for _, child := range node.Children {
			walk(child)
		}
	}
	walk(id)
	return ret
}

// String dumps the tree one node per line, depth shown as leading dashes.
func (tree *Tree) String() string {
	if tree.root == noNode {
		return ""
	}
	bf := strings.Builder{}
	var dump func(int, int)
	dump = func(id, depth int) {
		node := tree.nodes[id]
		bf.WriteString(strings.Repeat("-", depth))
		if node.IsTerminal() {
			bf.WriteString("[" + node.Name + "]\n")
		} else {
			bf.WriteString("<" + node.Name + ">\n")
		}
		for _, child := range node.Children {
			dump(child, depth+1)
		}
	}
	dump(tree.root, 0)
	return bf.String()
}
