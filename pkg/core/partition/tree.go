package partition

import (
	"fmt"

	"github.com/matzehuels/sizemap/pkg/core/item"
)

// Leaves returns the items of t from left to right.
func Leaves(t Tree) []item.Item {
	var out []item.Item
	var visit func(Tree)
	visit = func(t Tree) {
		switch n := t.(type) {
		case *Node:
			visit(n.Left)
			visit(n.Right)
		case *Leaf:
			out = append(out, n.Item)
		}
	}
	visit(t)
	return out
}

// Height returns the number of nodes on the longest root-to-leaf path,
// counting the leaf. A single leaf has height 1.
func Height(t Tree) int {
	switch n := t.(type) {
	case *Node:
		return 1 + max(Height(n.Left), Height(n.Right))
	case *Leaf:
		return 1
	default:
		panic(fmt.Sprintf("partition: unexpected tree type %T", t))
	}
}

// String renders t in a compact nested form, e.g. "(a (b c))".
func String(t Tree) string {
	switch n := t.(type) {
	case *Node:
		return "(" + String(n.Left) + " " + String(n.Right) + ")"
	case *Leaf:
		return n.Item.Name()
	default:
		panic(fmt.Sprintf("partition: unexpected tree type %T", t))
	}
}
