package partition

import (
	"github.com/matzehuels/sizemap/pkg/core/item"
	errs "github.com/matzehuels/sizemap/pkg/errors"
)

// Tree is a binary partition of sibling items: either a [*Node] with two
// subtrees or a [*Leaf] wrapping one item.
type Tree interface {
	// Size returns the total size of all items below the tree.
	Size() int64

	sealed()
}

// Node splits its items into two subsets of roughly equal total size.
type Node struct {
	Left, Right Tree
	size        int64
}

// NewNode joins two subtrees. The node's size is fixed at construction.
func NewNode(left, right Tree) *Node {
	return &Node{Left: left, Right: right, size: left.Size() + right.Size()}
}

func (n *Node) Size() int64 { return n.size }
func (*Node) sealed()       {}

// Leaf holds exactly one item.
type Leaf struct {
	Item item.Item
}

func (l *Leaf) Size() int64 { return l.Item.Size() }
func (*Leaf) sealed()       {}

// Partition builds a binary tree whose leaves are exactly items.
//
// Items are dealt out in order to two accumulating subsets: each goes to the
// subset with the strictly smaller running total; on equal totals to the
// subset holding fewer items; on equal counts to the left. Both subsets are
// then partitioned recursively. Balancing on item count keeps zero-size
// items from piling up on one side.
//
// The result depends only on the input order. Callers should present items
// sorted by descending size so the largest items are placed first.
//
// Partition returns an INVALID_ARGUMENT error when items is empty.
func Partition(items []item.Item) (Tree, error) {
	if len(items) == 0 {
		return nil, errs.New(errs.ErrCodeInvalidArgument, "cannot partition empty list")
	}
	return partition(items), nil
}

func partition(items []item.Item) Tree {
	if len(items) == 1 {
		return &Leaf{Item: items[0]}
	}

	var left, right []item.Item
	var leftSize, rightSize int64
	for _, it := range items {
		switch {
		case leftSize < rightSize:
			left = append(left, it)
			leftSize += it.Size()
		case leftSize > rightSize:
			right = append(right, it)
			rightSize += it.Size()
		case len(left) > len(right):
			right = append(right, it)
			rightSize += it.Size()
		default:
			left = append(left, it)
			leftSize += it.Size()
		}
	}

	// The second item always lands on the right, so both subsets are non-empty.
	return NewNode(partition(left), partition(right))
}
