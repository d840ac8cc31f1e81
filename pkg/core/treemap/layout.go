package treemap

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/matzehuels/sizemap/pkg/core/item"
	"github.com/matzehuels/sizemap/pkg/core/partition"
	errs "github.com/matzehuels/sizemap/pkg/errors"
)

// EmitFunc receives every file that ends up with a visible rectangle.
type EmitFunc func(f *item.File, pos Position)

// Option configures a layout pass.
type Option func(*walker)

// WithMaxDepth stops expanding folders at the given nesting depth. A folder
// reached at depth >= n is emitted as one box named after the folder and
// sized by its total. Zero (the default) means no limit.
func WithMaxDepth(n int) Option {
	return func(w *walker) { w.maxDepth = n }
}

type walker struct {
	emit     EmitFunc
	maxDepth int
}

// Walk lays out it inside pos and calls emit for every visible file, in
// depth-first order with the left subset of each split first.
//
// Rectangles without area are skipped silently: integer truncation in deep
// splits routinely produces them and there is nothing to draw. Folders
// without children draw nothing either.
//
// A folder's children are sorted by descending size (stable), partitioned
// with [partition.Partition], and the partition tree is walked against pos:
// each node cuts the rectangle across its longer side (height on ties) in
// proportion to the sizes of its two subtrees, and each leaf is laid out
// recursively one depth level deeper.
func Walk(it item.Item, pos Position, emit EmitFunc, opts ...Option) error {
	w := &walker{emit: emit}
	for _, opt := range opts {
		opt(w)
	}
	return w.item(it, pos)
}

// Build lays out root in a width×height frame and collects the boxes.
func Build(root item.Item, width, height int, opts ...Option) (Layout, error) {
	l := Layout{
		Width:  width,
		Height: height,
		Root:   root.Name(),
		Total:  root.Size(),
	}
	err := Walk(root, Initial(width, height), func(f *item.File, pos Position) {
		l.Boxes = append(l.Boxes, Box{File: f, Position: pos})
	}, opts...)
	if err != nil {
		return Layout{}, err
	}
	return l, nil
}

func (w *walker) item(it item.Item, pos Position) error {
	if pos.Empty() {
		return nil
	}

	switch it := it.(type) {
	case *item.File:
		w.emit(it, pos)
		return nil
	case *item.Folder:
		if it.Len() == 0 {
			return nil
		}
		if w.maxDepth > 0 && pos.Depth >= w.maxDepth {
			w.emit(item.MustFile(it.Name(), it.Size()), pos)
			return nil
		}
		tree, err := partition.Partition(sortBySize(it.Children()))
		if err != nil {
			return fmt.Errorf("partition %s: %w", it.Name(), err)
		}
		return w.tree(tree, pos)
	default:
		return errs.New(errs.ErrCodeInternal, "unexpected item type %T", it)
	}
}

func (w *walker) tree(t partition.Tree, pos Position) error {
	switch t := t.(type) {
	case *partition.Node:
		ratio, err := splitRatio(t.Left.Size(), t.Right.Size())
		if err != nil {
			return err
		}
		first, second := split(pos, ratio)
		if err := w.tree(t.Left, first); err != nil {
			return err
		}
		return w.tree(t.Right, second)
	case *partition.Leaf:
		return w.item(t.Item, pos.Nested())
	default:
		return errs.New(errs.ErrCodeInternal, "unexpected partition type %T", t)
	}
}

// sortBySize orders items by descending size, keeping the input order of
// equal sizes.
func sortBySize(items []item.Item) []item.Item {
	slices.SortStableFunc(items, func(a, b item.Item) int {
		return cmp.Compare(b.Size(), a.Size())
	})
	return items
}

// splitRatio returns the share of the left subtree. Two empty subtrees
// split evenly.
func splitRatio(left, right int64) (float64, error) {
	total := left + right
	if total == 0 {
		return 0.5, nil
	}
	r := float64(left) / float64(total)
	if math.IsNaN(r) || r < 0 || r > 1 {
		return 0, errs.New(errs.ErrCodeInternal, "invalid split ratio %d/%d", left, total)
	}
	return r, nil
}

// split cuts pos in two along its longer side, height on ties. The first
// part gets floor(extent*ratio) and the second the exact remainder, so the
// parts always tile pos.
func split(pos Position, ratio float64) (Position, Position) {
	first, second := pos, pos
	if pos.Width > pos.Height {
		w := int(float64(pos.Width) * ratio)
		first.Width = w
		second.X += w
		second.Width = pos.Width - w
	} else {
		h := int(float64(pos.Height) * ratio)
		first.Height = h
		second.Y += h
		second.Height = pos.Height - h
	}
	return first, second
}
