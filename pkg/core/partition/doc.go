// Package partition splits sibling items into a size-balanced binary tree.
//
// # Overview
//
// The treemap layout carves a rectangle in two at every inner node of a
// binary tree, so the quality of the picture depends on how evenly each node
// divides its items. [Partition] builds that tree greedily: items are dealt
// in order to whichever of two subsets is currently lighter, and both halves
// are partitioned again until every subset holds a single item.
//
// When running totals tie, the subset with fewer items wins, and the left
// subset wins a full tie. A folder full of empty files therefore still
// produces a balanced tree instead of a degenerate chain.
//
// The greedy rule is not an optimal balanced partition and depends on input
// order; callers present items sorted by descending size (stable) so large
// items are distributed first.
//
// # Example
//
//	tree, err := partition.Partition([]item.Item{
//	    item.MustFile("/a", 300),
//	    item.MustFile("/b", 100),
//	})
//	// tree is Node(Leaf(/a), Leaf(/b))
//
// # Debugging
//
// [ToDOT] and [RenderSVG] draw a tree with Graphviz; the sizemap partition
// command uses them to inspect how a folder is split.
package partition
