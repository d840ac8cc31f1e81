// Package treemap lays out a disk-usage hierarchy as nested rectangles.
//
// # Overview
//
// The layout is a binary slice-and-dice treemap. For every folder the
// children are sorted by size and grouped into a size-balanced binary tree
// (see package partition). Walking that tree, each inner node cuts the
// current rectangle in two, across whichever side is longer, in proportion
// to the total sizes on either side. Leaves that are folders repeat the
// process inside their rectangle; leaves that are files are emitted.
//
// The axis is chosen from the current aspect ratio at every cut, not by
// alternating per level, which keeps boxes closer to square.
//
// # Integer Geometry
//
// All coordinates are whole pixels. The first half of a cut gets
// floor(extent*ratio) and the second half the remainder, so the boxes of a
// folder tile its rectangle exactly. Small items may end up with no area at
// all; those are dropped without error.
//
// # Depth
//
// [Position.Depth] counts folder boundaries: the root's children are at
// depth 1, their children at depth 2, and so on, regardless of how many
// partition levels were crossed on the way.
//
// # Building a Layout
//
//	root, _ := item.Build("/", entries)
//	l, err := treemap.Build(root, 800, 600)
//	for _, b := range l.Boxes {
//	    fmt.Println(b.File.Name(), b.X, b.Y, b.Width, b.Height, b.Depth)
//	}
//
// Use [Walk] with an [EmitFunc] to stream boxes instead of collecting them,
// and [WithMaxDepth] to stop descending into very deep hierarchies.
package treemap
