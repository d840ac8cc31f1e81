// Package item models a disk-usage hierarchy of files and folders.
//
// # Overview
//
// A du report is a flat list of paths with sizes. [Build] groups those lines
// by parent directory and produces an immutable tree of [Item] values:
//
//   - [*File]: a leaf with the byte size taken from the report
//   - [*Folder]: an inner node whose size is the sum of its children
//
// Folder sizes are computed once, when the folder is created, and never
// change afterwards: the hierarchy cannot be modified once built.
//
// # Building a Hierarchy
//
//	root, err := item.Build("/", []item.Entry{
//	    {Path: "/a", Size: 300},
//	    {Path: "/b", Size: 100},
//	})
//	// root.Size() == 400
//
// # Traversal
//
// [Walk] visits a subtree depth-first. [CountFiles], [Depth] and [Find] are
// built on it.
package item
