package item

import (
	"strings"

	errs "github.com/matzehuels/sizemap/pkg/errors"
)

// Entry is one line of a disk-usage report: a path and its size in bytes.
type Entry struct {
	Path string `json:"path"`
	Size int64  `json:"size"`
}

// Parent returns the path of the directory containing p.
//
// The parent of a top-level absolute path such as "/etc" is "/". Paths with
// no slash at all (e.g. "." as printed by "du -a .") have no parent and
// yield the empty string.
func Parent(p string) string {
	i := strings.LastIndexByte(p, '/')
	switch {
	case i < 0:
		return ""
	case i == 0:
		return "/"
	default:
		return p[:i]
	}
}

// Build turns a flat list of du entries into a hierarchy rooted at root.
//
// Entries are grouped by [Parent]. A child whose path is itself the parent of
// other entries becomes a [*Folder] built recursively; its size is then the
// sum of its descendants and the directory total reported by du is ignored.
// Every other child becomes a [*File] carrying the reported size. The entry
// for root itself is skipped.
//
// Children keep the order in which they appear in entries, so the result is
// fully determined by the input.
//
// Build returns an INVALID_INPUT error for negative sizes and a NOT_FOUND
// error if no entry lives directly under root.
func Build(root string, entries []Entry) (*Folder, error) {
	byParent := make(map[string][]Entry)
	for _, e := range entries {
		if e.Size < 0 {
			return nil, errs.New(errs.ErrCodeInvalidInput, "entry %q has negative size %d", e.Path, e.Size)
		}
		if e.Path == root {
			continue
		}
		parent := Parent(e.Path)
		if parent == e.Path {
			continue
		}
		byParent[parent] = append(byParent[parent], e)
	}

	if len(byParent[root]) == 0 {
		return nil, errs.New(errs.ErrCodeNotFound, "no entries under root %q", root)
	}
	return buildFolder(root, byParent), nil
}

func buildFolder(path string, byParent map[string][]Entry) *Folder {
	entries := byParent[path]
	children := make([]Item, 0, len(entries))
	for _, e := range entries {
		if _, isDir := byParent[e.Path]; isDir {
			children = append(children, buildFolder(e.Path, byParent))
			continue
		}
		children = append(children, &File{name: e.Path, size: e.Size})
	}
	return NewFolder(path, children)
}
