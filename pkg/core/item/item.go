package item

import (
	"encoding/json"

	errs "github.com/matzehuels/sizemap/pkg/errors"
)

// Item is a node of a disk-usage hierarchy: either a [*File] or a [*Folder].
//
// The set of implementations is closed; code that handles items switches on
// the concrete type and treats any other type as a programming error.
type Item interface {
	// Name returns the item's path as reported by du.
	Name() string
	// Size returns the item's size in bytes. For folders this is the sum
	// of all descendant file sizes.
	Size() int64

	sealed()
}

// File is a leaf of the hierarchy with a byte size taken from the input.
type File struct {
	name string
	size int64
}

// NewFile creates a file item. Negative sizes are rejected.
func NewFile(name string, size int64) (*File, error) {
	if size < 0 {
		return nil, errs.New(errs.ErrCodeInvalidArgument, "file %q has negative size %d", name, size)
	}
	return &File{name: name, size: size}, nil
}

// MustFile is like [NewFile] but panics on a negative size.
// It is intended for tests and literals.
func MustFile(name string, size int64) *File {
	f, err := NewFile(name, size)
	if err != nil {
		panic(err)
	}
	return f
}

func (f *File) Name() string { return f.name }
func (f *File) Size() int64  { return f.size }
func (*File) sealed()        {}

// Folder is an inner node of the hierarchy. It exclusively owns its children
// and caches their total size at construction; folders are never mutated
// afterwards, so the cached size always equals the live sum.
type Folder struct {
	name     string
	children []Item
	size     int64
}

// NewFolder creates a folder over a copy of children.
func NewFolder(name string, children []Item) *Folder {
	kids := make([]Item, len(children))
	copy(kids, children)

	var size int64
	for _, c := range kids {
		size += c.Size()
	}
	return &Folder{name: name, children: kids, size: size}
}

func (f *Folder) Name() string { return f.name }
func (f *Folder) Size() int64  { return f.size }
func (*Folder) sealed()        {}

// Children returns a copy of the folder's children in their original order.
func (f *Folder) Children() []Item {
	out := make([]Item, len(f.children))
	copy(out, f.children)
	return out
}

// Len returns the number of direct children.
func (f *Folder) Len() int { return len(f.children) }

type fileJSON struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
}

// MarshalJSON encodes the file as {"name": ..., "size": ...}.
func (f *File) MarshalJSON() ([]byte, error) {
	return json.Marshal(fileJSON{Name: f.name, Size: f.size})
}

// UnmarshalJSON decodes the form written by MarshalJSON.
func (f *File) UnmarshalJSON(data []byte) error {
	var v fileJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if v.Size < 0 {
		return errs.New(errs.ErrCodeInvalidInput, "file %q has negative size %d", v.Name, v.Size)
	}
	f.name, f.size = v.Name, v.Size
	return nil
}
