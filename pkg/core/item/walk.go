package item

// WalkFunc is called for every item visited by [Walk] together with its
// folder nesting depth (the starting item has depth 0). Returning false
// stops the descent into a folder's children.
type WalkFunc func(it Item, depth int) bool

// Walk visits it and its descendants depth-first in child order.
func Walk(it Item, fn WalkFunc) {
	walk(it, 0, fn)
}

func walk(it Item, depth int, fn WalkFunc) {
	if !fn(it, depth) {
		return
	}
	if f, ok := it.(*Folder); ok {
		for _, c := range f.children {
			walk(c, depth+1, fn)
		}
	}
}

// CountFiles returns the number of files below it (1 if it is a file).
func CountFiles(it Item) int {
	n := 0
	Walk(it, func(it Item, _ int) bool {
		if _, ok := it.(*File); ok {
			n++
		}
		return true
	})
	return n
}

// Depth returns the deepest folder nesting level below it.
func Depth(it Item) int {
	deepest := 0
	Walk(it, func(_ Item, d int) bool {
		if d > deepest {
			deepest = d
		}
		return true
	})
	return deepest
}

// Find returns the item whose name equals path, searching below it.
func Find(it Item, path string) (Item, bool) {
	var found Item
	Walk(it, func(c Item, _ int) bool {
		if found != nil {
			return false
		}
		if c.Name() == path {
			found = c
			return false
		}
		return true
	})
	return found, found != nil
}
