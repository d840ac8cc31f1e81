package treemap

import (
	"github.com/matzehuels/sizemap/pkg/core/item"
)

// Position is an axis-aligned rectangle in pixels plus the folder nesting
// depth of whatever is drawn in it. Positions are values: every layout step
// derives new ones from its parent and never changes an existing one.
type Position struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
	Depth  int `json:"depth"`
}

// Initial returns the position of the root item: the whole frame at depth 0.
func Initial(width, height int) Position {
	return Position{Width: width, Height: height}
}

// Empty reports whether the rectangle has no area.
func (p Position) Empty() bool { return p.Width == 0 || p.Height == 0 }

// Area returns Width*Height.
func (p Position) Area() int { return p.Width * p.Height }

// Right returns the x coordinate just past the rectangle.
func (p Position) Right() int { return p.X + p.Width }

// Bottom returns the y coordinate just past the rectangle.
func (p Position) Bottom() int { return p.Y + p.Height }

// Nested returns the same rectangle one folder level deeper.
func (p Position) Nested() Position {
	p.Depth++
	return p
}

// Box is a file placed at its final position.
type Box struct {
	File *item.File `json:"file"`
	Position
}

// Layout is the complete result of laying out a hierarchy in a frame.
type Layout struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Root   string `json:"root"`
	Total  int64  `json:"total"`
	Boxes  []Box  `json:"boxes"`
}
