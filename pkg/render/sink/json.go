package sink

import (
	"encoding/json"

	"github.com/matzehuels/sizemap/pkg/core/treemap"
)

// JSONOption configures JSON rendering via [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	compact bool
}

// WithCompact drops indentation from the output.
func WithCompact() JSONOption { return func(r *jsonRenderer) { r.compact = true } }

type jsonOutput struct {
	Width  int       `json:"width"`
	Height int       `json:"height"`
	Root   string    `json:"root"`
	Total  int64     `json:"total"`
	Boxes  []jsonBox `json:"boxes"`
}

type jsonBox struct {
	Name   string `json:"name"`
	Size   int64  `json:"size"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Depth  int    `json:"depth"`
}

// RenderJSON exports the boxes of the layout in emission order. The result
// is flat: nesting is recoverable from the paths and depths.
func RenderJSON(l treemap.Layout, opts ...JSONOption) ([]byte, error) {
	r := jsonRenderer{}
	for _, opt := range opts {
		opt(&r)
	}

	out := jsonOutput{
		Width:  l.Width,
		Height: l.Height,
		Root:   l.Root,
		Total:  l.Total,
		Boxes:  make([]jsonBox, 0, len(l.Boxes)),
	}
	for _, b := range l.Boxes {
		out.Boxes = append(out.Boxes, jsonBox{
			Name:   b.File.Name(),
			Size:   b.File.Size(),
			X:      b.X,
			Y:      b.Y,
			Width:  b.Width,
			Height: b.Height,
			Depth:  b.Depth,
		})
	}

	if r.compact {
		return json.Marshal(out)
	}
	return json.MarshalIndent(out, "", "  ")
}
