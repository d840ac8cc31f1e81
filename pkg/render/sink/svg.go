package sink

import (
	"bytes"
	"fmt"
	"html"

	"github.com/dustin/go-humanize"

	"github.com/matzehuels/sizemap/pkg/core/treemap"
)

const svgStyle = `
    rect.file { stroke: #fff; stroke-width: 0.5; }
    rect.file:hover { stroke: #000; stroke-width: 1.5; }`

// SVGOption configures SVG rendering via [RenderSVG].
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	background string
}

// WithBackground fills the frame behind the boxes, which is visible wherever
// files were too small to get a box. Any SVG paint value is accepted.
func WithBackground(fill string) SVGOption {
	return func(r *svgRenderer) { r.background = fill }
}

// RenderSVG renders the layout as an SVG document with one rect per box.
func RenderSVG(l treemap.Layout, opts ...SVGOption) []byte {
	r := svgRenderer{}
	for _, opt := range opts {
		opt(&r)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" width="%d" height="%d">`+"\n",
		l.Width, l.Height, l.Width, l.Height)
	fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", svgStyle)
	if r.background != "" {
		fmt.Fprintf(&buf, `  <rect width="%d" height="%d" fill="%s"/>`+"\n", l.Width, l.Height, html.EscapeString(r.background))
	}
	for _, b := range l.Boxes {
		fmt.Fprintf(&buf, `  <rect class="file" x="%d" y="%d" width="%d" height="%d" fill="%s" data-depth="%d">`,
			b.X, b.Y, b.Width, b.Height, boxColor(l.Root, b).Hex(), b.Depth)
		fmt.Fprintf(&buf, "<title>%s (%s)</title></rect>\n",
			html.EscapeString(b.File.Name()), humanize.Bytes(uint64(b.File.Size())))
	}
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}
