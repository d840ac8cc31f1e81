// Package sink renders a computed [treemap.Layout] into output formats.
//
// # Overview
//
// A "sink" consumes the boxes of a layout and produces bytes:
//
//   - HTML: a standalone page with one absolutely positioned div per file
//   - SVG: one rect per file with a tooltip
//   - JSON: box coordinates for external tools
//   - PNG: a raster image drawn with fogleman/gg
//
// Every renderer takes the layout plus functional options and never modifies
// the layout, so one layout can be rendered into several formats
// concurrently.
//
// # HTML Output
//
// [RenderHTML] writes a page whose viewer is exactly the layout's frame.
// Each box carries its path and comma-grouped byte size in the title
// attribute and its folder depth in data-depth:
//
//	page, err := sink.RenderHTML(l, sink.WithTitle("/home"), sink.WithMinify())
//
// # Colours
//
// SVG and PNG share one palette: the hue identifies the top-level folder a
// file belongs to (hashed, so it is stable across runs) and the lightness
// darkens with depth.
//
//	svg := sink.RenderSVG(l)
//	png, err := sink.RenderPNG(l, sink.WithScale(2))
package sink
