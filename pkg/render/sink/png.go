package sink

import (
	"bytes"
	"fmt"

	"github.com/fogleman/gg"

	"github.com/matzehuels/sizemap/pkg/core/treemap"
)

// PNGOption configures PNG rendering.
type PNGOption func(*pngRenderer)

type pngRenderer struct {
	scale float64
}

// WithScale sets the PNG scale factor (default 2.0 for 2x resolution).
func WithScale(s float64) PNGOption {
	return func(r *pngRenderer) { r.scale = s }
}

// RenderPNG rasterises the layout. Uncovered pixels stay white.
func RenderPNG(l treemap.Layout, opts ...PNGOption) ([]byte, error) {
	r := pngRenderer{scale: 2.0}
	for _, opt := range opts {
		opt(&r)
	}
	if r.scale <= 0 {
		return nil, fmt.Errorf("invalid png scale %v", r.scale)
	}

	w := int(float64(l.Width) * r.scale)
	h := int(float64(l.Height) * r.scale)
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("png frame %dx%d has no pixels", w, h)
	}

	dc := gg.NewContext(w, h)
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	dc.Scale(r.scale, r.scale)

	dc.SetLineWidth(0.5)
	for _, b := range l.Boxes {
		dc.DrawRectangle(float64(b.X), float64(b.Y), float64(b.Width), float64(b.Height))
		dc.SetColor(boxColor(l.Root, b))
		dc.FillPreserve()
		dc.SetRGB(1, 1, 1)
		dc.Stroke()
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
