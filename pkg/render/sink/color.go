package sink

import (
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/sizemap/pkg/core/treemap"
)

const (
	saturation    = 0.55
	baseLightness = 0.78
	depthStep     = 0.07
	minLightness  = 0.30
)

// boxColor returns the fill for b: hue from its top-level folder under root,
// lightness from its depth.
func boxColor(root string, b treemap.Box) colorful.Color {
	hue := float64(xxhash.Sum64String(topLevel(root, b.File.Name())) % 360)
	l := baseLightness - depthStep*float64(max(b.Depth-1, 0))
	return colorful.Hsl(hue, saturation, max(l, minLightness))
}

// topLevel returns the first path segment of name below root, or name itself
// when it does not live under root.
func topLevel(root, name string) string {
	rel, ok := strings.CutPrefix(name, root)
	if !ok {
		return name
	}
	rel = strings.TrimPrefix(rel, "/")
	if i := strings.IndexByte(rel, '/'); i >= 0 {
		rel = rel[:i]
	}
	if rel == "" {
		return name
	}
	return rel
}
