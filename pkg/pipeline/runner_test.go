package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/sizemap/pkg/cache"
	"github.com/matzehuels/sizemap/pkg/core/treemap"
	errs "github.com/matzehuels/sizemap/pkg/errors"
	"github.com/matzehuels/sizemap/pkg/observability"
)

const sample = "300\t/a\n600\t/b/c\n400\t/b/d\n1000\t/b\n1300\t/\n"

// memCache is an in-memory cache that counts hits.
type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
	hits int
}

func newMemCache() *memCache { return &memCache{data: map[string][]byte{}} }

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.data[key]
	if ok {
		c.hits++
	}
	return d, ok, nil
}

func (c *memCache) Set(_ context.Context, key string, data []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = data
	return nil
}

func (c *memCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *memCache) Close() error { return nil }

func TestExecute(t *testing.T) {
	r := NewRunner(nil, nil, nil)

	res, err := r.Execute(context.Background(), []byte(sample), Options{
		Width:   400,
		Height:  100,
		Formats: []string{FormatHTML, FormatJSON, FormatSVG, FormatPNG},
	})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}

	if res.Root != "/" || res.Layout.Total != 1300 {
		t.Errorf("root %q total %d", res.Root, res.Layout.Total)
	}
	if res.Stats.Entries != 5 || res.Stats.Files != 3 || res.Stats.Depth != 2 || res.Stats.Boxes != 3 || res.Stats.TotalBytes != 1300 {
		t.Errorf("stats = %+v", res.Stats)
	}
	if len(res.Artifacts) != 4 {
		t.Fatalf("got %d artifacts, want 4", len(res.Artifacts))
	}
	for format, data := range res.Artifacts {
		if len(data) == 0 {
			t.Errorf("%s artifact is empty", format)
		}
	}
	if !bytes.Contains(res.Artifacts[FormatHTML], []byte(`title="/b/c (size=600)"`)) {
		t.Error("html artifact is missing /b/c")
	}
	if !json.Valid(res.Artifacts[FormatJSON]) {
		t.Error("json artifact is not valid JSON")
	}
	if res.CacheInfo.LayoutHit || res.CacheInfo.RenderHit {
		t.Error("null cache should never hit")
	}
}

func TestExecuteCaching(t *testing.T) {
	ctx := context.Background()
	c := newMemCache()
	r := NewRunner(c, nil, nil)
	opts := Options{Formats: []string{FormatHTML}}

	first, err := r.Execute(ctx, []byte(sample), opts)
	if err != nil {
		t.Fatal(err)
	}
	if first.CacheInfo.LayoutHit || first.CacheInfo.RenderHit {
		t.Error("first run should miss")
	}

	second, err := r.Execute(ctx, []byte(sample), opts)
	if err != nil {
		t.Fatal(err)
	}
	if !second.CacheInfo.LayoutHit || !second.CacheInfo.RenderHit {
		t.Errorf("second run cache info = %+v, want hits", second.CacheInfo)
	}
	if !bytes.Equal(first.Artifacts[FormatHTML], second.Artifacts[FormatHTML]) {
		t.Error("cached artifact differs")
	}
	if len(second.Layout.Boxes) != len(first.Layout.Boxes) || second.Layout.Boxes[0].File.Name() != first.Layout.Boxes[0].File.Name() {
		t.Error("cached layout differs")
	}
	if second.Stats.Entries != 0 || second.Stats.Boxes != len(first.Layout.Boxes) {
		t.Errorf("cached stats = %+v", second.Stats)
	}

	// A new format renders only what is missing.
	opts.Formats = []string{FormatHTML, FormatSVG}
	hits := c.hits
	third, err := r.Execute(ctx, []byte(sample), opts)
	if err != nil {
		t.Fatal(err)
	}
	if third.CacheInfo.RenderHit {
		t.Error("svg was never rendered, render should not be a full hit")
	}
	if c.hits-hits != 2 {
		t.Errorf("expected layout and html hits, got %d", c.hits-hits)
	}

	// A different frame is a different layout.
	opts.Width = 1000
	fourth, err := r.Execute(ctx, []byte(sample), opts)
	if err != nil {
		t.Fatal(err)
	}
	if fourth.CacheInfo.LayoutHit {
		t.Error("different width should miss the layout cache")
	}

	// Refresh skips reads.
	opts.Refresh = true
	fifth, err := r.Execute(ctx, []byte(sample), opts)
	if err != nil {
		t.Fatal(err)
	}
	if fifth.CacheInfo.LayoutHit || fifth.CacheInfo.RenderHit {
		t.Error("refresh should not read the cache")
	}
}

func TestLayoutThenRender(t *testing.T) {
	ctx := context.Background()
	r := NewRunner(newMemCache(), nil, nil)
	opts := Options{Width: 200, Height: 100, Formats: []string{FormatSVG}}

	l, err := r.Layout(ctx, []byte(sample), opts)
	if err != nil {
		t.Fatalf("Layout() error: %v", err)
	}
	if len(l.Boxes) != 3 || l.Width != 200 {
		t.Fatalf("layout = %+v", l)
	}

	artifacts, err := r.Render(ctx, l, opts)
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if !strings.HasPrefix(string(artifacts[FormatSVG]), "<svg") {
		t.Errorf("svg artifact starts with %.20q", artifacts[FormatSVG])
	}
}

func TestExecuteErrors(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	ctx := context.Background()

	tests := []struct {
		name  string
		input string
		opts  Options
		code  errs.Code
	}{
		{"malformed", "12 /a\n", Options{}, errs.ErrCodeInvalidInput},
		{"missing root", sample, Options{Root: "/srv"}, errs.ErrCodeNotFound},
		{"empty input", "", Options{}, errs.ErrCodeNotFound},
		{"bad format", sample, Options{Formats: []string{"pdf"}}, errs.ErrCodeInvalidFormat},
		{"zero width", sample, Options{Width: -5}, errs.ErrCodeInvalidDimensions},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Execute(ctx, []byte(tt.input), tt.opts)
			if !errs.Is(err, tt.code) {
				t.Errorf("Execute() error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestExecuteSubtree(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	res, err := r.Execute(context.Background(), []byte(sample), Options{Root: "/b", Width: 100, Height: 100, Formats: []string{FormatJSON}})
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if res.Layout.Total != 1000 || len(res.Layout.Boxes) != 2 {
		t.Errorf("layout of /b = total %d, %d boxes", res.Layout.Total, len(res.Layout.Boxes))
	}
	if res.Layout.Boxes[0].Position != (treemap.Position{X: 0, Y: 0, Width: 100, Height: 60, Depth: 1}) {
		t.Errorf("/b/c = %+v", res.Layout.Boxes[0].Position)
	}
}

func TestRenderCancelled(t *testing.T) {
	l, err := ComputeLayout(mustParse(t, sample), Options{})
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Render(ctx, l, Options{Formats: []string{FormatSVG, FormatJSON}}); err == nil {
		t.Error("Render with a cancelled context should fail")
	}
}

func TestRenderFormatUnsupported(t *testing.T) {
	_, err := RenderFormat(treemap.Layout{Width: 1, Height: 1}, "gif", Options{})
	if !errs.Is(err, errs.ErrCodeUnsupported) {
		t.Errorf("RenderFormat(gif) error = %v, want UNSUPPORTED", err)
	}
}

func TestRenderMinifiedTitle(t *testing.T) {
	l, err := ComputeLayout(mustParse(t, sample), Options{})
	if err != nil {
		t.Fatal(err)
	}
	out, err := RenderFormat(l, FormatHTML, Options{Title: "disk usage", Minify: true})
	if err != nil {
		t.Fatalf("RenderFormat() error: %v", err)
	}
	if !strings.Contains(string(out), "disk usage") {
		t.Error("title missing from page")
	}
}

type countingHooks struct {
	observability.NoopPipelineHooks
	mu      sync.Mutex
	parses  int
	layouts int
	renders int
}

func (h *countingHooks) OnParseComplete(context.Context, int, time.Duration, error) {
	h.mu.Lock()
	h.parses++
	h.mu.Unlock()
}

func (h *countingHooks) OnLayoutComplete(context.Context, int, time.Duration, error) {
	h.mu.Lock()
	h.layouts++
	h.mu.Unlock()
}

func (h *countingHooks) OnRenderComplete(context.Context, []string, time.Duration, error) {
	h.mu.Lock()
	h.renders++
	h.mu.Unlock()
}

func TestExecuteHooks(t *testing.T) {
	observability.Reset()
	defer observability.Reset()

	h := &countingHooks{}
	observability.SetPipelineHooks(h)

	r := NewRunner(cache.NewNullCache(), nil, nil)
	if _, err := r.Execute(context.Background(), []byte(sample), Options{}); err != nil {
		t.Fatal(err)
	}
	if h.parses != 1 || h.layouts != 1 || h.renders != 1 {
		t.Errorf("hooks fired parse=%d layout=%d render=%d, want 1 each", h.parses, h.layouts, h.renders)
	}
}
