package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/sizemap/pkg/cache"
	"github.com/matzehuels/sizemap/pkg/core/item"
	"github.com/matzehuels/sizemap/pkg/core/treemap"
	"github.com/matzehuels/sizemap/pkg/observability"
)

// Cache key types reported to observability hooks.
const (
	keyTypeLayout   = "layout"
	keyTypeArtifact = "artifact"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and server use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete parse → layout → render pipeline with caching.
// input is du output.
func (r *Runner) Execute(ctx context.Context, input []byte, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{Root: opts.Root}

	// Stages 1+2: Parse and layout
	l, stats, layoutHit, err := r.LayoutWithCacheInfo(ctx, input, opts)
	if err != nil {
		return nil, err
	}
	result.Layout = l
	result.Stats = stats
	result.CacheInfo.LayoutHit = layoutHit

	opts.Logger.Info("computed layout",
		"boxes", len(l.Boxes),
		"bytes", l.Total,
		"depth", stats.Depth,
		"cached", layoutHit,
		"duration", stats.ParseTime+stats.LayoutTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, l, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	opts.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// LayoutWithCacheInfo parses input and computes its layout, or loads the
// layout from cache. On a hit the parse stage is skipped entirely.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, input []byte, opts Options) (treemap.Layout, Stats, bool, error) {
	var stats Stats
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return treemap.Layout{}, stats, false, err
	}

	cacheKey := r.Keyer.LayoutKey(cache.Hash(input), opts.LayoutKeyOpts())

	if !opts.Refresh {
		if l, ok := r.cachedLayout(ctx, cacheKey); ok {
			stats.Boxes = len(l.Boxes)
			stats.TotalBytes = l.Total
			return l, stats, true, nil
		}
	}

	hooks := observability.Pipeline()

	// Parse
	parseStart := time.Now()
	hooks.OnParseStart(ctx, len(input))
	entries, err := Parse(input)
	stats.ParseTime = time.Since(parseStart)
	hooks.OnParseComplete(ctx, len(entries), stats.ParseTime, err)
	if err != nil {
		return treemap.Layout{}, stats, false, fmt.Errorf("parse: %w", err)
	}
	stats.Entries = len(entries)
	opts.Logger.Debug("parsed du output", "entries", len(entries), "duration", stats.ParseTime)

	if err := ctx.Err(); err != nil {
		return treemap.Layout{}, stats, false, err
	}

	// Layout
	layoutStart := time.Now()
	hooks.OnLayoutStart(ctx, opts.Root, opts.Width, opts.Height)
	l, root, err := layout(entries, opts)
	stats.LayoutTime = time.Since(layoutStart)
	hooks.OnLayoutComplete(ctx, len(l.Boxes), stats.LayoutTime, err)
	if err != nil {
		return treemap.Layout{}, stats, false, fmt.Errorf("layout: %w", err)
	}
	stats.Files = item.CountFiles(root)
	stats.Depth = item.Depth(root)
	stats.Boxes = len(l.Boxes)
	stats.TotalBytes = l.Total

	if data, err := json.Marshal(l); err == nil {
		r.store(ctx, keyTypeLayout, cacheKey, data, opts.TTL)
	}
	return l, stats, false, nil
}

// Layout is a convenience wrapper that calls LayoutWithCacheInfo and discards
// the cache hit info.
func (r *Runner) Layout(ctx context.Context, input []byte, opts Options) (treemap.Layout, error) {
	l, _, _, err := r.LayoutWithCacheInfo(ctx, input, opts)
	return l, err
}

// RenderWithCacheInfo renders artifacts with caching and reports whether all
// of them came from cache. Only the missing formats are rendered.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, l treemap.Layout, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}

	layoutData, err := json.Marshal(l)
	if err != nil {
		return nil, false, fmt.Errorf("serialize layout for cache key: %w", err)
	}
	layoutHash := cache.Hash(layoutData)

	hooks := observability.Pipeline()
	start := time.Now()
	hooks.OnRenderStart(ctx, opts.Formats)

	artifacts := make(map[string][]byte, len(opts.Formats))
	var missing []string
	for _, format := range opts.Formats {
		if _, done := artifacts[format]; done {
			continue
		}
		key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		if !opts.Refresh {
			if data, hit := r.lookup(ctx, keyTypeArtifact, key); hit {
				artifacts[format] = data
				continue
			}
		}
		artifacts[format] = nil
		missing = append(missing, format)
	}

	if len(missing) == 0 {
		hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), nil)
		return artifacts, true, nil
	}

	rendered, err := renderFormats(ctx, l, missing, opts)
	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		artifacts[format] = data
		r.store(ctx, keyTypeArtifact, r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format)), data, opts.TTL)
	}
	return artifacts, false, nil
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards
// the cache hit info.
func (r *Runner) Render(ctx context.Context, l treemap.Layout, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, l, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func layout(entries []item.Entry, opts Options) (treemap.Layout, *item.Folder, error) {
	root, err := BuildTree(entries, opts)
	if err != nil {
		return treemap.Layout{}, nil, err
	}
	l, err := treemap.Build(root, opts.Width, opts.Height, treemap.WithMaxDepth(opts.MaxDepth))
	if err != nil {
		return treemap.Layout{}, nil, err
	}
	return l, root, nil
}

func (r *Runner) cachedLayout(ctx context.Context, key string) (treemap.Layout, bool) {
	data, hit := r.lookup(ctx, keyTypeLayout, key)
	if !hit {
		return treemap.Layout{}, false
	}
	var l treemap.Layout
	if err := json.Unmarshal(data, &l); err != nil {
		r.Logger.Warn("discarding unreadable cached layout", "err", err)
		return treemap.Layout{}, false
	}
	return l, true
}

// lookup reads key and reports the outcome to the cache hooks. Cache errors
// count as misses.
func (r *Runner) lookup(ctx context.Context, keyType, key string) ([]byte, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "type", keyType, "err", err)
	}
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, keyType)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, keyType)
	return data, true
}

func (r *Runner) store(ctx context.Context, keyType, key string, data []byte, ttl time.Duration) {
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "type", keyType, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
