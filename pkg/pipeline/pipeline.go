// Package pipeline provides the complete du → treemap → artifact pipeline.
//
// This package implements the parse → layout → render flow shared by the
// CLI and the HTTP server, so both produce identical output for identical
// input and share one caching strategy.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Parse: read du output into entries and build the folder hierarchy
//  2. Layout: compute the slice-and-dice treemap in the requested frame
//  3. Render: produce artifacts in one or more formats (HTML, SVG, JSON, PNG)
//
// Layouts are cached by the hash of the input plus the layout options;
// artifacts by the hash of the layout plus the format options. Formats are
// rendered concurrently.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, duOutput, pipeline.Options{
//	    Width:   1024,
//	    Height:  768,
//	    Formats: []string{"html", "svg"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	page := result.Artifacts["html"]
//
// Run individual stages:
//
//	l, err := pipeline.ComputeLayout(entries, opts)
//	artifacts, err := pipeline.Render(ctx, l, opts)
package pipeline

import (
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/sizemap/pkg/cache"
	"github.com/matzehuels/sizemap/pkg/core/treemap"
	errs "github.com/matzehuels/sizemap/pkg/errors"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Server
// =============================================================================

const (
	// DefaultWidth is the default frame width in pixels.
	DefaultWidth = 800

	// DefaultHeight is the default frame height in pixels.
	DefaultHeight = 600

	// DefaultRoot is the default hierarchy root.
	DefaultRoot = "/"

	// DefaultScale is the default PNG scale factor.
	DefaultScale = 2.0

	// DefaultTTL is how long layouts and artifacts stay cached.
	DefaultTTL = 24 * time.Hour
)

// Format constants for output formats.
const (
	FormatHTML = "html"
	FormatSVG  = "svg"
	FormatJSON = "json"
	FormatPNG  = "png"
)

// ValidFormats is the set of supported output formats, in display order.
var ValidFormats = []string{FormatHTML, FormatSVG, FormatJSON, FormatPNG}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline.
type Options struct {
	// Layout options
	Root     string `json:"root,omitempty"`
	Width    int    `json:"width,omitempty"`
	Height   int    `json:"height,omitempty"`
	MaxDepth int    `json:"max_depth,omitempty"` // 0 = unlimited

	// Render options
	Formats []string `json:"formats,omitempty"`
	Minify  bool     `json:"minify,omitempty"` // HTML only
	Scale   float64  `json:"scale,omitempty"`  // PNG only
	Title   string   `json:"title,omitempty"`  // HTML page title; defaults to Root

	// Refresh bypasses cache reads; results are still written.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	TTL    time.Duration `json:"-"`
	Logger *log.Logger   `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Root is the path the hierarchy was built at.
	Root string

	// Layout is the computed treemap.
	Layout treemap.Layout

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Entries    int   // du entries parsed; 0 when the layout came from cache
	Files      int   // files in the hierarchy; 0 when the layout came from cache
	Depth      int   // deepest folder nesting; 0 when the layout came from cache
	Boxes      int   // boxes in the layout
	TotalBytes int64 // size of the root folder
	ParseTime  time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // Whether the layout came from cache (parse was skipped)
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !slices.Contains(ValidFormats, format) {
		return errs.New(errs.ErrCodeInvalidFormat, "invalid format: %q (must be one of: %s)", format, strings.Join(ValidFormats, ", "))
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ContentType returns the MIME type of a format.
func ContentType(format string) string {
	switch format {
	case FormatHTML:
		return "text/html; charset=utf-8"
	case FormatSVG:
		return "image/svg+xml"
	case FormatJSON:
		return "application/json"
	case FormatPNG:
		return "image/png"
	default:
		return "application/octet-stream"
	}
}

// ParseFormats splits a comma-separated format list, trimming blanks.
func ParseFormats(s string) []string {
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(strings.ToLower(f)); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// =============================================================================
// Options Methods
// =============================================================================

// SetDefaults fills in every unset option.
func (o *Options) SetDefaults() {
	if o.Root == "" {
		o.Root = DefaultRoot
	}
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatHTML}
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Title == "" {
		o.Title = o.Root
	}
	if o.TTL == 0 {
		o.TTL = DefaultTTL
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Validate checks options after defaults have been applied.
func (o *Options) Validate() error {
	if err := errs.ValidateRoot(o.Root); err != nil {
		return err
	}
	if err := errs.ValidateDimensions(o.Width, o.Height); err != nil {
		return err
	}
	if o.MaxDepth < 0 {
		return errs.New(errs.ErrCodeInvalidArgument, "max depth must be >= 0, got %d", o.MaxDepth)
	}
	if o.Scale <= 0 || o.Scale > 8 {
		return errs.New(errs.ErrCodeInvalidArgument, "png scale must be in (0, 8], got %v", o.Scale)
	}
	return ValidateFormats(o.Formats)
}

// ValidateAndSetDefaults applies defaults and validates. It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	o.SetDefaults()
	return o.Validate()
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Root:     o.Root,
		Width:    o.Width,
		Height:   o.Height,
		MaxDepth: o.MaxDepth,
	}
}

// ArtifactKeyOpts returns cache key options for one format. Options that do
// not affect the format are left out so they do not split the cache.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{Format: format}
	switch format {
	case FormatHTML:
		k.Minify = o.Minify
		k.Title = o.Title
	case FormatPNG:
		k.Scale = o.Scale
	}
	return k
}
