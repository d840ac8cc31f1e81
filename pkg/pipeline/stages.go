package pipeline

import (
	"bytes"
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/sizemap/pkg/core/item"
	"github.com/matzehuels/sizemap/pkg/core/treemap"
	"github.com/matzehuels/sizemap/pkg/du"
	errs "github.com/matzehuels/sizemap/pkg/errors"
	"github.com/matzehuels/sizemap/pkg/render/sink"
)

// Parse reads du output.
func Parse(input []byte) ([]item.Entry, error) {
	return du.Parse(bytes.NewReader(input))
}

// BuildTree builds the hierarchy below opts.Root.
func BuildTree(entries []item.Entry, opts Options) (*item.Folder, error) {
	opts.SetDefaults()
	root, err := item.Build(opts.Root, entries)
	if err != nil {
		if errs.Is(err, errs.ErrCodeNotFound) {
			return nil, errs.Wrap(errs.ErrCodeNotFound, err, "root %q does not appear in the input; pass the directory du was run on", opts.Root)
		}
		return nil, err
	}
	return root, nil
}

// ComputeLayout builds the hierarchy and lays it out in the frame.
func ComputeLayout(entries []item.Entry, opts Options) (treemap.Layout, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return treemap.Layout{}, err
	}
	root, err := BuildTree(entries, opts)
	if err != nil {
		return treemap.Layout{}, err
	}
	return treemap.Build(root, opts.Width, opts.Height, treemap.WithMaxDepth(opts.MaxDepth))
}

// RenderFormat renders a single format.
func RenderFormat(l treemap.Layout, format string, opts Options) ([]byte, error) {
	opts.SetDefaults()
	switch format {
	case FormatHTML:
		htmlOpts := []sink.HTMLOption{sink.WithTitle(opts.Title)}
		if opts.Minify {
			htmlOpts = append(htmlOpts, sink.WithMinify())
		}
		return sink.RenderHTML(l, htmlOpts...)
	case FormatSVG:
		return sink.RenderSVG(l), nil
	case FormatJSON:
		return sink.RenderJSON(l)
	case FormatPNG:
		return sink.RenderPNG(l, sink.WithScale(opts.Scale))
	default:
		return nil, errs.New(errs.ErrCodeUnsupported, "unsupported format: %s", format)
	}
}

// Render renders every format in opts.Formats concurrently.
func Render(ctx context.Context, l treemap.Layout, opts Options) (map[string][]byte, error) {
	return renderFormats(ctx, l, opts.Formats, opts)
}

func renderFormats(ctx context.Context, l treemap.Layout, formats []string, opts Options) (map[string][]byte, error) {
	out := make([][]byte, len(formats))

	g, ctx := errgroup.WithContext(ctx)
	for i, format := range formats {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := RenderFormat(l, format, opts)
			if err != nil {
				return fmt.Errorf("render %s: %w", format, err)
			}
			out[i] = data
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	artifacts := make(map[string][]byte, len(formats))
	for i, format := range formats {
		artifacts[format] = out[i]
	}
	return artifacts, nil
}
