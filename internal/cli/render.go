package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	errs "github.com/matzehuels/sizemap/pkg/errors"
	"github.com/matzehuels/sizemap/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command. Values
// of flags the user did not set come from the config file.
type renderOpts struct {
	output   string // output file (single format), base path (several), or "-" for stdout
	formats  string // comma-separated output formats
	width    int
	height   int
	root     string
	maxDepth int
	minify   bool
	title    string
	scale    float64
	noCache  bool
	refresh  bool
	watch    bool
}

// renderCommand creates the render command.
//
// Width and height may also be given positionally after the input file,
// so "sizemap render du.txt 1024 768" works like the classic tool.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render <du-file> [width] [height]",
		Short: "Draw a du report as a treemap",
		Long: `Render reads the output of "du -ab" and draws it as a treemap.

With a single format and no --output the result is written to stdout.
With several formats, one file per format is written next to the input
(or next to --output), named after it.

Use "-" as the input file to read from stdin.`,
		Example: `  du -ab /home > du.txt && sizemap render du.txt > treemap.html
  sizemap render du.txt 1920 1080 -f svg,png -o out/home
  sizemap render du.txt --root /home/alice --watch -o alice.html`,
		Args: cobra.RangeArgs(1, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			po, err := c.renderOptions(cmd.Flags(), &opts, args[1:])
			if err != nil {
				return err
			}
			runner, err := c.newRunner(cmd.Context(), opts.noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			if opts.watch {
				if args[0] == "-" {
					return errs.New(errs.ErrCodeInvalidArgument, "--watch needs a file, not stdin")
				}
				return c.watchRender(cmd.Context(), runner, args[0], po, &opts, cmd.OutOrStdout())
			}
			return runRender(cmd.Context(), runner, args[0], po, &opts, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.output, "output", "o", "", `output file, or base path for several formats ("-" for stdout)`)
	f.StringVarP(&opts.formats, "format", "f", "", "output format(s): html (default), svg, json, png (comma-separated)")
	f.IntVar(&opts.width, "width", pipeline.DefaultWidth, "frame width in pixels")
	f.IntVar(&opts.height, "height", pipeline.DefaultHeight, "frame height in pixels")
	f.StringVar(&opts.root, "root", pipeline.DefaultRoot, "path du was run on")
	f.IntVar(&opts.maxDepth, "max-depth", 0, "collapse folders below this depth (0 = unlimited)")
	f.BoolVar(&opts.minify, "minify", false, "minify HTML output")
	f.StringVar(&opts.title, "title", "", "HTML page title (default: root path)")
	f.Float64Var(&opts.scale, "scale", pipeline.DefaultScale, "PNG scale factor")
	f.BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	f.BoolVar(&opts.refresh, "refresh", false, "ignore cached results but update the cache")
	f.BoolVarP(&opts.watch, "watch", "w", false, "re-render whenever the input file changes")

	return cmd
}

// renderOptions merges config defaults, set flags and positional
// dimensions, in increasing order of precedence.
func (c *CLI) renderOptions(flags *pflag.FlagSet, opts *renderOpts, dims []string) (pipeline.Options, error) {
	po := c.renderDefaults()

	if flags.Changed("format") {
		po.Formats = pipeline.ParseFormats(opts.formats)
	}
	if flags.Changed("width") {
		po.Width = opts.width
	}
	if flags.Changed("height") {
		po.Height = opts.height
	}
	if flags.Changed("root") {
		po.Root = opts.root
	}
	if flags.Changed("max-depth") {
		po.MaxDepth = opts.maxDepth
	}
	if flags.Changed("minify") {
		po.Minify = opts.minify
	}
	po.Title = opts.title
	po.Scale = opts.scale
	po.Refresh = opts.refresh

	for i, s := range dims {
		n, err := strconv.Atoi(s)
		if err != nil {
			return po, errs.New(errs.ErrCodeInvalidDimensions, "%q is not a valid %s", s, []string{"width", "height"}[i])
		}
		if i == 0 {
			po.Width = n
		} else {
			po.Height = n
		}
	}

	// Zero means "use the default" to the pipeline; an explicit zero on the
	// command line is a mistake.
	if po.Width <= 0 || po.Height <= 0 {
		return po, errs.ValidateDimensions(po.Width, po.Height)
	}
	if err := po.ValidateAndSetDefaults(); err != nil {
		return po, err
	}
	return po, nil
}

// runRender renders input once and writes every artifact.
func runRender(ctx context.Context, runner *pipeline.Runner, input string, po pipeline.Options, opts *renderOpts, stdin io.Reader, stdout io.Writer) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	data, err := readInput(input, stdin)
	if err != nil {
		return err
	}
	logger.Debugf("Read %s (%d bytes)", input, len(data))

	result, err := runner.Execute(ctx, data, po)
	if err != nil {
		return err
	}

	outputs, err := outputPaths(opts.output, input, po.Formats)
	if err != nil {
		return err
	}
	for _, format := range po.Formats {
		path := outputs[format]
		if path == "" {
			if _, err := stdout.Write(result.Artifacts[format]); err != nil {
				return err
			}
			continue
		}
		if err := writeFile(path, result.Artifacts[format]); err != nil {
			return err
		}
		printFile(path)
	}

	printStats(result.Stats.Boxes, result.Stats.TotalBytes, result.CacheInfo.LayoutHit && result.CacheInfo.RenderHit)
	prog.done(fmt.Sprintf("Rendered %s at %dx%d", po.Root, po.Width, po.Height))
	return nil
}

func readInput(input string, stdin io.Reader) ([]byte, error) {
	if input == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "read stdin")
		}
		return data, nil
	}
	data, err := os.ReadFile(input)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeFileNotFound, err, "read %s", input)
	}
	return data, nil
}

// outputPaths maps each format to the file it is written to. An empty path
// means stdout, which is only possible for a single format.
func outputPaths(output, input string, formats []string) (map[string]string, error) {
	paths := make(map[string]string, len(formats))

	if len(formats) == 1 {
		if output != "-" {
			paths[formats[0]] = output
		}
		return paths, nil
	}

	if output == "-" {
		return nil, errs.New(errs.ErrCodeInvalidArgument, "cannot write %d formats to stdout", len(formats))
	}
	if output == "" && input == "-" {
		return nil, errs.New(errs.ErrCodeInvalidArgument, "--output is required for several formats read from stdin")
	}
	base := basePath(output, input)
	for _, f := range formats {
		paths[f] = base + "." + f
	}
	return paths, nil
}

// basePath derives the base output path from the output and input file
// paths, stripping a known format extension.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if slices.Contains(pipeline.ValidFormats, strings.TrimPrefix(ext, ".")) {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// writeFile writes data to path, creating parent directories.
func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
