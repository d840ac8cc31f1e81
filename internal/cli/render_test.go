package cli

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"

	errs "github.com/matzehuels/sizemap/pkg/errors"
)

type jsonLayout struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Root   string `json:"root"`
	Boxes  []struct {
		Name  string `json:"name"`
		X     int    `json:"x"`
		Width int    `json:"width"`
		Depth int    `json:"depth"`
	} `json:"boxes"`
}

func decodeLayout(t *testing.T, data string) jsonLayout {
	t.Helper()
	var l jsonLayout
	if err := json.Unmarshal([]byte(data), &l); err != nil {
		t.Fatalf("decode layout %q: %v", data, err)
	}
	return l
}

func TestRenderToStdout(t *testing.T) {
	out, err := execute(t, "300\t/a\n100\t/b\n400\t/\n", "render", "-", "-f", "json", "--width", "400", "--height", "100", "--no-cache")
	if err != nil {
		t.Fatalf("render error: %v", err)
	}

	l := decodeLayout(t, out)
	if l.Width != 400 || l.Height != 100 || len(l.Boxes) != 2 {
		t.Fatalf("layout = %+v", l)
	}
	if l.Boxes[0].Name != "/a" || l.Boxes[0].Width != 300 || l.Boxes[1].X != 300 {
		t.Errorf("boxes = %+v", l.Boxes)
	}
}

func TestRenderPositionalDimensions(t *testing.T) {
	out, err := execute(t, sampleDu, "render", "-", "640", "480", "-f", "json")
	if err != nil {
		t.Fatalf("render error: %v", err)
	}
	if l := decodeLayout(t, out); l.Width != 640 || l.Height != 480 {
		t.Errorf("frame = %dx%d, want 640x480", l.Width, l.Height)
	}
}

func TestRenderDefaultHTML(t *testing.T) {
	out, err := execute(t, sampleDu, "render", "-")
	if err != nil {
		t.Fatalf("render error: %v", err)
	}
	if !strings.Contains(out, "<html") || strings.Count(out, `class="file-block"`) != 3 {
		t.Errorf("html output unexpected:\n%s", out)
	}
}

func TestRenderMultipleFormats(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "home.du")
	if err := os.WriteFile(input, []byte(sampleDu), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := execute(t, "", "render", input, "-f", "svg,json"); err != nil {
		t.Fatalf("render error: %v", err)
	}
	for _, name := range []string{"home.svg", "home.json"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("%s not written: %v", name, err)
		}
	}

	base := filepath.Join(dir, "out", "map.svg")
	if _, err := execute(t, "", "render", input, "-f", "svg,png", "-o", base); err != nil {
		t.Fatalf("render -o error: %v", err)
	}
	for _, name := range []string{"map.svg", "map.png"} {
		if _, err := os.Stat(filepath.Join(dir, "out", name)); err != nil {
			t.Errorf("out/%s not written: %v", name, err)
		}
	}
}

func TestRenderUsesConfig(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(cfg, []byte("[render]\nwidth = 200\nheight = 50\nformats = [\"json\"]\n\n[cache]\nbackend = \"none\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, sampleDu, "--config", cfg, "render", "-")
	if err != nil {
		t.Fatalf("render error: %v", err)
	}
	if l := decodeLayout(t, out); l.Width != 200 || l.Height != 50 {
		t.Errorf("frame = %dx%d, want config 200x50", l.Width, l.Height)
	}

	out, err = execute(t, sampleDu, "--config", cfg, "render", "-", "--width", "300")
	if err != nil {
		t.Fatalf("render error: %v", err)
	}
	if l := decodeLayout(t, out); l.Width != 300 || l.Height != 50 {
		t.Errorf("frame = %dx%d, want flag width over config", l.Width, l.Height)
	}
}

func TestRenderSubtree(t *testing.T) {
	out, err := execute(t, sampleDu, "render", "-", "-f", "json", "--root", "/b")
	if err != nil {
		t.Fatalf("render error: %v", err)
	}
	l := decodeLayout(t, out)
	if l.Root != "/b" || len(l.Boxes) != 2 {
		t.Errorf("layout = %+v", l)
	}
}

func TestRenderErrors(t *testing.T) {
	tests := []struct {
		name  string
		stdin string
		args  []string
		code  errs.Code
	}{
		{"missing file", "", []string{"render", "/does/not/exist.du"}, errs.ErrCodeFileNotFound},
		{"zero width", sampleDu, []string{"render", "-", "0", "100"}, errs.ErrCodeInvalidDimensions},
		{"bad positional", sampleDu, []string{"render", "-", "wide"}, errs.ErrCodeInvalidDimensions},
		{"bad format", sampleDu, []string{"render", "-", "-f", "gif"}, errs.ErrCodeInvalidFormat},
		{"malformed input", "oops\n", []string{"render", "-"}, errs.ErrCodeInvalidInput},
		{"unknown root", sampleDu, []string{"render", "-", "--root", "/x"}, errs.ErrCodeNotFound},
		{"several formats to stdout", sampleDu, []string{"render", "-", "-f", "svg,json", "-o", "-"}, errs.ErrCodeInvalidArgument},
		{"several formats from stdin", sampleDu, []string{"render", "-", "-f", "svg,json"}, errs.ErrCodeInvalidArgument},
		{"watch stdin", sampleDu, []string{"render", "-", "--watch"}, errs.ErrCodeInvalidArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.stdin, tt.args...)
			if !errs.Is(err, tt.code) {
				t.Errorf("error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestBasePath(t *testing.T) {
	tests := []struct {
		output, input, want string
	}{
		{"", "du.txt", "du"},
		{"", "/data/home.du", "/data/home"},
		{"out.svg", "du.txt", "out"},
		{"out.html", "du.txt", "out"},
		{"out.tar", "du.txt", "out.tar"},
		{"maps/home", "du.txt", "maps/home"},
	}
	for _, tt := range tests {
		if got := basePath(tt.output, tt.input); got != tt.want {
			t.Errorf("basePath(%q, %q) = %q, want %q", tt.output, tt.input, got, tt.want)
		}
	}
}

func TestOutputPaths(t *testing.T) {
	got, err := outputPaths("", "du.txt", []string{"html"})
	if err != nil || got["html"] != "" {
		t.Errorf("single format without -o = %v, %v; want stdout", got, err)
	}

	got, err = outputPaths("map.svg", "du.txt", []string{"svg"})
	if err != nil || got["svg"] != "map.svg" {
		t.Errorf("single format with -o = %v, %v", got, err)
	}

	got, err = outputPaths("", "du.txt", []string{"svg", "png"})
	if err != nil || got["svg"] != "du.svg" || got["png"] != "du.png" {
		t.Errorf("several formats = %v, %v", got, err)
	}
}

func TestRenderOptionsPrecedence(t *testing.T) {
	c := New(io.Discard, LogInfo)
	c.Config.Render.Width = 1000
	c.Config.Render.Height = 700
	c.Config.Render.Root = "/srv"

	var opts renderOpts
	flags := pflag.NewFlagSet("render", pflag.ContinueOnError)
	flags.IntVar(&opts.width, "width", 800, "")
	flags.IntVar(&opts.height, "height", 600, "")
	flags.StringVar(&opts.root, "root", "/", "")
	flags.StringVar(&opts.formats, "format", "", "")
	flags.IntVar(&opts.maxDepth, "max-depth", 0, "")
	flags.BoolVar(&opts.minify, "minify", false, "")
	opts.scale = 2
	if err := flags.Parse([]string{"--height", "500"}); err != nil {
		t.Fatal(err)
	}

	po, err := c.renderOptions(flags, &opts, nil)
	if err != nil {
		t.Fatal(err)
	}
	if po.Width != 1000 || po.Height != 500 || po.Root != "/srv" || po.Title != "/srv" {
		t.Errorf("options = %+v", po)
	}

	po, err = c.renderOptions(flags, &opts, []string{"320"})
	if err != nil {
		t.Fatal(err)
	}
	if po.Width != 320 || po.Height != 500 {
		t.Errorf("positional width: %dx%d, want 320x500", po.Width, po.Height)
	}
}
