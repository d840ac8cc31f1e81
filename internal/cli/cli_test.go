package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	errs "github.com/matzehuels/sizemap/pkg/errors"
)

const sampleDu = "300\t/a\n600\t/b/c\n400\t/b/d\n1000\t/b\n1300\t/\n"

// execute runs the root command with isolated config and cache dirs.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	c := New(io.Discard, LogInfo)
	root := c.RootCommand()

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)

	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := New(io.Discard, LogInfo).RootCommand()

	want := []string{"render", "scan", "partition", "browse", "serve", "cache", "config", "completion"}
	for _, name := range want {
		if cmd, _, err := root.Find([]string{name}); err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestConfigFlag(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sizemap.toml")
	if err := os.WriteFile(path, []byte("[render]\nwidth = 123\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, "", "--config", path, "config", "show")
	if err != nil {
		t.Fatalf("config show error: %v", err)
	}
	if !strings.Contains(out, "width = 123") {
		t.Errorf("config show = %q, want width = 123", out)
	}

	out, err = execute(t, "", "--config", path, "config", "path")
	if err != nil || strings.TrimSpace(out) != path {
		t.Errorf("config path = %q, %v; want %s", out, err, path)
	}
}

func TestConfigFlagErrors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.toml")
	if err := os.WriteFile(bad, []byte("[render]\nwidht = 5\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := execute(t, "", "--config", bad, "config", "show"); !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Errorf("unknown key error = %v, want INVALID_INPUT", err)
	}
	if _, err := execute(t, "", "--config", filepath.Join(dir, "missing.toml"), "config", "show"); err == nil {
		t.Error("missing explicit config should fail")
	}
}

func TestConfigDefaultPath(t *testing.T) {
	out, err := execute(t, "", "config", "path")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(strings.TrimSpace(out), filepath.Join("sizemap", "config.toml")) {
		t.Errorf("config path = %q", out)
	}
}

func TestCacheCommands(t *testing.T) {
	out, err := execute(t, "", "cache", "path")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(strings.TrimSpace(out), appName) {
		t.Errorf("cache path = %q, want suffix %q", out, appName)
	}

	if _, err := execute(t, "", "cache", "clear"); err != nil {
		t.Errorf("cache clear error: %v", err)
	}
}

func TestCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg-cache")
	dir, err := cacheDir()
	if err != nil {
		t.Fatal(err)
	}
	if dir != filepath.Join("/tmp/xdg-cache", appName) {
		t.Errorf("cacheDir() = %q", dir)
	}

	t.Setenv("XDG_CACHE_HOME", "")
	dir, err = cacheDir()
	if err != nil {
		t.Fatal(err)
	}
	home, _ := os.UserHomeDir()
	if dir != filepath.Join(home, ".cache", appName) {
		t.Errorf("cacheDir() = %q, want under %s/.cache", dir, home)
	}
}

func TestCompletion(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		out, err := execute(t, "", "completion", shell)
		if err != nil {
			t.Errorf("completion %s error: %v", shell, err)
			continue
		}
		if !strings.Contains(out, "sizemap") {
			t.Errorf("completion %s does not mention sizemap", shell)
		}
	}
	if _, err := execute(t, "", "completion", "tcsh"); err == nil {
		t.Error("completion tcsh should fail")
	}
}

func TestScanCommand(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "f.txt"), []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, "", "scan", dir)
	if err != nil {
		t.Fatalf("scan error: %v", err)
	}
	want := "5\t" + filepath.ToSlash(filepath.Join(dir, "f.txt"))
	if !strings.Contains(out, want) {
		t.Errorf("scan output %q does not contain %q", out, want)
	}

	if _, err := execute(t, "", "scan", filepath.Join(dir, "nope")); !errs.Is(err, errs.ErrCodeFileNotFound) {
		t.Errorf("scan missing dir error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestPartitionCommand(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"partition", "-"}, "(/b /a)"},
		{[]string{"partition", "-", "--folder", "/b"}, "(/b/c /b/d)"},
	}
	for _, tt := range tests {
		out, err := execute(t, sampleDu, tt.args...)
		if err != nil {
			t.Errorf("%v error: %v", tt.args, err)
			continue
		}
		if strings.TrimSpace(out) != tt.want {
			t.Errorf("%v = %q, want %q", tt.args, out, tt.want)
		}
	}
}

func TestPartitionCommandDOT(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tree.dot")
	if _, err := execute(t, sampleDu, "partition", "-", "-o", path); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "digraph") {
		t.Errorf("DOT output = %q", data)
	}
}

func TestPartitionCommandErrors(t *testing.T) {
	tests := []struct {
		folder string
		code   errs.Code
	}{
		{"/nope", errs.ErrCodeNotFound},
		{"/a", errs.ErrCodeInvalidPath},
	}
	for _, tt := range tests {
		_, err := execute(t, sampleDu, "partition", "-", "--folder", tt.folder)
		if !errs.Is(err, tt.code) {
			t.Errorf("--folder %s error = %v, want %s", tt.folder, err, tt.code)
		}
	}
}
