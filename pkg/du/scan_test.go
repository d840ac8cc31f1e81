package du

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/sizemap/pkg/core/item"
	errs "github.com/matzehuels/sizemap/pkg/errors"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestScan(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a"), "abc")
	writeFile(t, filepath.Join(dir, "sub", "b"), "hello")
	writeFile(t, filepath.Join(dir, "sub", "c"), "hi")
	if err := os.Mkdir(filepath.Join(dir, "zempty"), 0o755); err != nil {
		t.Fatal(err)
	}

	got, err := Scan(context.Background(), dir)
	if err != nil {
		t.Fatalf("Scan() error: %v", err)
	}

	root := filepath.ToSlash(dir)
	want := []item.Entry{
		{Path: root, Size: 10},
		{Path: root + "/a", Size: 3},
		{Path: root + "/sub", Size: 7},
		{Path: root + "/sub/b", Size: 5},
		{Path: root + "/sub/c", Size: 2},
		{Path: root + "/zempty", Size: 0},
	}
	if len(got) != len(want) {
		t.Fatalf("Scan() = %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entry %d = %+v, want %+v", i, got[i], want[i])
		}
	}

	tree, err := item.Build(root, got)
	if err != nil {
		t.Fatalf("Build(Scan()) error: %v", err)
	}
	if tree.Size() != 10 || tree.Len() != 3 {
		t.Errorf("tree size %d with %d children, want 10 with 3", tree.Size(), tree.Len())
	}
}

func TestScanErrors(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "plain")
	writeFile(t, file, "x")

	if _, err := Scan(context.Background(), filepath.Join(dir, "nope")); !errs.Is(err, errs.ErrCodeFileNotFound) {
		t.Errorf("Scan(missing) error = %v, want FILE_NOT_FOUND", err)
	}
	if _, err := Scan(context.Background(), file); !errs.Is(err, errs.ErrCodeInvalidPath) {
		t.Errorf("Scan(file) error = %v, want INVALID_PATH", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Scan(ctx, dir); !errors.Is(err, context.Canceled) {
		t.Errorf("Scan(cancelled) error = %v, want context.Canceled", err)
	}
}

func TestWithin(t *testing.T) {
	tests := []struct {
		p, dir string
		want   bool
	}{
		{"/a/b", "/a", true},
		{"/ab", "/a", false},
		{"/a", "/a", false},
		{"/x", "/", true},
		{"/", "/", false},
	}
	for _, tt := range tests {
		if got := within(tt.p, tt.dir); got != tt.want {
			t.Errorf("within(%q, %q) = %v, want %v", tt.p, tt.dir, got, tt.want)
		}
	}
}
