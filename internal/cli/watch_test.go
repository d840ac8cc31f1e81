package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/matzehuels/sizemap/pkg/pipeline"
)

func TestIsChange(t *testing.T) {
	const path = "/data/du.txt"
	tests := []struct {
		event fsnotify.Event
		want  bool
	}{
		{fsnotify.Event{Name: path, Op: fsnotify.Write}, true},
		{fsnotify.Event{Name: path, Op: fsnotify.Create}, true},
		{fsnotify.Event{Name: "/data/./du.txt", Op: fsnotify.Write}, true},
		{fsnotify.Event{Name: path, Op: fsnotify.Chmod}, false},
		{fsnotify.Event{Name: path, Op: fsnotify.Remove}, false},
		{fsnotify.Event{Name: "/data/other.txt", Op: fsnotify.Write}, false},
	}
	for _, tt := range tests {
		if got := isChange(tt.event, path); got != tt.want {
			t.Errorf("isChange(%v) = %v, want %v", tt.event, got, tt.want)
		}
	}
}

// lockedBuffer collects renders written by the watch loop.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestWatchRenderRerendersOnChange(t *testing.T) {
	captureUI(t)
	input := filepath.Join(t.TempDir(), "du.txt")
	if err := os.WriteFile(input, []byte("10\t/a\n10\t/\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	c := New(io.Discard, LogInfo)
	runner := pipeline.NewRunner(nil, nil, c.Logger)
	po := pipeline.Options{Width: 100, Height: 100, Formats: []string{pipeline.FormatJSON}}
	if err := po.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(withLogger(context.Background(), c.Logger))
	defer cancel()

	var out lockedBuffer
	done := make(chan error, 1)
	go func() { done <- c.watchRender(ctx, runner, input, po, &renderOpts{}, &out) }()

	waitFor(t, func() bool { return strings.Contains(out.String(), `"/a"`) })

	if err := os.WriteFile(input, []byte("10\t/a\n5\t/b\n15\t/\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool { return strings.Contains(out.String(), `"/b"`) })

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("watchRender() = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("watchRender did not stop after cancel")
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met within 5s")
		}
		time.Sleep(20 * time.Millisecond)
	}
}
