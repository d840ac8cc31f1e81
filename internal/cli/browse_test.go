package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/sizemap/pkg/core/item"
)

func testTree() *item.Folder {
	return item.NewFolder("/", []item.Item{
		item.MustFile("/small", 100),
		item.NewFolder("/docs", []item.Item{
			item.MustFile("/docs/a.txt", 300),
			item.MustFile("/docs/b.txt", 600),
		}),
		item.MustFile("/big", 1000),
	})
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func press(m browseModel, keys ...string) browseModel {
	for _, k := range keys {
		next, _ := m.Update(key(k))
		m = next.(browseModel)
	}
	return m
}

func TestBrowseSortsLargestFirst(t *testing.T) {
	m := newBrowseModel(testTree())

	var names []string
	for _, it := range m.items {
		names = append(names, it.Name())
	}
	if got := strings.Join(names, ","); got != "/big,/docs,/small" {
		t.Errorf("order = %s, want /big,/docs,/small", got)
	}
}

func TestBrowseNavigation(t *testing.T) {
	tests := []struct {
		name       string
		keys       []string
		wantFolder string
		wantCursor int
	}{
		{"start", nil, "/", 0},
		{"down", []string{"down"}, "/", 1},
		{"down clamps", []string{"down", "down", "down", "down"}, "/", 2},
		{"up clamps", []string{"up"}, "/", 0},
		{"enter file is ignored", []string{"enter"}, "/", 0},
		{"enter folder", []string{"down", "enter"}, "/docs", 0},
		{"back restores cursor", []string{"down", "enter", "backspace"}, "/", 1},
		{"back at root", []string{"backspace"}, "/", 0},
		{"vim keys", []string{"j", "l", "j"}, "/docs", 1},
		{"end", []string{"G"}, "/", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := press(newBrowseModel(testTree()), tt.keys...)
			if got := m.current().Name(); got != tt.wantFolder {
				t.Errorf("folder = %s, want %s", got, tt.wantFolder)
			}
			if m.cursor != tt.wantCursor {
				t.Errorf("cursor = %d, want %d", m.cursor, tt.wantCursor)
			}
		})
	}
}

func TestBrowseQuit(t *testing.T) {
	for _, k := range []string{"q", "esc"} {
		msg := key(k)
		if k == "esc" {
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		}
		_, cmd := newBrowseModel(testTree()).Update(msg)
		if cmd == nil {
			t.Fatalf("%s: no command returned", k)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("%s: command did not quit", k)
		}
	}
}

func TestBrowseScrolling(t *testing.T) {
	var kids []item.Item
	for i := 0; i < 30; i++ {
		kids = append(kids, item.MustFile("/f"+strings.Repeat("x", i), int64(100-i)))
	}
	m := newBrowseModel(item.NewFolder("/", kids))

	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 18})
	m = next.(browseModel)
	if m.height != 10 {
		t.Fatalf("height = %d, want 10", m.height)
	}

	for i := 0; i < 15; i++ {
		m = press(m, "down")
	}
	if m.cursor != 15 || m.offset != 6 {
		t.Errorf("cursor=%d offset=%d, want 15 and 6", m.cursor, m.offset)
	}
	if !strings.Contains(m.View(), "7-16 of 30") {
		t.Error("View() should show the visible range")
	}
}

func TestBrowseView(t *testing.T) {
	m := newBrowseModel(testTree())
	view := m.View()

	for _, want := range []string{"/", "big", "docs/", "small", "2.0 kB"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q", want)
		}
	}

	m = press(m, "down", "enter")
	view = m.View()
	if !strings.Contains(view, "/docs") || !strings.Contains(view, "b.txt") {
		t.Errorf("View() in /docs = %q", view)
	}
}

func TestShareBar(t *testing.T) {
	tests := []struct {
		size, total int64
		filled      int
		pct         string
	}{
		{0, 100, 0, "  0%"},
		{50, 100, 10, " 50%"},
		{100, 100, 20, "100%"},
		{5, 0, 0, "  0%"},
	}
	for _, tt := range tests {
		got := shareBar(tt.size, tt.total)
		if n := strings.Count(got, "█"); n != tt.filled {
			t.Errorf("shareBar(%d, %d) filled = %d, want %d", tt.size, tt.total, n, tt.filled)
		}
		if !strings.HasSuffix(got, tt.pct) {
			t.Errorf("shareBar(%d, %d) = %q, want suffix %q", tt.size, tt.total, got, tt.pct)
		}
	}
}
