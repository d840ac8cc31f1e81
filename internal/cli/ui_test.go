package cli

import (
	"bytes"
	"strings"
	"testing"
)

func captureUI(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := ui
	ui = &buf
	t.Cleanup(func() { ui = prev })
	return &buf
}

func TestPrintStats(t *testing.T) {
	tests := []struct {
		boxes  int
		total  int64
		cached bool
		want   []string
	}{
		{1204, 3_400_000_000, false, []string{"1,204 boxes", "3.4 GB", iconFresh}},
		{2, 1300, true, []string{"2 boxes", "1.3 kB", iconCached}},
	}
	for _, tt := range tests {
		buf := captureUI(t)
		printStats(tt.boxes, tt.total, tt.cached)
		for _, w := range tt.want {
			if !strings.Contains(buf.String(), w) {
				t.Errorf("printStats(%d, %d, %v) = %q, missing %q", tt.boxes, tt.total, tt.cached, buf.String(), w)
			}
		}
	}
}

func TestStatusLines(t *testing.T) {
	buf := captureUI(t)

	printSuccess("done %d", 1)
	printError("failed")
	printWarning("careful")
	printInfo("note")
	printFile("out.html")
	printKeyValue("width", "800")

	out := buf.String()
	for _, w := range []string{iconSuccess, "done 1", iconError, "careful", iconInfo, iconArrow, "out.html", "width", "800"} {
		if !strings.Contains(out, w) {
			t.Errorf("status output missing %q:\n%s", w, out)
		}
	}
}
