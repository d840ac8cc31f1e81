package du

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/matzehuels/sizemap/pkg/core/item"
	errs "github.com/matzehuels/sizemap/pkg/errors"
)

// maxLineBytes bounds a single report line. Paths longer than this are not
// something du produces on any common filesystem.
const maxLineBytes = 1 << 20

// ParseLine parses one "<size>\t<path>" line. The size is the text before the
// first tab; the path is everything after it with surrounding whitespace
// removed.
func ParseLine(line string) (item.Entry, error) {
	sizeText, path, ok := strings.Cut(line, "\t")
	if !ok {
		return item.Entry{}, errs.New(errs.ErrCodeInvalidInput, "missing tab separator in %q", line)
	}

	size, err := strconv.ParseInt(strings.TrimSpace(sizeText), 10, 64)
	if err != nil {
		return item.Entry{}, errs.New(errs.ErrCodeInvalidInput, "invalid size %q", sizeText)
	}
	if size < 0 {
		return item.Entry{}, errs.New(errs.ErrCodeInvalidInput, "negative size %d", size)
	}

	path = strings.TrimSpace(path)
	if path == "" {
		return item.Entry{}, errs.New(errs.ErrCodeInvalidInput, "empty path")
	}
	return item.Entry{Path: path, Size: size}, nil
}

// Parse reads a du report from r. Blank lines are skipped; the first
// malformed line aborts parsing with an INVALID_INPUT error naming its line
// number.
func Parse(r io.Reader) ([]item.Entry, error) {
	var entries []item.Entry

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for n := 1; sc.Scan(); n++ {
		line := sc.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		e, err := ParseLine(line)
		if err != nil {
			return nil, errs.New(errs.ErrCodeInvalidInput, "line %d: %s", n, errs.UserMessage(err))
		}
		entries = append(entries, e)
	}
	if err := sc.Err(); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "read du output")
	}
	return entries, nil
}

// ReadFile parses the du report stored at path.
func ReadFile(path string) ([]item.Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeFileNotFound, err, "open %s", path)
	}
	defer f.Close()

	entries, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return entries, nil
}

// Write prints entries in du format, one per line.
func Write(w io.Writer, entries []item.Entry) error {
	bw := bufio.NewWriter(w)
	for _, e := range entries {
		if _, err := fmt.Fprintf(bw, "%d\t%s\n", e.Size, e.Path); err != nil {
			return err
		}
	}
	return bw.Flush()
}
