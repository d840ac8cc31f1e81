package sink

import (
	"bytes"
	"fmt"
	"html"

	"github.com/dustin/go-humanize"
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	mhtml "github.com/tdewolff/minify/v2/html"

	"github.com/matzehuels/sizemap/pkg/core/treemap"
)

const htmlHead = `<!doctype html>
<html lang="en">
<head>
    <meta charset="UTF-8"/>
    <title>%s</title>
    <style>
        :root, body {
            width: 100%%;
            height: 100%%;
            margin: 0;
            padding: 0;
        }
        body {
            display: grid;
            place-content: center;
        }
        .viewer {
            position: relative;
            width: %dpx;
            height: %dpx;
        }
        .file-block {
            background: linear-gradient(135deg, #ddd 0%%, #222 100%%);
            position: absolute;
        }
    </style>
</head>
<body>
<div class="viewer">
`

const htmlTail = `</div>
</body>
</html>
`

// HTMLOption configures HTML rendering via [RenderHTML].
type HTMLOption func(*htmlRenderer)

type htmlRenderer struct {
	title  string
	minify bool
}

// WithTitle sets the page title. The default is "Output".
func WithTitle(s string) HTMLOption { return func(r *htmlRenderer) { r.title = s } }

// WithMinify minifies the page, including the embedded stylesheet.
func WithMinify() HTMLOption { return func(r *htmlRenderer) { r.minify = true } }

// RenderHTML renders the layout as a standalone HTML page. The only error
// source is minification.
func RenderHTML(l treemap.Layout, opts ...HTMLOption) ([]byte, error) {
	r := htmlRenderer{title: "Output"}
	for _, opt := range opts {
		opt(&r)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, htmlHead, html.EscapeString(r.title), l.Width, l.Height)
	for _, b := range l.Boxes {
		writeBlock(&buf, b)
	}
	buf.WriteString(htmlTail)

	if !r.minify {
		return buf.Bytes(), nil
	}
	return minifyHTML(buf.Bytes())
}

func writeBlock(buf *bytes.Buffer, b treemap.Box) {
	fmt.Fprintf(buf,
		`<div title="%s (size=%s)" class="file-block" style="left:%dpx;top:%dpx;width:%dpx;height:%dpx" data-depth="%d"></div>`+"\n",
		html.EscapeString(b.File.Name()), humanize.Comma(b.File.Size()),
		b.X, b.Y, b.Width, b.Height, b.Depth)
}

func minifyHTML(page []byte) ([]byte, error) {
	m := minify.New()
	m.AddFunc("text/css", css.Minify)
	m.Add("text/html", &mhtml.Minifier{KeepDocumentTags: true, KeepQuotes: true})
	out, err := m.Bytes("text/html", page)
	if err != nil {
		return nil, fmt.Errorf("minify html: %w", err)
	}
	return out, nil
}
