// Package pkg provides the core libraries for sizemap disk-usage treemaps.
//
// # Overview
//
// Sizemap turns the output of "du -ab" into a picture where every file is
// a rectangle with an area proportional to its size, nested inside the
// rectangles of its folders. The pkg directory is organized into three
// main areas:
//
//  1. [core] - Domain logic (hierarchy, partitioning, layout)
//  2. [render/sink] - Output formats (HTML, SVG, JSON, PNG)
//  3. [pipeline] - Orchestration (parse → layout → render) with caching
//
// # Architecture
//
// The typical data flow through sizemap:
//
//	du output or directory scan
//	         ↓
//	    [du] package (entries)
//	         ↓
//	    [core/item] package (folder hierarchy)
//	         ↓
//	    [core/partition] + [core/treemap] packages (boxes)
//	         ↓
//	    [render/sink] package (HTML/SVG/JSON/PNG)
//
// # Quick Start
//
//	entries, _ := du.ReadFile("du.txt")
//	root, _ := item.Build("/", entries)
//	l, _ := treemap.Build(root, 800, 600)
//	page, _ := sink.RenderHTML(l)
//
// # Main Packages
//
// [core/item] - Files and folders, and building the hierarchy from du
// entries by path.
//
// [core/partition] - Size-balanced binary partitioning of a folder's
// children, plus DOT and Graphviz SVG output for debugging.
//
// [core/treemap] - The slice-and-dice layout: integer rectangles, depth
// tracking and optional depth limits.
//
// [du] - Parsing du reports and scanning directories into the same form.
//
// [render/sink] - Self-contained outputs. HTML reproduces the classic
// single-page viewer; SVG and PNG colour boxes by top-level folder.
//
// [pipeline] - The complete flow used by both the CLI and the HTTP server,
// with layout and artifact caching through [cache].
//
// [server] - HTTP API around the pipeline.
//
// [cache], [config], [errors], [observability] - Infrastructure shared by
// all of the above.
//
// # Testing
//
//	go test ./pkg/...          # All tests
//	go test ./pkg/core/...     # Algorithms only
//	go test -run Example       # Examples only
//
// [core]: https://pkg.go.dev/github.com/matzehuels/sizemap/pkg/core
// [core/item]: https://pkg.go.dev/github.com/matzehuels/sizemap/pkg/core/item
// [core/partition]: https://pkg.go.dev/github.com/matzehuels/sizemap/pkg/core/partition
// [core/treemap]: https://pkg.go.dev/github.com/matzehuels/sizemap/pkg/core/treemap
// [du]: https://pkg.go.dev/github.com/matzehuels/sizemap/pkg/du
// [render/sink]: https://pkg.go.dev/github.com/matzehuels/sizemap/pkg/render/sink
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/sizemap/pkg/pipeline
// [server]: https://pkg.go.dev/github.com/matzehuels/sizemap/pkg/server
// [cache]: https://pkg.go.dev/github.com/matzehuels/sizemap/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/sizemap/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/sizemap/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/sizemap/pkg/observability
package pkg
