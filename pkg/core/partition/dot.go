package partition

import (
	"bytes"
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/goccy/go-graphviz"
)

// ToDOT returns a Graphviz DOT representation of the tree.
//
// Inner nodes are drawn as ellipses labeled with their total size, leaves as
// rounded boxes labeled with the item name and size. Edges to the left
// subtree are solid and edges to the right subtree are dashed, so the
// left/right assignment that drives the rectangle split stays visible.
func ToDOT(t Tree) string {
	var buf bytes.Buffer
	buf.WriteString("digraph Partition {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [fontname=\"SF Mono, Menlo, monospace\", fontsize=12, style=filled, fillcolor=white];\n")
	buf.WriteString("  edge [arrowhead=none];\n\n")

	if t != nil {
		writeDOTNode(&buf, t, 0)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func writeDOTNode(buf *bytes.Buffer, t Tree, id int) int {
	nodeID := fmt.Sprintf("n%d", id)
	next := id + 1

	switch n := t.(type) {
	case *Leaf:
		label := fmt.Sprintf("%s\n%s", n.Item.Name(), humanize.Bytes(uint64(n.Item.Size())))
		fmt.Fprintf(buf, "  %s [label=%q, shape=box, style=\"filled,rounded\"];\n", nodeID, label)

	case *Node:
		fmt.Fprintf(buf, "  %s [label=%q, shape=ellipse];\n", nodeID, humanize.Bytes(uint64(n.Size())))
		fmt.Fprintf(buf, "  %s -> n%d;\n", nodeID, next)
		next = writeDOTNode(buf, n.Left, next)
		fmt.Fprintf(buf, "  %s -> n%d [style=dashed];\n", nodeID, next)
		next = writeDOTNode(buf, n.Right, next)
	}

	return next
}

// RenderSVG renders the tree as an SVG image through Graphviz.
//
// RenderSVG requires the Graphviz library (github.com/goccy/go-graphviz).
// Errors are returned if Graphviz cannot initialize, the DOT is malformed,
// or rendering fails.
func RenderSVG(ctx context.Context, t Tree) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(ToDOT(t)))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
