// # internal/output/dot.go
package output

import (
	"fmt"
	"strings"

	"github.com/disruptiq/topological-grapher/internal/extract"
)

var edgeColors = map[extract.EdgeKind]string{
	extract.EdgeContains:     "gray60",
	extract.EdgeImports:      "blue",
	extract.EdgeCalls:        "black",
	extract.EdgeInherits:     "red",
	extract.EdgeImplements:   "darkorange",
	extract.EdgeUsesType:     "darkgreen",
	extract.EdgeUsesVariable: "purple",
}

// DOT renders the graph in graphviz DOT for visualization. Labels use
// the short declaration names; full ids stay in the node keys.
func DOT(res *extract.Result) string {
	var buf strings.Builder

	buf.WriteString("digraph dependencies {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  node [shape=box, style=rounded, fontname=\"Helvetica\", fontsize=10];\n")
	buf.WriteString("  edge [fontname=\"Helvetica\", fontsize=8];\n\n")

	for _, n := range res.Nodes {
		label := n.Name
		if label == "" {
			label = n.ID
		}
		fmt.Fprintf(&buf, "  %s [label=%s];\n", quote(n.ID), quote(label))
	}
	buf.WriteString("\n")

	for _, e := range res.Edges {
		color := edgeColors[e.Kind]
		if color == "" {
			color = "black"
		}
		fmt.Fprintf(&buf, "  %s -> %s [label=%s, color=%s];\n",
			quote(e.Source), quote(e.Target), quote(string(e.Kind)), color)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}
