// Package sink renders composed frames to static artifacts.
//
// The only sink today is a plain SVG snapshot: nodes as rounded rectangles,
// edges as polylines, with opacity keyed to the frame's visibility tags.
// It exists for exporting single steps from the CLI and for eyeballing
// engine output; it is deliberately not a styling system.
package sink

import (
	"bytes"
	"fmt"

	"github.com/matzehuels/storyline/pkg/frame"
)

const frameCSS = `
    .node { fill: white; stroke: #000; stroke-width: 1.5; }
    .node.active { stroke-width: 3; }
    .node.completed { opacity: 0.55; }
    .node.faded { opacity: 0.3; }
    .edge { fill: none; stroke: #000; stroke-width: 1.5; }
    .edge.completed { opacity: 0.55; }
    .edge.faded { opacity: 0.3; }
    .label { font-family: sans-serif; font-size: 13px; text-anchor: middle; }
    .substate { font-family: sans-serif; font-size: 10px; text-anchor: middle; fill: #555; }`

// RenderSVG renders one composed frame to SVG bytes. Geometry is already
// in screen space, so the SVG viewBox is simply the frame's viewport.
func RenderSVG(f frame.Frame) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		f.Viewport.Width, f.Viewport.Height, f.Viewport.Width, f.Viewport.Height)
	fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", frameCSS)

	// Edges under nodes.
	for _, e := range f.Edges {
		if len(e.Path) < 2 {
			continue
		}
		var pts bytes.Buffer
		for i, p := range e.Path {
			if i > 0 {
				pts.WriteByte(' ')
			}
			fmt.Fprintf(&pts, "%.1f,%.1f", p.X, p.Y)
		}
		fmt.Fprintf(&buf, "  <polyline class=\"edge %s\" points=\"%s\"/>\n", e.Visibility, pts.String())
	}

	for _, n := range f.Nodes {
		w := n.Size.Width * f.Camera.Zoom
		h := n.Size.Height * f.Camera.Zoom
		fmt.Fprintf(&buf, "  <rect class=\"node %s\" id=\"node-%s\" x=\"%.1f\" y=\"%.1f\" width=\"%.1f\" height=\"%.1f\" rx=\"4\"/>\n",
			n.Visibility, n.ID, n.Screen.X-w/2, n.Screen.Y-h/2, w, h)
		fmt.Fprintf(&buf, "  <text class=\"label\" x=\"%.1f\" y=\"%.1f\">%s</text>\n",
			n.Screen.X, n.Screen.Y+4, escape(n.Label))
		if n.HasSubState {
			fmt.Fprintf(&buf, "  <text class=\"substate\" x=\"%.1f\" y=\"%.1f\">[%s]</text>\n",
				n.Screen.X, n.Screen.Y+h/2+12, escape(n.SubState))
		}
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func escape(s string) string {
	var buf bytes.Buffer
	for _, r := range s {
		switch r {
		case '&':
			buf.WriteString("&amp;")
		case '<':
			buf.WriteString("&lt;")
		case '>':
			buf.WriteString("&gt;")
		default:
			buf.WriteRune(r)
		}
	}
	return buf.String()
}
