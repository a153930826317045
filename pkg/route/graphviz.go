package route

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/storyline/pkg/geo"
)

// pointsPerInch converts world units (points) to the inch-based node size
// attributes Graphviz expects.
const pointsPerInch = 72.0

// routeGraphviz runs one collaborator request: build a DOT description
// with pinned node positions, lay it out with neato, and read the edge
// control points back out of the attributed DOT output.
func routeGraphviz(ctx context.Context, obstacles []Obstacle, conns []Conn, opts Options) (map[string][]geo.Point, error) {
	dot := buildDOT(obstacles, conns, opts)

	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.XDOT, &buf); err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}

	paths, err := parseEdgePaths(buf.String())
	if err != nil {
		return nil, err
	}

	out := make(map[string][]geo.Point, len(conns))
	for i, c := range conns {
		out[c.ID] = paths[edgeKey(i)]
	}
	return out, nil
}

// buildDOT emits the routing request. Node positions are pinned ("!"
// suffix) so neato only computes edge splines, never moves obstacles.
// Edges carry synthetic id attributes so the output can be matched back to
// the request regardless of node name quoting.
func buildDOT(obstacles []Obstacle, conns []Conn, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph R {\n")
	fmt.Fprintf(&buf, "  graph [splines=%s", splinesFor(opts.Style))
	if opts.Spacing > 0 {
		fmt.Fprintf(&buf, ", sep=\"+%.0f\"", opts.Spacing)
	}
	buf.WriteString(", overlap=true];\n")
	buf.WriteString("  node [shape=box, fixedsize=true, label=\"\"];\n\n")

	for _, o := range obstacles {
		fmt.Fprintf(&buf, "  %q [pos=\"%.2f,%.2f!\", width=%.4f, height=%.4f];\n",
			o.ID, o.Rect.Center.X, o.Rect.Center.Y,
			o.Rect.Width()/pointsPerInch, o.Rect.Height()/pointsPerInch)
	}

	buf.WriteString("\n")
	for i, c := range conns {
		fmt.Fprintf(&buf, "  %q -> %q [id=%q];\n", c.From, c.To, edgeKey(i))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func splinesFor(style Style) string {
	if style == StyleOrthogonal {
		return "ortho"
	}
	return "spline"
}

func edgeKey(i int) string { return fmt.Sprintf("e%d", i) }

var (
	attrBlockRe = regexp.MustCompile(`\[[^\]]*\]`)
	idAttrRe    = regexp.MustCompile(`\bid="?(e\d+)"?`)
	posAttrRe   = regexp.MustCompile(`\bpos="([^"]+)"`)
)

// parseEdgePaths extracts pos attributes from attributed DOT output.
// Graphviz wraps long attribute values with backslash-newline; those
// continuations are stripped before matching so each attribute block is a
// single span.
func parseEdgePaths(xdot string) (map[string][]geo.Point, error) {
	normalized := strings.ReplaceAll(xdot, "\\\n", "")

	paths := make(map[string][]geo.Point)
	for _, block := range attrBlockRe.FindAllString(normalized, -1) {
		idMatch := idAttrRe.FindStringSubmatch(block)
		if idMatch == nil {
			continue // node or graph attributes
		}
		posMatch := posAttrRe.FindStringSubmatch(block)
		if posMatch == nil {
			continue
		}
		path, err := parsePos(posMatch[1])
		if err != nil {
			return nil, fmt.Errorf("edge %s: %w", idMatch[1], err)
		}
		paths[idMatch[1]] = path
	}
	return paths, nil
}

// parsePos decodes a Graphviz spline pos value: space-separated x,y pairs,
// optionally prefixed by "s,x,y" (path start) and "e,x,y" (path end)
// arrow endpoints, which are folded into the point list in order.
func parsePos(pos string) ([]geo.Point, error) {
	var start, end *geo.Point
	var pts []geo.Point

	for _, tok := range strings.Fields(pos) {
		switch {
		case strings.HasPrefix(tok, "s,"):
			p, err := parsePoint(tok[2:])
			if err != nil {
				return nil, err
			}
			start = &p
		case strings.HasPrefix(tok, "e,"):
			p, err := parsePoint(tok[2:])
			if err != nil {
				return nil, err
			}
			end = &p
		default:
			p, err := parsePoint(tok)
			if err != nil {
				return nil, err
			}
			pts = append(pts, p)
		}
	}

	if start != nil {
		pts = append([]geo.Point{*start}, pts...)
	}
	if end != nil {
		pts = append(pts, *end)
	}
	return pts, nil
}

func parsePoint(s string) (geo.Point, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return geo.Point{}, fmt.Errorf("malformed point %q", s)
	}
	x, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return geo.Point{}, fmt.Errorf("malformed point %q: %w", s, err)
	}
	y, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return geo.Point{}, fmt.Errorf("malformed point %q: %w", s, err)
	}
	return geo.Point{X: x, Y: y}, nil
}
