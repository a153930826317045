// Package route computes connector paths between positioned elements.
//
// Obstacle-aware routing is delegated to Graphviz, treated as an opaque
// collaborator: node rectangles and edges go in, per-edge bend-point lists
// come out. The collaborator is allowed to fail - on any error, timeout, or
// unparseable output every affected edge falls back to a straight line
// between endpoint centers. Routing failures are logged and never surface
// as errors to the caller.
package route

import (
	"context"
	"io"
	"math"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/storyline/pkg/geo"
)

// Style selects the routing shape requested from the collaborator.
type Style string

const (
	// StyleOrthogonal requests axis-aligned connector paths.
	StyleOrthogonal Style = "orthogonal"
	// StyleSpline requests curved connector paths.
	StyleSpline Style = "spline"
	// StyleStraight bypasses the collaborator entirely: every edge is a
	// straight line between endpoint centers.
	StyleStraight Style = "straight"
)

// DefaultTimeout bounds one collaborator invocation. Expiry is treated
// like any other routing failure: fall back to straight lines.
const DefaultTimeout = 3 * time.Second

// Obstacle is a positioned rectangle the router should avoid. Positions
// are post-overlap-adjustment world coordinates.
type Obstacle struct {
	ID   string
	Rect geo.Rect
}

// Conn names one edge to route between two obstacle IDs.
type Conn struct {
	ID   string
	From string
	To   string
}

// Options configures one routing request.
type Options struct {
	Style Style

	// Spacing is the minimum clearance, in world units, the collaborator
	// should keep between a path and an obstacle. Zero uses the
	// collaborator's default.
	Spacing float64

	// Timeout bounds the collaborator call. Zero means [DefaultTimeout].
	Timeout time.Duration
}

// Router routes edges over obstacles. The zero value is not usable; use
// [New]. A Router is stateless apart from its logger and safe for
// concurrent use.
type Router struct {
	logger *log.Logger
}

// New creates a router. A nil logger discards routing diagnostics.
func New(logger *log.Logger) *Router {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Router{logger: logger}
}

// Route computes a path for every conn and returns them keyed by conn ID.
// Every requested conn is present in the result: edges the collaborator
// could not route get the straight-line fallback. Conns whose endpoints
// are missing from the obstacle list get a degenerate empty path.
func (r *Router) Route(ctx context.Context, obstacles []Obstacle, conns []Conn, opts Options) map[string][]geo.Point {
	if opts.Style == StyleStraight {
		return straightPaths(obstacles, conns)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	paths, err := routeGraphviz(ctx, obstacles, conns, opts)
	if err != nil {
		r.logger.Warn("edge routing failed, using straight fallback",
			"style", opts.Style, "edges", len(conns), "err", err)
		return straightPaths(obstacles, conns)
	}

	// The collaborator may silently drop edges; backfill those too.
	fallback := straightPaths(obstacles, conns)
	for _, c := range conns {
		if len(paths[c.ID]) < 2 {
			paths[c.ID] = fallback[c.ID]
		}
	}
	return paths
}

// straightPaths returns center-to-center two-point paths for every conn.
func straightPaths(obstacles []Obstacle, conns []Conn) map[string][]geo.Point {
	centers := make(map[string]geo.Point, len(obstacles))
	for _, o := range obstacles {
		centers[o.ID] = o.Rect.Center
	}

	paths := make(map[string][]geo.Point, len(conns))
	for _, c := range conns {
		from, okF := centers[c.From]
		to, okT := centers[c.To]
		if !okF || !okT {
			paths[c.ID] = nil
			continue
		}
		paths[c.ID] = []geo.Point{from, to}
	}
	return paths
}

// SimplifyPath removes interior points that are collinear with their
// neighbors, within tolerance on the cross product of the adjacent segment
// vectors. The first and last points are always preserved. Paths with two
// or fewer points are returned unchanged.
func SimplifyPath(path []geo.Point, tolerance float64) []geo.Point {
	if len(path) <= 2 {
		return path
	}

	out := make([]geo.Point, 0, len(path))
	out = append(out, path[0])
	for i := 1; i < len(path)-1; i++ {
		prev := out[len(out)-1]
		cur, next := path[i], path[i+1]
		ab := cur.Sub(prev)
		bc := next.Sub(cur)
		cross := ab.X*bc.Y - ab.Y*bc.X
		if math.Abs(cross) > tolerance {
			out = append(out, cur)
		}
	}
	out = append(out, path[len(path)-1])
	return out
}
