// Package frame composes the final renderable output for one step of a
// story: resolved visibility, collision-free world positions, camera
// placement, screen-space geometry, and routed edge paths.
//
// The Composer ties the four pure layers together in a fixed order per
// frame: step state → revealed subset → overlap resolution → camera
// selection and projection → edge routing. It memoizes the last composed
// frame so hosts can call it on every tick and only pay for recomputation
// when the step index, story, viewport, or camera actually changed.
package frame

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/storyline/pkg/camera"
	"github.com/matzehuels/storyline/pkg/geo"
	"github.com/matzehuels/storyline/pkg/overlap"
	"github.com/matzehuels/storyline/pkg/route"
	"github.com/matzehuels/storyline/pkg/step"
	"github.com/matzehuels/storyline/pkg/story"
)

// Visibility tags an element's emphasis state within a frame.
type Visibility string

const (
	// VisibilityNotRevealed marks elements no step has shown yet. They
	// carry no geometry in the frame.
	VisibilityNotRevealed Visibility = "not-revealed"
	// VisibilityActive marks elements emphasized by the current step.
	VisibilityActive Visibility = "active"
	// VisibilityCompleted marks elements revealed by an earlier step and
	// not currently emphasized.
	VisibilityCompleted Visibility = "completed"
	// VisibilityFaded marks elements the current step reveals without
	// emphasizing (reveal-only lists).
	VisibilityFaded Visibility = "faded"
)

// Defaults applied by NewComposer when Options fields are zero.
const (
	DefaultPadding    = 8.0
	DefaultFitPadding = 50.0
	DefaultTolerance  = 0.5
	DefaultRouteStyle = route.StyleSpline
)

// Options configures frame composition.
type Options struct {
	// Padding expands node rectangles during overlap detection.
	Padding float64
	// FitPadding is the world-unit margin used by automatic fit-to-region
	// camera placement.
	FitPadding float64
	// Strategy selects the overlap resolution algorithm.
	Strategy overlap.Strategy
	// RouteStyle selects the edge routing shape.
	RouteStyle route.Style
	// RouteSpacing is the requested obstacle clearance for routed edges.
	RouteSpacing float64
	// RouteTimeout bounds one routing collaborator call.
	RouteTimeout time.Duration
	// SimplifyTolerance controls collinear-point removal on routed paths.
	SimplifyTolerance float64
}

func (o Options) withDefaults() Options {
	if o.Padding == 0 {
		o.Padding = DefaultPadding
	}
	if o.FitPadding == 0 {
		o.FitPadding = DefaultFitPadding
	}
	if o.Strategy == "" {
		o.Strategy = overlap.StrategyNudge
	}
	if o.RouteStyle == "" {
		o.RouteStyle = DefaultRouteStyle
	}
	if o.SimplifyTolerance == 0 {
		o.SimplifyTolerance = DefaultTolerance
	}
	return o
}

// NodeView is the per-node output of one composed frame.
type NodeView struct {
	ID         string     `json:"id"`
	Label      string     `json:"label"`
	Visibility Visibility `json:"visibility"`
	New        bool       `json:"new,omitempty"`

	// SubState is the resolved sticky sub-state; HasSubState distinguishes
	// "no sub-state" from an empty name.
	SubState    string `json:"substate,omitempty"`
	HasSubState bool   `json:"has_substate,omitempty"`

	// World is the overlap-adjusted world position; Screen is the same
	// point through the frame camera.
	World  geo.Point `json:"world"`
	Screen geo.Point `json:"screen"`
	Size   geo.Size  `json:"size"`
}

// EdgeView is the per-edge output of one composed frame. Path points are
// in screen space.
type EdgeView struct {
	ID         string      `json:"id"`
	From       string      `json:"from"`
	To         string      `json:"to"`
	Visibility Visibility  `json:"visibility"`
	New        bool        `json:"new,omitempty"`
	Path       []geo.Point `json:"path"`
}

// Frame is the complete renderable output for one step and viewport.
type Frame struct {
	Index    int           `json:"index"`
	Viewport geo.Size      `json:"viewport"`
	Camera   camera.Camera `json:"camera"`
	Nodes    []NodeView    `json:"nodes"`
	Edges    []EdgeView    `json:"edges"`

	// Unresolved lists overlap pairs the nudge budget could not separate,
	// for optional diagnostics.
	Unresolved []overlap.Pair `json:"unresolved,omitempty"`
}

// Composer builds frames. Safe for concurrent use; the internal memo is
// guarded and only ever holds the most recent frame.
type Composer struct {
	opts   Options
	router *route.Router
	logger *log.Logger

	mu   sync.Mutex
	last *memoEntry
}

type memoKey struct {
	st       *story.Story
	index    int
	viewport geo.Size
	center   geo.Point
	zoom     float64
}

type memoEntry struct {
	key   memoKey
	frame Frame
}

// NewComposer creates a composer. A nil logger discards diagnostics.
func NewComposer(opts Options, logger *log.Logger) *Composer {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Composer{
		opts:   opts.withDefaults(),
		router: route.New(logger),
		logger: logger,
	}
}

// TargetCamera selects the camera for a step: an explicit step override
// wins, otherwise the camera fits the revealed region. An empty revealed
// set yields the default camera.
func (c *Composer) TargetCamera(st *story.Story, index int, viewport geo.Size) camera.Camera {
	idx := step.Clamp(index, len(st.Steps))
	if idx >= 0 {
		if ov := st.Steps[idx].Camera; ov != nil {
			zoom := ov.Zoom
			if zoom <= 0 {
				zoom = 1
			}
			return camera.Camera{Center: ov.Center, Zoom: zoom}
		}
	}

	state := step.Resolve(st.Steps, index)
	nodes := st.NodeIndex()
	var rects []geo.Rect
	for id := range state.RevealedNodes {
		if n, ok := nodes[id]; ok {
			rects = append(rects, n.Rect())
		}
	}
	return camera.FitToRegion(rects, viewport, c.opts.FitPadding)
}

// Compose builds the frame for one step using the step's target camera.
func (c *Composer) Compose(ctx context.Context, st *story.Story, index int, viewport geo.Size) Frame {
	return c.ComposeWithCamera(ctx, st, index, viewport, c.TargetCamera(st, index, viewport))
}

// ComposeWithCamera builds the frame for one step projected through an
// explicit camera. Hosts animating a camera transition call this with each
// interpolation sample.
//
// Composition never fails: an empty story, an empty revealed set, or a
// zero viewport all produce a well-defined empty frame.
func (c *Composer) ComposeWithCamera(ctx context.Context, st *story.Story, index int, viewport geo.Size, cam camera.Camera) Frame {
	key := memoKey{st: st, index: index, viewport: viewport, center: cam.Center, zoom: cam.Zoom}

	c.mu.Lock()
	if c.last != nil && c.last.key == key {
		f := c.last.frame
		c.mu.Unlock()
		return f
	}
	c.mu.Unlock()

	f := c.compose(ctx, st, index, viewport, cam)

	c.mu.Lock()
	c.last = &memoEntry{key: key, frame: f}
	c.mu.Unlock()
	return f
}

func (c *Composer) compose(ctx context.Context, st *story.Story, index int, viewport geo.Size, cam camera.Camera) Frame {
	started := time.Now()

	if cam.Bounds != nil {
		cam = cam.ClampToBounds(*cam.Bounds)
	}

	state := step.Resolve(st.Steps, index)
	f := Frame{
		Index:    state.Index,
		Viewport: viewport,
		Camera:   cam,
		Nodes:    []NodeView{},
		Edges:    []EdgeView{},
	}
	if state.Index < 0 || len(state.RevealedNodes) == 0 && len(state.RevealedEdges) == 0 {
		return f
	}

	nodes := st.NodeIndex()
	edges := st.EdgeIndex()
	revealOnly := currentRevealOnly(st, state.Index)

	// Overlap resolution runs only over the revealed subset.
	var items []overlap.Item
	for _, id := range state.RevealedNodes.Sorted() {
		n, ok := nodes[id]
		if !ok {
			continue
		}
		items = append(items, overlap.Item{ID: id, Rect: n.Rect(), AllowOverlap: n.AllowOverlap})
	}
	res := overlap.Resolve(items, c.opts.Padding, c.opts.Strategy)
	f.Unresolved = res.Unresolved

	positions := make(map[string]geo.Point, len(items))
	for _, it := range items {
		positions[it.ID] = it.Rect.Center
	}
	adjusted := overlap.ApplyAdjustments(positions, res.Deltas)

	for _, id := range state.RevealedNodes.Sorted() {
		n, ok := nodes[id]
		if !ok {
			continue
		}
		world := adjusted[id]
		name, has := step.SubStateAt(st, id, state.Index)
		f.Nodes = append(f.Nodes, NodeView{
			ID:          id,
			Label:       n.DisplayLabel(),
			Visibility:  visibilityOf(id, state.ActiveNodes, revealOnly.nodes),
			New:         state.NewNodes.Has(id),
			SubState:    name,
			HasSubState: has,
			World:       world,
			Screen:      cam.WorldToScreen(world, viewport),
			Size:        n.Size,
		})
	}

	// Edge routing sees the adjusted obstacle positions.
	obstacles := make([]route.Obstacle, 0, len(items))
	for _, it := range items {
		obstacles = append(obstacles, route.Obstacle{
			ID:   it.ID,
			Rect: geo.Rect{Center: adjusted[it.ID], HalfW: it.Rect.HalfW, HalfH: it.Rect.HalfH},
		})
	}

	var conns []route.Conn
	for _, id := range state.RevealedEdges.Sorted() {
		e, ok := edges[id]
		if !ok {
			continue
		}
		conns = append(conns, route.Conn{ID: id, From: e.From, To: e.To})
	}

	paths := c.router.Route(ctx, obstacles, conns, route.Options{
		Style:   c.opts.RouteStyle,
		Spacing: c.opts.RouteSpacing,
		Timeout: c.opts.RouteTimeout,
	})

	for _, conn := range conns {
		e := edges[conn.ID]
		world := route.SimplifyPath(paths[conn.ID], c.opts.SimplifyTolerance)
		screen := make([]geo.Point, len(world))
		for i, p := range world {
			screen[i] = cam.WorldToScreen(p, viewport)
		}
		f.Edges = append(f.Edges, EdgeView{
			ID:         conn.ID,
			From:       e.From,
			To:         e.To,
			Visibility: visibilityOf(conn.ID, state.ActiveEdges, revealOnly.edges),
			New:        state.NewEdges.Has(conn.ID),
			Path:       screen,
		})
	}

	c.logger.Debug("composed frame",
		"index", f.Index,
		"nodes", len(f.Nodes),
		"edges", len(f.Edges),
		"unresolved", len(f.Unresolved),
		"duration", time.Since(started).Round(time.Microsecond))

	return f
}

type revealSets struct {
	nodes step.Set
	edges step.Set
}

// currentRevealOnly collects the reveal-only IDs of the current step.
// Those elements are visible but de-emphasized (faded) for this step.
func currentRevealOnly(st *story.Story, index int) revealSets {
	rs := revealSets{nodes: step.NewSet(), edges: step.NewSet()}
	if index < 0 || index >= len(st.Steps) {
		return rs
	}
	rs.nodes.Add(st.Steps[index].RevealNodes...)
	rs.edges.Add(st.Steps[index].RevealEdges...)
	return rs
}

func visibilityOf(id string, active, revealOnly step.Set) Visibility {
	switch {
	case active.Has(id):
		return VisibilityActive
	case revealOnly.Has(id):
		return VisibilityFaded
	default:
		return VisibilityCompleted
	}
}

// Transition describes the camera animation into a step: the destination
// camera plus duration and easing taken from the step's override when
// present, defaults otherwise.
type Transition struct {
	To       camera.Camera
	Duration time.Duration
	Easing   string
}

// TransitionTo resolves the camera transition for a step. Hosts sample it
// with [camera.Interpolate] at increasing progress values and snap to the
// destination once progress reaches 1.
func (c *Composer) TransitionTo(st *story.Story, index int, viewport geo.Size) Transition {
	tr := Transition{
		To:       c.TargetCamera(st, index, viewport),
		Duration: story.DefaultDuration * time.Millisecond,
		Easing:   story.DefaultEasing,
	}
	idx := step.Clamp(index, len(st.Steps))
	if idx >= 0 {
		if ov := st.Steps[idx].Camera; ov != nil {
			if ov.DurationMS > 0 {
				tr.Duration = time.Duration(ov.DurationMS) * time.Millisecond
			}
			if ov.Easing != "" {
				tr.Easing = ov.Easing
			}
		}
	}
	return tr
}
