package route

import (
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/storyline/pkg/geo"
)

func obstacle(id string, x, y, w, h float64) Obstacle {
	return Obstacle{
		ID:   id,
		Rect: geo.RectFrom(geo.Point{X: x, Y: y}, geo.Size{Width: w, Height: h}),
	}
}

func TestRouteStraightStyle(t *testing.T) {
	obstacles := []Obstacle{
		obstacle("a", 0, 0, 100, 50),
		obstacle("b", 300, 100, 100, 50),
	}
	conns := []Conn{
		{ID: "e1", From: "a", To: "b"},
		{ID: "e2", From: "b", To: "a"},
	}

	r := New(nil)
	got := r.Route(context.Background(), obstacles, conns, Options{Style: StyleStraight})

	want := map[string][]geo.Point{
		"e1": {{X: 0, Y: 0}, {X: 300, Y: 100}},
		"e2": {{X: 300, Y: 100}, {X: 0, Y: 0}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("paths mismatch (-want +got):\n%s", diff)
	}
}

func TestRouteMissingEndpoint(t *testing.T) {
	obstacles := []Obstacle{obstacle("a", 0, 0, 100, 50)}
	conns := []Conn{{ID: "e1", From: "a", To: "ghost"}}

	r := New(nil)
	got := r.Route(context.Background(), obstacles, conns, Options{Style: StyleStraight})

	path, ok := got["e1"]
	if !ok {
		t.Fatal("conn missing from result")
	}
	if len(path) != 0 {
		t.Errorf("missing endpoint produced path %v", path)
	}
}

func TestRouteCancelledContextFallsBack(t *testing.T) {
	obstacles := []Obstacle{
		obstacle("a", 0, 0, 100, 50),
		obstacle("b", 300, 0, 100, 50),
	}
	conns := []Conn{{ID: "e1", From: "a", To: "b"}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := New(nil)
	got := r.Route(ctx, obstacles, conns, Options{Style: StyleSpline})

	// Failure must not surface; the straight fallback covers every conn.
	want := []geo.Point{{X: 0, Y: 0}, {X: 300, Y: 0}}
	if diff := cmp.Diff(want, got["e1"]); diff != "" {
		t.Errorf("fallback path mismatch:\n%s", diff)
	}
}

func TestBuildDOT(t *testing.T) {
	obstacles := []Obstacle{
		obstacle("svc a", 10, 20, 144, 72),
	}
	conns := []Conn{
		{ID: "edge-1", From: "svc a", To: "svc a"},
	}

	dot := buildDOT(obstacles, conns, Options{Style: StyleOrthogonal, Spacing: 12})

	for _, want := range []string{
		"splines=ortho",
		`sep="+12"`,
		`"svc a" [pos="10.00,20.00!", width=2.0000, height=1.0000]`,
		`"svc a" -> "svc a" [id="e0"]`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}

	// Spline styles request splines; zero spacing omits sep.
	dot = buildDOT(obstacles, conns, Options{Style: StyleSpline})
	if !strings.Contains(dot, "splines=spline") {
		t.Errorf("DOT missing spline request:\n%s", dot)
	}
	if strings.Contains(dot, "sep=") {
		t.Errorf("DOT has unexpected sep:\n%s", dot)
	}
}

func TestParseEdgePaths(t *testing.T) {
	xdot := `digraph R {
	graph [bb="0,0,400,200", splines=spline];
	node [fixedsize=true, label="", shape=box];
	"a" [height=1, pos="0,0", width=2];
	"b" [height=1, pos="300,0", width=2];
	"a" -> "b" [id=e0, pos="e,228,0 72,0 120,10 180,10 2\
20,0"];
}`

	paths, err := parseEdgePaths(xdot)
	if err != nil {
		t.Fatalf("parseEdgePaths: %v", err)
	}

	want := []geo.Point{
		{X: 72, Y: 0},
		{X: 120, Y: 10},
		{X: 180, Y: 10},
		{X: 220, Y: 0},
		{X: 228, Y: 0}, // e, endpoint appended
	}
	if diff := cmp.Diff(want, paths["e0"]); diff != "" {
		t.Errorf("path mismatch (-want +got):\n%s", diff)
	}
}

func TestParsePos(t *testing.T) {
	tests := []struct {
		name    string
		pos     string
		want    []geo.Point
		wantErr bool
	}{
		{
			name: "PlainPairs",
			pos:  "0,0 10,20 30,40",
			want: []geo.Point{{X: 0, Y: 0}, {X: 10, Y: 20}, {X: 30, Y: 40}},
		},
		{
			name: "StartAndEndMarkers",
			pos:  "s,1,2 e,9,8 3,4 5,6",
			want: []geo.Point{{X: 1, Y: 2}, {X: 3, Y: 4}, {X: 5, Y: 6}, {X: 9, Y: 8}},
		},
		{
			name:    "MalformedPair",
			pos:     "0,0 nonsense",
			wantErr: true,
		},
		{
			name:    "TooManyComponents",
			pos:     "1,2,3",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parsePos(tt.pos)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parsePos(%q) succeeded with %v", tt.pos, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("parsePos: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("points mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSimplifyPath(t *testing.T) {
	tests := []struct {
		name      string
		path      []geo.Point
		tolerance float64
		want      []geo.Point
	}{
		{
			name:      "RemovesCollinearInterior",
			path:      []geo.Point{{X: 0, Y: 0}, {X: 5, Y: 0}, {X: 10, Y: 0}},
			tolerance: 0.5,
			want:      []geo.Point{{X: 0, Y: 0}, {X: 10, Y: 0}},
		},
		{
			name:      "KeepsBends",
			path:      []geo.Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}},
			tolerance: 0.5,
			want:      []geo.Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}},
		},
		{
			name:      "TwoPointsUnchanged",
			path:      []geo.Point{{X: 0, Y: 0}, {X: 10, Y: 10}},
			tolerance: 0.5,
			want:      []geo.Point{{X: 0, Y: 0}, {X: 10, Y: 10}},
		},
		{
			name:      "ToleranceAbsorbsJitter",
			path:      []geo.Point{{X: 0, Y: 0}, {X: 5, Y: 0.01}, {X: 10, Y: 0}},
			tolerance: 1,
			want:      []geo.Point{{X: 0, Y: 0}, {X: 10, Y: 0}},
		},
		{
			name:      "EndpointsAlwaysKept",
			path:      []geo.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0}, {X: 3, Y: 0}},
			tolerance: 0.5,
			want:      []geo.Point{{X: 0, Y: 0}, {X: 3, Y: 0}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SimplifyPath(tt.path, tt.tolerance)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("SimplifyPath mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
