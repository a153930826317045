package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/matzehuels/storyline/pkg/frame"
	"github.com/matzehuels/storyline/pkg/geo"
	"github.com/matzehuels/storyline/pkg/route"
	"github.com/matzehuels/storyline/pkg/store"
	"github.com/matzehuels/storyline/pkg/story"
)

func newTestServer(t *testing.T) (*httptest.Server, string) {
	t.Helper()

	st, err := store.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	rec, err := store.NewRecord(&story.Story{
		Title: "demo",
		Nodes: []story.Node{
			{ID: "a", Size: geo.Size{Width: 100, Height: 50}},
			{ID: "b", Position: geo.Point{X: 300}, Size: geo.Size{Width: 100, Height: 50}},
		},
		Edges: []story.Edge{{ID: "e1", From: "a", To: "b"}},
		Steps: []story.Step{
			{Order: 0, Nodes: []string{"a"}},
			{Order: 1, Nodes: []string{"b"}, Edges: []string{"e1"}},
		},
	})
	if err != nil {
		t.Fatalf("NewRecord: %v", err)
	}
	if err := st.Put(context.Background(), rec); err != nil {
		t.Fatalf("Put: %v", err)
	}

	composer := frame.NewCachedComposer(
		frame.NewComposer(frame.Options{RouteStyle: route.StyleStraight}, nil), nil, nil)
	srv := New(st, composer, geo.Size{Width: 800, Height: 600}, nil)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	t.Cleanup(func() { st.Close() })
	return ts, rec.ID
}

func getJSON(t *testing.T, url string, wantStatus int, v any) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		t.Fatalf("GET %s status = %d, want %d", url, resp.StatusCode, wantStatus)
	}
	if v != nil {
		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
}

func TestHealthz(t *testing.T) {
	ts, _ := newTestServer(t)

	var body map[string]string
	getJSON(t, ts.URL+"/healthz", http.StatusOK, &body)
	if body["status"] != "ok" {
		t.Errorf("healthz = %v", body)
	}
}

func TestListStories(t *testing.T) {
	ts, id := newTestServer(t)

	var summaries []store.Summary
	getJSON(t, ts.URL+"/stories", http.StatusOK, &summaries)

	if len(summaries) != 1 {
		t.Fatalf("summaries = %d, want 1", len(summaries))
	}
	if summaries[0].ID != id || summaries[0].Title != "demo" {
		t.Errorf("summary = %+v", summaries[0])
	}
}

func TestGetStory(t *testing.T) {
	ts, id := newTestServer(t)

	var st story.Story
	getJSON(t, ts.URL+"/stories/"+id, http.StatusOK, &st)

	if st.Title != "demo" || len(st.Nodes) != 2 || st.StepCount() != 2 {
		t.Errorf("story = %+v", st)
	}
}

func TestGetStoryNotFound(t *testing.T) {
	ts, _ := newTestServer(t)

	getJSON(t, ts.URL+"/stories/no-such-id", http.StatusNotFound, nil)
}

func TestGetFrame(t *testing.T) {
	ts, id := newTestServer(t)

	var f frame.Frame
	getJSON(t, ts.URL+"/stories/"+id+"/frames/1", http.StatusOK, &f)

	if f.Index != 1 {
		t.Errorf("index = %d", f.Index)
	}
	if len(f.Nodes) != 2 || len(f.Edges) != 1 {
		t.Errorf("frame shape = %d nodes, %d edges", len(f.Nodes), len(f.Edges))
	}
	if f.Viewport.Width != 800 || f.Viewport.Height != 600 {
		t.Errorf("default viewport = %+v", f.Viewport)
	}
}

func TestGetFrameCustomViewport(t *testing.T) {
	ts, id := newTestServer(t)

	var f frame.Frame
	getJSON(t, ts.URL+"/stories/"+id+"/frames/0?w=1024&h=768", http.StatusOK, &f)

	if f.Viewport.Width != 1024 || f.Viewport.Height != 768 {
		t.Errorf("viewport = %+v", f.Viewport)
	}
}

func TestGetFrameClampsIndex(t *testing.T) {
	ts, id := newTestServer(t)

	// Out-of-range indices clamp to the last step instead of failing.
	var f frame.Frame
	getJSON(t, ts.URL+"/stories/"+id+"/frames/99", http.StatusOK, &f)
	if f.Index != 1 {
		t.Errorf("clamped index = %d, want 1", f.Index)
	}
}

func TestGetFrameBadIndex(t *testing.T) {
	ts, id := newTestServer(t)

	getJSON(t, ts.URL+"/stories/"+id+"/frames/abc", http.StatusBadRequest, nil)
}
