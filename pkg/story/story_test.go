package story

import (
	"errors"
	"testing"

	"github.com/matzehuels/storyline/pkg/geo"
)

// valid returns a minimal story that passes validation.
func valid() *Story {
	return &Story{
		Title: "test",
		Nodes: []Node{
			{ID: "a", Size: geo.Size{Width: 100, Height: 50}},
			{ID: "b", Position: geo.Point{X: 200}, Size: geo.Size{Width: 100, Height: 50}},
		},
		Edges: []Edge{
			{ID: "e1", From: "a", To: "b"},
		},
		Steps: []Step{
			{Order: 0, Nodes: []string{"a"}},
			{Order: 1, Nodes: []string{"b"}, Edges: []string{"e1"}},
		},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Story)
		wantErr error
	}{
		{
			name:   "Valid",
			mutate: func(s *Story) {},
		},
		{
			name:    "EmptyNodeID",
			mutate:  func(s *Story) { s.Nodes[0].ID = "" },
			wantErr: ErrInvalidNodeID,
		},
		{
			name:    "EmptyEdgeID",
			mutate:  func(s *Story) { s.Edges[0].ID = "" },
			wantErr: ErrInvalidEdgeID,
		},
		{
			name:    "DuplicateNodeID",
			mutate:  func(s *Story) { s.Nodes[1].ID = "a" },
			wantErr: ErrDuplicateID,
		},
		{
			name: "DuplicateEdgeID",
			mutate: func(s *Story) {
				s.Edges = append(s.Edges, Edge{ID: "e1", From: "b", To: "a"})
			},
			wantErr: ErrDuplicateID,
		},
		{
			name:    "UnknownEdgeFrom",
			mutate:  func(s *Story) { s.Edges[0].From = "ghost" },
			wantErr: ErrUnknownEndpoint,
		},
		{
			name:    "UnknownEdgeTo",
			mutate:  func(s *Story) { s.Edges[0].To = "ghost" },
			wantErr: ErrUnknownEndpoint,
		},
		{
			name:    "StepReferencesUnknownNode",
			mutate:  func(s *Story) { s.Steps[0].Nodes = append(s.Steps[0].Nodes, "ghost") },
			wantErr: ErrUnknownStepRef,
		},
		{
			name:    "StepRevealsUnknownNode",
			mutate:  func(s *Story) { s.Steps[0].RevealNodes = []string{"ghost"} },
			wantErr: ErrUnknownStepRef,
		},
		{
			name:    "StepReferencesUnknownEdge",
			mutate:  func(s *Story) { s.Steps[0].Edges = []string{"ghost"} },
			wantErr: ErrUnknownStepRef,
		},
		{
			name:    "StepRevealsUnknownEdge",
			mutate:  func(s *Story) { s.Steps[0].RevealEdges = []string{"ghost"} },
			wantErr: ErrUnknownStepRef,
		},
		{
			name: "SubStateTargetUnknown",
			mutate: func(s *Story) {
				s.Steps[0].SubStates = map[string]SubStateRef{"ghost": SubState("x")}
			},
			wantErr: ErrUnknownStepRef,
		},
		{
			name: "SubStateNotDeclared",
			mutate: func(s *Story) {
				s.Nodes[0].SubStates = []string{"idle"}
				s.Steps[0].SubStates = map[string]SubStateRef{"a": SubState("running")}
			},
			wantErr: ErrUnknownSubState,
		},
		{
			name: "SubStateClearAlwaysAllowed",
			mutate: func(s *Story) {
				s.Steps[0].SubStates = map[string]SubStateRef{"a": ClearSubState()}
			},
		},
		{
			name: "InitialSubStateNotDeclared",
			mutate: func(s *Story) {
				s.Nodes[0].SubStates = []string{"idle"}
				s.Nodes[0].InitialSubState = "running"
			},
			wantErr: ErrUnknownSubState,
		},
		{
			name: "InitialSubStateDeclared",
			mutate: func(s *Story) {
				s.Nodes[0].SubStates = []string{"idle"}
				s.Nodes[0].InitialSubState = "idle"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid()
			tt.mutate(s)

			err := s.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Validate = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestSortSteps(t *testing.T) {
	s := &Story{
		Steps: []Step{
			{Order: 5, Title: "last"},
			{Order: 1, Title: "first"},
			{Order: 3, Title: "tie-a"},
			{Order: 3, Title: "tie-b"},
		},
	}

	s.SortSteps()

	got := make([]string, len(s.Steps))
	for i, st := range s.Steps {
		got[i] = st.Title
	}
	want := []string{"first", "tie-a", "tie-b", "last"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestNodeLookup(t *testing.T) {
	s := valid()

	if n, ok := s.Node("a"); !ok || n.ID != "a" {
		t.Errorf("Node(a) = %v, %v", n, ok)
	}
	if _, ok := s.Node("ghost"); ok {
		t.Error("Node(ghost) found")
	}
	if e, ok := s.Edge("e1"); !ok || e.From != "a" {
		t.Errorf("Edge(e1) = %v, %v", e, ok)
	}
	if got := len(s.NodeIndex()); got != 2 {
		t.Errorf("NodeIndex size = %d", got)
	}
	if got := len(s.EdgeIndex()); got != 1 {
		t.Errorf("EdgeIndex size = %d", got)
	}
}

func TestDisplayLabel(t *testing.T) {
	if got := (Node{ID: "a"}).DisplayLabel(); got != "a" {
		t.Errorf("fallback label = %q", got)
	}
	if got := (Node{ID: "a", Label: "Alpha"}).DisplayLabel(); got != "Alpha" {
		t.Errorf("label = %q", got)
	}
}
