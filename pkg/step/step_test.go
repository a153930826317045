package step

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/storyline/pkg/story"
)

// chain builds a story where each step activates exactly one new node.
func chain(ids ...string) *story.Story {
	st := &story.Story{}
	for i, id := range ids {
		st.Nodes = append(st.Nodes, story.Node{ID: id})
		st.Steps = append(st.Steps, story.Step{Order: i, Nodes: []string{id}})
	}
	return st
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name          string
		steps         []story.Step
		index         int
		wantIndex     int
		wantActive    []string
		wantRevealed  []string
		wantCompleted []string
		wantNew       []string
	}{
		{
			name:      "NoSteps",
			steps:     nil,
			index:     0,
			wantIndex: -1,
		},
		{
			name:         "FirstStepEverythingNew",
			steps:        chain("n1", "n2", "n3").Steps,
			index:        0,
			wantIndex:    0,
			wantActive:   []string{"n1"},
			wantRevealed: []string{"n1"},
			wantNew:      []string{"n1"},
		},
		{
			name:          "ThreeStepChain",
			steps:         chain("n1", "n2", "n3").Steps,
			index:         2,
			wantIndex:     2,
			wantActive:    []string{"n3"},
			wantRevealed:  []string{"n1", "n2", "n3"},
			wantCompleted: []string{"n1", "n2"},
			wantNew:       []string{"n3"},
		},
		{
			name:          "IndexClampedHigh",
			steps:         chain("n1", "n2").Steps,
			index:         99,
			wantIndex:     1,
			wantActive:    []string{"n2"},
			wantRevealed:  []string{"n1", "n2"},
			wantCompleted: []string{"n1"},
			wantNew:       []string{"n2"},
		},
		{
			name:         "IndexClampedNegative",
			steps:        chain("n1", "n2").Steps,
			index:        -5,
			wantIndex:    0,
			wantActive:   []string{"n1"},
			wantRevealed: []string{"n1"},
			wantNew:      []string{"n1"},
		},
		{
			name: "RevealOnlyNotActive",
			steps: []story.Step{
				{Order: 0, Nodes: []string{"a"}, RevealNodes: []string{"b"}},
			},
			index:         0,
			wantIndex:     0,
			wantActive:    []string{"a"},
			wantRevealed:  []string{"a", "b"},
			wantCompleted: []string{"b"},
			wantNew:       []string{"a", "b"},
		},
		{
			name: "ReactivationIsNotNew",
			steps: []story.Step{
				{Order: 0, Nodes: []string{"a"}},
				{Order: 1, Nodes: []string{"b"}},
				{Order: 2, Nodes: []string{"a"}},
			},
			index:         2,
			wantIndex:     2,
			wantActive:    []string{"a"},
			wantRevealed:  []string{"a", "b"},
			wantCompleted: []string{"b"},
			wantNew:       []string{},
		},
		{
			name: "ActiveNeverAccumulates",
			steps: []story.Step{
				{Order: 0, Nodes: []string{"a", "b"}},
				{Order: 1, Nodes: []string{}},
			},
			index:         1,
			wantIndex:     1,
			wantActive:    []string{},
			wantRevealed:  []string{"a", "b"},
			wantCompleted: []string{"a", "b"},
			wantNew:       []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resolve(tt.steps, tt.index)

			if got.Index != tt.wantIndex {
				t.Errorf("Index = %d, want %d", got.Index, tt.wantIndex)
			}
			assertSet(t, "active", got.ActiveNodes, tt.wantActive)
			assertSet(t, "revealed", got.RevealedNodes, tt.wantRevealed)
			assertSet(t, "completed", got.CompletedNodes, tt.wantCompleted)
			assertSet(t, "new", got.NewNodes, tt.wantNew)
		})
	}
}

// assertSet compares a resolved set against the expected members.
func assertSet(t *testing.T, label string, got Set, want []string) {
	t.Helper()
	if want == nil {
		want = []string{}
	}
	if diff := cmp.Diff(want, got.Sorted()); diff != "" {
		t.Errorf("%s mismatch (-want +got):\n%s", label, diff)
	}
}

// TestResolveInvariants checks the set-algebra relationships that must hold
// at every index of any step list.
func TestResolveInvariants(t *testing.T) {
	steps := []story.Step{
		{Order: 0, Nodes: []string{"a", "b"}, RevealNodes: []string{"x"}, Edges: []string{"e1"}},
		{Order: 1, Nodes: []string{"c"}, RevealEdges: []string{"e2"}},
		{Order: 2, Nodes: []string{"a"}, RevealNodes: []string{"y"}},
		{Order: 3, Nodes: []string{"d"}},
	}

	prev := NewSet()
	for i := range steps {
		st := Resolve(steps, i)

		for id := range st.ActiveNodes {
			if !st.RevealedNodes.Has(id) {
				t.Errorf("index %d: active node %q not revealed", i, id)
			}
		}
		if diff := cmp.Diff(st.RevealedNodes.Diff(st.ActiveNodes).Sorted(), st.CompletedNodes.Sorted()); diff != "" {
			t.Errorf("index %d: completed != revealed \\ active:\n%s", i, diff)
		}
		if diff := cmp.Diff(st.RevealedNodes.Diff(prev).Sorted(), st.NewNodes.Sorted()); diff != "" {
			t.Errorf("index %d: new != revealed \\ prevRevealed:\n%s", i, diff)
		}
		for id := range prev {
			if !st.RevealedNodes.Has(id) {
				t.Errorf("index %d: revealed set lost %q", i, id)
			}
		}
		prev = st.RevealedNodes
	}
}

func TestResolveIsPure(t *testing.T) {
	steps := chain("n1", "n2", "n3").Steps

	first := Resolve(steps, 2)
	second := Resolve(steps, 2)

	if diff := cmp.Diff(first.RevealedNodes.Sorted(), second.RevealedNodes.Sorted()); diff != "" {
		t.Errorf("repeated resolve diverged:\n%s", diff)
	}

	// Mutating one result must not leak into a fresh resolve.
	first.RevealedNodes.Add("zz")
	third := Resolve(steps, 2)
	if third.RevealedNodes.Has("zz") {
		t.Error("resolve leaked state between calls")
	}
}

func TestSubStateAt(t *testing.T) {
	st := &story.Story{
		Nodes: []story.Node{
			{ID: "w", SubStates: []string{"idle", "running", "done"}, InitialSubState: "idle"},
			{ID: "plain"},
		},
		Steps: []story.Step{
			{Order: 0},
			{Order: 1, SubStates: map[string]story.SubStateRef{"w": story.SubState("running")}},
			{Order: 2},
			{Order: 3, SubStates: map[string]story.SubStateRef{"w": story.ClearSubState()}},
			{Order: 4},
			{Order: 5, SubStates: map[string]story.SubStateRef{"w": story.SubState("done")}},
		},
	}

	tests := []struct {
		name    string
		node    string
		index   int
		want    string
		wantSet bool
	}{
		{"InitialAppliesBeforeAnyAssignment", "w", 0, "idle", true},
		{"ExplicitValue", "w", 1, "running", true},
		{"ValueSticksAcrossSilentSteps", "w", 2, "running", true},
		{"ClearRemovesValue", "w", 3, "", false},
		{"ClearShadowsInitial", "w", 4, "", false},
		{"ReassignmentAfterClear", "w", 5, "done", true},
		{"NodeWithoutSubStates", "plain", 3, "", false},
		{"UnknownNode", "ghost", 3, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := SubStateAt(st, tt.node, tt.index)
			if got != tt.want || ok != tt.wantSet {
				t.Errorf("SubStateAt(%q, %d) = (%q, %v), want (%q, %v)",
					tt.node, tt.index, got, ok, tt.want, tt.wantSet)
			}
		})
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		index, n, want int
	}{
		{0, 0, -1},
		{5, 0, -1},
		{-1, -3, -1},
		{-1, 4, 0},
		{0, 4, 0},
		{3, 4, 3},
		{4, 4, 3},
		{100, 4, 3},
	}

	for _, tt := range tests {
		if got := Clamp(tt.index, tt.n); got != tt.want {
			t.Errorf("Clamp(%d, %d) = %d, want %d", tt.index, tt.n, got, tt.want)
		}
	}
}

func TestSetDiff(t *testing.T) {
	a := NewSet("x", "y", "z")
	b := NewSet("y")

	if diff := cmp.Diff([]string{"x", "z"}, a.Diff(b).Sorted()); diff != "" {
		t.Errorf("diff mismatch:\n%s", diff)
	}
	if got := len(b.Diff(a)); got != 0 {
		t.Errorf("subset diff size = %d, want 0", got)
	}
}
