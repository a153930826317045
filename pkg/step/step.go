// Package step resolves per-step visibility state for a story.
//
// Given the ordered step list and a target index, [Resolve] computes which
// node and edge IDs are active, revealed, completed, and newly revealed at
// that index, and [SubStateAt] resolves a node's sticky sub-state. Both are
// pure functions over the immutable story definition: calling them twice
// with the same inputs yields identical results, and nothing is cached or
// mutated. Recomputation happens only when the caller's index changes, so
// the O(index) scans here are never a concern in practice.
package step

import (
	"sort"

	"github.com/matzehuels/storyline/pkg/story"
)

// Set is a collection of element IDs. The zero value is not usable; use
// [NewSet] or the Set-returning resolver fields, which are never nil.
type Set map[string]struct{}

// NewSet builds a set from the given IDs.
func NewSet(ids ...string) Set {
	s := make(Set, len(ids))
	s.Add(ids...)
	return s
}

// Has reports whether id is in the set.
func (s Set) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Add inserts the given IDs.
func (s Set) Add(ids ...string) {
	for _, id := range ids {
		s[id] = struct{}{}
	}
}

// Clone returns an independent copy of the set.
func (s Set) Clone() Set {
	out := make(Set, len(s))
	for id := range s {
		out[id] = struct{}{}
	}
	return out
}

// Sorted returns the members in ascending order, for deterministic output.
func (s Set) Sorted() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Diff returns s \ other.
func (s Set) Diff(other Set) Set {
	out := make(Set)
	for id := range s {
		if !other.Has(id) {
			out[id] = struct{}{}
		}
	}
	return out
}

// State is the resolved visibility state at one step index. The active,
// completed, and not-yet-revealed sets partition the element universe:
// completed is exactly revealed minus active, and anything outside revealed
// has not been shown yet.
type State struct {
	// Index is the clamped step index this state was resolved for.
	// It is -1 when the story has no steps.
	Index int

	// ActiveNodes and ActiveEdges are exactly the IDs the current step
	// declares active - never unioned with history.
	ActiveNodes Set
	ActiveEdges Set

	// RevealedNodes and RevealedEdges accumulate every active and
	// reveal-only ID across steps 0..Index inclusive.
	RevealedNodes Set
	RevealedEdges Set

	// CompletedNodes and CompletedEdges are revealed but not active.
	CompletedNodes Set
	CompletedEdges Set

	// NewNodes and NewEdges are revealed at Index but not at Index-1.
	// They exist to trigger entry animations and are not persistent state.
	NewNodes Set
	NewEdges Set
}

// Clamp constrains index into [0, n). A non-positive n yields -1,
// meaning "no valid step". Out-of-range indices are clamped, never an error.
func Clamp(index, n int) int {
	if n <= 0 {
		return -1
	}
	if index < 0 {
		return 0
	}
	if index >= n {
		return n - 1
	}
	return index
}

// Resolve walks steps 0..index and produces the visibility state at index.
// The index is clamped into range first; resolving an empty step list
// returns a State with empty sets and Index -1.
//
// Steps must be sorted by Order, which [story.ReadStory] and friends
// guarantee.
func Resolve(steps []story.Step, index int) State {
	st := State{
		Index:          Clamp(index, len(steps)),
		ActiveNodes:    NewSet(),
		ActiveEdges:    NewSet(),
		RevealedNodes:  NewSet(),
		RevealedEdges:  NewSet(),
		CompletedNodes: NewSet(),
		CompletedEdges: NewSet(),
		NewNodes:       NewSet(),
		NewEdges:       NewSet(),
	}
	if st.Index < 0 {
		return st
	}

	prevNodes := NewSet()
	prevEdges := NewSet()
	for i := 0; i <= st.Index; i++ {
		if i == st.Index {
			prevNodes = st.RevealedNodes.Clone()
			prevEdges = st.RevealedEdges.Clone()
		}
		s := steps[i]
		st.RevealedNodes.Add(s.Nodes...)
		st.RevealedNodes.Add(s.RevealNodes...)
		st.RevealedEdges.Add(s.Edges...)
		st.RevealedEdges.Add(s.RevealEdges...)
	}

	cur := steps[st.Index]
	st.ActiveNodes.Add(cur.Nodes...)
	st.ActiveEdges.Add(cur.Edges...)

	st.CompletedNodes = st.RevealedNodes.Diff(st.ActiveNodes)
	st.CompletedEdges = st.RevealedEdges.Diff(st.ActiveEdges)
	st.NewNodes = st.RevealedNodes.Diff(prevNodes)
	st.NewEdges = st.RevealedEdges.Diff(prevEdges)

	return st
}

// SubStateAt resolves the sticky sub-state of one node at the given index.
// It scans from the clamped index back to step 0 for the most recent
// explicit assignment - a named value or an explicit clear. A clear yields
// ("", false) and shadows both earlier assignments and the node's declared
// initial value. With no assignment at all, the initial value applies when
// declared; otherwise the node has no sub-state.
func SubStateAt(s *story.Story, nodeID string, index int) (string, bool) {
	idx := Clamp(index, len(s.Steps))
	for i := idx; i >= 0; i-- {
		ref, ok := s.Steps[i].SubStates[nodeID]
		if !ok {
			continue
		}
		switch ref.Kind {
		case story.SubStateValue:
			return ref.Name, true
		case story.SubStateClear:
			return "", false
		}
	}
	if n, ok := s.Node(nodeID); ok && n.InitialSubState != "" {
		return n.InitialSubState, true
	}
	return "", false
}
