package story

import "fmt"

// Validate checks referential integrity of the story definition and returns
// nil if valid. It verifies:
//
//  1. All node and edge IDs are non-empty and unique.
//  2. Every edge endpoint names an existing node.
//  3. Every step's active, reveal, and sub-state lists reference existing
//     elements.
//  4. Every sub-state assignment (and each node's initial sub-state) names
//     a state the target node declared.
//
// The layout engine assumes validated input: resolvers downstream never
// re-check these constraints, they only clamp out-of-range step indices.
func (s *Story) Validate() error {
	nodes := make(map[string]Node, len(s.Nodes))
	for _, n := range s.Nodes {
		if n.ID == "" {
			return ErrInvalidNodeID
		}
		if _, exists := nodes[n.ID]; exists {
			return fmt.Errorf("node %q: %w", n.ID, ErrDuplicateID)
		}
		if n.InitialSubState != "" && !n.DeclaresSubState(n.InitialSubState) {
			return fmt.Errorf("node %q initial %q: %w", n.ID, n.InitialSubState, ErrUnknownSubState)
		}
		nodes[n.ID] = n
	}

	edges := make(map[string]Edge, len(s.Edges))
	for _, e := range s.Edges {
		if e.ID == "" {
			return ErrInvalidEdgeID
		}
		if _, exists := edges[e.ID]; exists {
			return fmt.Errorf("edge %q: %w", e.ID, ErrDuplicateID)
		}
		if _, ok := nodes[e.From]; !ok {
			return fmt.Errorf("edge %q from %q: %w", e.ID, e.From, ErrUnknownEndpoint)
		}
		if _, ok := nodes[e.To]; !ok {
			return fmt.Errorf("edge %q to %q: %w", e.ID, e.To, ErrUnknownEndpoint)
		}
		edges[e.ID] = e
	}

	for i, st := range s.Steps {
		for _, id := range st.Nodes {
			if _, ok := nodes[id]; !ok {
				return fmt.Errorf("step %d node %q: %w", i, id, ErrUnknownStepRef)
			}
		}
		for _, id := range st.RevealNodes {
			if _, ok := nodes[id]; !ok {
				return fmt.Errorf("step %d reveal node %q: %w", i, id, ErrUnknownStepRef)
			}
		}
		for _, id := range st.Edges {
			if _, ok := edges[id]; !ok {
				return fmt.Errorf("step %d edge %q: %w", i, id, ErrUnknownStepRef)
			}
		}
		for _, id := range st.RevealEdges {
			if _, ok := edges[id]; !ok {
				return fmt.Errorf("step %d reveal edge %q: %w", i, id, ErrUnknownStepRef)
			}
		}
		for id, ref := range st.SubStates {
			n, ok := nodes[id]
			if !ok {
				return fmt.Errorf("step %d sub-state target %q: %w", i, id, ErrUnknownStepRef)
			}
			if ref.Kind == SubStateValue && !n.DeclaresSubState(ref.Name) {
				return fmt.Errorf("step %d node %q state %q: %w", i, id, ref.Name, ErrUnknownSubState)
			}
		}
	}

	return nil
}
