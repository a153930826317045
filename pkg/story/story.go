// Package story defines the immutable story model consumed by the layout
// engine: a graph of nodes and edges plus an ordered list of steps, each
// step emphasizing a subset of the graph.
//
// A Story is built once (from JSON, YAML, or programmatically), validated
// with [Story.Validate], and then treated as read-only. Every resolver in
// the engine recomputes its output from the story value and a step index -
// nothing here is mutated in place after construction.
package story

import (
	"errors"
	"sort"

	"github.com/matzehuels/storyline/pkg/geo"
)

var (
	// ErrInvalidNodeID is returned by [Story.Validate] when a node has an
	// empty ID. All nodes and edges must have non-empty identifiers.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrInvalidEdgeID is returned by [Story.Validate] when an edge has an
	// empty ID.
	ErrInvalidEdgeID = errors.New("edge ID must not be empty")

	// ErrDuplicateID is returned by [Story.Validate] when two nodes or two
	// edges share an ID. Node and edge ID spaces are independent.
	ErrDuplicateID = errors.New("duplicate ID")

	// ErrUnknownEndpoint is returned by [Story.Validate] when an edge
	// references a node that does not exist.
	ErrUnknownEndpoint = errors.New("edge references unknown node")

	// ErrUnknownStepRef is returned by [Story.Validate] when a step's
	// active or reveal list references a node or edge that does not exist.
	ErrUnknownStepRef = errors.New("step references unknown element")

	// ErrUnknownSubState is returned by [Story.Validate] when a step
	// assigns a sub-state name the target node never declared, or when a
	// node's initial sub-state is missing from its own vocabulary.
	ErrUnknownSubState = errors.New("sub-state not declared by node")
)

// Node is a positioned element of the story graph. Position and Size are in
// world coordinates; the camera maps them to the screen per frame.
type Node struct {
	ID       string    `json:"id" yaml:"id"`
	Label    string    `json:"label,omitempty" yaml:"label,omitempty"`
	Position geo.Point `json:"position" yaml:"position"`
	Size     geo.Size  `json:"size" yaml:"size"`

	// AllowOverlap exempts the node from overlap detection and resolution.
	AllowOverlap bool `json:"allow_overlap,omitempty" yaml:"allow_overlap,omitempty"`

	// SubStates is the declared vocabulary of named sub-states for this
	// node. Steps may only assign names from this list.
	SubStates []string `json:"substates,omitempty" yaml:"substates,omitempty"`

	// InitialSubState is the sub-state in effect before any step assigns
	// one. Empty means the node starts with no sub-state.
	InitialSubState string `json:"initial_substate,omitempty" yaml:"initial_substate,omitempty"`
}

// DisplayLabel returns the label if set, otherwise the ID.
func (n Node) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

// Rect returns the node's world-space bounding rectangle.
func (n Node) Rect() geo.Rect { return geo.RectFrom(n.Position, n.Size) }

// DeclaresSubState reports whether name is in the node's vocabulary.
func (n Node) DeclaresSubState(name string) bool {
	for _, s := range n.SubStates {
		if s == name {
			return true
		}
	}
	return false
}

// Edge is a directed connector between two nodes. Path, when present,
// holds a previously resolved route; the router recomputes it per frame.
type Edge struct {
	ID   string      `json:"id" yaml:"id"`
	From string      `json:"from" yaml:"from"`
	To   string      `json:"to" yaml:"to"`
	Path []geo.Point `json:"path,omitempty" yaml:"path,omitempty"`
}

// Easing names the interpolation curves supported by camera transitions.
const (
	EasingLinear    = "linear"
	EasingIn        = "ease-in"
	EasingOut       = "ease-out"
	EasingInOut     = "ease-in-out"
	DefaultEasing   = EasingInOut
	DefaultDuration = 400 // milliseconds
)

// CameraOverride pins the camera for one step instead of the automatic
// fit-to-region behavior.
type CameraOverride struct {
	Center     geo.Point `json:"center" yaml:"center"`
	Zoom       float64   `json:"zoom" yaml:"zoom"`
	DurationMS int       `json:"duration_ms,omitempty" yaml:"duration_ms,omitempty"`
	Easing     string    `json:"easing,omitempty" yaml:"easing,omitempty"`
}

// Step is one ordinal unit of the narrative sequence.
type Step struct {
	Order int    `json:"order" yaml:"order"`
	Title string `json:"title,omitempty" yaml:"title,omitempty"`

	// Nodes and Edges are the element IDs this step emphasizes (active).
	Nodes []string `json:"nodes,omitempty" yaml:"nodes,omitempty"`
	Edges []string `json:"edges,omitempty" yaml:"edges,omitempty"`

	// RevealNodes and RevealEdges become visible at this step without
	// being emphasized.
	RevealNodes []string `json:"reveal_nodes,omitempty" yaml:"reveal_nodes,omitempty"`
	RevealEdges []string `json:"reveal_edges,omitempty" yaml:"reveal_edges,omitempty"`

	// SubStates assigns sub-state values per node ID. A null value in the
	// serialized form is an explicit clear, which persists like any other
	// assignment. Absent keys leave the previous value in effect.
	SubStates map[string]SubStateRef `json:"substates,omitempty" yaml:"substates,omitempty"`

	// Camera, when set, overrides the automatic camera for this step.
	Camera *CameraOverride `json:"camera,omitempty" yaml:"camera,omitempty"`
}

// Story is the complete validated definition: graph plus ordered steps.
type Story struct {
	Title string `json:"title,omitempty" yaml:"title,omitempty"`
	Nodes []Node `json:"nodes" yaml:"nodes"`
	Edges []Edge `json:"edges" yaml:"edges"`
	Steps []Step `json:"steps" yaml:"steps"`
}

// Node returns the node with the given ID, or false if not found.
func (s *Story) Node(id string) (Node, bool) {
	for _, n := range s.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// Edge returns the edge with the given ID, or false if not found.
func (s *Story) Edge(id string) (Edge, bool) {
	for _, e := range s.Edges {
		if e.ID == id {
			return e, true
		}
	}
	return Edge{}, false
}

// NodeIndex builds an ID → node lookup map.
func (s *Story) NodeIndex() map[string]Node {
	m := make(map[string]Node, len(s.Nodes))
	for _, n := range s.Nodes {
		m[n.ID] = n
	}
	return m
}

// EdgeIndex builds an ID → edge lookup map.
func (s *Story) EdgeIndex() map[string]Edge {
	m := make(map[string]Edge, len(s.Edges))
	for _, e := range s.Edges {
		m[e.ID] = e
	}
	return m
}

// SortSteps orders steps ascending by Order. Ties keep their relative
// position. Deserialization calls this so resolvers can assume sorted input.
func (s *Story) SortSteps() {
	sort.SliceStable(s.Steps, func(i, j int) bool {
		return s.Steps[i].Order < s.Steps[j].Order
	})
}

// StepCount returns the number of steps.
func (s *Story) StepCount() int { return len(s.Steps) }
