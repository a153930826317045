package story

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// SubStateKind discriminates the three-valued semantics of a sub-state
// assignment: a step either says nothing about a node, assigns a named
// value, or explicitly clears the current value. Clearing persists forward
// like any other assignment, so it must stay distinct from "not mentioned".
type SubStateKind int

const (
	// SubStateUnset means no assignment exists. This is the zero value and
	// never appears inside a step's SubStates map - an absent key carries
	// that meaning.
	SubStateUnset SubStateKind = iota
	// SubStateValue assigns a named state from the node's vocabulary.
	SubStateValue
	// SubStateClear removes the node's sub-state from this step onward.
	SubStateClear
)

// SubStateRef is one tagged sub-state assignment.
type SubStateRef struct {
	Kind SubStateKind
	Name string // set only when Kind == SubStateValue
}

// SubState builds a value assignment.
func SubState(name string) SubStateRef {
	return SubStateRef{Kind: SubStateValue, Name: name}
}

// ClearSubState builds an explicit clear marker.
func ClearSubState() SubStateRef {
	return SubStateRef{Kind: SubStateClear}
}

// String returns a readable form for logs and error messages.
func (r SubStateRef) String() string {
	switch r.Kind {
	case SubStateValue:
		return r.Name
	case SubStateClear:
		return "<clear>"
	default:
		return "<unset>"
	}
}

// MarshalJSON encodes a value as its name and a clear as JSON null.
func (r SubStateRef) MarshalJSON() ([]byte, error) {
	if r.Kind == SubStateClear {
		return []byte("null"), nil
	}
	return json.Marshal(r.Name)
}

// UnmarshalJSON decodes JSON null as an explicit clear and a string as a
// value assignment. Anything else is an error.
func (r *SubStateRef) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*r = ClearSubState()
		return nil
	}
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return fmt.Errorf("sub-state must be a string or null: %w", err)
	}
	*r = SubState(name)
	return nil
}

// MarshalYAML mirrors the JSON encoding: clear markers become YAML null.
func (r SubStateRef) MarshalYAML() (any, error) {
	if r.Kind == SubStateClear {
		return nil, nil
	}
	return r.Name, nil
}

// UnmarshalYAML decodes YAML null (or ~) as a clear and a scalar string as
// a value assignment.
func (r *SubStateRef) UnmarshalYAML(value *yaml.Node) error {
	if value.Tag == "!!null" {
		*r = ClearSubState()
		return nil
	}
	var name string
	if err := value.Decode(&name); err != nil {
		return fmt.Errorf("sub-state must be a string or null: %w", err)
	}
	*r = SubState(name)
	return nil
}
