package story

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// MarshalStory serializes a story to pretty-printed JSON bytes.
// JSON is the canonical interchange format; YAML is the authoring format.
func MarshalStory(s *Story) ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

// ReadStory deserializes a JSON story from r, sorts its steps, and
// validates it.
func ReadStory(r io.Reader) (*Story, error) {
	var s Story
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode story: %w", err)
	}
	return finish(&s)
}

// ReadStoryYAML deserializes a YAML story from r, sorts its steps, and
// validates it.
func ReadStoryYAML(r io.Reader) (*Story, error) {
	var s Story
	if err := yaml.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode story: %w", err)
	}
	return finish(&s)
}

// ReadStoryFile loads a story from path, choosing the decoder by file
// extension: .yaml/.yml use YAML, everything else JSON.
func ReadStoryFile(path string) (*Story, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ReadStoryYAML(f)
	default:
		return ReadStory(f)
	}
}

// WriteStoryFile writes a story to a JSON file.
func WriteStoryFile(s *Story, path string) error {
	data, err := MarshalStory(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func finish(s *Story) (*Story, error) {
	s.SortSteps()
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}
