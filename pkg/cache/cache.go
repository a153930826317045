// Package cache provides byte-level caching for composed frames and
// serialized stories, with file, Redis, and null backends.
//
// Frames are pure functions of (story, step index, viewport, compose
// options), so cache keys hash exactly those inputs: identical requests
// hit, any change misses. The CLI uses the file backend; the frame server
// can share a Redis instance across replicas; the null backend disables
// caching entirely.
package cache

import (
	"context"
	"time"
)

// Default TTLs per cached artifact kind.
const (
	// TTLStory bounds cached story documents fetched from a store.
	TTLStory = 15 * time.Minute

	// TTLFrame bounds cached composed frames. Frames are cheap to
	// recompute; the TTL mostly caps stale entries after story edits.
	TTLFrame = 24 * time.Hour
)

// Cache is a byte-level key/value store with per-entry TTLs.
// Implementations must treat a missing key as (nil, false, nil), not an
// error.
type Cache interface {
	// Get retrieves a value. The bool reports whether the key was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A non-positive TTL means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// FrameKeyOpts are the composition inputs that participate in a frame
// cache key. Every field that changes the composed output must be listed
// here.
type FrameKeyOpts struct {
	Index      int     `json:"index"`
	ViewportW  float64 `json:"viewport_w"`
	ViewportH  float64 `json:"viewport_h"`
	Padding    float64 `json:"padding"`
	FitPadding float64 `json:"fit_padding"`
	Strategy   string  `json:"strategy"`
	RouteStyle string  `json:"route_style"`
	Spacing    float64 `json:"spacing"`
}

// Keyer generates cache keys.
type Keyer interface {
	// StoryKey generates a key for a story document by its ID.
	StoryKey(id string) string

	// FrameKey generates a key for a composed frame from the story
	// content hash and the composition inputs.
	FrameKey(storyHash string, opts FrameKeyOpts) string
}

// DefaultKeyer is the standard key scheme: a readable prefix plus a
// SHA-256 hash of the key components.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer { return &DefaultKeyer{} }

// StoryKey generates a key for a story document.
func (k *DefaultKeyer) StoryKey(id string) string {
	return "story:" + id
}

// FrameKey generates a key for a composed frame.
func (k *DefaultKeyer) FrameKey(storyHash string, opts FrameKeyOpts) string {
	return hashKey("frame", storyHash, opts)
}

// ScopedKeyer wraps a Keyer with a prefix for namespace isolation, e.g.
// when several projects share one Redis instance.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer that prepends prefix to every key.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// StoryKey generates a prefixed story key.
func (k *ScopedKeyer) StoryKey(id string) string {
	return k.prefix + k.inner.StoryKey(id)
}

// FrameKey generates a prefixed frame key.
func (k *ScopedKeyer) FrameKey(storyHash string, opts FrameKeyOpts) string {
	return k.prefix + k.inner.FrameKey(storyHash, opts)
}
