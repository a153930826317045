// Package store persists authored stories so the CLI and frame server can
// load them by ID.
//
// Two backends exist: a file store for single-machine use (one JSON file
// per story under a config directory) and a Mongo store for shared
// deployments. Both keep the canonical JSON encoding from pkg/story as the
// stored payload, so a document written by one backend can be imported by
// the other unchanged.
package store

import (
	"bytes"
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/storyline/pkg/story"
)

// ErrNotFound is returned by Get when no story has the given ID.
var ErrNotFound = errors.New("story not found")

// Record is one stored story with identity and bookkeeping timestamps.
type Record struct {
	ID        string    `json:"id" bson:"_id"`
	Title     string    `json:"title" bson:"title"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`

	// Data is the canonical JSON encoding of the story.
	Data []byte `json:"data" bson:"data"`
}

// NewRecord wraps a story for storage, minting a UUID and serializing the
// canonical JSON payload.
func NewRecord(s *story.Story) (*Record, error) {
	data, err := story.MarshalStory(s)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	return &Record{
		ID:        uuid.NewString(),
		Title:     s.Title,
		CreatedAt: now,
		UpdatedAt: now,
		Data:      data,
	}, nil
}

// Story decodes, sorts, and validates the stored payload.
func (r *Record) Story() (*story.Story, error) {
	return story.ReadStory(bytes.NewReader(r.Data))
}

// Summary is a listing entry without the payload.
type Summary struct {
	ID        string    `json:"id" bson:"_id"`
	Title     string    `json:"title" bson:"title"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// Store persists story records.
type Store interface {
	// Get returns the record with the given ID, or ErrNotFound.
	Get(ctx context.Context, id string) (*Record, error)

	// Put inserts or replaces a record. A record without an ID gets a
	// fresh UUID; UpdatedAt is bumped either way.
	Put(ctx context.Context, rec *Record) error

	// Delete removes a record. Deleting a missing ID is not an error.
	Delete(ctx context.Context, id string) error

	// List returns summaries for all stored stories, newest first.
	List(ctx context.Context) ([]Summary, error)

	// Close releases backend resources.
	Close() error
}

// prepare normalizes a record before writing: assigns an ID when missing
// and bumps UpdatedAt.
func prepare(rec *Record) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now
}
