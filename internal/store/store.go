// Package store defines the client contract for the remote collection
// store: per-record CRUD plus conjunctive equality-filter queries over
// the users, books and loans collections. Every single-record call is
// atomic on the store side; nothing spans records. All business logic
// layering on top of that lives in the usecase packages.
package store

import (
	"context"
	"encoding/json"
	"errors"
)

// Collection names the client operates on.
const (
	Users = "users"
	Books = "books"
	Loans = "loans"
)

// ErrNotFound is returned by GetByID, Update and Delete when no record
// with the given id exists in the collection.
var ErrNotFound = errors.New("record not found")

// Filters is a conjunctive equality filter set: every key must match the
// record field of the same name exactly. The store supports nothing
// richer than this.
type Filters map[string]string

// Client is the generic collection store client. Records cross this
// boundary as raw JSON; the typed repositories decode them into
// fixed-shape entities and reject unknown fields there.
type Client interface {
	// List returns all records of the collection matching the filters
	// (all records when filters is nil or empty).
	List(ctx context.Context, collection string, filters Filters) ([]json.RawMessage, error)

	// GetByID returns the record with the given id, or ErrNotFound.
	GetByID(ctx context.Context, collection string, id int64) (json.RawMessage, error)

	// Create stores a new record and returns it with its assigned id.
	Create(ctx context.Context, collection string, fields any) (json.RawMessage, error)

	// Update merges the given fields into the record with the given id
	// and returns the updated record. Fields not present are unchanged.
	Update(ctx context.Context, collection string, id int64, fields any) (json.RawMessage, error)

	// Delete removes the record with the given id, or returns ErrNotFound.
	Delete(ctx context.Context, collection string, id int64) error
}
