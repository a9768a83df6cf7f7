// Package store defines the document-store capability surface the chat
// engine depends on: filtered queries, snapshot listeners and batched
// writes. Implementations must be safe for concurrent use.
package store

import "context"

// MaxBatchDelete is the largest number of mutations allowed in a single
// BatchDelete commit.
const MaxBatchDelete = 400

// ServerTimestamp is a sentinel value for fields that should be populated
// with a server-assigned timestamp at write time.
var ServerTimestamp = serverTimestamp{}

type serverTimestamp struct{}

// Document is a stored document: an opaque id plus a field map. The cursor
// field carries backend paging state and is only meaningful when the document
// was produced by the same Store implementation.
type Document struct {
	ID     string
	Data   map[string]any
	Cursor any
}

// Filter is a single field comparison, e.g. {"room_id", "==", "lobby"}.
type Filter struct {
	Field string
	Op    string
	Value any
}

// Order specifies a sort field and direction for a query.
type Order struct {
	Field string
	Desc  bool
}

// Query describes a filtered read over one collection. StartAfter, when set,
// positions the query strictly after the referenced document and requires
// OrderBy to be set.
type Query struct {
	Collection string
	Filter     *Filter
	OrderBy    *Order
	Limit      int
	StartAfter *Document
}

type ChangeKind int

const (
	ChangeAdded ChangeKind = iota
	ChangeModified
	ChangeRemoved
)

// Change is a single tagged document change delivered by a subscription.
type Change struct {
	Kind ChangeKind
	Doc  Document
}

// Snapshot is one delivery from a subscription: the tagged changes since the
// previous delivery plus the full current result set.
type Snapshot struct {
	Changes []Change
	Docs    []Document
}

// CancelFunc stops a subscription. Calling it more than once, or for a
// subscription that never started, is a no-op.
type CancelFunc func()

type Store interface {
	// GetAll runs the query once and returns the matching documents.
	GetAll(ctx context.Context, q Query) ([]Document, error)
	// Subscribe registers a snapshot listener for the query. The callback
	// is invoked from a background goroutine for every snapshot until the
	// returned CancelFunc is called or ctx is cancelled.
	Subscribe(ctx context.Context, q Query, fn func(Snapshot)) (CancelFunc, error)
	// Add writes a new document with a store-assigned id and returns it.
	Add(ctx context.Context, collection string, data map[string]any) (Document, error)
	// Set upserts the document with the given id.
	Set(ctx context.Context, collection, id string, data map[string]any) error
	// Delete removes the document with the given id. Deleting a missing
	// document is not an error.
	Delete(ctx context.Context, collection, id string) error
	// BatchDelete removes up to MaxBatchDelete documents in one commit.
	BatchDelete(ctx context.Context, collection string, ids []string) error
}
