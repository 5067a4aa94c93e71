// Package store defines the document-store collaborator contract the
// reservation engine persists through, plus the MongoDB-backed
// implementation and an in-memory implementation used by tests.  The
// engine never talks to a database directly; everything goes through
// this narrow query/insert/update surface.
package store

import (
	"context"
	"errors"
)

// Collection names used by the engine.
const (
	Reservations = "reservations"
	Tables       = "tables"
	Locks        = "locks"
)

// ErrNotFound is returned when an id-addressed operation matches no
// document.
var ErrNotFound = errors.New("document not found")

// ErrPreconditionFailed is returned by Update when the precondition
// no longer holds: the compare-and-swap lost.  Callers re-read and
// decide whether to retry or surface a conflict.
var ErrPreconditionFailed = errors.New("update precondition failed")

// Filter selects documents by field value.  A plain value means
// equality; wrap a value with LTE for a "less than or equal" bound.
type Filter map[string]any

// Cond is a non-equality comparison inside a Filter.
type Cond struct {
	Op    string // "lte" is the only operator the engine needs
	Value any
}

// LTE builds a "field <= v" condition, used by the expiry sweeper to
// select pending holds past their deadline.
func LTE(v any) Cond { return Cond{Op: "lte", Value: v} }

// Patch is a partial document update applied by Update.
type Patch map[string]any

// Precondition guards an Update: the patch is applied only when the
// named field still equals the expected value.  This is what makes
// status transitions safe against concurrent writers.
type Precondition struct {
	Field  string
	Equals any
}

// Store is the persistence collaborator.  Query decodes all matching
// documents into out, which must be a pointer to a slice.  Insert
// assigns and returns an opaque document id.  Update patches one
// document, honoring the optional precondition.  Atomically runs fn
// so that its reads and writes commit as one unit; the booking
// transaction's check-then-write runs inside it.
//
// Touch writes a marker document under the given id.  Two atomic
// scopes touching the same id write the same document, so at most one
// of them commits; the booking commit touches a per-table/day id
// before its conflict re-check, which is what serializes two racing
// inserts that would otherwise have disjoint write sets.
type Store interface {
	Query(ctx context.Context, collection string, filter Filter, out any) error
	Insert(ctx context.Context, collection string, doc any) (string, error)
	Update(ctx context.Context, collection string, id string, patch Patch, pre *Precondition) error
	Delete(ctx context.Context, collection string, id string) error
	Touch(ctx context.Context, collection string, id string) error
	Atomically(ctx context.Context, fn func(ctx context.Context) error) error
}
