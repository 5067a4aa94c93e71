// Package repository adapts the document-store collaborator into the
// typed accessors the services work with.  Sentinel errors defined
// here let handlers distinguish failure scenarios without inspecting
// store internals.
package repository

import "errors"

// ErrNotFound is returned when a record addressed by id does not
// exist.  Handlers translate this into a 404 response.
var ErrNotFound = errors.New("record not found")

// ErrCodeNotFound is returned when a confirm/cancel link references a
// code with no matching reservation.  Handlers surface this as the
// user-visible "invalid link" outcome; nothing is mutated.
var ErrCodeNotFound = errors.New("reservation code not found")

// ErrStaleStatus is returned when a guarded status update lost its
// compare-and-swap: the record's status changed under the caller.
// The caller must re-read before deciding anything else.
var ErrStaleStatus = errors.New("reservation status changed concurrently")

// ErrTableExists is returned when creating a table whose business id
// is already taken.
var ErrTableExists = errors.New("table id already exists")
