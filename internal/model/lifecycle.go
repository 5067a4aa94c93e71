package model

import "errors"

// ErrInvalidTransition is returned when a status change is attempted
// that the lifecycle does not allow, e.g. confirming a reservation
// that was already cancelled.  Callers must leave the record unchanged
// when they see this error.
var ErrInvalidTransition = errors.New("invalid status transition")

// transitions is the authoritative table of legal status moves.  A
// reservation enters as waiting-list (no table found) or pending
// (table granted).  Terminal states have no outgoing edges: once a
// record is cancelled or done it never re-enters the lifecycle, and
// in particular nothing ever goes back to pending.
var transitions = map[string][]string{
	StatusWaitingList: {StatusPending, StatusCancelled},
	StatusPending:     {StatusConfirmed, StatusCancelled, StatusDone},
	StatusConfirmed:   {StatusCancelled, StatusDone},
	StatusCancelled:   {},
	StatusDone:        {},
}

// CanTransition reports whether moving a reservation from one status
// to another is legal.  Unknown statuses are never legal.
func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Transition validates the move from the reservation's current status
// to the target and applies it in memory.  It returns
// ErrInvalidTransition without touching the record when the move is
// illegal.  Persisting the change (with a compare-and-swap on the old
// status) is the caller's responsibility.
func (r *Reservation) Transition(to string) error {
	if !CanTransition(r.Status, to) {
		return ErrInvalidTransition
	}
	r.Status = to
	return nil
}
