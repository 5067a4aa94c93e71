// Package service implements the reservation engine's operations:
// the booking transaction, the waitlist resolver and the expiry
// sweeper.  Handlers stay thin; everything with an invariant lives
// here.
package service

import (
	"errors"
	"fmt"

	"github.com/goldenfork/reservation-api/internal/model"
)

// ErrValidation wraps malformed-input failures (missing fields, bad
// interval, party size out of range).  Surfaced immediately, never
// retried.
var ErrValidation = errors.New("validation failed")

// ErrConflict is returned when the booking commit's precondition
// failed: another reservation won the table for an overlapping
// interval between the caller's read and this write.  The caller must
// re-resolve availability and retry another table or waitlist.
var ErrConflict = errors.New("table already reserved for that interval")

// ErrTableNotEligible is returned when a caller names a table that is
// under repair or whose capacity tier does not match the party.
var ErrTableNotEligible = errors.New("table not eligible for this party")

// ErrNotWaitlisted is returned when a waitlist operation targets a
// reservation that is not on the waiting list.
var ErrNotWaitlisted = errors.New("reservation is not on the waiting list")

// ErrNoTableForProposal is returned when an operator-proposed
// alternate interval has no free table either.  The record stays on
// the waiting list.
var ErrNoTableForProposal = errors.New("no table available for proposed interval")

// ManualAssignmentRequired reports that automatic waitlist promotion
// found no table for the original interval.  It carries the candidate
// table set and the day's reservations so the operator can propose an
// alternate interval with full context.
type ManualAssignmentRequired struct {
	Reservation  *model.Reservation
	Tables       []model.Table
	Reservations []model.Reservation
}

func (e *ManualAssignmentRequired) Error() string {
	return fmt.Sprintf("no table for reservation %s; manual reassignment required", e.Reservation.ID)
}
