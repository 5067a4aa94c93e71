package model

import "time"

// Reservation statuses.  The full transition table lives in
// lifecycle.go; these string values are what the store persists and
// what confirm/cancel links act on.
const (
	StatusWaitingList = "waiting-list"
	StatusPending     = "pending"
	StatusConfirmed   = "confirmed"
	StatusCancelled   = "cancelled"
	StatusDone        = "done"
)

// HoldCancelledReason is recorded when the expiry sweeper cancels a
// pending reservation whose hold window lapsed without confirmation.
const HoldCancelledReason = "unconfirmed within hold window"

// Reservation is a single booking request for one party on one date.
// A reservation on the waiting list has no table assigned; once a
// table is granted the record becomes a pending hold that must be
// confirmed before HoldExpiry or the sweeper cancels it.
//
// Fields:
//  ID              – opaque store-assigned document id.
//  PartyName       – name the booking was made under.
//  Contact         – phone number; not interpreted by the engine.
//  Email           – recipient for confirm/cancel/rejection mail.
//  Date            – calendar day in "2006-01-02" form.
//  StartTime       – wall-clock "15:04" start of the requested slot.
//  EndTime         – wall-clock "15:04" end; lexically before StartTime
//                    when the slot crosses midnight.
//  PartySize       – number of guests, 1..15.
//  TableID         – business id of the granted table; empty while on
//                    the waiting list.
//  Status          – see status constants above.
//  Code            – short opaque token embedded in confirm/cancel links.
//  Requests        – free-text special requests, display only.
//  HoldExpiry      – deadline for external confirmation; meaningful
//                    only while Status is pending.
//  CreatedAt       – when the request entered the system.
//  ConfirmedAt     – when the party confirmed (nil otherwise).
//  CancelledAt     – when the record was cancelled (nil otherwise).
//  CancelledReason – why it was cancelled (empty otherwise).
type Reservation struct {
	ID              string     `json:"id" bson:"_id,omitempty"`
	PartyName       string     `json:"party_name" bson:"party_name"`
	Contact         string     `json:"contact" bson:"contact"`
	Email           string     `json:"email" bson:"email"`
	Date            string     `json:"date" bson:"date"`
	StartTime       string     `json:"start_time" bson:"start_time"`
	EndTime         string     `json:"end_time" bson:"end_time"`
	PartySize       int        `json:"party_size" bson:"party_size"`
	TableID         string     `json:"table_id,omitempty" bson:"table_id,omitempty"`
	Status          string     `json:"status" bson:"status"`
	Code            string     `json:"code" bson:"code"`
	Requests        string     `json:"requests,omitempty" bson:"requests,omitempty"`
	HoldExpiry      time.Time  `json:"hold_expiry" bson:"hold_expiry"`
	CreatedAt       time.Time  `json:"created_at" bson:"created_at"`
	ConfirmedAt     *time.Time `json:"confirmed_at,omitempty" bson:"confirmed_at,omitempty"`
	CancelledAt     *time.Time `json:"cancelled_at,omitempty" bson:"cancelled_at,omitempty"`
	CancelledReason string     `json:"cancelled_reason,omitempty" bson:"cancelled_reason,omitempty"`
}

// Blocking reports whether the reservation occupies its table for
// conflict purposes.  Only pending holds and confirmed bookings block;
// cancelled, done and waiting-list records never do.
func (r *Reservation) Blocking() bool {
	return r.Status == StatusPending || r.Status == StatusConfirmed
}
