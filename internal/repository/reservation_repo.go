package repository

import (
	"context"
	"errors"
	"time"

	"github.com/goldenfork/reservation-api/internal/model"
	"github.com/goldenfork/reservation-api/internal/store"
)

// ReservationRepo provides data access to the reservations
// collection.  All timestamps are UTC; callers must ensure expiry
// comparisons are performed in UTC.
type ReservationRepo struct {
	store store.Store
}

// NewReservationRepo returns a ReservationRepo bound to the store.
func NewReservationRepo(s store.Store) *ReservationRepo { return &ReservationRepo{store: s} }

// Atomically exposes the store's transactional scope so the booking
// service can run its conflict re-check and insert as one unit.
func (r *ReservationRepo) Atomically(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.store.Atomically(ctx, fn)
}

// LockSlot touches the shared lock document for one table and
// calendar day.  Called inside Atomically it turns two racing booking
// commits for the same table/day into a write conflict instead of two
// disjoint inserts that would both go through.
func (r *ReservationRepo) LockSlot(ctx context.Context, tableID, date string) error {
	return r.store.Touch(ctx, store.Locks, date+"/"+tableID)
}

// Create persists a new reservation and fills in its store-assigned id.
func (r *ReservationRepo) Create(ctx context.Context, res *model.Reservation) error {
	id, err := r.store.Insert(ctx, store.Reservations, res)
	if err != nil {
		return err
	}
	res.ID = id
	return nil
}

// ByDate returns every reservation for the calendar day, regardless
// of status.  The availability resolver filters blocking statuses
// itself.
func (r *ReservationRepo) ByDate(ctx context.Context, date string) ([]model.Reservation, error) {
	var out []model.Reservation
	err := r.store.Query(ctx, store.Reservations, store.Filter{"date": date}, &out)
	return out, err
}

// All returns every reservation in the collection.
func (r *ReservationRepo) All(ctx context.Context) ([]model.Reservation, error) {
	var out []model.Reservation
	err := r.store.Query(ctx, store.Reservations, store.Filter{}, &out)
	return out, err
}

// ByStatus returns every reservation currently in the given status.
func (r *ReservationRepo) ByStatus(ctx context.Context, status string) ([]model.Reservation, error) {
	var out []model.Reservation
	err := r.store.Query(ctx, store.Reservations, store.Filter{"status": status}, &out)
	return out, err
}

// ByID fetches one reservation or ErrNotFound.
func (r *ReservationRepo) ByID(ctx context.Context, id string) (*model.Reservation, error) {
	var out []model.Reservation
	if err := r.store.Query(ctx, store.Reservations, store.Filter{"_id": id}, &out); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, ErrNotFound
	}
	return &out[0], nil
}

// ByCode fetches the reservation a confirm/cancel link points at, or
// ErrCodeNotFound when the code matches nothing.
func (r *ReservationRepo) ByCode(ctx context.Context, code string) (*model.Reservation, error) {
	var out []model.Reservation
	if err := r.store.Query(ctx, store.Reservations, store.Filter{"code": code}, &out); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, ErrCodeNotFound
	}
	return &out[0], nil
}

// ExpiredPending returns the pending reservations whose hold deadline
// has passed.  This is the sweeper's selection query.
func (r *ReservationRepo) ExpiredPending(ctx context.Context, now time.Time) ([]model.Reservation, error) {
	var out []model.Reservation
	err := r.store.Query(ctx, store.Reservations, store.Filter{
		"status":      model.StatusPending,
		"hold_expiry": store.LTE(now),
	}, &out)
	return out, err
}

// CompareAndSwap patches the reservation only while its status still
// equals expect.  A lost race surfaces as ErrStaleStatus; the caller
// must re-read before retrying or reporting.  Every status transition
// in the engine goes through here, which is what keeps the sweeper
// and concurrent operator actions from destroying each other's
// updates.
func (r *ReservationRepo) CompareAndSwap(ctx context.Context, id, expect string, patch store.Patch) error {
	err := r.store.Update(ctx, store.Reservations, id, patch,
		&store.Precondition{Field: "status", Equals: expect})
	if errors.Is(err, store.ErrPreconditionFailed) {
		return ErrStaleStatus
	}
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

// Delete removes a reservation outright (operator action).
func (r *ReservationRepo) Delete(ctx context.Context, id string) error {
	err := r.store.Delete(ctx, store.Reservations, id)
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
