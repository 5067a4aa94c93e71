package schedule

import (
	"sort"

	"github.com/goldenfork/reservation-api/internal/model"
)

// ResolveAvailable returns the business ids of tables that could seat
// the party during the requested interval, ordered by ascending
// capacity so the smallest sufficient table is granted first.  A
// table qualifies when it is not under repair, its capacity equals
// the party's bucket, and no pending or confirmed reservation on it
// overlaps the interval.  Reservations whose intervals fail to parse
// are treated as blocking; a record we cannot reason about must not
// be double-booked over.
//
// An empty result is not an error; it is the caller's signal to fall
// back to the waiting list.
func ResolveAvailable(iv Interval, partySize int, tables []model.Table, dayReservations []model.Reservation) ([]string, error) {
	tier, err := BucketFor(partySize)
	if err != nil {
		return nil, err
	}

	// Collect the table ids already taken during this interval.
	taken := make(map[string]bool)
	for i := range dayReservations {
		res := &dayReservations[i]
		if !res.Blocking() || res.TableID == "" {
			continue
		}
		existing, err := NewInterval(res.Date, res.StartTime, res.EndTime)
		if err != nil {
			taken[res.TableID] = true
			continue
		}
		if iv.Overlaps(existing) {
			taken[res.TableID] = true
		}
	}

	var free []model.Table
	for _, t := range tables {
		if t.Status != model.TableAvailable {
			continue
		}
		if t.Capacity != tier {
			continue
		}
		if taken[t.TableID] {
			continue
		}
		free = append(free, t)
	}
	sort.Slice(free, func(i, j int) bool {
		if free[i].Capacity != free[j].Capacity {
			return free[i].Capacity < free[j].Capacity
		}
		return free[i].TableID < free[j].TableID
	})

	ids := make([]string, 0, len(free))
	for _, t := range free {
		ids = append(ids, t.TableID)
	}
	return ids, nil
}

// ConflictsWith reports whether any pending or confirmed reservation
// in the given set occupies tableID during the interval.  The booking
// commit re-runs this check inside the store transaction to close the
// race window between a caller's availability read and its write.
func ConflictsWith(iv Interval, tableID string, reservations []model.Reservation) bool {
	for i := range reservations {
		res := &reservations[i]
		if res.TableID != tableID || !res.Blocking() {
			continue
		}
		existing, err := NewInterval(res.Date, res.StartTime, res.EndTime)
		if err != nil {
			return true
		}
		if iv.Overlaps(existing) {
			return true
		}
	}
	return false
}
