package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/goldenfork/reservation-api/internal/clock"
	"github.com/goldenfork/reservation-api/internal/model"
	"github.com/goldenfork/reservation-api/internal/queue"
	"github.com/goldenfork/reservation-api/internal/repository"
	"github.com/goldenfork/reservation-api/internal/schedule"
	"github.com/goldenfork/reservation-api/internal/store"
)

// DefaultHoldTTL is how long an unconfirmed pending reservation holds
// its table before the sweeper cancels it.
const DefaultHoldTTL = 30 * time.Minute

// Notifier queues an email event.  Failures are logged by the caller
// and never block a committed state transition.
type Notifier interface {
	Publish(ctx context.Context, event queue.EmailEvent) error
}

// BookingService owns the reservation lifecycle: intake, the atomic
// booking commit, confirm/cancel by code, and operator actions.
type BookingService struct {
	reservations *repository.ReservationRepo
	tables       *repository.TableRepo
	notifier     Notifier
	clock        clock.Clock
	holdTTL      time.Duration
}

// BookingOption customises a BookingService.
type BookingOption func(*BookingService)

// WithHoldTTL overrides the default hold duration for new pending
// reservations.
func WithHoldTTL(d time.Duration) BookingOption {
	return func(s *BookingService) {
		if d > 0 {
			s.holdTTL = d
		}
	}
}

// NewBookingService constructs the service.  All dependencies must be
// non-nil; notifier may be nil in which case no mail is queued.
func NewBookingService(res *repository.ReservationRepo, tables *repository.TableRepo, notifier Notifier, clk clock.Clock, opts ...BookingOption) *BookingService {
	if res == nil || tables == nil || clk == nil {
		panic("nil dependency passed to NewBookingService")
	}
	s := &BookingService{
		reservations: res,
		tables:       tables,
		notifier:     notifier,
		clock:        clk,
		holdTTL:      DefaultHoldTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// BookingInput carries one booking request through intake.
type BookingInput struct {
	PartyName string `json:"party_name"`
	Contact   string `json:"contact"`
	Email     string `json:"email"`
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	PartySize int    `json:"party_size"`
	TableID   string `json:"table_id,omitempty"` // optional explicit choice
	Requests  string `json:"requests,omitempty"`
}

func (in *BookingInput) validate() (schedule.Interval, error) {
	var missing []string
	for field, v := range map[string]string{
		"party_name": in.PartyName,
		"contact":    in.Contact,
		"email":      in.Email,
		"date":       in.Date,
		"start_time": in.StartTime,
		"end_time":   in.EndTime,
	} {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return schedule.Interval{}, fmt.Errorf("%w: missing %s", ErrValidation, strings.Join(missing, ", "))
	}
	iv, err := schedule.NewInterval(in.Date, in.StartTime, in.EndTime)
	if err != nil {
		return schedule.Interval{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if _, err := schedule.BucketFor(in.PartySize); err != nil {
		if errors.Is(err, schedule.ErrCapacityExceeded) {
			return schedule.Interval{}, err
		}
		return schedule.Interval{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return iv, nil
}

// Availability resolves the ordered candidate tables for a date,
// interval and party size.  An empty list is not an error; it is the
// signal to waitlist.
func (s *BookingService) Availability(ctx context.Context, date, startTime, endTime string, partySize int) ([]string, error) {
	iv, err := schedule.NewInterval(date, startTime, endTime)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	tables, err := s.tables.All(ctx)
	if err != nil {
		return nil, err
	}
	reservations, err := s.reservationsAround(ctx, date)
	if err != nil {
		return nil, err
	}
	return schedule.ResolveAvailable(iv, partySize, tables, reservations)
}

// reservationsAround returns the date's reservations plus the previous
// day's.  A previous-day midnight crosser is the only earlier record
// whose interval can reach into the requested date, so the pair is the
// complete conflict set for any same-day interval.
func (s *BookingService) reservationsAround(ctx context.Context, date string) ([]model.Reservation, error) {
	day, err := s.reservations.ByDate(ctx, date)
	if err != nil {
		return nil, err
	}
	d, perr := time.Parse(schedule.DateLayout, date)
	if perr != nil {
		return day, nil
	}
	prev, err := s.reservations.ByDate(ctx, d.AddDate(0, 0, -1).Format(schedule.DateLayout))
	if err != nil {
		return nil, err
	}
	return append(day, prev...), nil
}

// slotDates returns the calendar days a booking commit on date must
// serialize with: the day itself and the next one, which the day's
// midnight crossers reach into.  Locking both means any two commits
// whose intervals could overlap share at least one lock document.
func slotDates(date string) []string {
	d, err := time.Parse(schedule.DateLayout, date)
	if err != nil {
		return []string{date}
	}
	return []string{date, d.AddDate(0, 0, 1).Format(schedule.DateLayout)}
}

// Request is the public intake path: it validates the request,
// resolves availability and either commits a pending hold or places
// the party on the waiting list.  The returned bool is true when the
// request was waitlisted.  An explicit table choice is honored when
// that table is among the candidates; a stale choice falls through to
// the remaining candidates rather than failing the whole request.
func (s *BookingService) Request(ctx context.Context, in BookingInput) (*model.Reservation, bool, error) {
	if _, err := in.validate(); err != nil {
		return nil, false, err
	}

	candidates, err := s.Availability(ctx, in.Date, in.StartTime, in.EndTime, in.PartySize)
	if err != nil {
		return nil, false, err
	}
	if in.TableID != "" {
		// Move the requested table to the front; if it is not a
		// candidate at all the choice is stale and the others are
		// tried in order.
		reordered := make([]string, 0, len(candidates))
		for _, id := range candidates {
			if id == in.TableID {
				reordered = append([]string{id}, reordered...)
			} else {
				reordered = append(reordered, id)
			}
		}
		candidates = reordered
	}

	for _, tableID := range candidates {
		res, err := s.Book(ctx, in, tableID)
		if errors.Is(err, ErrConflict) {
			continue // raced; try the next candidate
		}
		if err != nil {
			return nil, false, err
		}
		return res, false, nil
	}

	res, err := s.waitlist(ctx, in)
	if err != nil {
		return nil, false, err
	}
	return res, true, nil
}

// Book attempts to reserve one specific table for one interval.
// Inside the store's atomic scope it first touches the table's lock
// documents for the affected days, then re-validates that no pending
// or confirmed reservation overlaps the interval on that table, and
// only then creates the pending hold.  Under two racing requests for
// the same table and overlapping interval the shared lock write lets
// exactly one insert commit; the other caller sees ErrConflict and
// must re-resolve availability.
func (s *BookingService) Book(ctx context.Context, in BookingInput, tableID string) (*model.Reservation, error) {
	iv, err := in.validate()
	if err != nil {
		return nil, err
	}
	if err := s.checkEligible(ctx, tableID, in.PartySize); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	res := &model.Reservation{
		PartyName:  in.PartyName,
		Contact:    in.Contact,
		Email:      in.Email,
		Date:       in.Date,
		StartTime:  in.StartTime,
		EndTime:    in.EndTime,
		PartySize:  in.PartySize,
		TableID:    tableID,
		Status:     model.StatusPending,
		Requests:   in.Requests,
		HoldExpiry: now.Add(s.holdTTL),
		CreatedAt:  now,
	}

	err = s.reservations.Atomically(ctx, func(txCtx context.Context) error {
		for _, d := range slotDates(in.Date) {
			if err := s.reservations.LockSlot(txCtx, tableID, d); err != nil {
				return err
			}
		}
		day, err := s.reservationsAround(txCtx, in.Date)
		if err != nil {
			return err
		}
		if schedule.ConflictsWith(iv, tableID, day) {
			return ErrConflict
		}
		code, err := s.freshCode(txCtx)
		if err != nil {
			return err
		}
		res.Code = code
		return s.reservations.Create(txCtx, res)
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, queue.EmailRequested, res, map[string]string{
		"table_id": res.TableID,
	})
	return res, nil
}

// waitlist records the request with no table, awaiting the waitlist
// resolver or an operator.
func (s *BookingService) waitlist(ctx context.Context, in BookingInput) (*model.Reservation, error) {
	now := s.clock.Now()
	res := &model.Reservation{
		PartyName: in.PartyName,
		Contact:   in.Contact,
		Email:     in.Email,
		Date:      in.Date,
		StartTime: in.StartTime,
		EndTime:   in.EndTime,
		PartySize: in.PartySize,
		Status:    model.StatusWaitingList,
		Requests:  in.Requests,
		CreatedAt: now,
	}
	err := s.reservations.Atomically(ctx, func(txCtx context.Context) error {
		code, err := s.freshCode(txCtx)
		if err != nil {
			return err
		}
		res.Code = code
		return s.reservations.Create(txCtx, res)
	})
	if err != nil {
		return nil, err
	}
	s.notify(ctx, queue.EmailRequested, res, map[string]string{
		"table_id": "N/A",
	})
	return res, nil
}

// Assign moves an existing waiting-list reservation onto a table as
// a fresh pending hold, optionally at a new interval.  It is the same
// atomic check-then-write as Book, applied to an existing record: the
// conflict re-check and the waiting-list→pending compare-and-swap
// commit together, so a racing booking for the same table either
// loses the table or forces ErrConflict here.
func (s *BookingService) Assign(ctx context.Context, res *model.Reservation, tableID, startTime, endTime string) error {
	if res.Status != model.StatusWaitingList {
		return ErrNotWaitlisted
	}
	iv, err := schedule.NewInterval(res.Date, startTime, endTime)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if err := s.checkEligible(ctx, tableID, res.PartySize); err != nil {
		return err
	}

	holdExpiry := s.clock.Now().Add(s.holdTTL)
	err = s.reservations.Atomically(ctx, func(txCtx context.Context) error {
		for _, d := range slotDates(res.Date) {
			if err := s.reservations.LockSlot(txCtx, tableID, d); err != nil {
				return err
			}
		}
		day, err := s.reservationsAround(txCtx, res.Date)
		if err != nil {
			return err
		}
		if schedule.ConflictsWith(iv, tableID, day) {
			return ErrConflict
		}
		return s.reservations.CompareAndSwap(txCtx, res.ID, model.StatusWaitingList, store.Patch{
			"status":      model.StatusPending,
			"table_id":    tableID,
			"start_time":  startTime,
			"end_time":    endTime,
			"hold_expiry": holdExpiry,
		})
	})
	if errors.Is(err, repository.ErrStaleStatus) {
		return ErrNotWaitlisted
	}
	if err != nil {
		return err
	}

	res.Status = model.StatusPending
	res.TableID = tableID
	res.StartTime = startTime
	res.EndTime = endTime
	res.HoldExpiry = holdExpiry
	s.notify(ctx, queue.EmailRequested, res, map[string]string{
		"table_id": tableID,
	})
	return nil
}

// checkEligible enforces the structural half of table matching: the
// table must exist, not be under repair, and its capacity must be the
// smallest tier that seats the party.
func (s *BookingService) checkEligible(ctx context.Context, tableID string, partySize int) error {
	tier, err := schedule.BucketFor(partySize)
	if err != nil {
		return err
	}
	t, err := s.tables.ByTableID(ctx, tableID)
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: unknown table %s", ErrTableNotEligible, tableID)
	}
	if err != nil {
		return err
	}
	if t.Status != model.TableAvailable || t.Capacity != tier {
		return fmt.Errorf("%w: table %s", ErrTableNotEligible, tableID)
	}
	return nil
}

// freshCode generates the short opaque token confirm/cancel links
// carry.  Codes are random, fixed length, and checked for uniqueness
// against the store before use.
func (s *BookingService) freshCode(ctx context.Context) (string, error) {
	for attempt := 0; attempt < 5; attempt++ {
		buf := make([]byte, 4)
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		code := "RES-" + strings.ToUpper(hex.EncodeToString(buf))
		if _, err := s.reservations.ByCode(ctx, code); errors.Is(err, repository.ErrCodeNotFound) {
			return code, nil
		} else if err != nil {
			return "", err
		}
	}
	return "", errors.New("could not generate a unique reservation code")
}

// ConfirmByCode handles the party's confirmation link.  Terminal or
// already-confirmed records fail with ErrInvalidTransition and stay
// untouched; an unknown code surfaces as ErrCodeNotFound.
func (s *BookingService) ConfirmByCode(ctx context.Context, code string) (*model.Reservation, error) {
	res, err := s.reservations.ByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	if err := s.transition(ctx, res, model.StatusConfirmed, store.Patch{
		"status":       model.StatusConfirmed,
		"confirmed_at": now,
	}); err != nil {
		return res, err
	}
	res.ConfirmedAt = &now
	s.notify(ctx, queue.EmailConfirmed, res, nil)
	return res, nil
}

// CancelByCode handles the party's cancellation link.
func (s *BookingService) CancelByCode(ctx context.Context, code string) (*model.Reservation, error) {
	res, err := s.reservations.ByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if err := s.cancel(ctx, res, "cancelled by guest"); err != nil {
		return res, err
	}
	s.notify(ctx, queue.EmailCancelled, res, nil)
	return res, nil
}

// Confirm is the operator path for confirming a pending reservation.
func (s *BookingService) Confirm(ctx context.Context, id string) (*model.Reservation, error) {
	res, err := s.reservations.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	if err := s.transition(ctx, res, model.StatusConfirmed, store.Patch{
		"status":       model.StatusConfirmed,
		"confirmed_at": now,
	}); err != nil {
		return res, err
	}
	res.ConfirmedAt = &now
	s.notify(ctx, queue.EmailConfirmed, res, nil)
	return res, nil
}

// Cancel is the operator path for cancelling a reservation.
func (s *BookingService) Cancel(ctx context.Context, id, reason string) (*model.Reservation, error) {
	res, err := s.reservations.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if reason == "" {
		reason = "cancelled by operator"
	}
	if err := s.cancel(ctx, res, reason); err != nil {
		return res, err
	}
	s.notify(ctx, queue.EmailCancelled, res, nil)
	return res, nil
}

// Delete removes a reservation record entirely (operator action).
func (s *BookingService) Delete(ctx context.Context, id string) error {
	return s.reservations.Delete(ctx, id)
}

// List returns every reservation, lazily marking those whose interval
// has fully passed as done.  The done transition is evaluated on read
// rather than by a scheduled job; a lost compare-and-swap against a
// concurrent transition is simply skipped.
func (s *BookingService) List(ctx context.Context) ([]model.Reservation, error) {
	all, err := s.reservations.All(ctx)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	for i := range all {
		res := &all[i]
		if !res.Blocking() {
			continue
		}
		iv, err := schedule.NewInterval(res.Date, res.StartTime, res.EndTime)
		if err != nil || !iv.End.Before(now) {
			continue
		}
		prev := res.Status
		if err := res.Transition(model.StatusDone); err != nil {
			continue
		}
		if err := s.reservations.CompareAndSwap(ctx, res.ID, prev, store.Patch{"status": model.StatusDone}); err != nil {
			res.Status = prev // lost the race; report what we read
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	return all, nil
}

// transition applies a lifecycle move and persists it with a CAS on
// the prior status.  A concurrent change surfaces as
// ErrInvalidTransition after re-reading, since whatever state the
// record moved to no longer permits this transition (pending is never
// re-entered).
func (s *BookingService) transition(ctx context.Context, res *model.Reservation, to string, patch store.Patch) error {
	prev := res.Status
	if err := res.Transition(to); err != nil {
		return err
	}
	err := s.reservations.CompareAndSwap(ctx, res.ID, prev, patch)
	if errors.Is(err, repository.ErrStaleStatus) {
		res.Status = prev
		fresh, rerr := s.reservations.ByID(ctx, res.ID)
		if rerr == nil {
			*res = *fresh
		}
		return model.ErrInvalidTransition
	}
	if err != nil {
		res.Status = prev
		return err
	}
	return nil
}

func (s *BookingService) cancel(ctx context.Context, res *model.Reservation, reason string) error {
	now := s.clock.Now()
	if err := s.transition(ctx, res, model.StatusCancelled, store.Patch{
		"status":           model.StatusCancelled,
		"cancelled_at":     now,
		"cancelled_reason": reason,
	}); err != nil {
		return err
	}
	res.CancelledAt = &now
	res.CancelledReason = reason
	return nil
}

// notify queues a mail event.  Failures are logged and swallowed; a
// committed transition is never rolled back because the broker was
// down.
func (s *BookingService) notify(ctx context.Context, kind string, res *model.Reservation, extra map[string]string) {
	if s.notifier == nil || res.Email == "" {
		return
	}
	fields := map[string]string{
		"party_name": res.PartyName,
		"date":       res.Date,
		"start_time": res.StartTime,
		"end_time":   res.EndTime,
		"guests":     fmt.Sprintf("%d", res.PartySize),
		"code":       res.Code,
	}
	if res.TableID != "" {
		fields["table_id"] = res.TableID
	}
	for k, v := range extra {
		fields[k] = v
	}
	if err := s.notifier.Publish(ctx, queue.EmailEvent{
		Kind:      kind,
		Recipient: res.Email,
		Fields:    fields,
	}); err != nil {
		log.Printf("booking: queue %s mail failed: %v", kind, err)
	}
}
