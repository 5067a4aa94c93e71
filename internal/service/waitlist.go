package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"

	"github.com/goldenfork/reservation-api/internal/clock"
	"github.com/goldenfork/reservation-api/internal/model"
	"github.com/goldenfork/reservation-api/internal/queue"
	"github.com/goldenfork/reservation-api/internal/repository"
	"github.com/goldenfork/reservation-api/internal/schedule"
)

// WaitlistService resolves waiting-list reservations: automatic
// matching against the original interval, operator-driven manual
// reassignment at a proposed interval, and declining with
// notification.  Granting a table always goes through the booking
// service's atomic commit.
type WaitlistService struct {
	reservations *repository.ReservationRepo
	tables       *repository.TableRepo
	booking      *BookingService
	notifier     Notifier
	clock        clock.Clock
}

// NewWaitlistService constructs the service.
func NewWaitlistService(res *repository.ReservationRepo, tables *repository.TableRepo, booking *BookingService, notifier Notifier, clk clock.Clock) *WaitlistService {
	if res == nil || tables == nil || booking == nil || clk == nil {
		panic("nil dependency passed to NewWaitlistService")
	}
	return &WaitlistService{
		reservations: res,
		tables:       tables,
		booking:      booking,
		notifier:     notifier,
		clock:        clk,
	}
}

// List returns the waiting list, newest requests first.
func (s *WaitlistService) List(ctx context.Context) ([]model.Reservation, error) {
	waiting, err := s.reservations.ByStatus(ctx, model.StatusWaitingList)
	if err != nil {
		return nil, err
	}
	sort.Slice(waiting, func(i, j int) bool {
		return waiting[i].CreatedAt.After(waiting[j].CreatedAt)
	})
	return waiting, nil
}

// Promote attempts automatic matching for one waiting-list
// reservation: availability is re-resolved for the original
// date/interval and, when a table is free, the record moves to
// pending on it.  When nothing is free a *ManualAssignmentRequired
// error carries the candidate table set and the day's reservations to
// the operator.
func (s *WaitlistService) Promote(ctx context.Context, id string) (*model.Reservation, error) {
	res, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	candidates, err := s.booking.Availability(ctx, res.Date, res.StartTime, res.EndTime, res.PartySize)
	if err != nil {
		return nil, err
	}
	for _, tableID := range candidates {
		err := s.booking.Assign(ctx, res, tableID, res.StartTime, res.EndTime)
		if errors.Is(err, ErrConflict) {
			continue // raced; try the next candidate
		}
		if err != nil {
			return nil, err
		}
		return res, nil
	}
	return nil, s.manualRequired(ctx, res)
}

// PromoteAt retries matching at an operator-proposed alternate
// interval.  When no table is free at the proposal either, the record
// stays on the waiting list and ErrNoTableForProposal is returned.
func (s *WaitlistService) PromoteAt(ctx context.Context, id string, proposal schedule.ProposedInterval) (*model.Reservation, error) {
	res, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := proposal.Resolve(res.Date); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	candidates, err := s.booking.Availability(ctx, res.Date, proposal.StartTime, proposal.EndTime, res.PartySize)
	if err != nil {
		return nil, err
	}
	for _, tableID := range candidates {
		err := s.booking.Assign(ctx, res, tableID, proposal.StartTime, proposal.EndTime)
		if errors.Is(err, ErrConflict) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return res, nil
	}
	return nil, ErrNoTableForProposal
}

// Decline cancels a waiting-list reservation without an alternative
// and notifies the requester that no slot could be offered.  The
// notification is queued after the cancellation committed; mail
// failures never undo the transition.
func (s *WaitlistService) Decline(ctx context.Context, id string) (*model.Reservation, error) {
	res, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.booking.cancel(ctx, res, "no slot available"); err != nil {
		return nil, err
	}
	if s.notifier != nil && res.Email != "" {
		ev := queue.EmailEvent{
			Kind:      queue.EmailRejected,
			Recipient: res.Email,
			Fields: map[string]string{
				"party_name": res.PartyName,
				"date":       res.Date,
				"start_time": res.StartTime,
				"end_time":   res.EndTime,
			},
		}
		if err := s.notifier.Publish(ctx, ev); err != nil {
			log.Printf("waitlist: queue rejection mail failed: %v", err)
		}
	}
	return res, nil
}

func (s *WaitlistService) load(ctx context.Context, id string) (*model.Reservation, error) {
	res, err := s.reservations.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if res.Status != model.StatusWaitingList {
		return nil, ErrNotWaitlisted
	}
	return res, nil
}

func (s *WaitlistService) manualRequired(ctx context.Context, res *model.Reservation) error {
	tier, err := schedule.BucketFor(res.PartySize)
	if err != nil {
		return err
	}
	tables, err := s.tables.All(ctx)
	if err != nil {
		return err
	}
	var candidates []model.Table
	for _, t := range tables {
		if t.Status == model.TableAvailable && t.Capacity == tier {
			candidates = append(candidates, t)
		}
	}
	day, err := s.reservations.ByDate(ctx, res.Date)
	if err != nil {
		return err
	}
	return &ManualAssignmentRequired{Reservation: res, Tables: candidates, Reservations: day}
}
