package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/goldenfork/reservation-api/internal/clock"
	"github.com/goldenfork/reservation-api/internal/model"
	"github.com/goldenfork/reservation-api/internal/repository"
	"github.com/goldenfork/reservation-api/internal/store"
)

// DefaultSweepPeriod is how often the expiry sweeper runs.
const DefaultSweepPeriod = 5 * time.Minute

// Sweeper is the recurring background task that cancels pending
// reservations whose hold window lapsed without confirmation.  Each
// record is cancelled with a compare-and-swap on status, so the
// sweeper never races destructively with a concurrent confirmation:
// whichever transition commits first wins and the loser is a no-op.
type Sweeper struct {
	reservations *repository.ReservationRepo
	clock        clock.Clock
	period       time.Duration
}

// SweeperOption customises a Sweeper.
type SweeperOption func(*Sweeper)

// WithSweepPeriod overrides the default sweep interval.
func WithSweepPeriod(d time.Duration) SweeperOption {
	return func(s *Sweeper) {
		if d > 0 {
			s.period = d
		}
	}
}

// NewSweeper constructs the sweeper.
func NewSweeper(res *repository.ReservationRepo, clk clock.Clock, opts ...SweeperOption) *Sweeper {
	if res == nil || clk == nil {
		panic("nil dependency passed to NewSweeper")
	}
	s := &Sweeper{reservations: res, clock: clk, period: DefaultSweepPeriod}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run sweeps on a fixed ticker until the context is cancelled.  A
// failed run is only logged; the next tick retries the full selection,
// which is safe because every individual update is idempotent.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.period)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.Sweep(ctx)
			if err != nil {
				log.Printf("sweeper: sweep failed: %v", err)
				continue
			}
			if n > 0 {
				log.Printf("sweeper: cancelled %d unconfirmed reservations", n)
			}
		}
	}
}

// Sweep selects every pending reservation whose hold deadline has
// passed and cancels it.  Running it again immediately cancels
// nothing: the records are no longer pending, and a record that
// changed status between selection and update simply loses its
// compare-and-swap and is skipped.  Returns how many records were
// cancelled this run.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	now := s.clock.Now()
	expired, err := s.reservations.ExpiredPending(ctx, now)
	if err != nil {
		return 0, err
	}
	cancelled := 0
	for i := range expired {
		res := &expired[i]
		err := s.reservations.CompareAndSwap(ctx, res.ID, model.StatusPending, store.Patch{
			"status":           model.StatusCancelled,
			"cancelled_at":     now,
			"cancelled_reason": model.HoldCancelledReason,
		})
		if errors.Is(err, repository.ErrStaleStatus) || errors.Is(err, repository.ErrNotFound) {
			continue // someone else moved it first; nothing to do
		}
		if err != nil {
			return cancelled, err
		}
		cancelled++
	}
	return cancelled, nil
}
