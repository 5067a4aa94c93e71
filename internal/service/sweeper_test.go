package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/goldenfork/reservation-api/internal/model"
)

var seedSeq int

func seedReservation(t *testing.T, env *testEnv, status string, holdExpiry time.Time) *model.Reservation {
	t.Helper()
	seedSeq++
	res := &model.Reservation{
		PartyName:  "Okafor",
		Contact:    "+44 20 7946 0000",
		Email:      "okafor@example.com",
		Date:       "2026-06-01",
		StartTime:  "19:00",
		EndTime:    "21:00",
		PartySize:  2,
		TableID:    "T2A",
		Status:     status,
		Code:       fmt.Sprintf("RES-%08X", seedSeq),
		HoldExpiry: holdExpiry,
		CreatedAt:  env.now,
	}
	if err := env.reservations.Create(context.Background(), res); err != nil {
		t.Fatalf("seed reservation: %v", err)
	}
	return res
}

func TestSweepCancelsLapsedHolds(t *testing.T) {
	env := newTestEnv(t, testNow)
	ctx := context.Background()

	expired := seedReservation(t, env, model.StatusPending, testNow.Add(-time.Minute))
	alive := seedReservation(t, env, model.StatusPending, testNow.Add(10*time.Minute))
	confirmed := seedReservation(t, env, model.StatusConfirmed, testNow.Add(-time.Hour))

	n, err := env.sweeper.Sweep(ctx)
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if n != 1 {
		t.Fatalf("cancelled %d, want 1", n)
	}

	got, err := env.reservations.ByID(ctx, expired.ID)
	if err != nil {
		t.Fatalf("ByID: %v", err)
	}
	if got.Status != model.StatusCancelled {
		t.Errorf("expired hold status = %s, want cancelled", got.Status)
	}
	if got.CancelledReason != model.HoldCancelledReason {
		t.Errorf("reason = %q, want %q", got.CancelledReason, model.HoldCancelledReason)
	}
	if got.CancelledAt == nil {
		t.Error("CancelledAt not set")
	}

	for _, id := range []string{alive.ID, confirmed.ID} {
		got, err := env.reservations.ByID(ctx, id)
		if err != nil {
			t.Fatalf("ByID: %v", err)
		}
		if got.Status == model.StatusCancelled {
			t.Errorf("reservation %s was swept but should have been left alone", id)
		}
	}
}

func TestSweepIsIdempotent(t *testing.T) {
	env := newTestEnv(t, testNow)
	ctx := context.Background()

	seedReservation(t, env, model.StatusPending, testNow.Add(-time.Minute))

	if n, err := env.sweeper.Sweep(ctx); err != nil || n != 1 {
		t.Fatalf("first sweep: n=%d err=%v, want 1 cancellation", n, err)
	}
	if n, err := env.sweeper.Sweep(ctx); err != nil || n != 0 {
		t.Errorf("second sweep: n=%d err=%v, want nothing left to cancel", n, err)
	}
}

func TestSweptTableFreesUp(t *testing.T) {
	env := newTestEnv(t, testNow)
	env.addTable(t, "T2A", 2, model.TableAvailable)
	ctx := context.Background()

	seedReservation(t, env, model.StatusPending, testNow.Add(-time.Minute))

	before, err := env.booking.Availability(ctx, "2026-06-01", "19:00", "21:00", 2)
	if err != nil {
		t.Fatalf("Availability: %v", err)
	}
	if len(before) != 0 {
		t.Fatalf("table should be held before the sweep, got %v", before)
	}

	if _, err := env.sweeper.Sweep(ctx); err != nil {
		t.Fatalf("Sweep: %v", err)
	}

	after, err := env.booking.Availability(ctx, "2026-06-01", "19:00", "21:00", 2)
	if err != nil {
		t.Fatalf("Availability: %v", err)
	}
	if len(after) != 1 || after[0] != "T2A" {
		t.Errorf("availability after sweep = %v, want [T2A]", after)
	}
}
