package service

import (
	"context"
	"errors"
	"testing"

	"github.com/goldenfork/reservation-api/internal/model"
	"github.com/goldenfork/reservation-api/internal/queue"
	"github.com/goldenfork/reservation-api/internal/schedule"
)

// waitlisted puts one request on the waiting list by asking for a tier
// with no free table, then returns the stored record.
func waitlisted(t *testing.T, env *testEnv, in BookingInput) *model.Reservation {
	t.Helper()
	res, ok, err := env.booking.Request(context.Background(), in)
	if err != nil {
		t.Fatalf("Request: %v", err)
	}
	if !ok {
		t.Fatalf("request was granted table %s, expected it to be waitlisted", res.TableID)
	}
	return res
}

func TestPromoteGrantsFreedTable(t *testing.T) {
	env := newTestEnv(t, testNow)
	env.addTable(t, "T4A", 4, model.TableAvailable)
	ctx := context.Background()

	blockerIn := input("19:00", "21:00", 3)
	blocker, err := env.booking.Book(ctx, blockerIn, "T4A")
	if err != nil {
		t.Fatalf("Book: %v", err)
	}
	waiting := waitlisted(t, env, input("19:30", "21:30", 4))

	// The blocker cancels; promotion should now land on T4A.
	if _, err := env.booking.CancelByCode(ctx, blocker.Code); err != nil {
		t.Fatalf("CancelByCode: %v", err)
	}
	promoted, err := env.waitlist.Promote(ctx, waiting.ID)
	if err != nil {
		t.Fatalf("Promote: %v", err)
	}
	if promoted.Status != model.StatusPending {
		t.Errorf("status = %s, want pending", promoted.Status)
	}
	if promoted.TableID != "T4A" {
		t.Errorf("table = %s, want T4A", promoted.TableID)
	}
	if promoted.StartTime != "19:30" || promoted.EndTime != "21:30" {
		t.Errorf("interval changed to %s-%s, want the original slot", promoted.StartTime, promoted.EndTime)
	}
	if want := testNow.Add(DefaultHoldTTL); !promoted.HoldExpiry.Equal(want) {
		t.Errorf("hold expiry = %v, want a fresh window ending %v", promoted.HoldExpiry, want)
	}
}

func TestPromoteRequiresManualAssignmentWhenStillFull(t *testing.T) {
	env := newTestEnv(t, testNow)
	env.addTable(t, "T4A", 4, model.TableAvailable)
	ctx := context.Background()

	if _, err := env.booking.Book(ctx, input("19:00", "21:00", 3), "T4A"); err != nil {
		t.Fatalf("Book: %v", err)
	}
	waiting := waitlisted(t, env, input("19:30", "21:30", 4))

	_, err := env.waitlist.Promote(ctx, waiting.ID)
	var manual *ManualAssignmentRequired
	if !errors.As(err, &manual) {
		t.Fatalf("err = %v, want ManualAssignmentRequired", err)
	}
	if manual.Reservation.ID != waiting.ID {
		t.Errorf("payload names reservation %s, want %s", manual.Reservation.ID, waiting.ID)
	}
	if len(manual.Tables) != 1 || manual.Tables[0].TableID != "T4A" {
		t.Errorf("candidate tables = %v, want just T4A", manual.Tables)
	}
	if len(manual.Reservations) == 0 {
		t.Error("payload should carry the day's reservations for the operator")
	}

	stored, err := env.reservations.ByID(ctx, waiting.ID)
	if err != nil {
		t.Fatalf("ByID: %v", err)
	}
	if stored.Status != model.StatusWaitingList {
		t.Errorf("status = %s, record must stay on the waiting list", stored.Status)
	}
}

func TestPromoteAt(t *testing.T) {
	env := newTestEnv(t, testNow)
	env.addTable(t, "T4A", 4, model.TableAvailable)
	ctx := context.Background()

	if _, err := env.booking.Book(ctx, input("19:00", "21:00", 3), "T4A"); err != nil {
		t.Fatalf("Book: %v", err)
	}
	waiting := waitlisted(t, env, input("19:30", "21:30", 4))

	t.Run("busy proposal keeps the record waitlisted", func(t *testing.T) {
		_, err := env.waitlist.PromoteAt(ctx, waiting.ID, schedule.ProposedInterval{
			StartTime: "20:00", EndTime: "22:00",
		})
		if !errors.Is(err, ErrNoTableForProposal) {
			t.Fatalf("err = %v, want ErrNoTableForProposal", err)
		}
	})

	t.Run("invalid proposal rejected", func(t *testing.T) {
		_, err := env.waitlist.PromoteAt(ctx, waiting.ID, schedule.ProposedInterval{
			StartTime: "20:00", EndTime: "20:00",
		})
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("err = %v, want ErrValidation", err)
		}
	})

	t.Run("free proposal grants the table at the new slot", func(t *testing.T) {
		promoted, err := env.waitlist.PromoteAt(ctx, waiting.ID, schedule.ProposedInterval{
			StartTime: "21:00", EndTime: "23:00",
		})
		if err != nil {
			t.Fatalf("PromoteAt: %v", err)
		}
		if promoted.Status != model.StatusPending || promoted.TableID != "T4A" {
			t.Errorf("got %s on %q, want pending on T4A", promoted.Status, promoted.TableID)
		}
		if promoted.StartTime != "21:00" || promoted.EndTime != "23:00" {
			t.Errorf("interval = %s-%s, want the proposed slot", promoted.StartTime, promoted.EndTime)
		}
	})
}

func TestDeclineCancelsAndNotifies(t *testing.T) {
	env := newTestEnv(t, testNow)
	env.addTable(t, "T4A", 4, model.TableAvailable)
	ctx := context.Background()

	if _, err := env.booking.Book(ctx, input("19:00", "21:00", 3), "T4A"); err != nil {
		t.Fatalf("Book: %v", err)
	}
	waiting := waitlisted(t, env, input("19:30", "21:30", 4))
	env.notifier.events = nil

	declined, err := env.waitlist.Decline(ctx, waiting.ID)
	if err != nil {
		t.Fatalf("Decline: %v", err)
	}
	if declined.Status != model.StatusCancelled {
		t.Errorf("status = %s, want cancelled", declined.Status)
	}
	if declined.CancelledReason != "no slot available" {
		t.Errorf("reason = %q", declined.CancelledReason)
	}
	if got := env.notifier.kinds(); len(got) != 1 || got[0] != queue.EmailRejected {
		t.Errorf("published %v, want one %s", got, queue.EmailRejected)
	}
}

func TestWaitlistOpsRejectNonWaitlisted(t *testing.T) {
	env := newTestEnv(t, testNow)
	env.addTable(t, "T4A", 4, model.TableAvailable)
	ctx := context.Background()

	res, err := env.booking.Book(ctx, input("19:00", "21:00", 3), "T4A")
	if err != nil {
		t.Fatalf("Book: %v", err)
	}
	if _, err := env.waitlist.Promote(ctx, res.ID); !errors.Is(err, ErrNotWaitlisted) {
		t.Errorf("Promote err = %v, want ErrNotWaitlisted", err)
	}
	if _, err := env.waitlist.Decline(ctx, res.ID); !errors.Is(err, ErrNotWaitlisted) {
		t.Errorf("Decline err = %v, want ErrNotWaitlisted", err)
	}
}

func TestWaitlistListNewestFirst(t *testing.T) {
	env := newTestEnv(t, testNow)
	ctx := context.Background()

	// No tables at all, so every request is waitlisted.
	waitlisted(t, env, input("18:00", "19:00", 2))
	waitlisted(t, env, input("20:00", "21:00", 2))

	waiting, err := env.waitlist.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(waiting) != 2 {
		t.Fatalf("%d waitlisted, want 2", len(waiting))
	}
}
