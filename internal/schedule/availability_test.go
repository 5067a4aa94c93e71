package schedule

import (
	"errors"
	"reflect"
	"testing"

	"github.com/goldenfork/reservation-api/internal/model"
)

func testFloor() []model.Table {
	return []model.Table{
		{TableID: "T4B", Capacity: 4, Status: model.TableAvailable},
		{TableID: "T4A", Capacity: 4, Status: model.TableAvailable},
		{TableID: "T2A", Capacity: 2, Status: model.TableAvailable},
		{TableID: "T6A", Capacity: 6, Status: model.TableUnderRepair},
		{TableID: "T15A", Capacity: 15, Status: model.TableAvailable},
	}
}

func mustInterval(t *testing.T, date, start, end string) Interval {
	t.Helper()
	iv, err := NewInterval(date, start, end)
	if err != nil {
		t.Fatalf("NewInterval: %v", err)
	}
	return iv
}

func TestResolveAvailable(t *testing.T) {
	iv := mustInterval(t, "2026-06-01", "19:00", "21:00")

	t.Run("only the matching tier, sorted by table id", func(t *testing.T) {
		got, err := ResolveAvailable(iv, 3, testFloor(), nil)
		if err != nil {
			t.Fatalf("ResolveAvailable: %v", err)
		}
		if want := []string{"T4A", "T4B"}; !reflect.DeepEqual(got, want) {
			t.Errorf("got %v, want %v", got, want)
		}
	})

	t.Run("overlapping pending hold blocks its table", func(t *testing.T) {
		day := []model.Reservation{{
			TableID: "T4A", Status: model.StatusPending,
			Date: "2026-06-01", StartTime: "20:00", EndTime: "22:00",
		}}
		got, err := ResolveAvailable(iv, 3, testFloor(), day)
		if err != nil {
			t.Fatalf("ResolveAvailable: %v", err)
		}
		if want := []string{"T4B"}; !reflect.DeepEqual(got, want) {
			t.Errorf("got %v, want %v", got, want)
		}
	})

	t.Run("cancelled and done reservations never block", func(t *testing.T) {
		day := []model.Reservation{
			{TableID: "T4A", Status: model.StatusCancelled, Date: "2026-06-01", StartTime: "19:00", EndTime: "21:00"},
			{TableID: "T4B", Status: model.StatusDone, Date: "2026-06-01", StartTime: "19:00", EndTime: "21:00"},
		}
		got, err := ResolveAvailable(iv, 3, testFloor(), day)
		if err != nil {
			t.Fatalf("ResolveAvailable: %v", err)
		}
		if len(got) != 2 {
			t.Errorf("got %v, want both four-tops", got)
		}
	})

	t.Run("adjacent slot sharing a boundary does not block", func(t *testing.T) {
		day := []model.Reservation{{
			TableID: "T4A", Status: model.StatusConfirmed,
			Date: "2026-06-01", StartTime: "17:00", EndTime: "19:00",
		}}
		got, err := ResolveAvailable(iv, 3, testFloor(), day)
		if err != nil {
			t.Fatalf("ResolveAvailable: %v", err)
		}
		if len(got) != 2 {
			t.Errorf("got %v, want both four-tops", got)
		}
	})

	t.Run("previous-day crosser blocks an early slot", func(t *testing.T) {
		early := mustInterval(t, "2026-06-02", "00:30", "01:30")
		day := []model.Reservation{{
			TableID: "T4A", Status: model.StatusConfirmed,
			Date: "2026-06-01", StartTime: "23:00", EndTime: "01:00",
		}}
		got, err := ResolveAvailable(early, 3, testFloor(), day)
		if err != nil {
			t.Fatalf("ResolveAvailable: %v", err)
		}
		if want := []string{"T4B"}; !reflect.DeepEqual(got, want) {
			t.Errorf("got %v, want %v", got, want)
		}
	})

	t.Run("unparseable reservation treated as blocking", func(t *testing.T) {
		day := []model.Reservation{{
			TableID: "T4A", Status: model.StatusConfirmed,
			Date: "2026-06-01", StartTime: "oops", EndTime: "21:00",
		}}
		got, err := ResolveAvailable(iv, 3, testFloor(), day)
		if err != nil {
			t.Fatalf("ResolveAvailable: %v", err)
		}
		if want := []string{"T4B"}; !reflect.DeepEqual(got, want) {
			t.Errorf("got %v, want %v", got, want)
		}
	})

	t.Run("under-repair tier yields empty result", func(t *testing.T) {
		got, err := ResolveAvailable(iv, 5, testFloor(), nil)
		if err != nil {
			t.Fatalf("ResolveAvailable: %v", err)
		}
		if len(got) != 0 {
			t.Errorf("got %v, want no tables", got)
		}
	})

	t.Run("oversized party fails", func(t *testing.T) {
		if _, err := ResolveAvailable(iv, 16, testFloor(), nil); !errors.Is(err, ErrCapacityExceeded) {
			t.Errorf("err = %v, want ErrCapacityExceeded", err)
		}
	})
}

func TestConflictsWith(t *testing.T) {
	iv := mustInterval(t, "2026-06-01", "19:00", "21:00")
	day := []model.Reservation{
		{TableID: "T4A", Status: model.StatusPending, Date: "2026-06-01", StartTime: "20:00", EndTime: "22:00"},
		{TableID: "T4B", Status: model.StatusCancelled, Date: "2026-06-01", StartTime: "19:00", EndTime: "21:00"},
	}
	if !ConflictsWith(iv, "T4A", day) {
		t.Error("expected conflict on T4A")
	}
	if ConflictsWith(iv, "T4B", day) {
		t.Error("cancelled reservation should not conflict on T4B")
	}
	if ConflictsWith(iv, "T2A", day) {
		t.Error("unrelated table should not conflict")
	}
}
