package store

import (
	"context"
	"errors"
	"testing"
	"time"
)

type doc struct {
	ID     string    `json:"id"`
	Name   string    `json:"name"`
	Status string    `json:"status"`
	Due    time.Time `json:"due"`
}

func TestMemoryInsertAndQuery(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	id, err := m.Insert(ctx, "things", doc{Name: "a", Status: "open"})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if _, err := m.Insert(ctx, "things", doc{Name: "b", Status: "closed"}); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	t.Run("filter by field", func(t *testing.T) {
		var out []doc
		if err := m.Query(ctx, "things", Filter{"status": "open"}, &out); err != nil {
			t.Fatalf("Query: %v", err)
		}
		if len(out) != 1 || out[0].Name != "a" {
			t.Errorf("got %v, want just a", out)
		}
	})

	t.Run("mongo-style id field matches", func(t *testing.T) {
		var out []doc
		if err := m.Query(ctx, "things", Filter{"_id": id}, &out); err != nil {
			t.Fatalf("Query: %v", err)
		}
		if len(out) != 1 || out[0].ID != id {
			t.Errorf("got %v, want the inserted doc", out)
		}
	})

	t.Run("empty filter returns everything", func(t *testing.T) {
		var out []doc
		if err := m.Query(ctx, "things", Filter{}, &out); err != nil {
			t.Fatalf("Query: %v", err)
		}
		if len(out) != 2 {
			t.Errorf("got %d docs, want 2", len(out))
		}
	})
}

func TestMemoryLTEOnTimestamps(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

	if _, err := m.Insert(ctx, "things", doc{Name: "past", Due: now.Add(-time.Hour)}); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if _, err := m.Insert(ctx, "things", doc{Name: "future", Due: now.Add(time.Hour)}); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	var out []doc
	if err := m.Query(ctx, "things", Filter{"due": LTE(now)}, &out); err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(out) != 1 || out[0].Name != "past" {
		t.Errorf("got %v, want just the past doc", out)
	}
}

func TestMemoryUpdatePrecondition(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	id, err := m.Insert(ctx, "things", doc{Name: "a", Status: "open"})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}

	pre := &Precondition{Field: "status", Equals: "open"}
	if err := m.Update(ctx, "things", id, Patch{"status": "closed"}, pre); err != nil {
		t.Fatalf("Update: %v", err)
	}

	// Same precondition again: the status moved on, so the swap fails.
	err = m.Update(ctx, "things", id, Patch{"status": "reopened"}, pre)
	if !errors.Is(err, ErrPreconditionFailed) {
		t.Errorf("err = %v, want ErrPreconditionFailed", err)
	}

	if err := m.Update(ctx, "things", "nope", Patch{"status": "x"}, nil); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestMemoryDelete(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	id, err := m.Insert(ctx, "things", doc{Name: "a"})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := m.Delete(ctx, "things", id); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := m.Delete(ctx, "things", id); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete err = %v, want ErrNotFound", err)
	}
}

func TestMemoryTouch(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	if err := m.Touch(ctx, Locks, "2026-06-01/T4A"); err != nil {
		t.Fatalf("Touch: %v", err)
	}
	if err := m.Touch(ctx, Locks, "2026-06-01/T4A"); err != nil {
		t.Fatalf("second Touch: %v", err)
	}

	var out []map[string]any
	if err := m.Query(ctx, Locks, Filter{"_id": "2026-06-01/T4A"}, &out); err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("%d lock docs, want 1", len(out))
	}
	if n, _ := out[0]["touched"].(float64); n != 2 {
		t.Errorf("touched = %v, want 2", out[0]["touched"])
	}

	// Touch inside an atomic scope reuses the held lock.
	err := m.Atomically(ctx, func(txCtx context.Context) error {
		return m.Touch(txCtx, Locks, "2026-06-01/T4A")
	})
	if err != nil {
		t.Fatalf("Atomically: %v", err)
	}
}

func TestMemoryAtomically(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	// Reads and writes inside the callback reuse the held lock rather
	// than deadlocking on it.
	err := m.Atomically(ctx, func(txCtx context.Context) error {
		id, err := m.Insert(txCtx, "things", doc{Name: "a", Status: "open"})
		if err != nil {
			return err
		}
		var out []doc
		if err := m.Query(txCtx, "things", Filter{"_id": id}, &out); err != nil {
			return err
		}
		if len(out) != 1 {
			t.Errorf("query inside the scope saw %d docs, want 1", len(out))
		}
		return m.Update(txCtx, "things", id, Patch{"status": "closed"}, nil)
	})
	if err != nil {
		t.Fatalf("Atomically: %v", err)
	}

	var out []doc
	if err := m.Query(ctx, "things", Filter{"status": "closed"}, &out); err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(out) != 1 {
		t.Errorf("got %d docs, want the committed update", len(out))
	}
}
