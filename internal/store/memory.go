package store

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
)

type txKey struct{}

// Memory implements Store entirely in process.  It exists for tests
// and local development without a MongoDB instance.  Documents are
// held as decoded JSON maps so filter matching works on the same
// field names the real store sees.
type Memory struct {
	mu   sync.Mutex
	data map[string]map[string]map[string]any // collection -> id -> document
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string]map[string]map[string]any)}
}

// lock acquires the store mutex unless the context already runs
// inside Atomically, which holds it for the whole critical section.
func (m *Memory) lock(ctx context.Context) func() {
	if ctx.Value(txKey{}) != nil {
		return func() {}
	}
	m.mu.Lock()
	return m.mu.Unlock
}

func (m *Memory) collection(name string) map[string]map[string]any {
	c, ok := m.data[name]
	if !ok {
		c = make(map[string]map[string]any)
		m.data[name] = c
	}
	return c
}

func toDoc(v any) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// matches applies the filter to a document.  RFC 3339 strings are
// compared as instants for lte conditions so timestamp bounds behave
// like they do in MongoDB.
func matches(doc map[string]any, filter Filter) bool {
	for field, want := range filter {
		got, ok := doc[field]
		if cond, isCond := want.(Cond); isCond {
			if !ok || cond.Op != "lte" {
				return false
			}
			if !lte(got, cond.Value) {
				return false
			}
			continue
		}
		wantNorm, err := normalize(want)
		if err != nil {
			return false
		}
		if !ok || got != wantNorm {
			return false
		}
	}
	return true
}

// normalize runs a value through JSON so it compares against stored
// documents (numbers become float64, times become RFC 3339 strings).
func normalize(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func lte(got, bound any) bool {
	b, err := normalize(bound)
	if err != nil {
		return false
	}
	gs, gok := got.(string)
	bs, bok := b.(string)
	if gok && bok {
		gt, gerr := time.Parse(time.RFC3339Nano, gs)
		bt, berr := time.Parse(time.RFC3339Nano, bs)
		if gerr == nil && berr == nil {
			return !gt.After(bt)
		}
		return gs <= bs
	}
	gf, gok := got.(float64)
	bf, bok := b.(float64)
	return gok && bok && gf <= bf
}

// Query decodes matching documents into out (*[]T).
func (m *Memory) Query(ctx context.Context, collection string, filter Filter, out any) error {
	unlock := m.lock(ctx)
	defer unlock()

	var selected []map[string]any
	for _, doc := range m.collection(collection) {
		if matches(doc, filter) {
			selected = append(selected, doc)
		}
	}
	raw, err := json.Marshal(selected)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

// Insert stores the document under a fresh uuid id.
func (m *Memory) Insert(ctx context.Context, collection string, doc any) (string, error) {
	unlock := m.lock(ctx)
	defer unlock()

	d, err := toDoc(doc)
	if err != nil {
		return "", err
	}
	id, _ := d["id"].(string)
	if id == "" {
		id = uuid.NewString()
	}
	// Keep the id under both keys so filters written against the
	// MongoDB field name ("_id") match here too.
	d["id"] = id
	d["_id"] = id
	m.collection(collection)[id] = d
	return id, nil
}

// Update patches one document, honoring the precondition.
func (m *Memory) Update(ctx context.Context, collection string, id string, patch Patch, pre *Precondition) error {
	unlock := m.lock(ctx)
	defer unlock()

	doc, ok := m.collection(collection)[id]
	if !ok {
		return ErrNotFound
	}
	if pre != nil {
		want, err := normalize(pre.Equals)
		if err != nil {
			return err
		}
		if doc[pre.Field] != want {
			return ErrPreconditionFailed
		}
	}
	for field, v := range patch {
		norm, err := normalize(v)
		if err != nil {
			return err
		}
		doc[field] = norm
	}
	return nil
}

// Touch upserts the marker document and bumps its counter.  The
// global mutex already serializes atomic scopes here; the write is
// kept so the in-memory store exercises the same code paths as the
// MongoDB implementation.
func (m *Memory) Touch(ctx context.Context, collection string, id string) error {
	unlock := m.lock(ctx)
	defer unlock()

	c := m.collection(collection)
	doc, ok := c[id]
	if !ok {
		doc = map[string]any{"id": id, "_id": id}
		c[id] = doc
	}
	n, _ := doc["touched"].(float64)
	doc["touched"] = n + 1
	return nil
}

// Delete removes one document by id.
func (m *Memory) Delete(ctx context.Context, collection string, id string) error {
	unlock := m.lock(ctx)
	defer unlock()

	c := m.collection(collection)
	if _, ok := c[id]; !ok {
		return ErrNotFound
	}
	delete(c, id)
	return nil
}

// Atomically holds the store mutex for the whole callback so its
// reads and writes observe and produce a consistent state, matching
// the transactional guarantee of the MongoDB implementation.
func (m *Memory) Atomically(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(context.WithValue(ctx, txKey{}, true))
}
