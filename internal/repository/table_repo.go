package repository

import (
	"context"
	"errors"

	"github.com/goldenfork/reservation-api/internal/model"
	"github.com/goldenfork/reservation-api/internal/store"
)

// TableRepo provides data access to the tables collection.
type TableRepo struct {
	store store.Store
}

// NewTableRepo returns a TableRepo bound to the store.
func NewTableRepo(s store.Store) *TableRepo { return &TableRepo{store: s} }

// All returns every table on the floor.
func (r *TableRepo) All(ctx context.Context) ([]model.Table, error) {
	var out []model.Table
	err := r.store.Query(ctx, store.Tables, store.Filter{}, &out)
	return out, err
}

// ByTableID fetches one table by its business identifier.
func (r *TableRepo) ByTableID(ctx context.Context, tableID string) (*model.Table, error) {
	var out []model.Table
	if err := r.store.Query(ctx, store.Tables, store.Filter{"table_id": tableID}, &out); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, ErrNotFound
	}
	return &out[0], nil
}

// Create persists a new table after checking the business id is not
// already taken, and fills in the store-assigned id.
func (r *TableRepo) Create(ctx context.Context, t *model.Table) error {
	existing, err := r.ByTableID(ctx, t.TableID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	if existing != nil {
		return ErrTableExists
	}
	id, err := r.store.Insert(ctx, store.Tables, t)
	if err != nil {
		return err
	}
	t.ID = id
	return nil
}

// Update patches a table's mutable fields (status, type, capacity).
func (r *TableRepo) Update(ctx context.Context, id string, patch store.Patch) error {
	err := r.store.Update(ctx, store.Tables, id, patch, nil)
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

// Delete removes a table from the floor.
func (r *TableRepo) Delete(ctx context.Context, id string) error {
	err := r.store.Delete(ctx, store.Tables, id)
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
