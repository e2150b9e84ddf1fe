package memory

import (
	"context"

	"snowviz/internal/app/ports"
	"snowviz/internal/domain/frames"
)

type RunRepo struct {
	store *Store
}

func NewRunRepo(store *Store) RunRepo {
	return RunRepo{store: store}
}

func (r RunRepo) Save(_ context.Context, run ports.RunRecord) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, exists := r.store.runs[run.ID]; exists {
		return ports.ErrConflict
	}
	r.store.runs[run.ID] = run
	r.store.order = append(r.store.order, run.ID)
	return nil
}

func (r RunRepo) Get(_ context.Context, id string) (ports.RunRecord, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	run, ok := r.store.runs[id]
	if !ok {
		return ports.RunRecord{}, ports.ErrNotFound
	}
	return run, nil
}

func (r RunRepo) List(_ context.Context, limit int) ([]ports.RunRecord, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	out := make([]ports.RunRecord, 0, len(r.store.order))
	for i := len(r.store.order) - 1; i >= 0; i-- {
		if limit > 0 && len(out) >= limit {
			break
		}
		out = append(out, r.store.runs[r.store.order[i]])
	}
	return out, nil
}

type ActionErrorRepo struct {
	store *Store
}

func NewActionErrorRepo(store *Store) ActionErrorRepo {
	return ActionErrorRepo{store: store}
}

func (r ActionErrorRepo) Append(_ context.Context, runID string, errs []frames.ActionError) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.errors[runID] = append(r.store.errors[runID], errs...)
	return nil
}

func (r ActionErrorRepo) ListByRunID(_ context.Context, runID string) ([]frames.ActionError, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return append([]frames.ActionError(nil), r.store.errors[runID]...), nil
}
