package runs

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]map[string]Run // clientID -> runID -> run
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		data: make(map[string]map[string]Run),
	}
}

// Create stores a run.
func (r *MemoryRepo) Create(ctx context.Context, run Run) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	byID, ok := r.data[run.ClientID]
	if !ok {
		byID = make(map[string]Run)
		r.data[run.ClientID] = byID
	}
	byID[run.ID] = run
	return nil
}

// Get returns a run owned by clientID.
func (r *MemoryRepo) Get(ctx context.Context, clientID, id string) (Run, error) {
	if err := ctx.Err(); err != nil {
		return Run{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	run, ok := r.data[clientID][id]
	if !ok {
		return Run{}, ErrNotFound
	}
	return run, nil
}

// ListByClient returns runs for a client, newest first, honoring limit/offset.
func (r *MemoryRepo) ListByClient(ctx context.Context, clientID string, limit, offset int) ([]Run, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if offset < 0 {
		offset = 0
	}
	if limit < 0 {
		limit = 0
	}

	r.mu.RLock()
	runs := make([]Run, 0, len(r.data[clientID]))
	for _, run := range r.data[clientID] {
		run.Results = nil
		runs = append(runs, run)
	}
	r.mu.RUnlock()

	if offset >= len(runs) {
		return []Run{}, nil
	}
	sort.Slice(runs, func(i, j int) bool {
		if runs[i].CreatedAt.Equal(runs[j].CreatedAt) {
			return runs[i].ID > runs[j].ID
		}
		return runs[i].CreatedAt.After(runs[j].CreatedAt)
	})

	end := len(runs)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return runs[offset:end], nil
}

// Delete removes a run owned by clientID.
func (r *MemoryRepo) Delete(ctx context.Context, clientID, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[clientID][id]; !ok {
		return ErrNotFound
	}
	delete(r.data[clientID], id)
	return nil
}

var _ Repo = (*MemoryRepo)(nil)
