package runs

import "context"

// Repo persists screening runs. Every lookup is scoped to the owning client.
type Repo interface {
	Create(ctx context.Context, run Run) error
	Get(ctx context.Context, clientID, id string) (Run, error)
	// ListByClient returns runs newest first without their per-résumé results.
	ListByClient(ctx context.Context, clientID string, limit, offset int) ([]Run, error)
	Delete(ctx context.Context, clientID, id string) error
}
