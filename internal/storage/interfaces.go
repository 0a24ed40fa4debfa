package storage

import (
	"context"

	"montecarlo-lab/internal/domain"
)

// ScenarioStore provides access to named scenario storage.
type ScenarioStore interface {
	// Save adds a new scenario. Returns ErrDuplicateKey if the id or name exists.
	Save(ctx context.Context, s *domain.Scenario) error

	// List retrieves all scenarios, newest first.
	List(ctx context.Context) ([]*domain.Scenario, error)

	// Delete removes a scenario. Returns ErrNotFound if not exists.
	Delete(ctx context.Context, id string) error

	// Load retrieves a scenario by its ID. Returns ErrNotFound if not exists.
	Load(ctx context.Context, id string) (*domain.Scenario, error)
}

// RunSummaryStore provides access to append-only run_summaries storage.
type RunSummaryStore interface {
	// Insert adds a new run summary. Returns ErrDuplicateKey if run_id exists.
	Insert(ctx context.Context, r *domain.RunSummary) error

	// GetByID retrieves a run summary by run_id. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, runID string) (*domain.RunSummary, error)

	// GetRecent retrieves up to limit summaries, newest first.
	GetRecent(ctx context.Context, limit int) ([]*domain.RunSummary, error)
}
