package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"montecarlo-lab/internal/domain"
	"montecarlo-lab/internal/storage"
)

// ScenarioStore implements storage.ScenarioStore using PostgreSQL.
// Parameters are stored as JSONB so new fields need no migration.
type ScenarioStore struct {
	pool *Pool
}

// NewScenarioStore creates a new ScenarioStore.
func NewScenarioStore(pool *Pool) *ScenarioStore {
	return &ScenarioStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ScenarioStore = (*ScenarioStore)(nil)

// Save adds a new scenario. Returns ErrDuplicateKey if the id or name exists.
func (s *ScenarioStore) Save(ctx context.Context, sc *domain.Scenario) (err error) {
	if sc == nil || sc.ID == "" || sc.Name == "" {
		return storage.ErrInvalidInput
	}
	defer func(start time.Time) { observe("scenario_save", start, err) }(time.Now())

	params, err := json.Marshal(sc.Params)
	if err != nil {
		return fmt.Errorf("marshal params: %w", err)
	}

	query := `
		INSERT INTO scenarios (id, name, params, summary_value, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err = s.pool.Exec(ctx, query, sc.ID, sc.Name, params, sc.SummaryValue, sc.CreatedAt.UTC())
	return translate("insert scenario", err)
}

// List retrieves all scenarios, newest first.
func (s *ScenarioStore) List(ctx context.Context) (_ []*domain.Scenario, err error) {
	defer func(start time.Time) { observe("scenario_list", start, err) }(time.Now())

	query := `
		SELECT id, name, params, summary_value, created_at
		FROM scenarios
		ORDER BY created_at DESC, id ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query scenarios: %w", err)
	}
	defer rows.Close()

	return scanScenarios(rows)
}

// Delete removes a scenario. Returns ErrNotFound if not exists.
func (s *ScenarioStore) Delete(ctx context.Context, id string) (err error) {
	defer func(start time.Time) { observe("scenario_delete", start, err) }(time.Now())

	tag, err := s.pool.Exec(ctx, `DELETE FROM scenarios WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete scenario: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// Load retrieves a scenario by its ID. Returns ErrNotFound if not exists.
func (s *ScenarioStore) Load(ctx context.Context, id string) (_ *domain.Scenario, err error) {
	defer func(start time.Time) { observe("scenario_load", start, err) }(time.Now())

	query := `
		SELECT id, name, params, summary_value, created_at
		FROM scenarios
		WHERE id = $1
	`

	sc, err := scanScenario(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, translate("get scenario", err)
	}
	return sc, nil
}

// scanScenario scans a single row into a Scenario.
func scanScenario(row pgx.Row) (*domain.Scenario, error) {
	var (
		sc     domain.Scenario
		params []byte
	)
	if err := row.Scan(&sc.ID, &sc.Name, &params, &sc.SummaryValue, &sc.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(params, &sc.Params); err != nil {
		return nil, fmt.Errorf("unmarshal params: %w", err)
	}
	return &sc, nil
}

// scanScenarios scans multiple rows into Scenarios.
func scanScenarios(rows pgx.Rows) ([]*domain.Scenario, error) {
	result := make([]*domain.Scenario, 0)
	for rows.Next() {
		sc, err := scanScenario(rows)
		if err != nil {
			return nil, fmt.Errorf("scan scenario: %w", err)
		}
		result = append(result, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scenarios: %w", err)
	}
	return result, nil
}
