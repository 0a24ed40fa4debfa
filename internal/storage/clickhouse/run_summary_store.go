package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"montecarlo-lab/internal/domain"
	"montecarlo-lab/internal/storage"
)

// RunSummaryStore implements storage.RunSummaryStore using ClickHouse.
type RunSummaryStore struct {
	conn *Conn
}

// NewRunSummaryStore creates a new RunSummaryStore.
func NewRunSummaryStore(conn *Conn) *RunSummaryStore {
	return &RunSummaryStore{conn: conn}
}

// Compile-time interface check.
var _ storage.RunSummaryStore = (*RunSummaryStore)(nil)

const runSummaryColumns = `
	run_id, strategy, distribution, simulations, months, seed,
	median, mean, p10, p90, prob_target, cvar_5, sharpe,
	duration_ms, created_at
`

// Insert adds a new run summary. Returns ErrDuplicateKey if run_id exists.
func (s *RunSummaryStore) Insert(ctx context.Context, r *domain.RunSummary) (err error) {
	if r == nil || r.RunID == "" {
		return storage.ErrInvalidInput
	}
	defer func(start time.Time) { observe("run_summary_insert", start, err) }(time.Now())

	// ReplacingMergeTree would silently replace, check first for append-only semantics
	exists, err := s.exists(ctx, r.RunID)
	if err != nil {
		return fmt.Errorf("check exists: %w", err)
	}
	if exists {
		return storage.ErrDuplicateKey
	}

	batch, err := s.conn.PrepareBatch(ctx, `INSERT INTO run_summaries (`+runSummaryColumns+`)`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}
	err = batch.Append(
		r.RunID, string(r.Strategy), string(r.Distribution), uint32(r.Simulations), uint32(r.Months), r.Seed,
		r.Median, r.Mean, r.P10, r.P90, r.ProbTarget, r.CVaR5, r.Sharpe,
		r.DurationMs, r.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("append to batch: %w", err)
	}
	if err := batch.Send(); err != nil {
		return fmt.Errorf("insert run summary: %w", err)
	}
	return nil
}

// GetByID retrieves a run summary by run_id. Returns ErrNotFound if not exists.
func (s *RunSummaryStore) GetByID(ctx context.Context, runID string) (_ *domain.RunSummary, err error) {
	defer func(start time.Time) { observe("run_summary_get", start, err) }(time.Now())

	query := `SELECT ` + runSummaryColumns + `
		FROM run_summaries FINAL
		WHERE run_id = ?
		LIMIT 1
	`

	rows, err := s.conn.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("query run summary: %w", err)
	}
	defer rows.Close()

	result, err := scanRunSummaries(rows)
	if err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return nil, storage.ErrNotFound
	}
	return result[0], nil
}

// GetRecent retrieves up to limit summaries, newest first.
func (s *RunSummaryStore) GetRecent(ctx context.Context, limit int) (_ []*domain.RunSummary, err error) {
	if limit <= 0 {
		return nil, storage.ErrInvalidInput
	}
	defer func(start time.Time) { observe("run_summary_recent", start, err) }(time.Now())

	query := `SELECT ` + runSummaryColumns + `
		FROM run_summaries FINAL
		ORDER BY created_at DESC, run_id ASC
		LIMIT ?
	`

	rows, err := s.conn.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent run summaries: %w", err)
	}
	defer rows.Close()

	return scanRunSummaries(rows)
}

// exists checks if a run summary exists.
func (s *RunSummaryStore) exists(ctx context.Context, runID string) (bool, error) {
	var count uint64
	err := s.conn.QueryRow(ctx, `SELECT count() FROM run_summaries WHERE run_id = ?`, runID).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// scanRunSummaries scans rows into RunSummary values.
func scanRunSummaries(rows driver.Rows) ([]*domain.RunSummary, error) {
	result := make([]*domain.RunSummary, 0)
	for rows.Next() {
		var (
			r                   domain.RunSummary
			strategy, dist      string
			simulations, months uint32
		)
		err := rows.Scan(
			&r.RunID, &strategy, &dist, &simulations, &months, &r.Seed,
			&r.Median, &r.Mean, &r.P10, &r.P90, &r.ProbTarget, &r.CVaR5, &r.Sharpe,
			&r.DurationMs, &r.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan run summary: %w", err)
		}
		r.Strategy = domain.Strategy(strategy)
		r.Distribution = domain.Distribution(dist)
		r.Simulations = int(simulations)
		r.Months = int(months)
		result = append(result, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run summaries: %w", err)
	}
	return result, nil
}
