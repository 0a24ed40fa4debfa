package orchestrator

import (
	"context"
	"errors"
	"testing"

	"montecarlo-lab/internal/domain"
	"montecarlo-lab/internal/sensitivity"
	"montecarlo-lab/internal/simulation"
	"montecarlo-lab/internal/storage/memory"
)

func testParams() domain.SimulationParams {
	p := domain.DefaultParams()
	p.Simulations = 500
	p.Months = 60
	p.Seed = 42
	return p
}

func newTestOrchestrator(store *memory.RunSummaryStore) *Orchestrator {
	return New(Options{
		Runner: simulation.NewRunner(simulation.RunnerOptions{Workers: 2, ChunkSize: 100}),
		Sensitivity: sensitivity.Config{
			Simulations:          100,
			GridReturns:          []float64{0.04, 0.08},
			GridVolatilities:     []float64{0.10, 0.20},
			FrontierVolatilities: []float64{0.05, 0.25},
		},
		RunStore:       store,
		SamplePaths:    10,
		MaxFinalValues: 200,
	})
}

func TestOrchestrator_Run_InvalidParams(t *testing.T) {
	orch := newTestOrchestrator(nil)
	p := testParams()
	p.Simulations = 10

	_, err := orch.Run(context.Background(), p)
	if !errors.Is(err, domain.ErrInvalidParams) {
		t.Fatalf("expected ErrInvalidParams, got: %v", err)
	}
}

func TestOrchestrator_Run_DCA(t *testing.T) {
	ctx := context.Background()
	store := memory.NewRunSummaryStore()
	orch := newTestOrchestrator(store)

	result, err := orch.Run(ctx, testParams())
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if result.RunID == "" {
		t.Error("expected run id")
	}
	if result.Seed != 42 || result.Params.Seed != 42 {
		t.Errorf("expected seed 42, got %d / %d", result.Seed, result.Params.Seed)
	}
	if result.Summary.TotalInvested != 500*60 {
		t.Errorf("expected total invested 30000, got %f", result.Summary.TotalInvested)
	}
	if result.Summary.P10 > result.Summary.Median || result.Summary.Median > result.Summary.P90 {
		t.Errorf("percentiles out of order: %+v", result.Summary)
	}
	if len(result.SamplePaths) != 10 {
		t.Errorf("expected 10 sample paths, got %d", len(result.SamplePaths))
	}
	if len(result.SamplePaths[0]) != 61 {
		t.Errorf("expected path length 61, got %d", len(result.SamplePaths[0]))
	}
	if len(result.FinalValues) != 200 {
		t.Errorf("expected 200 final values, got %d", len(result.FinalValues))
	}
	if len(result.Bands.P50) != 61 {
		t.Errorf("expected 61 band points, got %d", len(result.Bands.P50))
	}
	if result.Comparison != nil {
		t.Error("expected no comparison block")
	}
	if result.Sensitivity != nil {
		t.Error("expected no sensitivity report")
	}

	stored, err := store.GetByID(ctx, result.RunID)
	if err != nil {
		t.Fatalf("expected stored summary, got: %v", err)
	}
	if stored.Median != result.Summary.Median {
		t.Errorf("stored median %f, expected %f", stored.Median, result.Summary.Median)
	}
	if stored.Simulations != 500 {
		t.Errorf("stored simulations %d, expected 500", stored.Simulations)
	}
}

func TestOrchestrator_Run_Deterministic(t *testing.T) {
	orch := newTestOrchestrator(nil)

	a, err := orch.Run(context.Background(), testParams())
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	b, err := orch.Run(context.Background(), testParams())
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if a.Summary != b.Summary {
		t.Errorf("same seed produced different summaries:\n%+v\n%+v", a.Summary, b.Summary)
	}
	if a.Risk.CVaR5 != b.Risk.CVaR5 {
		t.Errorf("same seed produced different CVaR: %f vs %f", a.Risk.CVaR5, b.Risk.CVaR5)
	}
}

func TestOrchestrator_Run_ResolvesSeed(t *testing.T) {
	orch := newTestOrchestrator(nil)
	p := testParams()
	p.Seed = 0

	result, err := orch.Run(context.Background(), p)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if result.Seed == 0 {
		t.Error("expected a drawn seed")
	}
	if result.Params.Seed != result.Seed {
		t.Errorf("params seed %d differs from result seed %d", result.Params.Seed, result.Seed)
	}
}

func TestOrchestrator_Run_Comparison(t *testing.T) {
	orch := newTestOrchestrator(nil)
	p := testParams()
	p.Strategy = domain.StrategyComparison
	p.LumpSum = 30000

	result, err := orch.Run(context.Background(), p)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if result.Comparison == nil {
		t.Fatal("expected comparison block")
	}

	want := result.Summary.Median - result.Comparison.LumpSum.Median
	if result.Comparison.MedianAdvantage != want {
		t.Errorf("median advantage %f, expected %f", result.Comparison.MedianAdvantage, want)
	}
	// Positive drift: money invested at month 0 grows for longer.
	if result.Comparison.LumpSum.Median <= result.Summary.Median {
		t.Errorf("expected lump sum median above DCA median, got %f <= %f",
			result.Comparison.LumpSum.Median, result.Summary.Median)
	}
	if result.Comparison.LumpSum.TotalInvested != 30000 {
		t.Errorf("expected lump invested 30000, got %f", result.Comparison.LumpSum.TotalInvested)
	}
}

func TestOrchestrator_Run_Sensitivity(t *testing.T) {
	orch := newTestOrchestrator(nil)
	p := testParams()
	p.Sensitivity = true

	var last float64
	var calls int
	result, err := orch.RunWithProgress(context.Background(), p, func(f float64) {
		if f < last {
			t.Errorf("progress went backwards: %f after %f", f, last)
		}
		last = f
		calls++
	})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if result.Sensitivity == nil {
		t.Fatal("expected sensitivity report")
	}
	if len(result.Sensitivity.Tornado) != 4 {
		t.Errorf("expected 4 tornado rows for DCA, got %d", len(result.Sensitivity.Tornado))
	}
	if len(result.Sensitivity.Grid.Medians) != 2 {
		t.Errorf("expected 2 grid rows, got %d", len(result.Sensitivity.Grid.Medians))
	}
	if len(result.Sensitivity.Frontier) != 2 {
		t.Errorf("expected 2 frontier points, got %d", len(result.Sensitivity.Frontier))
	}
	if calls == 0 || last != 1 {
		t.Errorf("expected progress to end at 1, got %f after %d calls", last, calls)
	}
}

func TestOrchestrator_Run_SensitivityNotLargerThanBase(t *testing.T) {
	orch := New(Options{
		Runner: simulation.NewRunner(simulation.RunnerOptions{Workers: 2}),
		Sensitivity: sensitivity.Config{
			Simulations:          1000,
			GridReturns:          []float64{0.06},
			GridVolatilities:     []float64{0.15},
			FrontierVolatilities: []float64{0.15},
		},
	})
	p := testParams()
	p.Simulations = 100
	p.Seed = 1
	p.Sensitivity = true

	result, err := orch.Run(context.Background(), p)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if result.Sensitivity.BaseMedian != result.Summary.Median {
		t.Errorf("sensitivity base median %f differs from run median %f",
			result.Sensitivity.BaseMedian, result.Summary.Median)
	}
}

func TestOrchestrator_Run_Cancelled(t *testing.T) {
	orch := newTestOrchestrator(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := orch.Run(ctx, testParams())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got: %v", err)
	}
}

func TestSampleFinals(t *testing.T) {
	finals := make([]float64, 1000)
	for i := range finals {
		finals[i] = float64(i)
	}

	got := sampleFinals(finals, 10)
	if len(got) != 10 {
		t.Fatalf("expected 10 values, got %d", len(got))
	}
	for i, v := range got {
		if v != float64(i*100) {
			t.Errorf("value %d: expected %d, got %f", i, i*100, v)
		}
	}

	short := sampleFinals(finals[:5], 10)
	if len(short) != 5 {
		t.Errorf("expected all 5 values, got %d", len(short))
	}
}
