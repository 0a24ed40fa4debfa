package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"

	"montecarlo-lab/internal/domain"
	"montecarlo-lab/internal/orchestrator"
	"montecarlo-lab/internal/reporting"
	"montecarlo-lab/internal/simulation"
	"montecarlo-lab/internal/storage"
	chstore "montecarlo-lab/internal/storage/clickhouse"
	"montecarlo-lab/internal/storage/migrations"
)

func main() {
	def := domain.DefaultParams()

	// Strategy and cash flows
	strategyName := flag.String("strategy", string(def.Strategy), "Strategy: dca, lump_sum, withdrawal, comparison")
	contribution := flag.Float64("contribution", def.MonthlyContribution, "Monthly contribution")
	lumpSum := flag.Float64("lump-sum", def.LumpSum, "Initial lump sum (lump_sum, comparison)")
	withdrawalRate := flag.Float64("withdrawal-rate", def.WithdrawalRate, "Annual withdrawal rate (withdrawal)")
	withdrawalStart := flag.Int("withdrawal-start", -1, "Month withdrawals start (withdrawal, -1 means half the horizon)")

	// Return model
	distribution := flag.String("distribution", string(def.Distribution), "Distribution: normal, student_t, lognormal, jump_diffusion, regime_switching, garch")
	expectedReturn := flag.Float64("return", def.ExpectedReturn, "Expected monthly return")
	volatility := flag.Float64("volatility", def.Volatility, "Monthly volatility")
	dof := flag.Int("df", def.DegreesOfFreedom, "Degrees of freedom (student_t)")
	jumpIntensity := flag.Float64("jump-intensity", def.JumpIntensity, "Expected jumps per year (jump_diffusion)")
	jumpSize := flag.Float64("jump-size", def.JumpSize, "Jump size in percent (jump_diffusion)")

	// Horizon and run
	months := flag.Int("months", def.Months, "Horizon in months")
	simulations := flag.Int("simulations", def.Simulations, "Number of trajectories")
	target := flag.Float64("target", def.TargetValue, "Target final wealth")
	inflation := flag.Float64("inflation", def.InflationRate, "Annual inflation rate")
	riskFree := flag.Float64("risk-free", def.RiskFreeRate, "Annual risk-free rate")
	seed := flag.Uint64("seed", 0, "Random seed (0 draws one)")
	sensitivity := flag.Bool("sensitivity", false, "Run sensitivity analysis")
	workers := flag.Int("workers", runtime.GOMAXPROCS(0), "Parallel workers")

	// Storage
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string to record the run (optional)")

	// Output
	outputJSON := flag.Bool("json", false, "Output as JSON")
	markdownPath := flag.String("markdown", "", "Write a Markdown report to this path")
	csvPath := flag.String("csv", "", "Write summary metrics CSV to this path")
	finalsPath := flag.String("final-values", "", "Write final values CSV to this path")
	verbose := flag.Bool("verbose", false, "Verbose logging")

	flag.Parse()

	// Setup logger
	logger := log.New(os.Stderr, "[simulate] ", log.LstdFlags)

	p := domain.SimulationParams{
		MonthlyContribution:  *contribution,
		LumpSum:              *lumpSum,
		ExpectedReturn:       *expectedReturn,
		Volatility:           *volatility,
		Months:               *months,
		Simulations:          *simulations,
		TargetValue:          *target,
		InflationRate:        *inflation,
		RiskFreeRate:         *riskFree,
		Distribution:         domain.Distribution(strings.ToLower(*distribution)),
		DegreesOfFreedom:     *dof,
		JumpIntensity:        *jumpIntensity,
		JumpSize:             *jumpSize,
		WithdrawalRate:       *withdrawalRate,
		WithdrawalStartMonth: *withdrawalStart,
		Strategy:             domain.Strategy(strings.ToLower(*strategyName)),
		Seed:                 *seed,
		Sensitivity:          *sensitivity,
	}
	if *withdrawalStart < 0 {
		p.WithdrawalStartMonth = p.Months / 2
	}
	if err := p.Validate(); err != nil {
		logger.Fatalf("Invalid parameters: %v", err)
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, shutting down...", sig)
		cancel()
	}()

	// Optional run history
	var runStore storage.RunSummaryStore
	if *clickhouseDSN != "" {
		conn, err := migrations.RunClickhouseMigrations(ctx, *clickhouseDSN)
		if err != nil {
			logger.Fatalf("clickhouse migrations: %v", err)
		}
		defer conn.Close()
		runStore = chstore.NewRunSummaryStore(conn)
	}

	runnerOpts := simulation.DefaultRunnerOptions()
	runnerOpts.Workers = *workers

	orch := orchestrator.New(orchestrator.Options{
		Runner:   simulation.NewRunner(runnerOpts),
		RunStore: runStore,
		Logger:   logger,
		Verbose:  *verbose,
	})

	logger.Printf("Running simulation: strategy=%s distribution=%s simulations=%d months=%d",
		p.Strategy, p.Distribution, p.Simulations, p.Months)

	result, err := orch.Run(ctx, p)
	if err != nil {
		logger.Fatalf("simulation failed: %v", err)
	}

	// Reports
	if *markdownPath != "" || *csvPath != "" {
		report, err := reporting.NewGenerator(runStore).Generate(ctx, result)
		if err != nil {
			logger.Fatalf("generate report: %v", err)
		}
		if *markdownPath != "" {
			writeFile(logger, *markdownPath, reporting.RenderMarkdown(report))
		}
		if *csvPath != "" {
			writeFile(logger, *csvPath, reporting.RenderSummaryCSV(report))
		}
	}
	if *finalsPath != "" {
		writeFile(logger, *finalsPath, reporting.RenderFinalValuesCSV(result.FinalValues))
	}

	// Output result
	if *outputJSON {
		output, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(output))
	} else {
		printResult(result)
	}
}

func writeFile(logger *log.Logger, path, content string) {
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		logger.Fatalf("write %s: %v", path, err)
	}
	logger.Printf("Wrote %s", path)
}

// printResult outputs a human-readable summary.
func printResult(r *domain.Result) {
	s := r.Summary
	risk := r.Risk

	fmt.Println()
	fmt.Println("=== Simulation Result ===")
	fmt.Printf("Run ID:             %s\n", r.RunID)
	fmt.Printf("Seed:               %d\n", r.Seed)
	fmt.Printf("Strategy:           %s\n", r.Params.Strategy)
	fmt.Printf("Distribution:       %s\n", r.Params.Distribution)
	fmt.Printf("Trajectories:       %d\n", r.Params.Simulations)
	fmt.Printf("Duration:           %v\n", r.Duration)
	fmt.Println()

	fmt.Println("Final Wealth (nominal / real):")
	fmt.Printf("  Median:           %.2f / %.2f\n", s.Median, s.RealMedian)
	fmt.Printf("  Mean:             %.2f / %.2f\n", s.Mean, s.RealMean)
	fmt.Printf("  P10:              %.2f / %.2f\n", s.P10, s.RealP10)
	fmt.Printf("  P90:              %.2f / %.2f\n", s.P90, s.RealP90)
	fmt.Printf("  Best:             %.2f\n", s.Best)
	fmt.Printf("  Worst:            %.2f\n", s.Worst)
	fmt.Printf("  Total Invested:   %.2f\n", s.TotalInvested)
	fmt.Println()

	fmt.Println("Outcomes:")
	fmt.Printf("  P(target):        %.2f%%\n", s.ProbTarget*100)
	if s.MedianTargetHit == domain.NeverHit(r.Params.Months) {
		fmt.Println("  Median Hit Month: not reached")
	} else {
		fmt.Printf("  Median Hit Month: %d\n", s.MedianTargetHit)
	}
	fmt.Printf("  P(loss):          %.2f%%\n", s.ProbLoss*100)
	if r.Params.Strategy == domain.StrategyWithdrawal {
		fmt.Printf("  P(depletion):     %.2f%%\n", s.ProbDepletion*100)
	}
	fmt.Println()

	fmt.Println("Risk:")
	fmt.Printf("  VaR 5%%:           %.2f\n", risk.VaR5)
	fmt.Printf("  CVaR 5%%:          %.2f\n", risk.CVaR5)
	fmt.Printf("  Median Drawdown:  %.2f%%\n", risk.MedianDrawdown*100)
	fmt.Printf("  Worst Drawdown:   %.2f%%\n", risk.WorstDrawdown*100)
	fmt.Printf("  Sharpe:           %.4f\n", risk.Sharpe)
	fmt.Printf("  Sortino:          %.4f\n", risk.Sortino)
	fmt.Printf("  Calmar:           %.4f\n", risk.Calmar)
	fmt.Printf("  Skewness:         %.4f\n", risk.Skewness)
	fmt.Printf("  Kurtosis:         %.4f\n", risk.Kurtosis)

	if c := r.Comparison; c != nil {
		fmt.Println()
		fmt.Println("Lump Sum Leg:")
		fmt.Printf("  Median:           %.2f\n", c.LumpSum.Median)
		fmt.Printf("  P10:              %.2f\n", c.LumpSum.P10)
		fmt.Printf("  P90:              %.2f\n", c.LumpSum.P90)
		fmt.Printf("  DCA Advantage:    %.2f\n", c.MedianAdvantage)
	}

	if sens := r.Sensitivity; sens != nil {
		fmt.Println()
		fmt.Println("Sensitivity (median shift for -/+ perturbation):")
		for _, f := range sens.Tornado {
			fmt.Printf("  %-22s %12.2f %12.2f\n", f.Factor, f.LowImpact, f.HighImpact)
		}
	}
}
