package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/bikeshrana/quant-research-platform/internal/backtest"
	"github.com/bikeshrana/quant-research-platform/internal/cmdsupport"
	"github.com/bikeshrana/quant-research-platform/internal/config"
	"github.com/bikeshrana/quant-research-platform/internal/obsmetrics"
	"github.com/bikeshrana/quant-research-platform/internal/strategy"
	"github.com/bikeshrana/quant-research-platform/internal/walkforward"
)

func main() {
	symbol := flag.String("symbol", "PETR4", "Symbol to optimize")
	strategyName := flag.String("strategy", "TrendFollowing", "Strategy to optimize (see -list)")
	barsPath := flag.String("bars", "", "Path to a CSV bar file (timestamp,open,high,low,close,volume)")
	configPath := flag.String("config", "configs/config.yaml", "Path to process config")
	sampler := flag.String("sampler", "tpe", "Sampler: grid, random, tpe")
	metric := flag.String("metric", "sharpe_ratio", "Optimization metric: sharpe_ratio, total_return, profit_factor")
	trainDays := flag.Int("train-days", 90, "Train window length in days")
	testDays := flag.Int("test-days", 30, "Test window length in days")
	stepDays := flag.Int("step-days", 30, "Step size in days for rolling mode")
	anchored := flag.Bool("anchored", false, "Use anchored windows instead of rolling")
	nTrials := flag.Int("trials", 50, "Trials per window (0 means exhaustive for grid)")
	seed := flag.Int64("seed", 1, "Sampler random seed")
	outputDir := flag.String("output", "", "Output directory override (empty uses config default)")
	verbose := flag.Bool("verbose", false, "Enable debug logging")
	list := flag.Bool("list", false, "List registered strategies and exit")
	flag.Parse()

	if *list {
		for _, n := range strategy.Names() {
			fmt.Println(n)
		}
		return
	}

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
	logger := log.With().Str("component", "cmd.optimize").Logger()

	if *barsPath == "" {
		logger.Fatal().Msg("-bars is required")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}

	dir := *outputDir
	if dir == "" {
		dir = cfg.Optimize.OutputDir
	}
	workers := cfg.Optimize.Workers
	if workers < 1 {
		workers = 1
	}

	s, err := strategy.New(*strategyName)
	if err != nil {
		logger.Fatal().Err(err).Msg("unknown strategy")
	}

	bars, err := cmdsupport.LoadBarCSV(*barsPath, *symbol, "1d")
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load bars")
	}

	wfConfig := walkforward.Config{
		Window: walkforward.WindowConfig{
			TrainWindowDays: *trainDays,
			TestWindowDays:  *testDays,
			StepDays:        *stepDays,
			Anchored:        *anchored,
		},
		OptimizationMetric: walkforward.Metric(*metric),
		Sampler:            walkforward.SamplerKind(*sampler),
		NTrials:            *nTrials,
		Workers:            workers,
		Seed:               *seed,
		BacktestConfig:     backtest.DefaultConfig(),
	}
	wfConfig.BacktestConfig.InitialCapital = cfg.Backtest.InitialCapital

	metrics := obsmetrics.New("quant_research")
	engine := backtest.NewEngine(logger)
	optimizer := walkforward.NewOptimizer(logger, engine)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	started := time.Now()
	report, err := optimizer.Run(ctx, s, bars, wfConfig)
	if err != nil {
		logger.Fatal().Err(err).Msg("optimization failed")
	}
	metrics.BacktestRunDuration.WithLabelValues(s.Name()).Observe(time.Since(started).Seconds())
	metrics.OptimizerTrialsTotal.WithLabelValues(s.Name(), *sampler).Add(float64(totalTrials(report)))
	for _, d := range report.Dropped {
		metrics.WindowsDroppedTotal.WithLabelValues(s.Name(), d.Reason).Inc()
	}

	fmt.Println(walkforward.PrintTopResults(report))

	if err := os.MkdirAll(dir, 0o755); err != nil {
		logger.Error().Err(err).Msg("failed to create output directory")
	} else {
		path := filepath.Join(dir, fmt.Sprintf("walkforward_%s_%s.json", s.Name(), time.Now().Format("20060102_150405")))
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			logger.Error().Err(err).Msg("failed to marshal report")
		} else if err := os.WriteFile(path, data, 0o644); err != nil {
			logger.Error().Err(err).Msg("failed to write report")
		} else {
			logger.Info().Str("file", path).Msg("walk-forward report saved")
		}
	}

	logger.Info().
		Int("windows", report.Aggregate.TotalWindows).
		Int("dropped", len(report.Dropped)).
		Float64("avg_test_return_pct", report.Aggregate.AvgTestReturn).
		Bool("cancelled", report.Cancelled).
		Msg("optimization complete")
}

func totalTrials(r walkforward.Report) int {
	total := 0
	for _, w := range r.Windows {
		total += w.OptimizationTrials
	}
	return total
}
