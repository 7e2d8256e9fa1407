package walkforward

import (
	"context"
	"fmt"
	"math"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/bikeshrana/quant-research-platform/internal/backtest"
	"github.com/bikeshrana/quant-research-platform/internal/quanterrors"
	"github.com/bikeshrana/quant-research-platform/internal/strategy"
	"github.com/bikeshrana/quant-research-platform/pkg/bar"
)

// Metric selects which field of a backtest Result's Metrics an Optimizer
// trial is scored on.
type Metric string

const (
	SharpeRatio  Metric = "sharpe_ratio"
	TotalReturn  Metric = "total_return"
	ProfitFactor Metric = "profit_factor"
)

// SamplerKind selects a Sampler implementation by name, the knob a caller
// sets in Config rather than constructing a Sampler directly.
type SamplerKind string

const (
	SamplerGrid   SamplerKind = "grid"
	SamplerRandom SamplerKind = "random"
	SamplerTPE    SamplerKind = "tpe"
)

// Config drives one Walk-Forward Optimizer run.
type Config struct {
	Window            WindowConfig
	OptimizationMetric Metric
	Sampler           SamplerKind
	NTrials           int
	Workers           int
	Seed              int64
	BacktestConfig    backtest.Config
}

// WindowResult is the recorded outcome of one train/test window.
type WindowResult struct {
	WindowID          int
	Train             Range
	Test              Range
	BestParams        strategy.Params
	HasBestParams     bool
	TrainMetrics      backtest.Metrics
	TestMetrics       backtest.Metrics
	OptimizationTrials int
	DroppedReason     string
}

// Aggregate summarizes WindowResults across an entire run.
type Aggregate struct {
	TotalWindows     int
	AvgTestReturn    float64
	StdTestReturn    float64
	AvgTestSharpe    float64
	StdTestSharpe    float64
	TotalTestTrades  int
	PositiveWindows  int
	NegativeWindows  int
}

// Report is the complete output of a Walk-Forward Optimizer run.
type Report struct {
	StrategyName string
	Config       Config
	Windows      []WindowResult
	Dropped      []DroppedWindow
	Aggregate    Aggregate
	Cancelled    bool
}

// Optimizer ties window generation, a Sampler, and the Backtest Engine
// together. It holds no state between Run calls.
type Optimizer struct {
	log    zerolog.Logger
	engine *backtest.Engine
}

// NewOptimizer builds an Optimizer that backtests trials through engine and
// logs through log.
func NewOptimizer(log zerolog.Logger, engine *backtest.Engine) *Optimizer {
	return &Optimizer{log: log.With().Str("component", "walkforward.Optimizer").Logger(), engine: engine}
}

// Run executes the full walk-forward procedure over bars for s, honoring
// ctx cancellation between trials and between windows.
func (o *Optimizer) Run(ctx context.Context, s strategy.Strategy, bars bar.Series, cfg Config) (Report, error) {
	windows, dropped := generateWindows(bars, cfg.Window, defaultWarmUp(s))

	report := Report{
		StrategyName: s.Name(),
		Config:       cfg,
		Dropped:      dropped,
	}

	for _, w := range windows {
		select {
		case <-ctx.Done():
			report.Cancelled = true
			return report, nil
		default:
		}

		wr, err := o.runWindow(ctx, s, bars, w, cfg)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				report.Cancelled = true
				return report, nil
			}
			return report, quanterrors.Wrap(quanterrors.InvalidInput, err, "window %d failed", w.ID)
		}
		report.Windows = append(report.Windows, wr)
	}

	report.Aggregate = aggregate(report.Windows)
	return report, nil
}

// runWindow optimizes s's parameters on w.Train, then evaluates the winner
// on w.Test.
func (o *Optimizer) runWindow(ctx context.Context, s strategy.Strategy, bars bar.Series, w Window, cfg Config) (WindowResult, error) {
	trainBars := bars.Slice(w.Train.Start, w.Train.End)
	testBars := bars.Slice(w.Test.Start, w.Test.End)

	sampler := newSampler(cfg.Sampler, s.SearchSpace(), cfg.NTrials, cfg.Seed+int64(w.ID))

	trials, err := o.searchWindow(ctx, s, trainBars, sampler, cfg)
	if err != nil {
		return WindowResult{}, err
	}

	result := WindowResult{
		WindowID:           w.ID,
		Train:               w.Train,
		Test:                 w.Test,
		OptimizationTrials: trials,
	}

	bestParams, _, hasBest := sampler.Best()
	if !hasBest {
		return result, nil
	}
	result.BestParams = bestParams
	result.HasBestParams = true

	trainSignals, err := s.Compute(trainBars, bestParams)
	if err == nil {
		trainResult, err := o.engine.Run(trainBars.Symbol(), trainBars, trainSignals, cfg.BacktestConfig)
		if err == nil {
			result.TrainMetrics = trainResult.Metrics
		}
	}

	testSignals, err := s.Compute(testBars, bestParams)
	if err != nil {
		return result, nil
	}
	testResult, err := o.engine.Run(testBars.Symbol(), testBars, testSignals, cfg.BacktestConfig)
	if err != nil {
		return result, nil
	}
	result.TestMetrics = testResult.Metrics
	return result, nil
}

// searchWindow runs the sampler's propose/observe loop, parallelizing
// trial evaluation with a bounded worker pool per the design note's
// errgroup.SetLimit discipline.
func (o *Optimizer) searchWindow(ctx context.Context, s strategy.Strategy, trainBars bar.Series, sampler Sampler, cfg Config) (int, error) {
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}

	count := 0
	for {
		batch := make([]strategy.Params, 0, workers)
		for len(batch) < workers && count+len(batch) < cfg.NTrials {
			p, ok := sampler.Propose()
			if !ok {
				break
			}
			batch = append(batch, p)
		}
		if len(batch) == 0 {
			break
		}

		scores := make([]Trial, len(batch))
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(workers)
		for i, p := range batch {
			i, p := i, p
			g.Go(func() error {
				scores[i] = o.evaluateTrial(gctx, s, trainBars, p, cfg)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return count, err
		}

		for _, t := range scores {
			sampler.Observe(t)
			count++
		}

		if ctx.Err() != nil {
			return count, nil
		}
	}
	return count, nil
}

// evaluateTrial runs one candidate through compute + backtest and applies
// the penalty rules.
func (o *Optimizer) evaluateTrial(ctx context.Context, s strategy.Strategy, trainBars bar.Series, p strategy.Params, cfg Config) Trial {
	if ctx.Err() != nil {
		return Trial{Params: p, Failed: true}
	}

	signals, err := s.Compute(trainBars, p)
	if err != nil {
		return Trial{Params: p, Failed: true}
	}
	result, err := o.engine.Run(trainBars.Symbol(), trainBars, signals, cfg.BacktestConfig)
	if err != nil {
		return Trial{Params: p, Failed: true}
	}

	if result.Metrics.TotalTrades == 0 {
		return Trial{Params: p, Failed: true}
	}

	raw, ok := extractMetric(result.Metrics, cfg.OptimizationMetric)
	if !ok || math.IsNaN(raw) || math.IsInf(raw, 0) {
		return Trial{Params: p, Failed: true}
	}

	score := raw
	if result.Metrics.MaxDrawdownPct > 30 {
		score *= 0.5
	}

	return Trial{Params: p, Score: score}
}

func extractMetric(m backtest.Metrics, metric Metric) (float64, bool) {
	switch metric {
	case SharpeRatio:
		if m.SharpeRatio == nil {
			return 0, false
		}
		return *m.SharpeRatio, true
	case TotalReturn:
		return m.TotalReturnPct, true
	case ProfitFactor:
		if m.ProfitFactor == nil {
			return 0, false
		}
		return *m.ProfitFactor, true
	default:
		return 0, false
	}
}

func newSampler(kind SamplerKind, space strategy.ParamSpace, nTrials int, seed int64) Sampler {
	switch kind {
	case SamplerRandom:
		return NewRandomSampler(space, nTrials, seed)
	case SamplerGrid:
		return NewGridSampler(space)
	default:
		return NewTPESampler(space, nTrials, seed)
	}
}

// PrintTopResults formats a Report's windows for console display.
func PrintTopResults(r Report) string {
	out := fmt.Sprintf("\nWalk-Forward Report: %s\n", r.StrategyName)
	out += fmt.Sprintf("Windows: %d (dropped %d)\n", r.Aggregate.TotalWindows, len(r.Dropped))
	out += fmt.Sprintf("Avg Test Return: %.2f%%  Avg Test Sharpe: %.2f\n", r.Aggregate.AvgTestReturn, r.Aggregate.AvgTestSharpe)
	out += fmt.Sprintf("Positive Windows: %d / %d\n", r.Aggregate.PositiveWindows, r.Aggregate.TotalWindows)
	return out
}
