package backtest

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"time"
)

// MonteCarloConfig holds configuration for Monte Carlo simulation.
type MonteCarloConfig struct {
	Simulations     int
	Seed            int64
	ConfidenceLevel float64
}

// MonteCarloResult holds results of Monte Carlo trade-resampling simulation.
type MonteCarloResult struct {
	Config         MonteCarloConfig
	OriginalResult Result
	Simulations    []SimulationRun

	MeanFinalReturn        float64
	MedianFinalReturn      float64
	StdDevFinalReturn      float64
	MinFinalReturn         float64
	MaxFinalReturn         float64
	ConfidenceIntervalLow  float64
	ConfidenceIntervalHigh float64

	MeanMaxDrawdown   float64
	MedianMaxDrawdown float64
	StdDevMaxDrawdown float64
	WorstMaxDrawdown  float64
	BestMaxDrawdown   float64

	MeanSharpe   float64
	MedianSharpe float64
	StdDevSharpe float64
	MinSharpe    float64
	MaxSharpe    float64

	ProbabilityOfProfit float64
	ProbabilityOfTarget float64
	RiskOfRuin          float64

	Duration time.Duration
}

// SimulationRun represents a single Monte Carlo simulation.
type SimulationRun struct {
	RunNumber      int
	FinalReturn    float64
	FinalReturnPct float64
	MaxDrawdown    float64
	MaxDrawdownPct float64
	SharpeRatio    float64
	Trades         []Trade
}

// MonteCarloSimulator bootstrap-resamples a Trade Ledger with replacement to
// estimate the distribution of outcomes a strategy's trade sequence could
// plausibly have produced, rather than treating the single observed
// ordering as ground truth.
type MonteCarloSimulator struct {
	config MonteCarloConfig
	rand   *rand.Rand
}

// NewMonteCarloSimulator creates a new Monte Carlo simulator. seed must be
// supplied by the caller (time-seeded randomness is excluded here so Simulate
// stays reproducible given a fixed seed).
func NewMonteCarloSimulator(config MonteCarloConfig, seed int64) *MonteCarloSimulator {
	return &MonteCarloSimulator{
		config: config,
		rand:   rand.New(rand.NewSource(seed)),
	}
}

// Simulate runs Monte Carlo simulation on a backtest Result.
func (mcs *MonteCarloSimulator) Simulate(result Result) MonteCarloResult {
	startTime := time.Now()

	if len(result.Trades) == 0 {
		return MonteCarloResult{Config: mcs.config, OriginalResult: result}
	}

	simulations := make([]SimulationRun, mcs.config.Simulations)
	for i := 0; i < mcs.config.Simulations; i++ {
		simulations[i] = mcs.runSimulation(i+1, result)
	}

	return mcs.calculateStatistics(result, simulations, time.Since(startTime))
}

func (mcs *MonteCarloSimulator) runSimulation(runNumber int, originalResult Result) SimulationRun {
	shuffledTrades := mcs.shuffleTrades(originalResult.Trades)
	finalReturn, maxDrawdown, sharpe := mcs.calculateMetrics(shuffledTrades, originalResult.InitialCapital)

	return SimulationRun{
		RunNumber:      runNumber,
		FinalReturn:    finalReturn,
		FinalReturnPct: finalReturn / originalResult.InitialCapital * 100,
		MaxDrawdown:    maxDrawdown,
		MaxDrawdownPct: maxDrawdown / originalResult.InitialCapital * 100,
		SharpeRatio:    sharpe,
		Trades:         shuffledTrades,
	}
}

// shuffleTrades resamples trades with replacement (bootstrap sampling).
func (mcs *MonteCarloSimulator) shuffleTrades(original []Trade) []Trade {
	n := len(original)
	shuffled := make([]Trade, n)
	for i := 0; i < n; i++ {
		shuffled[i] = original[mcs.rand.Intn(n)]
	}
	return shuffled
}

func (mcs *MonteCarloSimulator) calculateMetrics(trades []Trade, initialCapital float64) (float64, float64, float64) {
	equity := initialCapital
	peak := initialCapital
	maxDrawdown := 0.0

	returns := make([]float64, 0, len(trades))
	previousEquity := initialCapital

	for _, trade := range trades {
		equity += trade.NetPnL
		if equity > peak {
			peak = equity
		}
		if dd := peak - equity; dd > maxDrawdown {
			maxDrawdown = dd
		}
		if previousEquity != 0 {
			returns = append(returns, (equity-previousEquity)/previousEquity)
		}
		previousEquity = equity
	}

	finalReturn := equity - initialCapital
	sharpe := calculateSharpeFromReturns(returns)
	return finalReturn, maxDrawdown, sharpe
}

func calculateSharpeFromReturns(returns []float64) float64 {
	if len(returns) < 2 {
		return 0
	}
	m := mean(returns)
	sd := stdDev(returns, m)
	if sd == 0 {
		return 0
	}
	return m / sd * math.Sqrt(252)
}

func (mcs *MonteCarloSimulator) calculateStatistics(originalResult Result, simulations []SimulationRun, duration time.Duration) MonteCarloResult {
	result := MonteCarloResult{
		Config:         mcs.config,
		OriginalResult: originalResult,
		Simulations:    simulations,
		Duration:       duration,
	}

	n := len(simulations)
	if n == 0 {
		return result
	}

	returns := make([]float64, n)
	drawdowns := make([]float64, n)
	sharpes := make([]float64, n)

	profitCount, targetCount, ruinCount := 0, 0, 0
	for i, sim := range simulations {
		returns[i] = sim.FinalReturnPct
		drawdowns[i] = sim.MaxDrawdownPct
		sharpes[i] = sim.SharpeRatio
		if sim.FinalReturnPct > 0 {
			profitCount++
		}
		if sim.FinalReturnPct >= 10.0 {
			targetCount++
		}
		if sim.MaxDrawdownPct > 50.0 {
			ruinCount++
		}
	}

	sortedReturns := append([]float64(nil), returns...)
	sort.Float64s(sortedReturns)
	sortedDrawdowns := append([]float64(nil), drawdowns...)
	sort.Float64s(sortedDrawdowns)
	sortedSharpes := append([]float64(nil), sharpes...)
	sort.Float64s(sortedSharpes)

	result.MeanFinalReturn = mean(returns)
	result.MedianFinalReturn = median(sortedReturns)
	result.StdDevFinalReturn = stdDev(returns, result.MeanFinalReturn)
	result.MinFinalReturn = sortedReturns[0]
	result.MaxFinalReturn = sortedReturns[n-1]

	alpha := 1.0 - mcs.config.ConfidenceLevel
	lowerIdx := int(float64(n) * alpha / 2.0)
	upperIdx := int(float64(n) * (1.0 - alpha/2.0))
	if upperIdx >= n {
		upperIdx = n - 1
	}
	result.ConfidenceIntervalLow = sortedReturns[lowerIdx]
	result.ConfidenceIntervalHigh = sortedReturns[upperIdx]

	result.MeanMaxDrawdown = mean(drawdowns)
	result.MedianMaxDrawdown = median(sortedDrawdowns)
	result.StdDevMaxDrawdown = stdDev(drawdowns, result.MeanMaxDrawdown)
	result.WorstMaxDrawdown = sortedDrawdowns[n-1]
	result.BestMaxDrawdown = sortedDrawdowns[0]

	result.MeanSharpe = mean(sharpes)
	result.MedianSharpe = median(sortedSharpes)
	result.StdDevSharpe = stdDev(sharpes, result.MeanSharpe)
	result.MinSharpe = sortedSharpes[0]
	result.MaxSharpe = sortedSharpes[n-1]

	result.ProbabilityOfProfit = float64(profitCount) / float64(n) * 100
	result.ProbabilityOfTarget = float64(targetCount) / float64(n) * 100
	result.RiskOfRuin = float64(ruinCount) / float64(n) * 100

	return result
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func median(sortedValues []float64) float64 {
	n := len(sortedValues)
	if n == 0 {
		return 0
	}
	if n%2 == 0 {
		return (sortedValues[n/2-1] + sortedValues[n/2]) / 2.0
	}
	return sortedValues[n/2]
}

func stdDev(values []float64, mean float64) float64 {
	if len(values) < 2 {
		return 0
	}
	variance := 0.0
	for _, v := range values {
		diff := v - mean
		variance += diff * diff
	}
	variance /= float64(len(values) - 1)
	return math.Sqrt(variance)
}

// PrintMonteCarloResults formats Monte Carlo results for display.
func PrintMonteCarloResults(result MonteCarloResult) string {
	m := result.OriginalResult.Metrics
	output := "\n"
	output += "═══════════════════════════════════════════════════════════════════════════════\n"
	output += "                      MONTE CARLO SIMULATION RESULTS\n"
	output += "═══════════════════════════════════════════════════════════════════════════════\n\n"

	output += "CONFIGURATION\n"
	output += "─────────────────────────────────────────────────────────────────────────────\n"
	output += fmt.Sprintf("Simulations:          %d\n", result.Config.Simulations)
	output += fmt.Sprintf("Confidence Level:     %.0f%%\n", result.Config.ConfidenceLevel*100)
	output += "\n"

	output += "ORIGINAL BACKTEST\n"
	output += "─────────────────────────────────────────────────────────────────────────────\n"
	output += fmt.Sprintf("Total Return:         %.2f%%\n", m.TotalReturnPct)
	output += fmt.Sprintf("Max Drawdown:         %.2f%%\n", m.MaxDrawdownPct)
	output += fmt.Sprintf("Sharpe Ratio:         %s\n", formatNullable(m.SharpeRatio))
	output += fmt.Sprintf("Total Trades:         %d\n", m.TotalTrades)
	output += "\n"

	output += "FINAL RETURN STATISTICS\n"
	output += "─────────────────────────────────────────────────────────────────────────────\n"
	output += fmt.Sprintf("Mean:                 %.2f%%\n", result.MeanFinalReturn)
	output += fmt.Sprintf("Median:               %.2f%%\n", result.MedianFinalReturn)
	output += fmt.Sprintf("Std Deviation:        %.2f%%\n", result.StdDevFinalReturn)
	output += fmt.Sprintf("Minimum:              %.2f%%\n", result.MinFinalReturn)
	output += fmt.Sprintf("Maximum:              %.2f%%\n", result.MaxFinalReturn)
	output += fmt.Sprintf("%.0f%% Confidence Int.:  %.2f%% to %.2f%%\n",
		result.Config.ConfidenceLevel*100, result.ConfidenceIntervalLow, result.ConfidenceIntervalHigh)
	output += "\n"

	output += "RISK METRICS\n"
	output += "─────────────────────────────────────────────────────────────────────────────\n"
	output += fmt.Sprintf("Probability of Profit:     %.1f%%\n", result.ProbabilityOfProfit)
	output += fmt.Sprintf("Probability of 10%% Target: %.1f%%\n", result.ProbabilityOfTarget)
	output += fmt.Sprintf("Risk of Ruin (>50%% DD):    %.1f%%\n", result.RiskOfRuin)
	output += "\n"
	output += fmt.Sprintf("Simulation completed in %s\n", result.Duration.String())
	output += "═══════════════════════════════════════════════════════════════════════════════\n"

	return output
}
