package walkforward

import "math"

// aggregate computes the §3 aggregate block over a run's WindowResults.
func aggregate(windows []WindowResult) Aggregate {
	a := Aggregate{TotalWindows: len(windows)}
	if len(windows) == 0 {
		return a
	}

	returns := make([]float64, 0, len(windows))
	sharpes := make([]float64, 0, len(windows))

	for _, w := range windows {
		returns = append(returns, w.TestMetrics.TotalReturnPct)
		if w.TestMetrics.SharpeRatio != nil {
			sharpes = append(sharpes, *w.TestMetrics.SharpeRatio)
		}
		a.TotalTestTrades += w.TestMetrics.TotalTrades
		switch {
		case w.TestMetrics.TotalReturnPct > 0:
			a.PositiveWindows++
		case w.TestMetrics.TotalReturnPct < 0:
			a.NegativeWindows++
		}
	}

	a.AvgTestReturn, a.StdTestReturn = meanStdDev(returns)
	a.AvgTestSharpe, a.StdTestSharpe = meanStdDev(sharpes)

	return a
}

func meanStdDev(values []float64) (mean, stddev float64) {
	if len(values) == 0 {
		return 0, 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	mean = sum / float64(len(values))
	if len(values) < 2 {
		return mean, 0
	}
	variance := 0.0
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	variance /= float64(len(values) - 1)
	return mean, math.Sqrt(variance)
}
