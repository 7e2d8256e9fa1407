package backtest

import "time"

// Report is the JSON projection of a Result an HTTP handler serializes:
// symbol, strategy, period, metrics, equity_curve, trades. Result itself
// stays free of a strategy name since the Backtest Engine never knows
// which strategy produced its input Signal Series.
type Report struct {
	Symbol   string        `json:"symbol"`
	Strategy string        `json:"strategy"`
	Period   ReportPeriod  `json:"period"`
	Metrics  Metrics       `json:"metrics"`
	Equity   []EquityPoint `json:"equity_curve"`
	Trades   []Trade       `json:"trades"`
}

// ReportPeriod is the backtest's bar range in calendar time.
type ReportPeriod struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewReport projects a Result into its external JSON shape.
func NewReport(strategyName string, r Result) Report {
	return Report{
		Symbol:   r.Symbol,
		Strategy: strategyName,
		Period:   ReportPeriod{Start: r.StartTime, End: r.EndTime},
		Metrics:  r.Metrics,
		Equity:   r.EquityCurve,
		Trades:   r.Trades,
	}
}
