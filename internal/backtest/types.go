package backtest

import (
	"time"

	"github.com/google/uuid"
)

// Side is the direction of a position.
type Side string

const (
	Long  Side = "LONG"
	Short Side = "SHORT"
)

func (s Side) sign() float64 {
	if s == Short {
		return -1
	}
	return 1
}

// Sign returns +1 for Long and -1 for Short, for callers outside this
// package that need to apply a position's direction to a price delta (the
// paper runner, sizing a fill the same way the engine does).
func (s Side) Sign() float64 { return s.sign() }

// ExitReason tags why a Trade was closed.
type ExitReason string

const (
	ExitStopLoss   ExitReason = "STOP_LOSS"
	ExitTakeProfit ExitReason = "TAKE_PROFIT"
	ExitSignal     ExitReason = "SIGNAL_EXIT"
	ExitEndOfData  ExitReason = "END_OF_DATA"
)

// Trade represents a completed trade (entry + exit). IDs are UUIDs rather
// than an incrementing counter so Trades remain stable identifiers across
// concurrent walk-forward windows.
type Trade struct {
	ID     uuid.UUID `json:"id"`
	Symbol string    `json:"symbol"`
	Side   Side      `json:"side"`

	EntryTime  time.Time `json:"entry_time"`
	EntryPrice float64   `json:"entry_price"`
	Qty        float64   `json:"qty"`

	ExitTime   time.Time  `json:"exit_time"`
	ExitPrice  float64    `json:"exit_price"`
	ExitReason ExitReason `json:"exit_reason"`

	GrossPnL   float64 `json:"gross_pnl"`
	NetPnL     float64 `json:"net_pnl"`
	Commission float64 `json:"commission"`
}

// IsWinningTrade checks if a trade was profitable
func (t Trade) IsWinningTrade() bool {
	return t.NetPnL > 0
}

// HoldTime returns how long the position was held
func (t Trade) HoldTime() time.Duration {
	return t.ExitTime.Sub(t.EntryTime)
}

// EquityPoint represents a point in the equity curve
type EquityPoint struct {
	Time        time.Time `json:"time"`
	Cash        float64   `json:"cash"`
	PositionMTM float64   `json:"position_mtm"`
	Equity      float64   `json:"equity"`
}

// Metrics holds the summary statistics computed over a full run. Nullable
// fields distinguish "undefined" from zero per the numerical sentinel
// design: SharpeRatio is nil with fewer than two bar-to-bar returns or zero
// variance; WinRate is nil with zero trades; ProfitFactor is nil with zero
// trades and holds the 999.99 sentinel (with NoLosses set) when there are
// wins and no losses.
type Metrics struct {
	TotalReturn    float64 `json:"total_return"`
	TotalReturnPct float64 `json:"total_return_pct"`

	TotalTrades   int      `json:"total_trades"`
	WinningTrades int      `json:"winning_trades"`
	LosingTrades  int      `json:"losing_trades"`
	WinRate       *float64 `json:"win_rate"`

	GrossProfit     float64  `json:"gross_profit"`
	GrossLoss       float64  `json:"gross_loss"`
	ProfitFactor    *float64 `json:"profit_factor"`
	NoLosses        bool     `json:"no_losses"`
	TotalCommission float64  `json:"total_commission"`

	MaxDrawdown    float64  `json:"max_drawdown"`
	MaxDrawdownPct float64  `json:"max_drawdown_pct"`
	SharpeRatio    *float64 `json:"sharpe_ratio"`

	AvgTradeDuration time.Duration `json:"avg_trade_duration_ns"`
}

// Result is the full output of a Backtest Engine run.
type Result struct {
	Symbol         string  `json:"symbol"`
	Config         Config  `json:"config"`
	InitialCapital float64 `json:"initial_capital"`
	FinalCapital   float64 `json:"final_capital"`

	Trades      []Trade       `json:"trades"`
	EquityCurve []EquityPoint `json:"equity_curve"`
	Metrics     Metrics       `json:"metrics"`

	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}
