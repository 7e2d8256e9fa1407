package backtest

import (
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/bikeshrana/quant-research-platform/internal/quanterrors"
	"github.com/bikeshrana/quant-research-platform/pkg/bar"
	"github.com/bikeshrana/quant-research-platform/pkg/signal"
)

// defaultStopFraction is the protective stop distance the engine derives
// for entry signals that do not carry an explicit stop price, so the
// position sizing formula always has a distance to divide by. Strategies
// that care about their own stop placement (Wave3, and any future trailing
// variant) set HasStop themselves and this default is never consulted.
const defaultStopFraction = 0.02

// Engine replays a Signal Series against its aligned Bar Series and
// produces a deterministic Trade Ledger and Equity Curve. It holds no
// state between calls to Run; two calls with identical inputs produce
// byte-identical results.
type Engine struct {
	log zerolog.Logger
}

// NewEngine builds an Engine that logs through the given logger.
func NewEngine(log zerolog.Logger) *Engine {
	return &Engine{log: log.With().Str("component", "backtest.Engine").Logger()}
}

type openPosition struct {
	side        Side
	entryTime   bar.Bar
	entryPrice  float64
	qty         float64
	stopPrice   float64
	hasStop     bool
	targetPrice float64
	hasTarget   bool
}

// Run executes the Backtest Engine's execution model over bars/signals,
// which must be the same length and index-aligned. symbol is carried
// through to every Trade for reporting.
func (e *Engine) Run(symbol string, bars bar.Series, signals signal.Series, cfg Config) (Result, error) {
	if err := cfg.Validate(); err != nil {
		return Result{}, quanterrors.Wrap(quanterrors.InvalidInput, err, "invalid backtest config")
	}
	n := bars.Len()
	if n != signals.Len() {
		return Result{}, quanterrors.Wrap(quanterrors.InvalidInput, ErrSeriesLengthMismatch, "bars=%d signals=%d", n, signals.Len())
	}
	for i := 0; i < n; i++ {
		b := bars.At(i)
		if isNonFinite(b.Open) || isNonFinite(b.High) || isNonFinite(b.Low) || isNonFinite(b.Close) {
			return Result{}, quanterrors.Wrap(quanterrors.InvalidInput, ErrNonFinitePrice, "bar %d", i)
		}
	}

	cash := cfg.InitialCapital
	var pos *openPosition
	var trades []Trade
	equity := make([]EquityPoint, 0, n)

	closeTrade := func(i int, exitPrice float64, reason ExitReason) {
		b := bars.At(i)
		sign := pos.side.sign()
		gross := (exitPrice - pos.entryPrice) * pos.qty * sign
		net := gross - cfg.Commission
		cash += net
		// The ID is derived from the trade's own coordinates so that two runs
		// over identical inputs produce identical ledgers.
		idKey := fmt.Sprintf("%s/%d/%d/%d", symbol, len(trades), pos.entryTime.Timestamp.UnixNano(), b.Timestamp.UnixNano())
		trades = append(trades, Trade{
			ID:         uuid.NewSHA1(uuid.NameSpaceOID, []byte(idKey)),
			Symbol:     symbol,
			Side:       pos.side,
			EntryTime:  pos.entryTime.Timestamp,
			EntryPrice: pos.entryPrice,
			Qty:        pos.qty,
			ExitTime:   b.Timestamp,
			ExitPrice:  exitPrice,
			ExitReason: reason,
			GrossPnL:   gross,
			NetPnL:     net,
			Commission: cfg.Commission,
		})
		pos = nil
	}

	for i := 0; i < n; i++ {
		b := bars.At(i)
		sig := signals.At(i)

		if pos != nil {
			stopHit := pos.hasStop && ((pos.side == Long && b.Low <= pos.stopPrice) || (pos.side == Short && b.High >= pos.stopPrice))
			targetHit := pos.hasTarget && ((pos.side == Long && b.High >= pos.targetPrice) || (pos.side == Short && b.Low <= pos.targetPrice))
			signalExit := sig.Action == signal.Exit

			switch {
			case stopHit:
				closeTrade(i, pos.stopPrice, ExitStopLoss)
			case targetHit:
				closeTrade(i, pos.targetPrice, ExitTakeProfit)
			case signalExit:
				closeTrade(i, b.Close, ExitSignal)
			default:
				if sig.HasStop {
					if pos.side == Long && sig.StopPrice > pos.stopPrice {
						pos.stopPrice = sig.StopPrice
						pos.hasStop = true
					} else if pos.side == Short && (!pos.hasStop || sig.StopPrice < pos.stopPrice) {
						pos.stopPrice = sig.StopPrice
						pos.hasStop = true
					}
				}
			}
		}

		if pos == nil && (sig.Action == signal.EnterLong || sig.Action == signal.EnterShort) {
			side := Long
			if sig.Action == signal.EnterShort {
				side = Short
			}
			entryPrice := sig.RefPrice
			if entryPrice == 0 {
				entryPrice = b.Close
			}

			stopPrice := sig.StopPrice
			hasStop := sig.HasStop
			if !hasStop {
				stopPrice = DefaultStop(side, entryPrice)
				hasStop = true
			}

			dist := math.Abs(entryPrice - stopPrice)
			if dist > 0 {
				qty := SizePosition(cash, entryPrice, stopPrice, cfg)
				if qty >= 1 {
					fillPrice := entryPrice*(1+cfg.Slippage*side.sign()) + cfg.Commission/qty
					pos = &openPosition{
						side:        side,
						entryTime:   b,
						entryPrice:  fillPrice,
						qty:         qty,
						stopPrice:   stopPrice,
						hasStop:     hasStop,
						targetPrice: sig.TargetPrice,
						hasTarget:   sig.HasTarget,
					}
				}
			}
		}

		var positionMTM float64
		if pos != nil {
			positionMTM = (b.Close - pos.entryPrice) * pos.qty * pos.side.sign()
		}
		equity = append(equity, EquityPoint{Time: b.Timestamp, Cash: cash, PositionMTM: positionMTM, Equity: cash + positionMTM})
	}

	if pos != nil {
		closeTrade(n-1, bars.At(n-1).Close, ExitEndOfData)
	}

	finalCapital := cfg.InitialCapital
	if len(equity) > 0 {
		finalCapital = equity[len(equity)-1].Equity
	}

	result := Result{
		Symbol:         symbol,
		Config:         cfg,
		InitialCapital: cfg.InitialCapital,
		FinalCapital:   finalCapital,
		Trades:         trades,
		EquityCurve:    equity,
	}
	if n > 0 {
		result.StartTime = bars.At(0).Timestamp
		result.EndTime = bars.At(n - 1).Timestamp
	}
	result.Metrics = computeMetrics(result)

	e.log.Debug().
		Str("symbol", symbol).
		Int("trades", len(trades)).
		Float64("final_capital", finalCapital).
		Msg("backtest run complete")

	return result, nil
}

func isNonFinite(v float64) bool {
	return math.IsNaN(v) || math.IsInf(v, 0)
}

// DefaultStop derives the protective stop price the Backtest Engine (and
// any other caller sizing a position, such as the paper runner) uses when
// an entry signal does not carry its own stop.
func DefaultStop(side Side, entryPrice float64) float64 {
	if side == Short {
		return entryPrice * (1 + defaultStopFraction)
	}
	return entryPrice * (1 - defaultStopFraction)
}

// SizePosition implements the position sizing formula:
// qty = floor(min(risk_per_trade·cash/|entry-stop|, max_notional/entry)),
// flooring only when cfg.WholeShares is set. Shared by the Backtest Engine
// and the Paper Runner so both size positions identically.
func SizePosition(cash, entryPrice, stopPrice float64, cfg Config) float64 {
	dist := math.Abs(entryPrice - stopPrice)
	if dist <= 0 {
		return 0
	}
	qty := cfg.RiskPerTrade * cash / dist
	if cfg.MaxNotional > 0 {
		if notionalQty := cfg.MaxNotional / entryPrice; notionalQty < qty {
			qty = notionalQty
		}
	}
	if cfg.WholeShares {
		qty = math.Floor(qty)
	}
	return qty
}
