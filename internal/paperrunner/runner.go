// Package paperrunner implements the cooperative single-threaded paper
// trading loop: periodically fetch recent bars per watched symbol,
// recompute the strategy's signal, manage open paper positions against
// stop/target, and persist state transitions through a Storage port.
package paperrunner

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/bikeshrana/quant-research-platform/internal/backtest"
	"github.com/bikeshrana/quant-research-platform/internal/quanterrors"
	"github.com/bikeshrana/quant-research-platform/internal/strategy"
	"github.com/bikeshrana/quant-research-platform/pkg/bar"
	"github.com/bikeshrana/quant-research-platform/pkg/signal"
)

// Config controls one Runner's behavior.
type Config struct {
	Symbols      []string
	Timeframe    string
	Lookback     int
	MaxPositions int
	Sizing       backtest.Config // reused for RiskPerTrade/MaxNotional/WholeShares/Commission/Slippage
}

// Runner is strictly single-threaded: Tick must never be called
// concurrently with itself. It maintains an in-memory mirror of open
// positions, rebuilt from Storage on construction so a restart resumes
// cleanly. Grounded on the Backtest Engine's per-bar exit-priority logic
// in internal/backtest/engine.go, replayed here against one freshly
// fetched bar per symbol per tick instead of a whole Bar Series at once.
type Runner struct {
	cfg      Config
	strat    strategy.Strategy
	params   strategy.Params
	provider Provider
	storage  Storage
	cash     float64
	open     map[string]Position // keyed by symbol
	log      zerolog.Logger
}

// NewRunner builds a Runner and rebuilds its open-position mirror from
// storage.
func NewRunner(ctx context.Context, cfg Config, s strategy.Strategy, params strategy.Params, provider Provider, storage Storage, startingCash float64, log zerolog.Logger) (*Runner, error) {
	r := &Runner{
		cfg:      cfg,
		strat:    s,
		params:   params,
		provider: provider,
		storage:  storage,
		cash:     startingCash,
		open:     make(map[string]Position),
		log:      log.With().Str("component", "paperrunner.Runner").Logger(),
	}

	positions, err := storage.LoadOpenPositions(ctx)
	if err != nil {
		return nil, quanterrors.Wrap(quanterrors.ProviderErrorKind, err, "load open positions")
	}
	for _, p := range positions {
		r.open[p.Symbol] = p
	}
	return r, nil
}

// Tick runs one cooperative pass over every watched symbol: fetch the
// latest bars, manage any open position against the latest bar's range,
// and open a new position on a qualifying entry signal while under the
// MaxPositions cap. Errors for one symbol are logged and do not abort
// the remaining symbols in the tick.
func (r *Runner) Tick(ctx context.Context) error {
	for _, symbol := range r.cfg.Symbols {
		if err := r.tickSymbol(ctx, symbol); err != nil {
			r.log.Error().Err(err).Str("symbol", symbol).Msg("tick failed for symbol")
		}
	}
	return nil
}

func (r *Runner) tickSymbol(ctx context.Context, symbol string) error {
	end := time.Now().UTC()
	start := end.AddDate(0, 0, -r.cfg.Lookback*3) // generous calendar buffer for weekends/holidays

	bars, err := r.provider.Load(ctx, symbol, r.cfg.Timeframe, start, end)
	if err != nil {
		return quanterrors.Wrap(quanterrors.ProviderErrorKind, err, "load bars for %s", symbol)
	}

	warmUp := r.strat.WarmUp(r.params)
	if bars.Len() <= warmUp {
		return nil
	}

	signals, err := r.strat.Compute(bars, r.params)
	if err != nil {
		return quanterrors.Wrap(quanterrors.InvalidInput, err, "compute signal for %s", symbol)
	}

	last := bars.At(bars.Len() - 1)
	sig := signals.At(signals.Len() - 1)

	if pos, ok := r.open[symbol]; ok {
		return r.manageOpenPosition(ctx, pos, last, sig)
	}
	if len(r.open) >= r.cfg.MaxPositions {
		return nil
	}
	return r.maybeEnter(ctx, symbol, last, sig)
}

func (r *Runner) manageOpenPosition(ctx context.Context, pos Position, last bar.Bar, sig signal.Signal) error {
	stopHit := pos.HasStop && ((pos.Side == backtest.Long && last.Low <= pos.StopPrice) || (pos.Side == backtest.Short && last.High >= pos.StopPrice))
	targetHit := pos.HasTarget && ((pos.Side == backtest.Long && last.High >= pos.TargetPrice) || (pos.Side == backtest.Short && last.Low <= pos.TargetPrice))

	switch {
	case stopHit:
		return r.close(ctx, pos, pos.StopPrice, backtest.ExitStopLoss, last.Timestamp)
	case targetHit:
		return r.close(ctx, pos, pos.TargetPrice, backtest.ExitTakeProfit, last.Timestamp)
	case sig.Action == signal.Exit:
		return r.close(ctx, pos, last.Close, backtest.ExitSignal, last.Timestamp)
	default:
		if sig.HasStop {
			improved := (pos.Side == backtest.Long && sig.StopPrice > pos.StopPrice) ||
				(pos.Side == backtest.Short && (!pos.HasStop || sig.StopPrice < pos.StopPrice))
			if improved {
				pos.StopPrice = sig.StopPrice
				pos.HasStop = true
				r.open[pos.Symbol] = pos
				return r.storage.OpenPosition(ctx, pos)
			}
		}
	}
	return nil
}

func (r *Runner) close(ctx context.Context, pos Position, exitPrice float64, reason backtest.ExitReason, exitTime time.Time) error {
	sign := pos.Side.Sign()
	gross := (exitPrice - pos.EntryPrice) * pos.Qty * sign
	net := gross - r.cfg.Sizing.Commission
	r.cash += net

	trade := backtest.Trade{
		ID:         uuid.New(),
		Symbol:     pos.Symbol,
		Side:       pos.Side,
		EntryTime:  pos.EntryTime,
		EntryPrice: pos.EntryPrice,
		Qty:        pos.Qty,
		ExitTime:   exitTime,
		ExitPrice:  exitPrice,
		ExitReason: reason,
		GrossPnL:   gross,
		NetPnL:     net,
		Commission: r.cfg.Sizing.Commission,
	}
	if err := r.storage.ClosePosition(ctx, pos.ID, trade, EquitySnapshot{Time: exitTime, Equity: r.cash}); err != nil {
		return quanterrors.Wrap(quanterrors.ProviderErrorKind, err, "close position %s", pos.ID)
	}
	delete(r.open, pos.Symbol)
	r.log.Info().Str("symbol", pos.Symbol).Str("reason", string(reason)).Float64("net_pnl", net).Msg("paper position closed")
	return nil
}

func (r *Runner) maybeEnter(ctx context.Context, symbol string, last bar.Bar, sig signal.Signal) error {
	if sig.Action != signal.EnterLong && sig.Action != signal.EnterShort {
		return nil
	}
	side := backtest.Long
	if sig.Action == signal.EnterShort {
		side = backtest.Short
	}

	entryPrice := sig.RefPrice
	if entryPrice == 0 {
		entryPrice = last.Close
	}
	stopPrice := sig.StopPrice
	hasStop := sig.HasStop
	if !hasStop {
		stopPrice = backtest.DefaultStop(side, entryPrice)
		hasStop = true
	}

	qty := backtest.SizePosition(r.cash, entryPrice, stopPrice, r.cfg.Sizing)
	if qty < 1 {
		return nil
	}

	pos := Position{
		ID:          uuid.New().String(),
		Symbol:      symbol,
		Side:        side,
		EntryTime:   last.Timestamp,
		EntryPrice:  entryPrice*(1+r.cfg.Sizing.Slippage*side.Sign()) + r.cfg.Sizing.Commission/qty,
		Qty:         qty,
		StopPrice:   stopPrice,
		HasStop:     hasStop,
		TargetPrice: sig.TargetPrice,
		HasTarget:   sig.HasTarget,
	}
	if err := r.storage.OpenPosition(ctx, pos); err != nil {
		return quanterrors.Wrap(quanterrors.ProviderErrorKind, err, "open position for %s", symbol)
	}
	r.open[symbol] = pos
	r.log.Info().Str("symbol", symbol).Str("side", string(side)).Float64("qty", qty).Msg("paper position opened")
	return nil
}

// OpenPositions returns a snapshot of the runner's in-memory mirror.
func (r *Runner) OpenPositions() []Position {
	out := make([]Position, 0, len(r.open))
	for _, p := range r.open {
		out = append(out, p)
	}
	return out
}

// Cash returns the runner's current cash balance.
func (r *Runner) Cash() float64 { return r.cash }
