package paperrunner

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bikeshrana/quant-research-platform/internal/backtest"
	"github.com/bikeshrana/quant-research-platform/internal/strategy"
	"github.com/bikeshrana/quant-research-platform/pkg/bar"
	"github.com/bikeshrana/quant-research-platform/pkg/signal"
)

func testLogger() zerolog.Logger { return zerolog.Nop() }

// stubStrategy emits a fixed signal at the final bar and Hold everywhere
// else, so a single test can drive tickSymbol's entry/exit branches
// without depending on any real indicator math.
type stubStrategy struct {
	warmUp int
	last   signal.Signal
	err    error
}

func (s stubStrategy) Name() string                     { return "Stub" }
func (s stubStrategy) DefaultParams() strategy.Params   { return strategy.Params{} }
func (s stubStrategy) SearchSpace() strategy.ParamSpace { return nil }
func (s stubStrategy) WarmUp(strategy.Params) int       { return s.warmUp }

func (s stubStrategy) Compute(bars bar.Series, _ strategy.Params) (signal.Series, error) {
	if s.err != nil {
		return signal.Series{}, s.err
	}
	out := signal.NewSeries(bars.Len())
	out.Set(bars.Len()-1, s.last)
	return out, nil
}

// stubProvider returns a fixed series regardless of the requested range,
// so tests don't have to reason about tickSymbol's time.Now()-relative
// lookback window.
type stubProvider struct {
	series bar.Series
	err    error
}

func (p stubProvider) Load(context.Context, string, string, time.Time, time.Time) (bar.Series, error) {
	if p.err != nil {
		return bar.Series{}, p.err
	}
	return p.series, nil
}

func mkBars(t *testing.T, rows [][5]float64) bar.Series {
	t.Helper()
	t0 := time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC)
	bars := make([]bar.Bar, len(rows))
	for i, r := range rows {
		bars[i] = bar.Bar{Timestamp: t0.AddDate(0, 0, i), Open: r[0], High: r[1], Low: r[2], Close: r[3], Volume: r[4]}
	}
	s, err := bar.New("PETR4", "1d", bars)
	require.NoError(t, err)
	return s
}

func baseCfg() Config {
	return Config{
		Symbols:      []string{"PETR4"},
		Timeframe:    "1d",
		Lookback:     5,
		MaxPositions: 1,
		Sizing:       backtest.DefaultConfig(),
	}
}

func TestNewRunner_RebuildsOpenPositionsFromStorage(t *testing.T) {
	storage := NewMemoryStorage()
	seeded := Position{ID: "p1", Symbol: "PETR4", Side: backtest.Long, EntryPrice: 100, Qty: 10, StopPrice: 95, HasStop: true}
	require.NoError(t, storage.OpenPosition(context.Background(), seeded))

	r, err := NewRunner(context.Background(), baseCfg(), stubStrategy{}, strategy.Params{}, stubProvider{}, storage, 100000, testLogger())
	require.NoError(t, err)

	got := r.OpenPositions()
	require.Len(t, got, 1)
	assert.Equal(t, "p1", got[0].ID)
}

func TestTick_SkipsSymbolsBelowWarmUp(t *testing.T) {
	storage := NewMemoryStorage()
	bars := mkBars(t, [][5]float64{{100, 101, 99, 100, 1000}, {100, 101, 99, 100, 1000}})
	provider := stubProvider{series: bars}
	strat := stubStrategy{warmUp: 10, last: signal.Signal{Action: signal.EnterLong}}

	r, err := NewRunner(context.Background(), baseCfg(), strat, strategy.Params{}, provider, storage, 100000, testLogger())
	require.NoError(t, err)

	require.NoError(t, r.Tick(context.Background()))
	assert.Empty(t, r.OpenPositions())
}

func TestTick_EntrySignalOpensPosition(t *testing.T) {
	storage := NewMemoryStorage()
	bars := mkBars(t, [][5]float64{
		{100, 101, 99, 100, 1000},
		{100, 101, 99, 100, 1000},
		{100, 101, 99, 100, 1000},
	})
	provider := stubProvider{series: bars}
	strat := stubStrategy{warmUp: 1, last: signal.Signal{Action: signal.EnterLong, RefPrice: 100}}

	r, err := NewRunner(context.Background(), baseCfg(), strat, strategy.Params{}, provider, storage, 100000, testLogger())
	require.NoError(t, err)

	require.NoError(t, r.Tick(context.Background()))

	open := r.OpenPositions()
	require.Len(t, open, 1)
	assert.Equal(t, "PETR4", open[0].Symbol)
	assert.Equal(t, backtest.Long, open[0].Side)
	assert.True(t, open[0].HasStop)
	assert.Greater(t, open[0].Qty, 0.0)

	persisted, err := storage.LoadOpenPositions(context.Background())
	require.NoError(t, err)
	require.Len(t, persisted, 1)
}

func TestTick_NoEntryWhenSignalHolds(t *testing.T) {
	storage := NewMemoryStorage()
	bars := mkBars(t, [][5]float64{{100, 101, 99, 100, 1000}, {100, 101, 99, 100, 1000}})
	provider := stubProvider{series: bars}
	strat := stubStrategy{warmUp: 1, last: signal.Signal{Action: signal.Hold}}

	r, err := NewRunner(context.Background(), baseCfg(), strat, strategy.Params{}, provider, storage, 100000, testLogger())
	require.NoError(t, err)

	require.NoError(t, r.Tick(context.Background()))
	assert.Empty(t, r.OpenPositions())
}

func TestTick_RespectsMaxPositionsCap(t *testing.T) {
	storage := NewMemoryStorage()
	require.NoError(t, storage.OpenPosition(context.Background(), Position{ID: "existing", Symbol: "VALE3", Side: backtest.Long, EntryPrice: 50, Qty: 10}))

	bars := mkBars(t, [][5]float64{{100, 101, 99, 100, 1000}, {100, 101, 99, 100, 1000}})
	provider := stubProvider{series: bars}
	strat := stubStrategy{warmUp: 1, last: signal.Signal{Action: signal.EnterLong, RefPrice: 100}}

	cfg := baseCfg()
	cfg.MaxPositions = 1

	r, err := NewRunner(context.Background(), cfg, strat, strategy.Params{}, provider, storage, 100000, testLogger())
	require.NoError(t, err)

	require.NoError(t, r.Tick(context.Background()))

	open := r.OpenPositions()
	require.Len(t, open, 1)
	assert.Equal(t, "VALE3", open[0].Symbol)
}

func TestTick_StopHitClosesPosition(t *testing.T) {
	storage := NewMemoryStorage()
	pos := Position{ID: "p1", Symbol: "PETR4", Side: backtest.Long, EntryPrice: 100, Qty: 10, StopPrice: 95, HasStop: true}
	require.NoError(t, storage.OpenPosition(context.Background(), pos))

	// last bar's low pierces the stop
	bars := mkBars(t, [][5]float64{{100, 101, 99, 100, 1000}, {98, 99, 90, 96, 1000}})
	provider := stubProvider{series: bars}
	strat := stubStrategy{warmUp: 0, last: signal.Signal{Action: signal.Hold}}

	r, err := NewRunner(context.Background(), baseCfg(), strat, strategy.Params{}, provider, storage, 100000, testLogger())
	require.NoError(t, err)

	require.NoError(t, r.Tick(context.Background()))

	assert.Empty(t, r.OpenPositions())
	persisted, err := storage.LoadOpenPositions(context.Background())
	require.NoError(t, err)
	assert.Empty(t, persisted)
	assert.Len(t, storage.trades, 1)
	assert.Equal(t, backtest.ExitStopLoss, storage.trades[0].ExitReason)
}

func TestTick_StopTakesPriorityOverTargetOnSameBar(t *testing.T) {
	storage := NewMemoryStorage()
	pos := Position{
		ID: "p1", Symbol: "PETR4", Side: backtest.Long, EntryPrice: 100, Qty: 10,
		StopPrice: 95, HasStop: true, TargetPrice: 110, HasTarget: true,
	}
	require.NoError(t, storage.OpenPosition(context.Background(), pos))

	// a single bar whose range spans both the stop and the target
	bars := mkBars(t, [][5]float64{{100, 101, 99, 100, 1000}, {100, 115, 90, 105, 1000}})
	provider := stubProvider{series: bars}
	strat := stubStrategy{warmUp: 0, last: signal.Signal{Action: signal.Hold}}

	r, err := NewRunner(context.Background(), baseCfg(), strat, strategy.Params{}, provider, storage, 100000, testLogger())
	require.NoError(t, err)

	require.NoError(t, r.Tick(context.Background()))

	require.Len(t, storage.trades, 1)
	assert.Equal(t, backtest.ExitStopLoss, storage.trades[0].ExitReason)
	assert.Equal(t, 95.0, storage.trades[0].ExitPrice)
}

func TestTick_SignalExitClosesAtClose(t *testing.T) {
	storage := NewMemoryStorage()
	pos := Position{ID: "p1", Symbol: "PETR4", Side: backtest.Long, EntryPrice: 100, Qty: 10, StopPrice: 80, HasStop: true}
	require.NoError(t, storage.OpenPosition(context.Background(), pos))

	bars := mkBars(t, [][5]float64{{100, 101, 99, 100, 1000}, {100, 106, 97, 104, 1000}})
	provider := stubProvider{series: bars}
	strat := stubStrategy{warmUp: 0, last: signal.Signal{Action: signal.Exit}}

	r, err := NewRunner(context.Background(), baseCfg(), strat, strategy.Params{}, provider, storage, 100000, testLogger())
	require.NoError(t, err)

	require.NoError(t, r.Tick(context.Background()))

	require.Len(t, storage.trades, 1)
	assert.Equal(t, backtest.ExitSignal, storage.trades[0].ExitReason)
	assert.Equal(t, 104.0, storage.trades[0].ExitPrice)
}

func TestTick_StopRatchetsUpOnlyForLong(t *testing.T) {
	storage := NewMemoryStorage()
	pos := Position{ID: "p1", Symbol: "PETR4", Side: backtest.Long, EntryPrice: 100, Qty: 10, StopPrice: 95, HasStop: true}
	require.NoError(t, storage.OpenPosition(context.Background(), pos))

	bars := mkBars(t, [][5]float64{{100, 101, 99, 100, 1000}, {100, 106, 98, 104, 1000}})
	provider := stubProvider{series: bars}
	strat := stubStrategy{warmUp: 0, last: signal.Signal{Action: signal.Hold, StopPrice: 99, HasStop: true}}

	r, err := NewRunner(context.Background(), baseCfg(), strat, strategy.Params{}, provider, storage, 100000, testLogger())
	require.NoError(t, err)

	require.NoError(t, r.Tick(context.Background()))

	open := r.OpenPositions()
	require.Len(t, open, 1)
	assert.Equal(t, 99.0, open[0].StopPrice)
}

func TestTick_StopDoesNotRatchetDownwardForLong(t *testing.T) {
	storage := NewMemoryStorage()
	pos := Position{ID: "p1", Symbol: "PETR4", Side: backtest.Long, EntryPrice: 100, Qty: 10, StopPrice: 95, HasStop: true}
	require.NoError(t, storage.OpenPosition(context.Background(), pos))

	bars := mkBars(t, [][5]float64{{100, 101, 99, 100, 1000}, {100, 106, 98, 104, 1000}})
	provider := stubProvider{series: bars}
	strat := stubStrategy{warmUp: 0, last: signal.Signal{Action: signal.Hold, StopPrice: 90, HasStop: true}}

	r, err := NewRunner(context.Background(), baseCfg(), strat, strategy.Params{}, provider, storage, 100000, testLogger())
	require.NoError(t, err)

	require.NoError(t, r.Tick(context.Background()))

	open := r.OpenPositions()
	require.Len(t, open, 1)
	assert.Equal(t, 95.0, open[0].StopPrice)
}

func TestTick_SwallowsPerSymbolErrors(t *testing.T) {
	storage := NewMemoryStorage()
	provider := stubProvider{err: bar.ErrNotFound}
	strat := stubStrategy{warmUp: 0}

	cfg := baseCfg()
	cfg.Symbols = []string{"PETR4", "VALE3"}

	r, err := NewRunner(context.Background(), cfg, strat, strategy.Params{}, provider, storage, 100000, testLogger())
	require.NoError(t, err)

	assert.NoError(t, r.Tick(context.Background()))
	assert.Empty(t, r.OpenPositions())
}

func TestCash_ReflectsClosedTradeNetPnL(t *testing.T) {
	storage := NewMemoryStorage()
	pos := Position{ID: "p1", Symbol: "PETR4", Side: backtest.Long, EntryPrice: 100, Qty: 10, StopPrice: 95, HasStop: true}
	require.NoError(t, storage.OpenPosition(context.Background(), pos))

	bars := mkBars(t, [][5]float64{{100, 101, 99, 100, 1000}, {100, 106, 97, 104, 1000}})
	provider := stubProvider{series: bars}
	strat := stubStrategy{warmUp: 0, last: signal.Signal{Action: signal.Exit}}

	startingCash := 100000.0
	r, err := NewRunner(context.Background(), baseCfg(), strat, strategy.Params{}, provider, storage, startingCash, testLogger())
	require.NoError(t, err)

	require.NoError(t, r.Tick(context.Background()))

	want := startingCash + (104.0-100.0)*10
	assert.InDelta(t, want, r.Cash(), 1e-9)
}
