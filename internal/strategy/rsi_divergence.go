package strategy

import (
	"github.com/bikeshrana/quant-research-platform/pkg/bar"
	"github.com/bikeshrana/quant-research-platform/pkg/indicators"
	"github.com/bikeshrana/quant-research-platform/pkg/signal"
)

// RSIDivergence looks for divergence between price pivots and RSI pivots
// within a trailing lookback window, confirmed by trend strength (ADX) and
// volume. Regular divergence signals reversal; hidden divergence signals
// continuation. Confirmed bullish patterns enter long; confirmed bearish
// patterns exit an open position. Long-only by construction.
type RSIDivergence struct{}

func (RSIDivergence) Name() string { return "RSIDivergence" }

func (RSIDivergence) DefaultParams() Params {
	return Params{
		"rsi_period":  14,
		"lookback":    20,
		"adx_min":     20.0,
		"volume_mult": 1.2,
	}
}

func (RSIDivergence) SearchSpace() ParamSpace {
	return ParamSpace{
		{Name: "rsi_period", Kind: IntRange, IntLo: 7, IntHi: 28},
		{Name: "lookback", Kind: IntRange, IntLo: 10, IntHi: 40},
		{Name: "adx_min", Kind: FloatRange, FloatLo: 10, FloatHi: 35},
		{Name: "volume_mult", Kind: FloatRange, FloatLo: 1.0, FloatHi: 2.5, Step: 0.1},
	}
}

const pivotWing = 2 // bars on each side required to confirm a pivot

func (r RSIDivergence) WarmUp(p Params) int {
	rsiP := intParam(p, "rsi_period", 14)
	lookback := intParam(p, "lookback", 20)
	adxWarm := 2 * 14
	return maxInt(maxInt(rsiP, lookback), adxWarm) + pivotWing
}

type pivot struct {
	index int
	price float64
	rsi   float64
}

func (r RSIDivergence) Compute(bars bar.Series, p Params) (signal.Series, error) {
	rsiP := intParam(p, "rsi_period", 14)
	lookback := intParam(p, "lookback", 20)
	adxMin := floatParam(p, "adx_min", 20.0)
	volMult := floatParam(p, "volume_mult", 1.2)

	n := bars.Len()
	out := signal.NewSeries(n)
	warmUp := r.WarmUp(p)
	if n <= warmUp {
		return out, nil
	}

	rsi := indicators.RSI(bars, rsiP)
	adx := indicators.ADX(bars, 14)
	volSMA := indicators.SMAVolume(bars, lookback)

	var pivotLows, pivotHighs []pivot
	inPosition := false

	for i := warmUp; i < n; i++ {
		confirmIdx := i - pivotWing
		if confirmIdx >= pivotWing {
			if isPivotLow(bars, confirmIdx, pivotWing) {
				if rv, ok := rsi.At(confirmIdx); ok {
					pivotLows = append(pivotLows, pivot{confirmIdx, bars.At(confirmIdx).Low, rv})
				}
			}
			if isPivotHigh(bars, confirmIdx, pivotWing) {
				if rv, ok := rsi.At(confirmIdx); ok {
					pivotHighs = append(pivotHighs, pivot{confirmIdx, bars.At(confirmIdx).High, rv})
				}
			}
			pivotLows = trimOld(pivotLows, i-lookback)
			pivotHighs = trimOld(pivotHighs, i-lookback)
		}

		adxV, adxOk := adx.ADX.At(i)
		avgVol, volOk := volSMA.At(i)
		if !adxOk || !volOk || adxV <= adxMin || bars.At(i).Volume < volMult*avgVol {
			continue
		}

		bullish := detectBullish(pivotLows)
		bearish := detectBearish(pivotHighs)
		close := bars.At(i).Close

		if !inPosition && bullish {
			out.Set(i, signal.Signal{Action: signal.EnterLong, RefPrice: close})
			inPosition = true
		} else if inPosition && bearish {
			out.Set(i, signal.Signal{Action: signal.Exit, RefPrice: close})
			inPosition = false
		}
	}
	return out, nil
}

func isPivotLow(bars bar.Series, i, wing int) bool {
	if i-wing < 0 || i+wing >= bars.Len() {
		return false
	}
	low := bars.At(i).Low
	for j := i - wing; j <= i+wing; j++ {
		if j != i && bars.At(j).Low < low {
			return false
		}
	}
	return true
}

func isPivotHigh(bars bar.Series, i, wing int) bool {
	if i-wing < 0 || i+wing >= bars.Len() {
		return false
	}
	high := bars.At(i).High
	for j := i - wing; j <= i+wing; j++ {
		if j != i && bars.At(j).High > high {
			return false
		}
	}
	return true
}

func trimOld(pivots []pivot, minIndex int) []pivot {
	cut := 0
	for cut < len(pivots) && pivots[cut].index < minIndex {
		cut++
	}
	return pivots[cut:]
}

// detectBullish reports regular bullish (price lower low, RSI higher low)
// or hidden bullish (price higher low, RSI lower low) divergence between the
// two most recent pivot lows.
func detectBullish(lows []pivot) bool {
	if len(lows) < 2 {
		return false
	}
	a, b := lows[len(lows)-2], lows[len(lows)-1]
	regular := b.price < a.price && b.rsi > a.rsi
	hidden := b.price > a.price && b.rsi < a.rsi
	return regular || hidden
}

// detectBearish reports regular bearish (price higher high, RSI lower high)
// or hidden bearish (price lower high, RSI higher high) divergence between
// the two most recent pivot highs.
func detectBearish(highs []pivot) bool {
	if len(highs) < 2 {
		return false
	}
	a, b := highs[len(highs)-2], highs[len(highs)-1]
	regular := b.price > a.price && b.rsi < a.rsi
	hidden := b.price < a.price && b.rsi > a.rsi
	return regular || hidden
}
