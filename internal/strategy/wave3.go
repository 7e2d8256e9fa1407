package strategy

import (
	"time"

	"github.com/bikeshrana/quant-research-platform/pkg/bar"
	"github.com/bikeshrana/quant-research-platform/pkg/indicators"
	"github.com/bikeshrana/quant-research-platform/pkg/signal"
)

// Wave3 is a multi-timeframe trend-continuation policy: a daily series
// supplies the up-context and pullback-band filter, an hourly series
// supplies the breakout trigger off ascending pivot lows. It implements
// MultiSeriesStrategy rather than Strategy's single-series Compute.
type Wave3 struct{}

func (Wave3) Name() string { return "Wave3" }

func (Wave3) DefaultParams() Params {
	return Params{
		"ema_long":          72,
		"ema_short":         17,
		"min_gap_bars":      17,
		"risk_multiple":     1.0,
		"reward_multiple":   3.0,
		"pullback_band_pct": 1.0,
	}
}

func (Wave3) SearchSpace() ParamSpace {
	return ParamSpace{
		{Name: "ema_long", Kind: IntRange, IntLo: 40, IntHi: 120},
		{Name: "ema_short", Kind: IntRange, IntLo: 8, IntHi: 30},
		{Name: "min_gap_bars", Kind: IntRange, IntLo: 8, IntHi: 30},
		{Name: "risk_multiple", Kind: FloatRange, FloatLo: 0.5, FloatHi: 2.0, Step: 0.1},
		{Name: "reward_multiple", Kind: FloatRange, FloatLo: 1.5, FloatHi: 5.0, Step: 0.25},
		{Name: "pullback_band_pct", Kind: FloatRange, FloatLo: 0.25, FloatHi: 3.0, Step: 0.25},
	}
}

func (w Wave3) WarmUp(p Params) int {
	long := intParam(p, "ema_long", 72)
	return long - 1
}

// Compute satisfies the Strategy interface but always fails: Wave3 requires
// two series and must be driven through ComputeMulti.
func (w Wave3) Compute(bars bar.Series, p Params) (signal.Series, error) {
	return signal.Series{}, invalidParams("Wave3 requires ComputeMulti with a daily context series and an hourly trigger series")
}

func (w Wave3) ComputeMulti(daily, hourly bar.Series, p Params) (signal.Series, error) {
	emaLongP := intParam(p, "ema_long", 72)
	emaShortP := intParam(p, "ema_short", 17)
	minGap := intParam(p, "min_gap_bars", 17)
	riskMultiple := floatParam(p, "risk_multiple", 1.0)
	rewardMultiple := floatParam(p, "reward_multiple", 3.0)
	bandPct := floatParam(p, "pullback_band_pct", 1.0)

	n := hourly.Len()
	out := signal.NewSeries(n)
	warmUp := minGap*2 + 1
	if n <= warmUp || daily.Len() <= emaLongP {
		return out, nil
	}

	dailyLongEMA := indicators.EMA(daily, emaLongP)
	dailyShortEMA := indicators.EMA(daily, emaShortP)

	latestDailyIndex := func(t time.Time) int {
		return daily.IndexAfter(t) - 1
	}

	dailyContextAt := func(t time.Time) bool {
		idx := latestDailyIndex(t)
		if idx < 0 {
			return false
		}
		long, lok := dailyLongEMA.At(idx)
		short, sok := dailyShortEMA.At(idx)
		if !lok || !sok {
			return false
		}
		close := daily.At(idx).Close
		if close <= long {
			return false
		}
		lo, hi := long, short
		if lo > hi {
			lo, hi = hi, lo
		}
		band := (hi - lo) * bandPct / 100
		return close >= lo-band && close <= hi+band
	}

	dailyInvalidatedAt := func(t time.Time) bool {
		idx := latestDailyIndex(t)
		if idx < 0 {
			return false
		}
		long, lok := dailyLongEMA.At(idx)
		if !lok {
			return false
		}
		return daily.At(idx).Close < long
	}

	var pivotLows, pivotHighs []pivot
	inPosition := false
	stop := 0.0
	target := 0.0

	for i := warmUp; i < n; i++ {
		confirmIdx := i - minGap
		if confirmIdx >= minGap {
			if isPivotLow(hourly, confirmIdx, minGap) {
				pivotLows = append(pivotLows, pivot{index: confirmIdx, price: hourly.At(confirmIdx).Low})
			}
			if isPivotHigh(hourly, confirmIdx, minGap) {
				pivotHighs = append(pivotHighs, pivot{index: confirmIdx, price: hourly.At(confirmIdx).High})
			}
		}

		ts := hourly.At(i).Timestamp
		close := hourly.At(i).Close

		if inPosition {
			if dailyInvalidatedAt(ts) {
				out.Set(i, signal.Signal{Action: signal.Exit, RefPrice: close})
				inPosition = false
				continue
			}
			if len(pivotLows) > 0 {
				lastLow := pivotLows[len(pivotLows)-1].price
				if lastLow > stop {
					stop = lastLow
				}
			}
			out.Set(i, signal.Signal{
				Action: signal.Hold, RefPrice: close,
				StopPrice: stop, HasStop: true,
				TargetPrice: target, HasTarget: true,
			})
			continue
		}

		if len(pivotLows) >= 2 && len(pivotHighs) >= 1 && dailyContextAt(ts) {
			lastLow := pivotLows[len(pivotLows)-1]
			prevLow := pivotLows[len(pivotLows)-2]
			var precedingHigh *pivot
			for j := len(pivotHighs) - 1; j >= 0; j-- {
				if pivotHighs[j].index < lastLow.index {
					precedingHigh = &pivotHighs[j]
					break
				}
			}
			if precedingHigh != nil &&
				lastLow.price > prevLow.price &&
				lastLow.index-precedingHigh.index >= minGap &&
				close > precedingHigh.price {

				entry := close
				eps := riskMultiple * 0.01
				stop = lastLow.price * (1 - eps)
				target = entry + rewardMultiple*(entry-stop)
				out.Set(i, signal.Signal{
					Action: signal.EnterLong, RefPrice: entry,
					StopPrice: stop, HasStop: true,
					TargetPrice: target, HasTarget: true,
				})
				inPosition = true
			}
		}
	}
	return out, nil
}
