package strategy

import (
	"github.com/bikeshrana/quant-research-platform/pkg/bar"
	"github.com/bikeshrana/quant-research-platform/pkg/indicators"
	"github.com/bikeshrana/quant-research-platform/pkg/signal"
)

// MACDCrossover enters on a MACD line crossover above its signal line while
// the histogram is positive, and exits on the reverse crossover. Like
// TrendFollowing it may emit symmetric shorts when allow_short is set.
type MACDCrossover struct{}

func (MACDCrossover) Name() string { return "MACDCrossover" }

func (MACDCrossover) DefaultParams() Params {
	return Params{
		"fast":        12,
		"slow":        26,
		"signal":      9,
		"allow_short": true,
	}
}

func (MACDCrossover) SearchSpace() ParamSpace {
	return ParamSpace{
		{Name: "fast", Kind: IntRange, IntLo: 5, IntHi: 20},
		{Name: "slow", Kind: IntRange, IntLo: 21, IntHi: 50},
		{Name: "signal", Kind: IntRange, IntLo: 5, IntHi: 15},
	}
}

func (m MACDCrossover) WarmUp(p Params) int {
	slow := intParam(p, "slow", 26)
	sig := intParam(p, "signal", 9)
	return slow - 1 + sig - 1
}

func (m MACDCrossover) Compute(bars bar.Series, p Params) (signal.Series, error) {
	fastP := intParam(p, "fast", 12)
	slowP := intParam(p, "slow", 26)
	sigP := intParam(p, "signal", 9)
	allowShort := boolParam(p, "allow_short", true)

	if slowP <= fastP {
		return signal.Series{}, invalidParams("slow must exceed fast")
	}

	n := bars.Len()
	out := signal.NewSeries(n)
	warmUp := m.WarmUp(p)
	if n <= warmUp {
		return out, nil
	}

	macd := indicators.MACD(bars, fastP, slowP, sigP)

	inLong := false
	inShort := false
	for i := warmUp; i < n; i++ {
		mv, mok := macd.MACD.At(i)
		sv, sok := macd.Signal.At(i)
		pm, pmok := macd.MACD.At(i - 1)
		ps, psok := macd.Signal.At(i - 1)
		hv, hok := macd.Histogram.At(i)
		if !mok || !sok || !pmok || !psok || !hok {
			continue
		}

		crossUp := pm <= ps && mv > sv
		crossDown := pm >= ps && mv < sv
		close := bars.At(i).Close

		if inLong && crossDown {
			out.Set(i, signal.Signal{Action: signal.Exit, RefPrice: close})
			inLong = false
		}
		if inShort && crossUp {
			out.Set(i, signal.Signal{Action: signal.Exit, RefPrice: close})
			inShort = false
		}
		if !inLong && !inShort && crossUp && hv > 0 {
			out.Set(i, signal.Signal{Action: signal.EnterLong, RefPrice: close})
			inLong = true
		} else if allowShort && !inLong && !inShort && crossDown && hv < 0 {
			out.Set(i, signal.Signal{Action: signal.EnterShort, RefPrice: close})
			inShort = true
		}
	}
	return out, nil
}
