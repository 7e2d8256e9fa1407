package strategy

import (
	"github.com/bikeshrana/quant-research-platform/pkg/bar"
	"github.com/bikeshrana/quant-research-platform/pkg/indicators"
	"github.com/bikeshrana/quant-research-platform/pkg/signal"
)

// TrendFollowing enters on an EMA crossover confirmed by RSI, and exits on
// the reverse crossover or an RSI overbought reading.
type TrendFollowing struct{}

func (TrendFollowing) Name() string { return "TrendFollowing" }

func (TrendFollowing) DefaultParams() Params {
	return Params{
		"ema_fast":       9,
		"ema_slow":       21,
		"rsi_period":     14,
		"rsi_overbought": 70.0,
		"rsi_oversold":   30.0,
		"allow_short":    true,
	}
}

func (TrendFollowing) SearchSpace() ParamSpace {
	return ParamSpace{
		{Name: "ema_fast", Kind: IntRange, IntLo: 5, IntHi: 20},
		{Name: "ema_slow", Kind: IntRange, IntLo: 15, IntHi: 60},
		{Name: "rsi_period", Kind: IntRange, IntLo: 7, IntHi: 28},
		{Name: "rsi_overbought", Kind: FloatRange, FloatLo: 60, FloatHi: 85},
		{Name: "rsi_oversold", Kind: FloatRange, FloatLo: 15, FloatHi: 40},
	}
}

func (t TrendFollowing) WarmUp(p Params) int {
	slow := intParam(p, "ema_slow", 21)
	rsiP := intParam(p, "rsi_period", 14)
	return maxInt(slow-1, rsiP)
}

func (t TrendFollowing) Compute(bars bar.Series, p Params) (signal.Series, error) {
	fastP := intParam(p, "ema_fast", 9)
	slowP := intParam(p, "ema_slow", 21)
	rsiP := intParam(p, "rsi_period", 14)
	overbought := floatParam(p, "rsi_overbought", 70.0)
	oversold := floatParam(p, "rsi_oversold", 30.0)
	allowShort := boolParam(p, "allow_short", true)

	if slowP <= fastP {
		return signal.Series{}, invalidParams("ema_slow must exceed ema_fast")
	}

	n := bars.Len()
	out := signal.NewSeries(n)
	warmUp := t.WarmUp(p)
	if n <= warmUp {
		return out, nil
	}

	fast := indicators.EMA(bars, fastP)
	slow := indicators.EMA(bars, slowP)
	rsi := indicators.RSI(bars, rsiP)

	inLong := false
	inShort := false
	for i := warmUp; i < n; i++ {
		fv, fok := fast.At(i)
		sv, sok := slow.At(i)
		pf, pfok := fast.At(i - 1)
		ps, psok := slow.At(i - 1)
		rv, rok := rsi.At(i)
		if !fok || !sok || !pfok || !psok || !rok {
			continue
		}

		crossUp := pf <= ps && fv > sv
		crossDown := pf >= ps && fv < sv

		if inLong && (crossDown || rv > overbought) {
			out.Set(i, signal.Signal{Action: signal.Exit, RefPrice: bars.At(i).Close})
			inLong = false
		}
		if inShort && (crossUp || rv < oversold) {
			out.Set(i, signal.Signal{Action: signal.Exit, RefPrice: bars.At(i).Close})
			inShort = false
		}
		if !inLong && !inShort && crossUp && rv < overbought {
			out.Set(i, signal.Signal{Action: signal.EnterLong, RefPrice: bars.At(i).Close})
			inLong = true
		} else if allowShort && !inLong && !inShort && crossDown && rv > oversold {
			out.Set(i, signal.Signal{Action: signal.EnterShort, RefPrice: bars.At(i).Close})
			inShort = true
		}
	}
	return out, nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
