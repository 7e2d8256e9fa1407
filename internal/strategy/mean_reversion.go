package strategy

import (
	"github.com/bikeshrana/quant-research-platform/pkg/bar"
	"github.com/bikeshrana/quant-research-platform/pkg/indicators"
	"github.com/bikeshrana/quant-research-platform/pkg/signal"
)

// MeanReversion enters long when price dips below the lower Bollinger band
// while RSI confirms oversold, and exits on a reversion to the middle band
// or an RSI overbought reading.
type MeanReversion struct{}

func (MeanReversion) Name() string { return "MeanReversion" }

func (MeanReversion) DefaultParams() Params {
	return Params{
		"bb_period":      20,
		"bb_std":         2.0,
		"rsi_period":     14,
		"rsi_oversold":   30.0,
		"rsi_overbought": 70.0,
	}
}

func (MeanReversion) SearchSpace() ParamSpace {
	return ParamSpace{
		{Name: "bb_period", Kind: IntRange, IntLo: 10, IntHi: 40},
		{Name: "bb_std", Kind: FloatRange, FloatLo: 1.0, FloatHi: 3.0, Step: 0.25},
		{Name: "rsi_period", Kind: IntRange, IntLo: 7, IntHi: 28},
		{Name: "rsi_oversold", Kind: FloatRange, FloatLo: 15, FloatHi: 40},
		{Name: "rsi_overbought", Kind: FloatRange, FloatLo: 60, FloatHi: 85},
	}
}

func (m MeanReversion) WarmUp(p Params) int {
	bbP := intParam(p, "bb_period", 20)
	rsiP := intParam(p, "rsi_period", 14)
	return maxInt(bbP-1, rsiP)
}

func (m MeanReversion) Compute(bars bar.Series, p Params) (signal.Series, error) {
	bbP := intParam(p, "bb_period", 20)
	bbStd := floatParam(p, "bb_std", 2.0)
	rsiP := intParam(p, "rsi_period", 14)
	oversold := floatParam(p, "rsi_oversold", 30.0)
	overbought := floatParam(p, "rsi_overbought", 70.0)

	n := bars.Len()
	out := signal.NewSeries(n)
	warmUp := m.WarmUp(p)
	if n <= warmUp {
		return out, nil
	}

	bb := indicators.Bollinger(bars, bbP, bbStd)
	rsi := indicators.RSI(bars, rsiP)

	inPosition := false
	for i := warmUp; i < n; i++ {
		lower, lok := bb.Lower.At(i)
		middle, mok := bb.Middle.At(i)
		rv, rok := rsi.At(i)
		if !lok || !mok || !rok {
			continue
		}
		close := bars.At(i).Close

		if inPosition && (close >= middle || rv >= overbought) {
			out.Set(i, signal.Signal{Action: signal.Exit, RefPrice: close})
			inPosition = false
			continue
		}
		if !inPosition && close < lower && rv < oversold {
			out.Set(i, signal.Signal{Action: signal.EnterLong, RefPrice: close})
			inPosition = true
		}
	}
	return out, nil
}
