package strategy

import (
	"github.com/bikeshrana/quant-research-platform/pkg/bar"
	"github.com/bikeshrana/quant-research-platform/pkg/indicators"
	"github.com/bikeshrana/quant-research-platform/pkg/signal"
)

// Breakout enters long on a close above the trailing lookback high
// confirmed by elevated volume, and exits on a close below the trailing
// lookback low.
type Breakout struct{}

func (Breakout) Name() string { return "Breakout" }

func (Breakout) DefaultParams() Params {
	return Params{
		"lookback":    20,
		"volume_mult": 1.2,
	}
}

func (Breakout) SearchSpace() ParamSpace {
	return ParamSpace{
		{Name: "lookback", Kind: IntRange, IntLo: 10, IntHi: 60},
		{Name: "volume_mult", Kind: FloatRange, FloatLo: 1.0, FloatHi: 2.5, Step: 0.1},
	}
}

func (b Breakout) WarmUp(p Params) int {
	return intParam(p, "lookback", 20)
}

func (b Breakout) Compute(bars bar.Series, p Params) (signal.Series, error) {
	lookback := intParam(p, "lookback", 20)
	volMult := floatParam(p, "volume_mult", 1.2)

	n := bars.Len()
	out := signal.NewSeries(n)
	warmUp := b.WarmUp(p)
	if n <= warmUp {
		return out, nil
	}

	volSMA := indicators.SMAVolume(bars, lookback)

	inPosition := false
	for i := warmUp; i < n; i++ {
		window := bars.Slice(i-lookback, i)
		hi := window.At(0).High
		lo := window.At(0).Low
		for j := 0; j < window.Len(); j++ {
			wb := window.At(j)
			if wb.High > hi {
				hi = wb.High
			}
			if wb.Low < lo {
				lo = wb.Low
			}
		}
		cur := bars.At(i)
		avgVol, vok := volSMA.At(i)

		if inPosition && cur.Close < lo {
			out.Set(i, signal.Signal{Action: signal.Exit, RefPrice: cur.Close})
			inPosition = false
			continue
		}
		if !inPosition && vok && cur.Close > hi && cur.Volume >= volMult*avgVol {
			out.Set(i, signal.Signal{Action: signal.EnterLong, RefPrice: cur.Close})
			inPosition = true
		}
	}
	return out, nil
}
