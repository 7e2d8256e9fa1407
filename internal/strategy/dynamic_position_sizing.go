package strategy

import (
	"github.com/bikeshrana/quant-research-platform/pkg/bar"
	"github.com/bikeshrana/quant-research-platform/pkg/indicators"
	"github.com/bikeshrana/quant-research-platform/pkg/signal"
)

// DynamicPositionSizing is not an entry policy of its own: it wraps a base
// Strategy's entries/exits and overlays a Kelly-fraction size hint on every
// entry, computed from the win rate and payoff ratio of all of the base
// strategy's own earlier trades on the same series (a cumulative tally, not
// a rolling window). Grounded on the source's
// KellyCriterionSizer: fraction = W - (1-W)/R, where W is the win
// probability and R is the average-win/average-loss ratio.
type DynamicPositionSizing struct {
	Base Strategy
}

func (d DynamicPositionSizing) Name() string { return "DynamicPositionSizing" }

func (d DynamicPositionSizing) DefaultParams() Params {
	p := Params{
		"risk_budget":         0.01,
		"max_fraction":        0.25,
		"atr_period":          14,
		"min_samples":         10,
		"fallback_fraction":   0.05,
	}
	if d.Base != nil {
		for k, v := range d.Base.DefaultParams() {
			p[k] = v
		}
	}
	return p
}

func (d DynamicPositionSizing) SearchSpace() ParamSpace {
	space := ParamSpace{
		{Name: "risk_budget", Kind: FloatRange, FloatLo: 0.002, FloatHi: 0.05, Step: 0.002},
		{Name: "max_fraction", Kind: FloatRange, FloatLo: 0.05, FloatHi: 0.5, Step: 0.05},
		{Name: "atr_period", Kind: IntRange, IntLo: 7, IntHi: 28},
	}
	if d.Base != nil {
		space = append(space, d.Base.SearchSpace()...)
	}
	return space
}

func (d DynamicPositionSizing) WarmUp(p Params) int {
	atrP := intParam(p, "atr_period", 14)
	baseWarm := 0
	if d.Base != nil {
		baseWarm = d.Base.WarmUp(p)
	}
	return maxInt(atrP, baseWarm)
}

func (d DynamicPositionSizing) Compute(bars bar.Series, p Params) (signal.Series, error) {
	if d.Base == nil {
		return signal.Series{}, invalidParams("DynamicPositionSizing requires a base strategy")
	}
	baseSignals, err := d.Base.Compute(bars, p)
	if err != nil {
		return signal.Series{}, err
	}

	atrP := intParam(p, "atr_period", 14)
	riskBudget := floatParam(p, "risk_budget", 0.01)
	maxFraction := floatParam(p, "max_fraction", 0.25)
	minSamples := intParam(p, "min_samples", 10)
	fallback := floatParam(p, "fallback_fraction", 0.05)

	n := bars.Len()
	out := signal.NewSeries(n)
	atr := indicators.ATR(bars, atrP)

	var wins, losses int
	var winSum, lossSum float64
	entryPrice := 0.0
	entrySign := 1.0
	inPosition := false

	for i := 0; i < n; i++ {
		sig := baseSignals.At(i)
		out.Set(i, sig)
		if sig.Action == signal.Exit && inPosition {
			pnl := (bars.At(i).Close - entryPrice) * entrySign
			if pnl >= 0 {
				wins++
				winSum += pnl
			} else {
				losses++
				lossSum += -pnl
			}
			inPosition = false
		}
		if sig.Action == signal.EnterLong || sig.Action == signal.EnterShort {
			entryPrice = sig.RefPrice
			entrySign = 1.0
			if sig.Action == signal.EnterShort {
				entrySign = -1.0
			}
			inPosition = true

			kelly := fallback
			total := wins + losses
			if total >= minSamples && wins > 0 && losses > 0 {
				winRate := float64(wins) / float64(total)
				avgWin := winSum / float64(wins)
				avgLoss := lossSum / float64(losses)
				if avgLoss > 0 {
					payoff := avgWin / avgLoss
					kelly = winRate - (1-winRate)/payoff
				}
			}

			av, aok := atr.At(i)
			hint := 0.0
			if aok && av > 0 {
				hint = kelly * (riskBudget / av)
			}
			if hint < 0 {
				hint = 0
			}
			if hint > maxFraction {
				hint = maxFraction
			}
			updated := out.At(i)
			updated.SizeHint = hint
			updated.HasSizeHint = true
			out.Set(i, updated)
		}
	}
	return out, nil
}
