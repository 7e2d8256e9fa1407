package backtest

import (
	"math"
	"time"
)

// computeMetrics derives the summary Metrics from a completed Result's
// Trade Ledger and Equity Curve, following the source's Sharpe/drawdown/
// profit-factor formulas exactly, generalized to the nullable-field
// sentinel design: every statistic that is undefined for lack of data
// returns nil rather than zero.
func computeMetrics(r Result) Metrics {
	m := Metrics{
		TotalReturn: r.FinalCapital - r.InitialCapital,
	}
	if r.InitialCapital != 0 {
		m.TotalReturnPct = m.TotalReturn / r.InitialCapital * 100
	}

	m.TotalTrades = len(r.Trades)
	for _, t := range r.Trades {
		m.TotalCommission += t.Commission
		if t.IsWinningTrade() {
			m.WinningTrades++
			m.GrossProfit += t.NetPnL
		} else {
			m.LosingTrades++
			m.GrossLoss += -t.NetPnL
		}
	}

	if m.TotalTrades > 0 {
		winRate := float64(m.WinningTrades) / float64(m.TotalTrades) * 100
		m.WinRate = &winRate
	}

	switch {
	case m.GrossLoss > 0:
		pf := m.GrossProfit / m.GrossLoss
		m.ProfitFactor = &pf
	case m.GrossProfit > 0:
		pf := 999.99
		m.ProfitFactor = &pf
		m.NoLosses = true
	}

	if len(r.Trades) > 0 {
		var total time.Duration
		for _, t := range r.Trades {
			total += t.HoldTime()
		}
		m.AvgTradeDuration = total / time.Duration(len(r.Trades))
	}

	m.MaxDrawdown, m.MaxDrawdownPct = maxDrawdown(r.EquityCurve)
	m.SharpeRatio = sharpeRatio(r.EquityCurve, r.Config.AnnualizationFactor)

	return m
}

func maxDrawdown(equity []EquityPoint) (float64, float64) {
	if len(equity) == 0 {
		return 0, 0
	}
	peak := equity[0].Equity
	maxDD, maxDDPct := 0.0, 0.0
	for _, p := range equity {
		if p.Equity > peak {
			peak = p.Equity
		}
		dd := peak - p.Equity
		if dd > maxDD {
			maxDD = dd
		}
		if peak > 0 {
			ddPct := dd / peak
			if ddPct > maxDDPct {
				maxDDPct = ddPct
			}
		}
	}
	return maxDD, maxDDPct * 100
}

func sharpeRatio(equity []EquityPoint, annualizationFactor float64) *float64 {
	if len(equity) < 3 {
		return nil
	}
	returns := make([]float64, 0, len(equity)-1)
	for i := 1; i < len(equity); i++ {
		prev := equity[i-1].Equity
		if prev == 0 {
			continue
		}
		returns = append(returns, (equity[i].Equity-prev)/prev)
	}
	if len(returns) < 2 {
		return nil
	}

	mean := 0.0
	for _, v := range returns {
		mean += v
	}
	mean /= float64(len(returns))

	variance := 0.0
	for _, v := range returns {
		d := v - mean
		variance += d * d
	}
	variance /= float64(len(returns) - 1)
	stdDev := math.Sqrt(variance)
	if stdDev == 0 {
		return nil
	}

	if annualizationFactor <= 0 {
		annualizationFactor = 252
	}
	sharpe := mean / stdDev * math.Sqrt(annualizationFactor)
	return &sharpe
}
