package indicators

import "github.com/bikeshrana/quant-research-platform/pkg/bar"

// RSI computes the Relative Strength Index over period p using Wilder
// smoothing of gains and losses. Warm-up is p; value is in [0,100].
// avgLoss == 0 with avgGain > 0 yields 100 (the source's observed
// convention for "no losses in the lookback").
func RSI(s bar.Series, p int) Series {
	n := s.Len()
	out := newSeries(n, p)
	if p <= 0 || n <= p {
		return out
	}
	cl := s.Closes()

	var sumGain, sumLoss float64
	for i := 1; i <= p; i++ {
		change := cl[i] - cl[i-1]
		if change > 0 {
			sumGain += change
		} else {
			sumLoss += -change
		}
	}
	avgGain := sumGain / float64(p)
	avgLoss := sumLoss / float64(p)
	out.set(p, rsiFromAverages(avgGain, avgLoss))

	for i := p + 1; i < n; i++ {
		change := cl[i] - cl[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*float64(p-1) + gain) / float64(p)
		avgLoss = (avgLoss*float64(p-1) + loss) / float64(p)
		out.set(i, rsiFromAverages(avgGain, avgLoss))
	}
	return out
}

func rsiFromAverages(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		if avgGain == 0 {
			return 50
		}
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}
