package walkforward

import (
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/bikeshrana/quant-research-platform/internal/strategy"
)

// tpeGamma is the fraction of observed trials, sorted by score, treated as
// "good" when splitting the history into the two densities TPE compares.
const tpeGamma = 0.25

// tpeCandidates is how many points are drawn from the good-side density
// per proposal before picking the one that maximizes l(x)/g(x).
const tpeCandidates = 24

// tpeWarmupTrials is how many initial proposals are plain uniform draws,
// before enough history exists to fit the two densities.
const tpeWarmupTrials = 10

// observation pairs a proposed point with its eventual score.
type observation struct {
	params strategy.Params
	score  float64
}

// TPESampler is a sequential model-based optimizer: it splits observed
// trials into a "good" and "bad" set by score, fits a density over each
// (a Gaussian per continuous parameter, a frequency table per categorical
// parameter), and proposes the candidate maximizing the ratio of good to
// bad density, the Tree-structured Parzen Estimator strategy the design
// note names as canonical.
type TPESampler struct {
	space   strategy.ParamSpace
	rng     *rand.Rand
	budget  int
	drawn   int
	history []observation
	bestP   strategy.Params
	bestSc  float64
	hasBest bool
}

// NewTPESampler builds a TPESampler proposing up to nTrials points from
// space, seeded explicitly so a fixed seed and worker count of 1 reproduce
// the same sequence of proposals.
func NewTPESampler(space strategy.ParamSpace, nTrials int, seed int64) *TPESampler {
	return &TPESampler{
		space:  space,
		rng:    rand.New(rand.NewSource(seed)),
		budget: nTrials,
	}
}

func (t *TPESampler) Propose() (strategy.Params, bool) {
	if t.drawn >= t.budget {
		return nil, false
	}
	t.drawn++
	if len(t.history) < tpeWarmupTrials {
		return t.uniform(), true
	}
	return t.proposeModeled(), true
}

func (t *TPESampler) uniform() strategy.Params {
	p := make(strategy.Params, len(t.space))
	for _, spec := range t.space {
		switch spec.Kind {
		case strategy.IntRange:
			span := spec.IntHi - spec.IntLo + 1
			if span <= 0 {
				span = 1
			}
			p[spec.Name] = spec.IntLo + t.rng.Intn(span)
		case strategy.FloatRange:
			p[spec.Name] = spec.FloatLo + t.rng.Float64()*(spec.FloatHi-spec.FloatLo)
		case strategy.Categorical:
			if len(spec.Options) > 0 {
				p[spec.Name] = spec.Options[t.rng.Intn(len(spec.Options))]
			}
		}
	}
	return p
}

func (t *TPESampler) proposeModeled() strategy.Params {
	good, bad := t.splitHistory()

	var best strategy.Params
	bestRatio := math.Inf(-1)
	for c := 0; c < tpeCandidates; c++ {
		cand := t.sampleFromSet(good)
		ratio := t.logDensityRatio(cand, good, bad)
		if ratio > bestRatio {
			bestRatio = ratio
			best = cand
		}
	}
	if best == nil {
		return t.uniform()
	}
	return best
}

// splitHistory orders observations by score descending and splits them
// into the top tpeGamma fraction ("good") and the rest ("bad").
func (t *TPESampler) splitHistory() ([]observation, []observation) {
	ordered := make([]observation, len(t.history))
	copy(ordered, t.history)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].score > ordered[j].score })

	nGood := int(math.Ceil(float64(len(ordered)) * tpeGamma))
	if nGood < 1 {
		nGood = 1
	}
	if nGood > len(ordered) {
		nGood = len(ordered)
	}
	return ordered[:nGood], ordered[nGood:]
}

// sampleFromSet draws a candidate point by, per parameter, fitting a
// Gaussian (continuous) or frequency table (categorical) over set and
// sampling from it; an empty set falls back to a uniform draw.
func (t *TPESampler) sampleFromSet(set []observation) strategy.Params {
	p := make(strategy.Params, len(t.space))
	for _, spec := range t.space {
		switch spec.Kind {
		case strategy.IntRange:
			mu, sigma := gaussianFit(set, spec.Name, float64(spec.IntLo), float64(spec.IntHi))
			n := distuv.Normal{Mu: mu, Sigma: sigma, Src: t.rng}
			v := int(math.Round(n.Rand()))
			p[spec.Name] = clampInt(v, spec.IntLo, spec.IntHi)
		case strategy.FloatRange:
			mu, sigma := gaussianFit(set, spec.Name, spec.FloatLo, spec.FloatHi)
			n := distuv.Normal{Mu: mu, Sigma: sigma, Src: t.rng}
			v := n.Rand()
			p[spec.Name] = clampFloat(v, spec.FloatLo, spec.FloatHi)
		case strategy.Categorical:
			p[spec.Name] = categoricalSample(set, spec, t.rng)
		}
	}
	return p
}

// logDensityRatio scores a candidate by the log of (good density / bad
// density) summed across parameters, the quantity TPE maximizes.
func (t *TPESampler) logDensityRatio(cand strategy.Params, good, bad []observation) float64 {
	var sum float64
	for _, spec := range t.space {
		switch spec.Kind {
		case strategy.IntRange, strategy.FloatRange:
			lo, hi := spec.FloatLo, spec.FloatHi
			if spec.Kind == strategy.IntRange {
				lo, hi = float64(spec.IntLo), float64(spec.IntHi)
			}
			x := toFloat(cand[spec.Name])
			gMu, gSigma := gaussianFit(good, spec.Name, lo, hi)
			bMu, bSigma := gaussianFit(bad, spec.Name, lo, hi)
			gDen := distuv.Normal{Mu: gMu, Sigma: gSigma}.Prob(x)
			bDen := distuv.Normal{Mu: bMu, Sigma: bSigma}.Prob(x)
			sum += logRatio(gDen, bDen)
		case strategy.Categorical:
			gProb := categoricalProb(good, spec, cand[spec.Name])
			bProb := categoricalProb(bad, spec, cand[spec.Name])
			sum += logRatio(gProb, bProb)
		}
	}
	return sum
}

func logRatio(good, bad float64) float64 {
	const eps = 1e-9
	return math.Log(good+eps) - math.Log(bad+eps)
}

// gaussianFit computes a mean/stddev over set's values for name, widening
// a degenerate (single-sample or zero-variance) fit to a fraction of the
// parameter's range so the resulting density is never a point mass.
func gaussianFit(set []observation, name string, lo, hi float64) (mu, sigma float64) {
	var vals []float64
	for _, o := range set {
		if v, ok := o.params[name]; ok {
			vals = append(vals, toFloat(v))
		}
	}
	span := hi - lo
	if span <= 0 {
		span = 1
	}
	if len(vals) == 0 {
		return (lo + hi) / 2, span / 4
	}
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	mu = sum / float64(len(vals))
	if len(vals) == 1 {
		return mu, span / 10
	}
	varSum := 0.0
	for _, v := range vals {
		d := v - mu
		varSum += d * d
	}
	sigma = math.Sqrt(varSum / float64(len(vals)-1))
	if sigma < span*0.01 {
		sigma = span * 0.01
	}
	return mu, sigma
}

func categoricalSample(set []observation, spec strategy.ParamSpec, rng *rand.Rand) string {
	if len(spec.Options) == 0 {
		return ""
	}
	counts := make(map[string]int, len(spec.Options))
	for _, o := range spec.Options {
		counts[o] = 1 // Laplace smoothing
	}
	for _, o := range set {
		if v, ok := o.params[spec.Name].(string); ok {
			counts[v]++
		}
	}
	total := 0
	for _, c := range counts {
		total += c
	}
	r := rng.Intn(total)
	for _, o := range spec.Options {
		r -= counts[o]
		if r < 0 {
			return o
		}
	}
	return spec.Options[len(spec.Options)-1]
}

func categoricalProb(set []observation, spec strategy.ParamSpec, value any) float64 {
	if len(spec.Options) == 0 {
		return 1
	}
	counts := make(map[string]int, len(spec.Options))
	for _, o := range spec.Options {
		counts[o] = 1
	}
	for _, o := range set {
		if v, ok := o.params[spec.Name].(string); ok {
			counts[v]++
		}
	}
	total := 0
	for _, c := range counts {
		total += c
	}
	v, _ := value.(string)
	return float64(counts[v]) / float64(total)
}

func toFloat(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case int:
		return float64(t)
	default:
		return 0
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func (t *TPESampler) Observe(tr Trial) {
	if !tr.Failed {
		t.history = append(t.history, observation{params: tr.Params, score: tr.Score})
		if !t.hasBest || tr.Score > t.bestSc {
			t.bestSc = tr.Score
			t.bestP = tr.Params
			t.hasBest = true
		}
	}
}

func (t *TPESampler) Best() (strategy.Params, float64, bool) {
	return t.bestP, t.bestSc, t.hasBest
}
