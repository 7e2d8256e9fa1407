package walkforward

import (
	"math/rand"

	"github.com/bikeshrana/quant-research-platform/internal/strategy"
)

// RandomSampler draws n_trials independent uniform samples from a search
// space. Its sole purpose is determinism under a fixed seed and
// single-worker execution, as the reference sampler for tests per the
// design note's random-search requirement; a TPESampler is the canonical
// production choice.
type RandomSampler struct {
	space   strategy.ParamSpace
	rng     *rand.Rand
	budget  int
	drawn   int
	bestP   strategy.Params
	bestSc  float64
	hasBest bool
}

// NewRandomSampler builds a RandomSampler that proposes up to nTrials
// uniformly-drawn points from space, seeded explicitly for reproducibility.
func NewRandomSampler(space strategy.ParamSpace, nTrials int, seed int64) *RandomSampler {
	return &RandomSampler{
		space:  space,
		rng:    rand.New(rand.NewSource(seed)),
		budget: nTrials,
	}
}

func (r *RandomSampler) Propose() (strategy.Params, bool) {
	if r.drawn >= r.budget {
		return nil, false
	}
	r.drawn++
	return r.sample(), true
}

func (r *RandomSampler) sample() strategy.Params {
	p := make(strategy.Params, len(r.space))
	for _, spec := range r.space {
		switch spec.Kind {
		case strategy.IntRange:
			span := spec.IntHi - spec.IntLo + 1
			if span <= 0 {
				span = 1
			}
			p[spec.Name] = spec.IntLo + r.rng.Intn(span)
		case strategy.FloatRange:
			span := spec.FloatHi - spec.FloatLo
			p[spec.Name] = spec.FloatLo + r.rng.Float64()*span
		case strategy.Categorical:
			if len(spec.Options) > 0 {
				p[spec.Name] = spec.Options[r.rng.Intn(len(spec.Options))]
			}
		}
	}
	return p
}

func (r *RandomSampler) Observe(t Trial) {
	if t.Failed {
		return
	}
	if !r.hasBest || t.Score > r.bestSc {
		r.bestSc = t.Score
		r.bestP = t.Params
		r.hasBest = true
	}
}

func (r *RandomSampler) Best() (strategy.Params, float64, bool) {
	return r.bestP, r.bestSc, r.hasBest
}
