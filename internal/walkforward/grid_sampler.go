package walkforward

import "github.com/bikeshrana/quant-research-platform/internal/strategy"

// gridFloatSteps is the number of points a continuous FloatRange (Step==0)
// is discretized into when building a grid, since exhaustive grid search
// requires a finite combination set.
const gridFloatSteps = 5

// GridSampler exhaustively enumerates the Cartesian product of a search
// space's discretized parameter values, the exhaustive strategy the
// source's optimizer.go used exclusively (generateCombinationsRecursive).
// It proposes every combination exactly once and has no budget of its own:
// the caller's trial budget bounds how many Propose calls it makes, so a
// grid larger than n_trials is only partly enumerated.
type GridSampler struct {
	combos  []strategy.Params
	next    int
	bestP   strategy.Params
	bestSc  float64
	hasBest bool
}

// NewGridSampler builds a GridSampler over the full Cartesian product of
// space's discretized values.
func NewGridSampler(space strategy.ParamSpace) *GridSampler {
	return &GridSampler{combos: generateCombinations(space)}
}

func (g *GridSampler) Propose() (strategy.Params, bool) {
	if g.next >= len(g.combos) {
		return nil, false
	}
	p := g.combos[g.next]
	g.next++
	return p, true
}

func (g *GridSampler) Observe(t Trial) {
	if t.Failed {
		return
	}
	if !g.hasBest || t.Score > g.bestSc {
		g.bestSc = t.Score
		g.bestP = t.Params
		g.hasBest = true
	}
}

func (g *GridSampler) Best() (strategy.Params, float64, bool) {
	return g.bestP, g.bestSc, g.hasBest
}

// generateCombinations expands a ParamSpace into discrete per-parameter
// value lists, then recursively builds their Cartesian product.
func generateCombinations(space strategy.ParamSpace) []strategy.Params {
	names := make([]string, len(space))
	values := make([][]any, len(space))
	for i, spec := range space {
		names[i] = spec.Name
		values[i] = discretize(spec)
	}
	var out []strategy.Params
	generateCombinationsRecursive(names, values, 0, strategy.Params{}, &out)
	return out
}

func discretize(spec strategy.ParamSpec) []any {
	switch spec.Kind {
	case strategy.IntRange:
		step := int(spec.Step)
		if step <= 0 {
			step = 1
		}
		var out []any
		for v := spec.IntLo; v <= spec.IntHi; v += step {
			out = append(out, v)
		}
		return out
	case strategy.FloatRange:
		if spec.Step > 0 {
			var out []any
			for v := spec.FloatLo; v <= spec.FloatHi+1e-9; v += spec.Step {
				out = append(out, v)
			}
			return out
		}
		out := make([]any, gridFloatSteps)
		span := spec.FloatHi - spec.FloatLo
		for i := 0; i < gridFloatSteps; i++ {
			frac := float64(i) / float64(gridFloatSteps-1)
			out[i] = spec.FloatLo + span*frac
		}
		return out
	case strategy.Categorical:
		out := make([]any, len(spec.Options))
		for i, o := range spec.Options {
			out[i] = o
		}
		return out
	default:
		return nil
	}
}

// generateCombinationsRecursive builds the Cartesian product of values,
// one parameter at a time, depth-first.
func generateCombinationsRecursive(names []string, values [][]any, idx int, current strategy.Params, out *[]strategy.Params) {
	if idx == len(names) {
		combo := make(strategy.Params, len(current))
		for k, v := range current {
			combo[k] = v
		}
		*out = append(*out, combo)
		return
	}
	for _, v := range values[idx] {
		current[names[idx]] = v
		generateCombinationsRecursive(names, values, idx+1, current, out)
	}
	delete(current, names[idx])
}
