package walkforward

import "github.com/bikeshrana/quant-research-platform/internal/strategy"

// Trial is one (params, score) observation reported back to a Sampler.
// Score follows the convention "higher is better"; a trial that violated
// constraints or produced a non-finite result is reported with Failed set
// so the sampler can treat it as the worst possible outcome without
// needing to inspect magnitudes.
type Trial struct {
	Params strategy.Params
	Score  float64
	Failed bool
}

// Sampler is the propose/observe/best contract a Walk-Forward Optimizer
// drives against a strategy's search space. Implementations range from
// exhaustive grid search to a sequential model-based optimizer; none of
// them perform I/O or hold state beyond one window's trials.
type Sampler interface {
	// Propose returns the next parameter point to evaluate, or ok=false
	// if the sampler has no more proposals (grid search exhausting its
	// combinations; budget-based samplers never return false before
	// n_trials proposals).
	Propose() (strategy.Params, bool)

	// Observe records the outcome of a previously proposed trial.
	Observe(t Trial)

	// Best returns the best-scoring params observed so far, or ok=false
	// if no trial has been observed yet.
	Best() (strategy.Params, float64, bool)
}
