// Package strategy defines the Strategy contract and the seven required
// variants. Every variant is a pure value: Compute never mutates state and
// never performs I/O, so the same (bars, params) pair always yields a
// byte-identical SignalSeries.
package strategy

import (
	"github.com/bikeshrana/quant-research-platform/pkg/bar"
	"github.com/bikeshrana/quant-research-platform/pkg/signal"
)

// ParamKind tags the domain of a single tunable parameter.
type ParamKind string

const (
	IntRange    ParamKind = "int_range"
	FloatRange  ParamKind = "float_range"
	Categorical ParamKind = "categorical"
)

// ParamSpec describes the domain of one parameter for the search space a
// Walk-Forward Optimizer samples from.
type ParamSpec struct {
	Name     string
	Kind     ParamKind
	IntLo    int
	IntHi    int
	FloatLo  float64
	FloatHi  float64
	Step     float64 // 0 means continuous
	Options  []string
}

// ParamSpace is the ordered set of tunable parameters a Strategy exposes.
type ParamSpace []ParamSpec

// Params is a named mapping of parameter values. Strategies type-assert the
// concrete value they expect; Optimizer samplers never need to know a
// variant's concrete Go type.
type Params map[string]any

// Strategy is the capability set every variant conforms to: name,
// default_params, search_space, warm_up, compute.
type Strategy interface {
	Name() string
	DefaultParams() Params
	SearchSpace() ParamSpace
	WarmUp(p Params) int
	Compute(bars bar.Series, p Params) (signal.Series, error)
}

// MultiSeriesStrategy is satisfied by variants that need more than one Bar
// Series as input (Wave3's daily context + hourly trigger pair). It is a
// distinct interface rather than an optional method on Strategy, since
// every other variant operates on exactly one series.
type MultiSeriesStrategy interface {
	Strategy
	ComputeMulti(context, trigger bar.Series, p Params) (signal.Series, error)
}

func intParam(p Params, name string, def int) int {
	if v, ok := p[name]; ok {
		switch t := v.(type) {
		case int:
			return t
		case float64:
			return int(t)
		}
	}
	return def
}

func floatParam(p Params, name string, def float64) float64 {
	if v, ok := p[name]; ok {
		switch t := v.(type) {
		case float64:
			return t
		case int:
			return float64(t)
		}
	}
	return def
}

func boolParam(p Params, name string, def bool) bool {
	if v, ok := p[name]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}
