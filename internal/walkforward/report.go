package walkforward

import (
	"encoding/json"
	"time"

	"github.com/bikeshrana/quant-research-platform/internal/backtest"
	"github.com/bikeshrana/quant-research-platform/internal/strategy"
)

// jsonPeriod is the train/test period shape in the walk-forward JSON
// projection.
type jsonPeriod struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Size  int       `json:"size"`
}

type jsonWindow struct {
	WindowID           int             `json:"window_id"`
	Period             jsonWindowPeriod `json:"period"`
	BestParams         strategy.Params `json:"best_params"`
	TrainMetrics       backtest.Metrics `json:"train_metrics"`
	TestMetrics        backtest.Metrics `json:"test_metrics"`
	OptimizationTrials int             `json:"optimization_trials"`
}

type jsonWindowPeriod struct {
	Train jsonPeriod `json:"train"`
	Test  jsonPeriod `json:"test"`
}

type jsonReport struct {
	Strategy      string          `json:"strategy"`
	Configuration jsonConfig      `json:"configuration"`
	Aggregate     Aggregate       `json:"aggregate_statistics"`
	Windows       []jsonWindow    `json:"windows"`
	Cancelled     bool            `json:"cancelled"`
}

type jsonConfig struct {
	TrainWindowDays    int    `json:"train_window_days"`
	TestWindowDays     int    `json:"test_window_days"`
	StepDays           int    `json:"step_days"`
	Anchored           bool   `json:"anchored"`
	OptimizationMetric Metric `json:"optimization_metric"`
	Sampler            SamplerKind `json:"sampler"`
	NTrials            int    `json:"n_trials"`
}

// MarshalJSON renders the Report per the §6 walk-forward JSON projection:
// strategy, configuration, aggregate_statistics, and one entry per window
// with its train/test period, best parameters, and metrics.
func (r Report) MarshalJSON() ([]byte, error) {
	windows := make([]jsonWindow, len(r.Windows))
	for i, w := range r.Windows {
		var bp strategy.Params
		if w.HasBestParams {
			bp = w.BestParams
		}
		windows[i] = jsonWindow{
			WindowID: w.WindowID,
			Period: jsonWindowPeriod{
				Train: jsonPeriod{Start: w.Train.CalendarStart, End: w.Train.CalendarEnd, Size: w.Train.Size()},
				Test:  jsonPeriod{Start: w.Test.CalendarStart, End: w.Test.CalendarEnd, Size: w.Test.Size()},
			},
			BestParams:         bp,
			TrainMetrics:       w.TrainMetrics,
			TestMetrics:        w.TestMetrics,
			OptimizationTrials: w.OptimizationTrials,
		}
	}

	out := jsonReport{
		Strategy: r.StrategyName,
		Configuration: jsonConfig{
			TrainWindowDays:    r.Config.Window.TrainWindowDays,
			TestWindowDays:     r.Config.Window.TestWindowDays,
			StepDays:           r.Config.Window.StepDays,
			Anchored:           r.Config.Window.Anchored,
			OptimizationMetric: r.Config.OptimizationMetric,
			Sampler:            r.Config.Sampler,
			NTrials:            r.Config.NTrials,
		},
		Aggregate: r.Aggregate,
		Windows:   windows,
		Cancelled: r.Cancelled,
	}
	return json.Marshal(out)
}
