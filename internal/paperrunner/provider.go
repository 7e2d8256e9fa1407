package paperrunner

import "github.com/bikeshrana/quant-research-platform/pkg/bar"

// Provider is the external data port the runner polls each tick, re-using
// the same contract the core already defines for backtests: Load returns
// the bars for a symbol/timeframe/range, or bar.ErrNotFound. Grounded on
// the teacher's internal/marketdata.Provider interface, stripped to the
// historical-fetch method only; the streaming Subscribe/Connect surface
// belongs to a live feed this cooperative poll loop does not need.
type Provider = bar.Provider
