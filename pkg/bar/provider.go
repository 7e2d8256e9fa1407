package bar

import (
	"context"
	"fmt"
	"time"

	"github.com/bikeshrana/quant-research-platform/internal/quanterrors"
)

// Provider is the BarSeriesProvider port. The core never assumes a
// particular backing store; CSV files, a columnar database, or an
// in-process buffer all satisfy it.
type Provider interface {
	Load(ctx context.Context, symbol, timeframe string, start, end time.Time) (Series, error)
}

// ErrNotFound is returned by a Provider when no bars exist for the
// requested symbol/timeframe/range. It is an InvalidInput-adjacent but
// distinct outcome: callers should treat it as "no data," not malformed
// input.
var ErrNotFound = quanterrors.New(quanterrors.ProviderErrorKind, "no bars found for request")

// MemoryProvider is a reference Provider backed by an in-memory map, used in
// tests and by callers who already have bars loaded (e.g. from a CSV
// ingest pipeline outside this package's scope).
type MemoryProvider struct {
	series map[string]Series
}

// NewMemoryProvider builds an empty MemoryProvider; Put adds series to it,
// keyed by "symbol:timeframe".
func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{series: make(map[string]Series)}
}

func (p *MemoryProvider) Put(s Series) {
	p.series[key(s.Symbol(), s.Timeframe())] = s
}

func (p *MemoryProvider) Load(_ context.Context, symbol, timeframe string, start, end time.Time) (Series, error) {
	s, ok := p.series[key(symbol, timeframe)]
	if !ok {
		return Series{}, ErrNotFound
	}
	sliced := s.SliceByTime(start, end)
	if sliced.Len() == 0 {
		return Series{}, ErrNotFound
	}
	return sliced, nil
}

func key(symbol, timeframe string) string {
	return fmt.Sprintf("%s:%s", symbol, timeframe)
}
