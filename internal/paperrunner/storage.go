package paperrunner

import (
	"context"
	"sync"
	"time"

	"github.com/bikeshrana/quant-research-platform/internal/backtest"
)

// Position is an open paper position as persisted through the Storage
// port, mirroring backtest.openPosition's fields plus the identifiers a
// storage-backed runner needs to survive a restart.
type Position struct {
	ID          string
	Symbol      string
	Side        backtest.Side
	EntryTime   time.Time
	EntryPrice  float64
	Qty         float64
	StopPrice   float64
	HasStop     bool
	TargetPrice float64
	HasTarget   bool
}

// EquitySnapshot is the mark-to-market point recorded alongside a closed
// trade.
type EquitySnapshot struct {
	Time   time.Time
	Equity float64
}

// Storage is the Paper Runner Storage port: two writes and one read, each
// idempotent so replaying an write with the same id is a no-op.
type Storage interface {
	OpenPosition(ctx context.Context, pos Position) error
	ClosePosition(ctx context.Context, positionID string, trade backtest.Trade, equity EquitySnapshot) error
	LoadOpenPositions(ctx context.Context) ([]Position, error)
}

// MemoryStorage is an in-memory reference Storage, used in tests and by
// callers who do not need durability across restarts.
type MemoryStorage struct {
	mu     sync.Mutex
	open   map[string]Position
	closed map[string]bool
	trades []backtest.Trade
	equity []EquitySnapshot
}

// NewMemoryStorage builds an empty MemoryStorage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		open:   make(map[string]Position),
		closed: make(map[string]bool),
	}
}

func (s *MemoryStorage) OpenPosition(_ context.Context, pos Position) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.open[pos.ID]; ok {
		return nil
	}
	s.open[pos.ID] = pos
	return nil
}

func (s *MemoryStorage) ClosePosition(_ context.Context, positionID string, trade backtest.Trade, equity EquitySnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed[positionID] {
		return nil
	}
	delete(s.open, positionID)
	s.closed[positionID] = true
	s.trades = append(s.trades, trade)
	s.equity = append(s.equity, equity)
	return nil
}

func (s *MemoryStorage) LoadOpenPositions(_ context.Context) ([]Position, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Position, 0, len(s.open))
	for _, p := range s.open {
		out = append(out, p)
	}
	return out, nil
}
