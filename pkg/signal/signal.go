// Package signal defines the Signal type strategies emit and the Backtest
// Engine consumes: a bar-indexed, tagged trading instruction with optional
// protective prices.
package signal

// Action is the tagged instruction a Signal carries at a given bar.
type Action string

const (
	EnterLong Action = "ENTER_LONG"
	EnterShort Action = "ENTER_SHORT"
	Exit       Action = "EXIT"
	Hold       Action = "HOLD"
)

// Signal is a strategy's output at one bar index. StopPrice and TargetPrice
// are zero when unset; SizeHint is a strategy-suggested sizing fraction
// (DynamicPositionSizing sets it). The Backtest Engine does not read it and
// always applies its own position sizing.
type Signal struct {
	BarIndex     int
	Action       Action
	RefPrice     float64
	StopPrice    float64
	HasStop      bool
	TargetPrice  float64
	HasTarget    bool
	SizeHint     float64
	HasSizeHint  bool
	Strength     float64 // in [0,1]
}

// Series is a Signal sequence aligned one-to-one with a bar.Series: index i
// of Series describes the action a strategy takes (or declines to take) at
// bar i.
type Series struct {
	signals []Signal
}

// NewSeries builds a Series defaulting every bar to Hold, then lets the
// caller overwrite specific indices via Set.
func NewSeries(n int) Series {
	s := Series{signals: make([]Signal, n)}
	for i := range s.signals {
		s.signals[i] = Signal{BarIndex: i, Action: Hold}
	}
	return s
}

func (s *Series) Set(i int, sig Signal) {
	sig.BarIndex = i
	s.signals[i] = sig
}

func (s Series) At(i int) Signal { return s.signals[i] }
func (s Series) Len() int        { return len(s.signals) }
func (s Series) All() []Signal   { return s.signals }
