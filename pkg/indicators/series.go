// Package indicators computes deterministic numeric transforms over a
// bar.Series: EMA, SMA, RSI, ATR, MACD, Bollinger Bands, and ADX. Every
// function here is pure: (bar.Series, params) -> Series, with no internal
// mutable state, so calling the same function twice on the same input
// yields a byte-identical result.
package indicators

// Series holds one value per input bar index, with an explicit warm-up
// count. Positions below WarmUp are undefined; Defined(i) reports this.
type Series struct {
	values []float64
	valid  []bool
	warmUp int
}

func newSeries(n, warmUp int) Series {
	if warmUp > n {
		warmUp = n
	}
	return Series{
		values: make([]float64, n),
		valid:  make([]bool, n),
		warmUp: warmUp,
	}
}

func (s *Series) set(i int, v float64) {
	s.values[i] = v
	s.valid[i] = true
}

// Len returns the number of positions (equal to the input Bar Series length).
func (s Series) Len() int { return len(s.values) }

// WarmUp returns the number of leading undefined positions.
func (s Series) WarmUp() int { return s.warmUp }

// Defined reports whether position i holds a finite value.
func (s Series) Defined(i int) bool { return s.valid[i] }

// At returns the value at position i and whether it is defined. Reading an
// undefined position returns (0, false), never NaN.
func (s Series) At(i int) (float64, bool) {
	if i < 0 || i >= len(s.values) {
		return 0, false
	}
	return s.values[i], s.valid[i]
}

// Values returns the raw backing slice; undefined entries hold zero, which
// callers must not treat as a real zero value without checking Defined.
func (s Series) Values() []float64 { return s.values }
