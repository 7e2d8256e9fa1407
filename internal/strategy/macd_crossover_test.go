package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bikeshrana/quant-research-platform/internal/testutil"
	"github.com/bikeshrana/quant-research-platform/pkg/signal"
)

func TestMACDCrossover_WarmUp(t *testing.T) {
	m := MACDCrossover{}
	p := m.DefaultParams()
	assert.Equal(t, 25+8, m.WarmUp(p)) // slow-1 + signal-1 = 25 + 8
}

func TestMACDCrossover_RejectsInvertedOrder(t *testing.T) {
	m := MACDCrossover{}
	p := m.DefaultParams()
	p["fast"] = 30
	p["slow"] = 10
	bars := testutil.TrendingBars("PETR4", 60, 10, 1)
	_, err := m.Compute(bars, p)
	assert.Error(t, err)
}

func TestMACDCrossover_OscillationProducesCrossovers(t *testing.T) {
	m := MACDCrossover{}
	p := m.DefaultParams()
	bars := testutil.OscillatingBars("PETR4", 150, 100, 20, 40)
	sigs, err := m.Compute(bars, p)
	require.NoError(t, err)

	var entries, exits int
	for _, s := range sigs.All() {
		switch s.Action {
		case signal.EnterLong, signal.EnterShort:
			entries++
		case signal.Exit:
			exits++
		}
	}
	assert.Greater(t, entries, 0, "expected crossovers to produce at least one entry")
}
