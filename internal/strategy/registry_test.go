package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_AllRegisteredNamesConstruct(t *testing.T) {
	for _, name := range Names() {
		s, err := New(name)
		require.NoErrorf(t, err, "New(%q)", name)
		assert.Equal(t, name, s.Name())
	}
}

func TestNew_UnknownNameErrors(t *testing.T) {
	_, err := New("NotAStrategy")
	assert.Error(t, err)
}

func TestNew_DynamicPositionSizingHasDefaultBase(t *testing.T) {
	s, err := New("DynamicPositionSizing")
	require.NoError(t, err)
	dps, ok := s.(DynamicPositionSizing)
	require.True(t, ok)
	assert.NotNil(t, dps.Base)
}

func TestNames_MatchesSevenVariants(t *testing.T) {
	assert.Len(t, Names(), 7)
}
