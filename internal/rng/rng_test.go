package rng_test

import (
	"testing"

	"github.com/covenhold/warlock/internal/rng"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixedSource(t *testing.T) {
	f := rng.Fixed{Value: 0.1}
	assert.Equal(t, 0.1, f.Float64())
	assert.Equal(t, 0.1, f.Float64())
}

func TestSequenceSourceRepeatsLastValue(t *testing.T) {
	s := &rng.Sequence{Values: []float64{0.1, 0.9}}
	assert.Equal(t, 0.1, s.Float64())
	assert.Equal(t, 0.9, s.Float64())
	assert.Equal(t, 0.9, s.Float64())
}

func TestCryptoSourceFloat64InRange(t *testing.T) {
	var c rng.CryptoSource
	for i := 0; i < 50; i++ {
		v := c.Float64()
		require.GreaterOrEqual(t, v, 0.0)
		require.Less(t, v, 1.0)
	}
}

func TestCryptoSourceIntnRejectsNonPositive(t *testing.T) {
	var c rng.CryptoSource
	_, err := c.Intn(0)
	assert.Error(t, err)
}
