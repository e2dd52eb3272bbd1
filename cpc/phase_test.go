package cpc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeterminePseudoPhaseRange(t *testing.T) {
	for lgK := minLgK; lgK <= 12; lgK++ {
		k := uint64(1) << uint(lgK)
		for c := uint64(0); c < k*4; c += k / 16 {
			phase := determinePseudoPhase(lgK, c)
			assert.GreaterOrEqual(t, phase, 0)
			assert.Less(t, phase, 22)
		}
	}
}

func TestDeterminePseudoPhaseSteadyStateUsesTopNibble(t *testing.T) {
	lgK := 10
	k := uint64(1) << uint(lgK)
	// Past the midrange cutoff (1000c >= 2375k), phase is the top nibble of c.
	c := (3 * k) // well past 2375k/1000
	phase := determinePseudoPhase(lgK, c)
	expected := int((c >> uint(lgK-4)) & 15)
	assert.Equal(t, expected, phase)
}

func TestDeterminePseudoPhaseMidrangeThresholds(t *testing.T) {
	lgK := 12
	k := uint64(1) << uint(lgK)
	assert.Equal(t, 16, determinePseudoPhase(lgK, 0))
	// 4c < 3k
	assert.Equal(t, 16, determinePseudoPhase(lgK, k/2))
	// 10c < 11k
	assert.Equal(t, 17, determinePseudoPhase(lgK, k))
	// 100c < 132k
	assert.Equal(t, 18, determinePseudoPhase(lgK, 5000))
	// 3c < 5k
	assert.Equal(t, 19, determinePseudoPhase(lgK, 6000))
	// 1000c < 1965k
	assert.Equal(t, 20, determinePseudoPhase(lgK, 7000))
	// 1000c < 2275k
	assert.Equal(t, 21, determinePseudoPhase(lgK, 9000))
	// still midrange (1000c < 2375k) but past every threshold
	assert.Equal(t, 6, determinePseudoPhase(lgK, 9500))
}
