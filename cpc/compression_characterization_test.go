package cpc

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCompressionCharacterizationSmallSweep runs the benchmarking harness
// with a tiny parameter set, enough to exercise construction, update,
// compress, serialize, deserialize, uncompress, and the equality check in
// one pass without the larger sweeps real benchmarking runs use.
func TestCompressionCharacterizationSmallSweep(t *testing.T) {
	var out bytes.Buffer
	cc := NewCompressionCharacterization(4, 4, 0, 0, 2, 1, 1, &out, nil)
	require.NoError(t, cc.Start())
	assert.Contains(t, out.String(), "Compression Characterization")
	assert.Contains(t, out.String(), "FinFlavor")
}
