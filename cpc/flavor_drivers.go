package cpc

import "fmt"

// extractPairsFromWindow walks a dense k-row window and returns, in
// ascending (row, col) order, the pairs implied by set bits whose column
// lies in [loCol, hiCol). Mirrors Fm85Compression.java's trickyGetPairsFromWindow,
// specialized to the column range each flavor driver needs.
func extractPairsFromWindow(window []byte, loCol, hiCol int) []int {
	var pairs []int
	for row, b := range window {
		for c := loCol; c < hiCol; c++ {
			if b&(1<<uint(c)) != 0 {
				pairs = append(pairs, makePair(row, c))
			}
		}
	}
	return pairs
}

// sortedTablePairs returns the table's pairs sorted ascending by (row, col).
// Returns nil for an absent or empty table.
func sortedTablePairs(pt *pairTable) []int {
	if pt == nil || pt.numPairs == 0 {
		return nil
	}
	pairs := pt.unwrappingGetItems()
	if len(pairs) > 1 {
		introspectiveInsertionSort(pairs, 0, len(pairs)-1)
	}
	return pairs
}

// rebuildTable constructs a pairTable from a (not necessarily sorted) pair
// slice, the way every flavor's decompress step does after pair-decoding.
func rebuildTable(pairs []int, lgK int) (*pairTable, error) {
	return newInstanceFromPairsArray(pairs, len(pairs), lgK)
}

func compressEmptyFlavor(sk *CpcSketch) (*CpcCompressedState, error) {
	return &CpcCompressedState{
		LgK:          sk.lgK,
		NumCoupons:   sk.numCoupons,
		FiCol:        sk.fiCol,
		WindowOffset: sk.windowOffset,
		MergeFlag:    sk.mergeFlag,
	}, nil
}

func uncompressEmptyFlavor(state *CpcCompressedState, seed uint64) (*CpcSketch, error) {
	sk, err := NewCpcSketch(state.LgK, seed)
	if err != nil {
		return nil, err
	}
	sk.fiCol = state.FiCol
	sk.windowOffset = state.WindowOffset
	sk.mergeFlag = state.MergeFlag
	return sk, nil
}

func compressSparseFlavor(sk *CpcSketch) (*CpcCompressedState, error) {
	pairs := sortedTablePairs(sk.pairTable)
	numPairs := len(pairs)
	state := &CpcCompressedState{
		LgK:          sk.lgK,
		NumCoupons:   sk.numCoupons,
		FiCol:        sk.fiCol,
		WindowOffset: sk.windowOffset,
		MergeFlag:    sk.mergeFlag,
	}
	if numPairs == 0 {
		return state, nil
	}
	k := 1 << uint(sk.lgK)
	numBaseBits := golombChooseNumberOfBaseBits(k+numPairs, numPairs)
	buf := make([]uint32, safeLengthForCompressedPairBuf(k, numPairs, numBaseBits))
	used := compressPairs(pairs, numPairs, numBaseBits, buf)
	state.NumCsv = numPairs
	state.CsvLengthInts = used
	state.CsvStream = buf
	return state, nil
}

func uncompressSparseFlavor(state *CpcCompressedState, seed uint64) (*CpcSketch, error) {
	sk, err := NewCpcSketch(state.LgK, seed)
	if err != nil {
		return nil, err
	}
	sk.numCoupons = state.NumCoupons
	sk.fiCol = state.FiCol
	sk.windowOffset = state.WindowOffset
	sk.mergeFlag = state.MergeFlag

	var pairs []int
	if state.NumCsv > 0 {
		k := 1 << uint(state.LgK)
		numBaseBits := golombChooseNumberOfBaseBits(k+state.NumCsv, state.NumCsv)
		pairs = make([]int, state.NumCsv)
		uncompressPairs(pairs, state.NumCsv, numBaseBits, state.CsvStream)
	}
	table, err := rebuildTable(pairs, state.LgK)
	if err != nil {
		return nil, err
	}
	sk.pairTable = table
	return sk, nil
}

func compressHybridFlavor(sk *CpcSketch) (*CpcCompressedState, error) {
	tablePairs := sortedTablePairs(sk.pairTable)
	windowPairs := extractPairsFromWindow(sk.slidingWindow, 0, 8)
	merged := make([]int, len(tablePairs)+len(windowPairs))
	mergePairs(tablePairs, 0, len(tablePairs), windowPairs, 0, len(windowPairs), merged, 0)

	state := &CpcCompressedState{
		LgK:          sk.lgK,
		NumCoupons:   sk.numCoupons,
		FiCol:        sk.fiCol,
		WindowOffset: sk.windowOffset,
		MergeFlag:    sk.mergeFlag,
	}
	numPairs := len(merged)
	if numPairs == 0 {
		return state, nil
	}
	k := 1 << uint(sk.lgK)
	numBaseBits := golombChooseNumberOfBaseBits(k+numPairs, numPairs)
	buf := make([]uint32, safeLengthForCompressedPairBuf(k, numPairs, numBaseBits))
	used := compressPairs(merged, numPairs, numBaseBits, buf)
	state.NumCsv = numPairs
	state.CsvLengthInts = used
	state.CsvStream = buf
	return state, nil
}

func uncompressHybridFlavor(state *CpcCompressedState, seed uint64) (*CpcSketch, error) {
	sk, err := NewCpcSketch(state.LgK, seed)
	if err != nil {
		return nil, err
	}
	sk.numCoupons = state.NumCoupons
	sk.fiCol = state.FiCol
	sk.windowOffset = state.WindowOffset
	sk.mergeFlag = state.MergeFlag

	k := 1 << uint(state.LgK)
	window := make([]byte, k)
	var tablePairs []int
	if state.NumCsv > 0 {
		numBaseBits := golombChooseNumberOfBaseBits(k+state.NumCsv, state.NumCsv)
		merged := make([]int, state.NumCsv)
		uncompressPairs(merged, state.NumCsv, numBaseBits, state.CsvStream)
		for _, p := range merged {
			row, col := pairRow(p), pairCol(p)
			if col < 8 {
				window[row] |= 1 << uint(col)
			} else {
				tablePairs = append(tablePairs, p)
			}
		}
	}
	table, err := rebuildTable(tablePairs, state.LgK)
	if err != nil {
		return nil, err
	}
	sk.slidingWindow = window
	sk.pairTable = table
	return sk, nil
}

func compressPinnedFlavor(sk *CpcSketch) (*CpcCompressedState, error) {
	phase := determinePseudoPhase(sk.lgK, sk.numCoupons)
	k := 1 << uint(sk.lgK)

	cwBuf := make([]uint32, safeLengthForCompressedWindowBuf(k))
	cwUsed := compressBytes(sk.slidingWindow, phase, cwBuf)

	state := &CpcCompressedState{
		LgK:          sk.lgK,
		NumCoupons:   sk.numCoupons,
		FiCol:        sk.fiCol,
		WindowOffset: sk.windowOffset,
		MergeFlag:    sk.mergeFlag,
		CwStream:     cwBuf,
		CwLengthInts: cwUsed,
	}

	tablePairs := sortedTablePairs(sk.pairTable)
	numPairs := len(tablePairs)
	if numPairs == 0 {
		return state, nil
	}
	shifted := make([]int, numPairs)
	for i, p := range tablePairs {
		rtAssert(pairCol(p) >= 8)
		shifted[i] = p - 8
	}
	numBaseBits := golombChooseNumberOfBaseBits(k+numPairs, numPairs)
	csvBuf := make([]uint32, safeLengthForCompressedPairBuf(k, numPairs, numBaseBits))
	used := compressPairs(shifted, numPairs, numBaseBits, csvBuf)
	state.NumCsv = numPairs
	state.CsvLengthInts = used
	state.CsvStream = csvBuf
	return state, nil
}

func uncompressPinnedFlavor(state *CpcCompressedState, seed uint64) (*CpcSketch, error) {
	sk, err := NewCpcSketch(state.LgK, seed)
	if err != nil {
		return nil, err
	}
	sk.numCoupons = state.NumCoupons
	sk.fiCol = state.FiCol
	sk.windowOffset = state.WindowOffset
	sk.mergeFlag = state.MergeFlag

	phase := determinePseudoPhase(state.LgK, state.NumCoupons)
	k := 1 << uint(state.LgK)
	window := make([]byte, k)
	uncompressBytes(window, phase, state.CwStream)

	var tablePairs []int
	if state.NumCsv > 0 {
		numBaseBits := golombChooseNumberOfBaseBits(k+state.NumCsv, state.NumCsv)
		shifted := make([]int, state.NumCsv)
		uncompressPairs(shifted, state.NumCsv, numBaseBits, state.CsvStream)
		tablePairs = make([]int, state.NumCsv)
		for i, p := range shifted {
			tablePairs[i] = p + 8
		}
	}
	table, err := rebuildTable(tablePairs, state.LgK)
	if err != nil {
		return nil, err
	}
	sk.slidingWindow = window
	sk.pairTable = table
	return sk, nil
}

func compressSlidingFlavor(sk *CpcSketch) (*CpcCompressedState, error) {
	phase := determinePseudoPhase(sk.lgK, sk.numCoupons)
	k := 1 << uint(sk.lgK)
	offset := sk.windowOffset

	cwBuf := make([]uint32, safeLengthForCompressedWindowBuf(k))
	cwUsed := compressBytes(sk.slidingWindow, phase, cwBuf)

	state := &CpcCompressedState{
		LgK:          sk.lgK,
		NumCoupons:   sk.numCoupons,
		FiCol:        sk.fiCol,
		WindowOffset: sk.windowOffset,
		MergeFlag:    sk.mergeFlag,
		CwStream:     cwBuf,
		CwLengthInts: cwUsed,
	}

	tablePairs := sortedTablePairs(sk.pairTable)
	numPairs := len(tablePairs)
	if numPairs == 0 {
		return state, nil
	}
	perm := &columnPermutationsForEncoding[phase]
	transformed := make([]int, numPairs)
	for i, p := range tablePairs {
		row, col := pairRow(p), pairCol(p)
		cPrime := ((col + 56) - offset) & 63
		rtAssert(cPrime >= 0 && cPrime < 56)
		transformed[i] = makePair(row, int(perm[cPrime]))
	}
	introspectiveInsertionSort(transformed, 0, numPairs-1)

	numBaseBits := golombChooseNumberOfBaseBits(k+numPairs, numPairs)
	csvBuf := make([]uint32, safeLengthForCompressedPairBuf(k, numPairs, numBaseBits))
	used := compressPairs(transformed, numPairs, numBaseBits, csvBuf)
	state.NumCsv = numPairs
	state.CsvLengthInts = used
	state.CsvStream = csvBuf
	return state, nil
}

func uncompressSlidingFlavor(state *CpcCompressedState, seed uint64) (*CpcSketch, error) {
	sk, err := NewCpcSketch(state.LgK, seed)
	if err != nil {
		return nil, err
	}
	sk.numCoupons = state.NumCoupons
	sk.fiCol = state.FiCol
	sk.windowOffset = state.WindowOffset
	sk.mergeFlag = state.MergeFlag

	phase := determinePseudoPhase(state.LgK, state.NumCoupons)
	k := 1 << uint(state.LgK)
	offset := state.WindowOffset
	window := make([]byte, k)
	uncompressBytes(window, phase, state.CwStream)

	var tablePairs []int
	if state.NumCsv > 0 {
		numBaseBits := golombChooseNumberOfBaseBits(k+state.NumCsv, state.NumCsv)
		transformed := make([]int, state.NumCsv)
		uncompressPairs(transformed, state.NumCsv, numBaseBits, state.CsvStream)
		invPerm := &columnPermutationsForDecoding[phase]
		tablePairs = make([]int, state.NumCsv)
		for i, p := range transformed {
			row, permCol := pairRow(p), pairCol(p)
			cPrime := int(invPerm[permCol])
			col := (cPrime + offset + 8) & 63
			tablePairs[i] = makePair(row, col)
		}
	}
	table, err := rebuildTable(tablePairs, state.LgK)
	if err != nil {
		return nil, err
	}
	sk.slidingWindow = window
	sk.pairTable = table
	return sk, nil
}

type flavorDriver struct {
	compress   func(*CpcSketch) (*CpcCompressedState, error)
	decompress func(*CpcCompressedState, uint64) (*CpcSketch, error)
}

var flavorDrivers = map[cpcFlavor]flavorDriver{
	flavor_empty:   {compressEmptyFlavor, uncompressEmptyFlavor},
	flavor_sparse:  {compressSparseFlavor, uncompressSparseFlavor},
	flavor_hybrid:  {compressHybridFlavor, uncompressHybridFlavor},
	flavor_pinned:  {compressPinnedFlavor, uncompressPinnedFlavor},
	flavor_sliding: {compressSlidingFlavor, uncompressSlidingFlavor},
}

var errUnknownFlavor = fmt.Errorf("cpc: unknown sketch flavor")
