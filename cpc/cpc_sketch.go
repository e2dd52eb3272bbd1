/*
 * Licensed to the Apache Software Foundation (ASF) under one or more
 * contributor license agreements.  See the NOTICE file distributed with
 * this work for additional information regarding copyright ownership.
 * The ASF licenses this file to You under the Apache License, Version 2.0
 * (the "License"); you may not use this file except in compliance with
 * the License.  You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package cpc

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/bits"
	"unsafe"

	"github.com/go-cpc/cpc-codec/internal"
	"github.com/twmb/murmur3"
)

const (
	minLgK = 4
	maxLgK = 26
)

type CpcSketch struct {
	seed uint64

	//common variables
	lgK        int
	numCoupons uint64 // The number of coupons collected so far.
	mergeFlag  bool   // Is the sketch the result of merging?
	fiCol      int    // First Interesting Column. This is part of a speed optimization.

	windowOffset  int
	slidingWindow []byte     //either null or size K bytes
	pairTable     *pairTable //for sparse and surprising values, either null or variable size

	//The following variables are only valid in HIP varients
	kxp         float64 //used with HIP
	hipEstAccum float64 //used with HIP

	scratch [8]byte
}

func NewCpcSketch(lgK int, seed uint64) (*CpcSketch, error) {
	if err := checkLgK(lgK); err != nil {
		return nil, err
	}

	return &CpcSketch{
		lgK:  lgK,
		seed: seed,
		kxp:  float64(int64(1) << lgK),
	}, nil
}

func (c *CpcSketch) UpdateUint64(datum uint64) error {
	binary.LittleEndian.PutUint64(c.scratch[:], datum)
	hashLo, hashHi := hash(c.scratch[:], c.seed)
	return c.hashUpdate(hashLo, hashHi)
}

func (c *CpcSketch) UpdateInt64(datum int64) error {
	return c.UpdateUint64(uint64(datum))
}

func (c *CpcSketch) UpdateFloat64(datum float64) error {
	binary.LittleEndian.PutUint64(c.scratch[:], math.Float64bits(datum))
	hashLo, hashHi := hash(c.scratch[:], c.seed)
	return c.hashUpdate(hashLo, hashHi)
}

func (c *CpcSketch) UpdateSlice(datum []byte) error {
	hashLo, hashHi := hash(datum, c.seed)
	return c.hashUpdate(hashLo, hashHi)
}

func (c *CpcSketch) UpdateInt64Slice(datum []int64) error {
	hashLo, hashHi := internal.HashInt64SliceMurmur3(datum, 0, len(datum), c.seed)
	return c.hashUpdate(hashLo, hashHi)
}

func (c *CpcSketch) UpdateString(datum string) error {
	// get a slice to the string data (avoiding a copy to heap)
	return c.UpdateSlice(unsafe.Slice(unsafe.StringData(datum), len(datum)))
}

func (c *CpcSketch) hashUpdate(hash0, hash1 uint64) error {
	col := 64 - bits.LeadingZeros64(hash1)
	if col < c.fiCol {
		return nil // important speed optimization
	}
	if col > 63 {
		col = 63 // clip so that 0 <= col <= 63
	}
	if c.numCoupons == 0 {
		err := c.promoteEmptyToSparse()
		if err != nil {
			return err
		}
	}
	k := uint64(1) << c.lgK
	row := int(hash0 & (k - 1))
	rowCol := (row << 6) | col

	// The pair table marks empty slots with -1. rowCol is a non-negative Go int
	// (the pair (2^26 - 1, 63) is 2^32 - 1, not -1), so this check never fires
	// and every (row, col) cell keeps its own pair value.
	if rowCol == -1 {
		rowCol ^= 1 << 6 //set the LSB of row to 0
	}

	if (c.numCoupons << 5) < (uint64(3) * k) {
		return c.updateSparse(rowCol)
	}
	return c.updateWindowed(rowCol)
}

func (c *CpcSketch) promoteEmptyToSparse() error {
	pairTable, err := NewPairTable(2, 6+c.lgK)
	if err != nil {
		return err
	}
	c.pairTable = pairTable
	return nil
}

func (c *CpcSketch) updateSparse(rowCol int) error {
	k := uint64(1) << c.lgK
	c32pre := c.numCoupons << 5
	if c32pre >= (3 * k) {
		// C >= 3K/32, in other words, flavor != SPARSE
		return fmt.Errorf("C >= 3K/32")
	}
	if c.pairTable == nil {
		return fmt.Errorf("pairTable is nil")
	}
	isNovel, err := c.pairTable.maybeInsert(rowCol)
	if err != nil {
		return err
	}
	if isNovel {
		c.numCoupons++
		c32post := c.numCoupons << 5
		if c32post >= (3 * k) {
			if err := c.promoteSparseToWindowed(); err != nil {
				return err
			}
		}
	}
	return nil
}

// promoteSparseToWindowed allocates the k-byte sliding window once the
// sketch crosses into Hybrid flavor and re-partitions the existing pairs at
// once: columns [0,8) become window bits (offset 0), and the remaining pairs
// go into a new pair table sized for their count.
func (c *CpcSketch) promoteSparseToWindowed() error {
	k := int(1) << uint(c.lgK)
	c.slidingWindow = make([]byte, k)
	c.windowOffset = 0

	var highPairs []int
	if c.pairTable != nil {
		for _, item := range c.pairTable.unwrappingGetItems() {
			row, col := item>>6, item&0x3F
			if col < 8 {
				c.slidingWindow[row] |= 1 << uint(col)
			} else {
				highPairs = append(highPairs, item)
			}
		}
	}
	newTable, err := newInstanceFromPairsArray(highPairs, len(highPairs), c.lgK)
	if err != nil {
		return err
	}
	c.pairTable = newTable
	return nil
}

func countLowColumnPairs(pt *pairTable) int {
	n := 0
	for _, item := range pt.unwrappingGetItems() {
		if item&0x3F < 8 {
			n++
		}
	}
	return n
}

// updateWindowed routes a coupon once the sketch has a sliding window:
// columns within [windowOffset, windowOffset+8) set a window bit directly;
// everything else becomes (or remains) a surprising value in the pair
// table. moveWindowIfNeeded keeps fiCol/windowOffset advancing as the window
// fills, matching the Hybrid -> Pinned -> Sliding flavor progression.
func (c *CpcSketch) updateWindowed(rowCol int) error {
	row := rowCol >> 6
	col := rowCol & 0x3F
	lo := c.windowOffset
	if col >= lo && col < lo+8 {
		bit := byte(1) << uint(col-lo)
		if c.slidingWindow[row]&bit == 0 {
			c.slidingWindow[row] |= bit
			c.numCoupons++
		}
		return nil
	}
	isNovel, err := c.pairTable.maybeInsert(rowCol)
	if err != nil {
		return err
	}
	if isNovel {
		c.numCoupons++
	}
	// The window only starts sliding once the sketch has grown past Pinned;
	// compressPinnedFlavor assumes windowOffset stays 0 for its whole range.
	if c.getFlavor() != flavor_sliding {
		return nil
	}
	return c.moveWindowIfNeeded()
}

// moveWindowIfNeeded advances windowOffset past however many low columns are
// already set in every row, sliding surprising values that fall into the
// newly-vacated window columns back into the window and re-homing the rest
// of the table unchanged. Table entries always satisfy
// col NOT IN [windowOffset, windowOffset+8); this is what lets the Sliding
// flavor's wraparound column transform (flavor_drivers.go) stay a bijection.
// This is a minimal analogue of the original's window-sliding step, scoped
// only to what is needed to exercise every flavor driver; it carries no HIP
// bookkeeping.
func (c *CpcSketch) moveWindowIfNeeded() error {
	if c.windowOffset >= 56 {
		return nil
	}
	minTrailingOnes := 8
	for _, b := range c.slidingWindow {
		ones := bits.TrailingZeros8(^b)
		if ones < minTrailingOnes {
			minTrailingOnes = ones
		}
	}
	shift := minTrailingOnes
	if maxShift := 56 - c.windowOffset; shift > maxShift {
		shift = maxShift
	}
	if shift <= 0 {
		return nil
	}

	for row := range c.slidingWindow {
		c.slidingWindow[row] >>= uint(shift)
	}
	c.windowOffset += shift
	c.fiCol = c.windowOffset

	oldTable := c.pairTable
	newTable, err := NewPairTable(oldTable.lgSizeInts, oldTable.validBits)
	if err != nil {
		return err
	}
	c.pairTable = newTable
	hi := c.windowOffset + 8
	for _, item := range oldTable.unwrappingGetItems() {
		row, col := item>>6, item&0x3F
		if col >= c.windowOffset && col < hi {
			c.slidingWindow[row] |= 1 << uint(col-c.windowOffset)
			continue
		}
		if err := c.pairTable.mustInsert(item); err != nil {
			return err
		}
		c.pairTable.numPairs++
	}
	return nil
}

func hash(bs []byte, seed uint64) (uint64, uint64) {
	return murmur3.SeedSum128(seed, seed, bs)
}

func (c *CpcSketch) getFlavor() cpcFlavor {
	return determineFlavor(c.lgK, int64(c.numCoupons))
}

// Reset restores the sketch to its initial empty state, as if newly
// constructed with the same lgK and seed.
func (c *CpcSketch) Reset() {
	c.reset()
}

func (c *CpcSketch) reset() {
	c.numCoupons = 0
	c.mergeFlag = false
	c.fiCol = 0
	c.windowOffset = 0
	c.slidingWindow = nil
	c.pairTable = nil
	c.kxp = float64(int64(1) << c.lgK)
	c.hipEstAccum = 0
}
