package cpc

// compressBytes Huffman-encodes byteArray using the encode table for the
// given pseudo-phase, padding with 11 trailing zero bits so the decoder's
// 12-bit peek never reads past the real data. Returns the number of words
// used in compressedWords, which must be sized by
// safeLengthForCompressedWindowBuf(len(byteArray)).
func compressBytes(byteArray []byte, phase int, compressedWords []uint32) int {
	enc := &encodingTablesForHighEntropyByte[phase]
	w := newBitWriter(compressedWords)
	for _, b := range byteArray {
		code := enc[b]
		length := uint(code >> 12)
		value := uint32(code & 0x0FFF)
		w.write(value, length)
	}
	w.write(0, 11)
	return w.flush()
}

// uncompressBytes decodes exactly len(byteArray) bytes from compressedWords
// using the decode table for the given pseudo-phase, writing results into
// byteArray in place.
func uncompressBytes(byteArray []byte, phase int, compressedWords []uint32) {
	dec := &decodingTablesForHighEntropyByte[phase]
	r := newBitReader(compressedWords)
	for i := range byteArray {
		r.ensure(12)
		entry := dec[r.peek(12)]
		length := uint(entry >> 8)
		byteArray[i] = byte(entry & 0xFF)
		r.consume(length)
	}
}

// safeLengthForCompressedWindowBuf returns a word count always sufficient to
// hold a Huffman-compressed window of k bytes under any phase's table.
func safeLengthForCompressedWindowBuf(k int) int {
	return (12*k + 11 + 31) / 32
}
