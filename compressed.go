package linesplit

// blockSize is the compressed family's block granularity: every newline
// offset is stored as a 16-bit "low" part (its position within its 64KiB
// block) rather than a full-width absolute offset, which is what makes the
// compressed family's output dramatically smaller than the slice family's
// for large inputs. HighStarts recovers the missing high bits: HighStarts[b]
// is the index into Lows where block b's entries begin, so an entry at
// Lows[k] with HighStarts[b] <= k < HighStarts[b+1] has absolute offset
// b*blockSize + int(Lows[k]).
const blockSize = 1 << 16 // 64KiB

// LineIndex is the compressed family's output: newline offsets recorded as
// (block, low) pairs via a CSR-style (compressed sparse row) layout instead
// of one full-width int per line. HighStarts has exactly one entry per 64KiB
// block of the input, regardless of whether that block contains any
// newlines: HighStarts[b] is the index into Lows where block b's entries
// begin, and block b's entries run from Lows[HighStarts[b]] up to (but not
// including) Lows[HighStarts[b+1]], or up to len(Lows) for the last block.
type LineIndex struct {
	Lows       []uint16
	HighStarts []int
}

// Reset truncates li to empty while preserving its backing arrays, so a
// LineIndex can be reused across benchmark stages without reallocating.
func (li *LineIndex) Reset() {
	resetLineIndex(li)
}

// Equal reports whether li and other encode the same set of newline
// offsets. Every kernel in the compressed family must agree with Iter
// (the scalar oracle) under Equal for every input.
func (li *LineIndex) Equal(other *LineIndex) bool {
	if len(li.Lows) != len(other.Lows) || len(li.HighStarts) != len(other.HighStarts) {
		return false
	}
	for i := range li.Lows {
		if li.Lows[i] != other.Lows[i] {
			return false
		}
	}
	for i := range li.HighStarts {
		if li.HighStarts[i] != other.HighStarts[i] {
			return false
		}
	}
	return true
}

// Offsets decompresses li back into absolute newline offsets, for testing
// and for reconstructing line views from a LineIndex.
func (li *LineIndex) Offsets() []int {
	out := make([]int, 0, len(li.Lows))
	for b := range li.HighStarts {
		start := li.HighStarts[b]
		end := len(li.Lows)
		if b+1 < len(li.HighStarts) {
			end = li.HighStarts[b+1]
		}
		for _, low := range li.Lows[start:end] {
			out = append(out, b*blockSize+int(low))
		}
	}
	return out
}

// Iter is the compressed family's scalar reference implementation: it walks
// input one 64KiB block at a time, pushing exactly one HighStarts entry per
// block before scanning that block for '\n' bytes, regardless of whether the
// block turns out to contain any. Every SIMD kernel in the compressed family
// must agree with Iter byte-for-byte (after decompression) for every input.
func Iter(input []byte, out *LineIndex) {
	resetLineIndex(out)
	for blockStart := 0; blockStart < len(input); blockStart += blockSize {
		out.HighStarts = appendHigh(out.HighStarts, len(out.Lows))
		blockEnd := blockStart + blockSize
		if blockEnd > len(input) {
			blockEnd = len(input)
		}
		scanBlockRemainder(input, blockStart, blockEnd, blockStart, out)
	}
}

// scanBlockRemainder scans input[start:blockEnd] one byte at a time,
// appending each '\n' offset (measured relative to blockStart, the start of
// its enclosing 64KiB block) into out. It never touches out.HighStarts: the
// caller is responsible for having already pushed the current block's
// boundary entry. It is the scalar byte-at-a-time loop shared by Iter and by
// every SIMD compressed kernel's remainder handling once fewer than one full
// SIMD chunk of a block's bytes remain.
func scanBlockRemainder(input []byte, start, blockEnd, blockStart int, out *LineIndex) {
	for i := start; i < blockEnd; i++ {
		if input[i] == '\n' {
			out.Lows = appendLow(out.Lows, uint16(i-blockStart))
		}
	}
}

// appendLow appends one low-part entry, reserving capacity one at a time.
func appendLow(lows []uint16, low uint16) []uint16 {
	grown, committed := reserveLows(lows, 1)
	grown[committed] = low
	return commitLows(grown, committed+1)
}

// appendHigh appends one HighStarts boundary, reserving capacity one at a
// time.
func appendHigh(highStarts []int, value int) []int {
	grown := growHighCap(highStarts, 1)
	return append(grown, value)
}
