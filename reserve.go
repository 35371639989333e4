package linesplit

// This file implements the Go realization of the reservation-window
// discipline described in the kernel family's design notes: before a kernel
// writes N more output elements, it grows the backing array (if needed) once,
// then writes through a re-sliced view of the spare capacity, then commits by
// re-slicing back down to the new length. Go slices already expose spare
// capacity safely via `s[:cap(s)]`, so this needs no `unsafe` and no manual
// pointer bookkeeping — unlike the `_unsafe` kernels' *load*-side pointer
// arithmetic, the *reserve/commit* side never needs to bypass the runtime.

// growLineCap grows out's backing array so it has at least n elements of
// spare capacity beyond its current length, preserving existing contents.
func growLineCap(out [][]byte, n int) [][]byte {
	if cap(out)-len(out) >= n {
		return out
	}
	next := make([][]byte, len(out), 2*(len(out)+n)+16)
	copy(next, out)
	return next
}

// reserveLines grows out (if needed) for n more writes and returns a view
// resliced to full capacity, exposing the spare tail at indices
// [committed, cap) for raw indexed writes. Pass the returned slice's backing
// array's indices directly; call commitLines afterward with the real
// committed length to shrink back down.
func reserveLines(out [][]byte, n int) (grown [][]byte, committed int) {
	committed = len(out)
	grown = growLineCap(out, n)
	return grown[:cap(grown)], committed
}

// commitLines shrinks a reserveLines-returned view down to the real
// committed length after a kernel has written through it.
func commitLines(grown [][]byte, newLen int) [][]byte {
	return grown[:newLen]
}

// resetLines truncates out to zero length while preserving its backing
// array, so the next stage's kernels can reuse the allocation instead of
// paying for a fresh `make` (the Go analogue of the Rust original's
// capacity-preserving `reset_vector`).
func resetLines(out [][]byte) [][]byte {
	return out[:0]
}

// growLowCap is growLineCap's sibling for the compressed family's
// []uint16 low-byte column.
func growLowCap(out []uint16, n int) []uint16 {
	if cap(out)-len(out) >= n {
		return out
	}
	next := make([]uint16, len(out), 2*(len(out)+n)+16)
	copy(next, out)
	return next
}

// reserveLows is reserveLines's sibling for []uint16.
func reserveLows(out []uint16, n int) (grown []uint16, committed int) {
	committed = len(out)
	grown = growLowCap(out, n)
	return grown[:cap(grown)], committed
}

// commitLows is commitLines's sibling for []uint16.
func commitLows(grown []uint16, newLen int) []uint16 {
	return grown[:newLen]
}

// growHighCap is growLineCap's sibling for the compressed family's
// []int high-block-start column.
func growHighCap(out []int, n int) []int {
	if cap(out)-len(out) >= n {
		return out
	}
	next := make([]int, len(out), 2*(len(out)+n)+16)
	copy(next, out)
	return next
}

// resetLineIndex truncates both columns of a LineIndex to zero length while
// preserving their backing arrays.
func resetLineIndex(li *LineIndex) {
	li.Lows = li.Lows[:0]
	li.HighStarts = li.HighStarts[:0]
}
