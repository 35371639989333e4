// Package linesplit implements a family of newline-scanning kernels over a
// contiguous byte buffer, in two output flavors: a slice family producing
// zero-copy [][]byte views, and a compressed family producing a LineIndex.
// A scalar oracle in each family is always compiled; SIMD-accelerated
// kernels additionally register themselves when built with
// GOEXPERIMENT=simd on amd64.
package linesplit

// Split returns the lines of input, split on '\n'. Each returned slice is a
// zero-copy view into input: the caller must not mutate input while holding
// onto the result, and must not retain the result past input's own
// lifetime. The trailing '\n' is not included in the line it terminates; a
// final unterminated fragment (no trailing '\n') is still returned as a
// line, while an input ending in '\n' gets no empty trailing line.
//
// Split is the scalar reference implementation: every SIMD kernel in this
// package must agree with it byte-for-byte for every input.
func Split(input []byte) [][]byte {
	var out [][]byte
	SplitInPlace(input, &out)
	return out
}

// SplitInPlace is Split's reusable-buffer sibling: *out is truncated (not
// reallocated, when it already has enough capacity) and refilled. Passing
// the same *out across repeated calls avoids repeated allocation, mirroring
// spec's capacity-pooling requirement for the benchmark harness.
func SplitInPlace(input []byte, out *[][]byte) {
	lines := resetLines(*out)
	start := 0
	for i := 0; i < len(input); i++ {
		if input[i] == '\n' {
			lines = appendLine(lines, input[start:i])
			start = i + 1
		}
	}
	if start < len(input) {
		lines = appendLine(lines, input[start:])
	}
	*out = lines
}

// appendLine appends a single line view to lines, reserving capacity one
// element at a time. Kernels with a known reservation window (see
// reserve.go) reserve many elements at once instead; the scalar oracle has
// no such window because it cannot predict the line count in advance
// without a first pass.
func appendLine(lines [][]byte, line []byte) [][]byte {
	grown, committed := reserveLines(lines, 1)
	grown[committed] = line
	return commitLines(grown, committed+1)
}
