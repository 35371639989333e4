// Package bench generates the fixed-size input buffers used by the line-
// splitting benchmark harness: a 1GiB buffer filled per-stage with 'a'
// bytes and '\n' line boundaries (or, for the "all lines" stage, nothing
// but '\n'), and capped down to a realistic active length before timing.
package bench

import "math/rand"

// BufferSize is the size, in bytes, of the backing buffer passed to
// Prepare. The active length returned by Prepare is capped well below this.
const BufferSize = 1 << 30 // 1GiB

// Stage describes one benchmark stage: a human-readable name and the
// inclusive byte-length range line lengths are drawn from. MinLen == MaxLen
// for the fixed-length stages ("single line" uses the whole active buffer
// as one line, encoded as MinLen == MaxLen == BufferSize). AllNewlines
// selects the "all lines" stage, whose every byte is '\n'.
type Stage struct {
	Name        string
	MinLen      int
	MaxLen      int
	AllNewlines bool
}

// Stages is the fixed benchmark stage table, in the order the harness runs
// them.
var Stages = []Stage{
	{Name: "single line", MinLen: BufferSize, MaxLen: BufferSize},
	{Name: "1-20 byte lines", MinLen: 1, MaxLen: 20},
	{Name: "5-20 byte lines", MinLen: 5, MaxLen: 20},
	{Name: "10-30 byte lines", MinLen: 10, MaxLen: 30},
	{Name: "0-40 byte lines", MinLen: 0, MaxLen: 40},
	{Name: "0-80 byte lines", MinLen: 0, MaxLen: 80},
	{Name: "40-120 byte lines", MinLen: 40, MaxLen: 120},
	{Name: "all lines", AllNewlines: true},
}

// seed is fixed so that every run of the benchmark (and every kernel within
// a run) sees the identical input buffer: the harness must compare every
// kernel's output against the same scalar-oracle result.
const seed = 0x1357

// Active-length caps, mirroring original_source/src/main.rs's
// vec.len().min(256*1024*1024) (most stages) and .min(64*1024*1024) (the
// all-lines stage, where every byte is a line boundary and 256MiB of
// realistic cache pressure would be unrepresentatively slow to verify).
const (
	defaultActiveLen  = 256 * 1024 * 1024 // 256MiB
	allLinesActiveLen = 64 * 1024 * 1024  // 64MiB
)

// Prepare fills buf (the harness passes one of length BufferSize; shorter
// buffers work too) for stage and returns the active length the harness
// should actually time and verify against: buf's full length capped per
// defaultActiveLen/allLinesActiveLen above (a buffer shorter than the cap is
// returned at its full length), matching the original benchmark's realistic-cache-behavior
// requirement. Line boundaries are '\n' placed at a pseudo-random sequence
// of offsets whose gaps fall within [stage.MinLen, stage.MaxLen], mirroring
// the original benchmark's prep_vec_range generator. Unlike the original's
// HashSet-based dedup, gaps are drawn directly and accumulated, which is
// simpler and just as reproducible; see DESIGN.md's Open Question (a)
// decision.
func Prepare(buf []byte, stage Stage) int {
	if stage.AllNewlines {
		for i := range buf {
			buf[i] = '\n'
		}
		return capLen(len(buf), allLinesActiveLen)
	}

	for i := range buf {
		buf[i] = 'a'
	}
	if stage.MinLen == stage.MaxLen && stage.MaxLen >= len(buf) {
		return capLen(len(buf), defaultActiveLen) // single-line stage: no newlines at all
	}
	rng := rand.New(rand.NewSource(seed))
	spanWidth := stage.MaxLen - stage.MinLen + 1
	pos := 0
	for {
		gap := stage.MinLen
		if spanWidth > 1 {
			gap += rng.Intn(spanWidth)
		}
		pos += gap
		if pos >= len(buf) {
			return capLen(len(buf), defaultActiveLen)
		}
		buf[pos] = '\n'
		pos++
	}
}

func capLen(n, cap int) int {
	if n > cap {
		return cap
	}
	return n
}
