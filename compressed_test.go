package linesplit

import (
	"math/rand"
	"testing"
)

func offsetsOf(s string) []int {
	var out []int
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			out = append(out, i)
		}
	}
	return out
}

func TestIterBoundaryCases(t *testing.T) {
	cases := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"no newline", "abc"},
		{"single newline", "\n"},
		{"trailing newline", "abc\n"},
		{"leading newline", "\nabc"},
		{"consecutive newlines", "a\n\n\nb"},
		{"spans one block boundary", string(makeBlockSpanningInput())},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var li LineIndex
			Iter([]byte(c.input), &li)
			got := li.Offsets()
			want := offsetsOf(c.input)
			if !intSlicesEqual(got, want) {
				t.Errorf("Iter(%.20q...) offsets = %v, want %v", c.input, got, want)
			}
		})
	}
}

// makeBlockSpanningInput builds an input with newlines just before, at, and
// just after a blockSize boundary, to exercise HighStarts bookkeeping across
// blocks.
func makeBlockSpanningInput() []byte {
	n := blockSize + 64
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = 'a'
	}
	for _, p := range []int{blockSize - 2, blockSize - 1, blockSize, blockSize + 1, blockSize + 10} {
		buf[p] = '\n'
	}
	return buf
}

func TestLineIndexReset(t *testing.T) {
	var li LineIndex
	Iter([]byte("a\nb\nc\n"), &li)
	if len(li.Lows) == 0 {
		t.Fatal("expected non-empty Lows before Reset")
	}
	lowsCap, highCap := cap(li.Lows), cap(li.HighStarts)
	li.Reset()
	if len(li.Lows) != 0 || len(li.HighStarts) != 0 {
		t.Errorf("Reset left non-empty state: lows=%v highStarts=%v", li.Lows, li.HighStarts)
	}
	if cap(li.Lows) != lowsCap || cap(li.HighStarts) != highCap {
		t.Errorf("Reset reallocated backing arrays")
	}
}

func TestLineIndexEqual(t *testing.T) {
	var a, b LineIndex
	Iter([]byte("a\nbb\nccc\n"), &a)
	Iter([]byte("a\nbb\nccc\n"), &b)
	if !a.Equal(&b) {
		t.Errorf("expected equal LineIndex values for identical input")
	}
	Iter([]byte("a\nbb\ncccc\n"), &b)
	if a.Equal(&b) {
		t.Errorf("expected unequal LineIndex values for different input")
	}
}

func TestCompressedProperty(t *testing.T) {
	probs := []float64{0, 0.01, 0.1, 0.5, 1.0}
	rng := rand.New(rand.NewSource(42))

	for _, p := range probs {
		for trial := 0; trial < 20; trial++ {
			n := rng.Intn(500)
			input := make([]byte, n)
			for i := range input {
				if rng.Float64() < p {
					input[i] = '\n'
				} else {
					input[i] = 'a'
				}
			}
			var oracle LineIndex
			Iter(input, &oracle)

			for _, k := range CompressedKernels() {
				if !k.Check() {
					continue
				}
				var out LineIndex
				k.Kernel(input, &out)
				if !oracle.Equal(&out) {
					t.Fatalf("kernel %q disagreed with scalar oracle for p=%v trial=%d input=%q:\ngot  %v\nwant %v",
						k.Name, p, trial, input, out.Offsets(), oracle.Offsets())
				}
			}
		}
	}
}

func intSlicesEqual(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
