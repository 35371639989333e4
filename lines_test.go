package linesplit

import (
	"bytes"
	"math/rand"
	"testing"
)

func TestSplitBoundaryCases(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty", "", nil},
		{"no newline", "abc", []string{"abc"}},
		{"single newline", "\n", []string{""}},
		{"trailing newline", "abc\n", []string{"abc"}},
		{"leading newline", "\nabc", []string{"", "abc"}},
		{"consecutive newlines", "a\n\n\nb", []string{"a", "", "", "b"}},
		{"only newlines", "\n\n\n", []string{"", "", ""}},
		{"one line no trailing newline after one with", "a\nb", []string{"a", "b"}},
		{"single byte line", "a", []string{"a"}},
		{"single byte then newline", "a\n", []string{"a"}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := Split([]byte(c.input))
			if !linesEqualStrings(got, c.want) {
				t.Errorf("Split(%q) = %q, want %q", c.input, linesToStrings(got), c.want)
			}
		})
	}
}

func TestSplitInPlaceReusesBuffer(t *testing.T) {
	var out [][]byte
	SplitInPlace([]byte("a\nb\nc"), &out)
	if len(out) != 3 {
		t.Fatalf("first call: got %d lines, want 3", len(out))
	}
	prevCap := cap(out)

	SplitInPlace([]byte("x\ny"), &out)
	if len(out) != 2 {
		t.Fatalf("second call: got %d lines, want 2", len(out))
	}
	if cap(out) != prevCap {
		t.Errorf("SplitInPlace reallocated when shrinking: cap changed from %d to %d", prevCap, cap(out))
	}
	if string(out[0]) != "x" || string(out[1]) != "y" {
		t.Errorf("second call produced stale data: got %q", linesToStrings(out))
	}
}

// TestSplitProperty checks every available slice kernel agrees with the
// scalar oracle across randomly generated {a, '\n'} inputs at a range of
// newline densities, matching the boundary-case table's intent but over
// many more inputs. No property-testing library exists anywhere in the
// retrieval pack, so this uses a seeded math/rand generator directly.
func TestSplitProperty(t *testing.T) {
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
			oracle := Split(input)

			for _, k := range SliceKernels() {
				if !k.Check() {
					continue
				}
				var out [][]byte
				k.Kernel(input, &out)
				if !linesEqual(oracle, out) {
					t.Fatalf("kernel %q disagreed with scalar oracle for p=%v trial=%d input=%q:\ngot  %q\nwant %q",
						k.Name, p, trial, input, linesToStrings(out), linesToStrings(oracle))
				}
			}
		}
	}
}

func linesEqual(a, b [][]byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !bytes.Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

func linesEqualStrings(got [][]byte, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if string(got[i]) != want[i] {
			return false
		}
	}
	return true
}

func linesToStrings(lines [][]byte) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = string(l)
	}
	return out
}
