//go:build goexperiment.simd && amd64

package linesplit

import (
	"simd/archsimd"
	"testing"
)

func TestSliceKernelRosterNames(t *testing.T) {
	want := []string{
		"sse2", "sse2_unsafe", "sse2_unroll", "sse2_unrollx4",
		"avx2", "avx2_unsafe", "avx2_unroll", "avx2_unrollx2",
		"avx2_unrollx2_interleavex2", "sse42_unrollx4_interleavex2",
	}
	got := SliceKernels()
	if len(got) != len(want) {
		t.Fatalf("got %d slice kernels, want %d", len(got), len(want))
	}
	for i, k := range got {
		if k.Name != want[i] {
			t.Errorf("slice kernel %d = %q, want %q", i, k.Name, want[i])
		}
	}
}

func TestCompressedKernelRosterNames(t *testing.T) {
	want := []string{
		"sse2", "sse2_unroll", "sse2_unrollx4",
		"avx2_unroll", "avx2_unrollx2", "avx2_unrollx2_interleavex2",
		"avx512_compress", "sse2_unrollx4_pair", "avx2_unrollx2_pair",
	}
	got := CompressedKernels()
	if len(got) != len(want) {
		t.Fatalf("got %d compressed kernels, want %d", len(got), len(want))
	}
	for i, k := range got {
		if k.Name != want[i] {
			t.Errorf("compressed kernel %d = %q, want %q", i, k.Name, want[i])
		}
	}
}

func TestMask32AndMask64Agree(t *testing.T) {
	data := make([]byte, 64)
	for i := range data {
		data[i] = 'a'
	}
	data[3] = '\n'
	data[40] = '\n'
	data[63] = '\n'

	nlCmp := archsimd.BroadcastInt8x32('\n')
	m64 := mask64(data, nlCmp)
	wantBits := uint64(1)<<3 | uint64(1)<<40 | uint64(1)<<63
	if m64 != wantBits {
		t.Errorf("mask64 = %064b, want %064b", m64, wantBits)
	}

	m32Low := mask32(data[0:32], nlCmp)
	if m32Low != uint32(1)<<3 {
		t.Errorf("mask32(low) = %032b, want %032b", m32Low, uint32(1)<<3)
	}
}

func TestFeatureGatesRequireArchSIMDBaseline(t *testing.T) {
	// Every gate beyond "scalar" implies archSIMDAvailable: the documented
	// deviation is that AVX-512BW/VL is required for every archsimd kernel
	// regardless of its nominal name, so no narrower gate can pass without
	// the baseline also passing.
	gates := map[string]FeatureCheck{
		"canRunAVX2":           canRunAVX2,
		"canRunSSE42":          canRunSSE42,
		"canRunAVX512Compress": canRunAVX512Compress,
	}
	for name, gate := range gates {
		if gate() && !archSIMDAvailable {
			t.Errorf("%s() reported true while archSIMDAvailable is false", name)
		}
	}
}
