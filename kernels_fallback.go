//go:build !(goexperiment.simd && amd64)

package linesplit

// On platforms other than amd64, or on amd64 builds compiled without
// GOEXPERIMENT=simd, simd/archsimd is unavailable: both kernel lists stay
// empty, so only the scalar oracles (SplitInPlace and Iter, which the harness
// runs outside these lists) run. These vars exist so kernel.go's
// SliceKernels/CompressedKernels never need their own build tags.
var (
	platformSliceKernels      []NamedSliceKernel
	platformCompressedKernels []NamedCompressedKernel
)
