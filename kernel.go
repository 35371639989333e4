package linesplit

// FeatureCheck reports whether the current CPU (and Go build) supports a
// given kernel, mirroring the original benchmark's
// `is_x86_feature_detected!`-style predicate functions. A kernel whose
// FeatureCheck returns false is skipped by the harness rather than invoked.
type FeatureCheck func() bool

// SliceKernel splits input into lines, appending zero-copy views into out.
// It has the same contract as SplitInPlace.
type SliceKernel func(input []byte, out *[][]byte)

// CompressedKernel is SliceKernel's sibling for the compressed family; it
// has the same contract as Iter.
type CompressedKernel func(input []byte, out *LineIndex)

// NamedSliceKernel pairs a slice-family kernel with its display name and
// feature predicate, mirroring the original benchmark's
// (name, feature-check, function) triples.
type NamedSliceKernel struct {
	Name   string
	Check  FeatureCheck
	Kernel SliceKernel
}

// NamedCompressedKernel is NamedSliceKernel's sibling for the compressed
// family.
type NamedCompressedKernel struct {
	Name   string
	Check  FeatureCheck
	Kernel CompressedKernel
}

// SliceKernels returns every platform-specific SIMD kernel registered by
// kernels_simd_amd64.go (on a goexperiment.simd amd64 build) or none (on
// kernels_fallback.go's build). The harness iterates this list in order and
// skips any kernel whose Check returns false. The scalar oracle (SplitInPlace)
// is not part of this roster: the harness times and reports it separately,
// once before and once again after this list runs, as an ordering-sensitivity
// probe.
func SliceKernels() []NamedSliceKernel {
	return platformSliceKernels
}

// CompressedKernels is SliceKernels's sibling for the compressed family. Iter,
// the compressed family's scalar oracle, is likewise timed separately by the
// harness rather than appearing in this roster.
func CompressedKernels() []NamedCompressedKernel {
	return platformCompressedKernels
}
