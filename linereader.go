package linesplit

import "io"

// ============================================================================
// Public Types
// ============================================================================

// LineReader reads newline-delimited lines from an io.Reader, using the
// fastest kernel this build and CPU support. Unlike bufio.Scanner, it reads
// its entire source up front and splits it in one pass, trading streaming
// for throughput - the same tradeoff the kernel family itself makes.
//
// As returned by NewLineReader, a LineReader has not yet read anything; the
// first call to Read or ReadAll triggers initialization.
type LineReader struct {
	// MaxInputSize caps how much of source will be read before
	// ErrInputTooLarge is returned. Zero means DefaultMaxInputSize.
	MaxInputSize int64

	source io.Reader
	state  readerState
}

// readerState holds LineReader's mutable state, kept separate from the
// exported configuration fields above it.
type readerState struct {
	rawBuffer   []byte
	lines       [][]byte
	nextLine    int
	initialized bool
}

// ============================================================================
// Constructors
// ============================================================================

// NewLineReader returns a new LineReader that reads from r.
func NewLineReader(r io.Reader) *LineReader {
	return &LineReader{source: r}
}

// ============================================================================
// Public API
// ============================================================================

// Read returns the next line from the source, without its trailing '\n'.
// It returns io.EOF once every line has been returned. The returned slice
// aliases the reader's internal buffer and is only valid until the next
// call to Read or ReadAll.
func (r *LineReader) Read() ([]byte, error) {
	if err := r.ensureInitialized(); err != nil {
		return nil, err
	}
	if r.state.nextLine >= len(r.state.lines) {
		return nil, io.EOF
	}
	line := r.state.lines[r.state.nextLine]
	r.state.nextLine++
	return line, nil
}

// ReadAll returns every remaining line from the source.
func (r *LineReader) ReadAll() ([][]byte, error) {
	if err := r.ensureInitialized(); err != nil {
		return nil, err
	}
	remaining := r.state.lines[r.state.nextLine:]
	r.state.nextLine = len(r.state.lines)
	return remaining, nil
}

// ============================================================================
// Internal - Initialization
// ============================================================================

func (r *LineReader) ensureInitialized() error {
	if r.state.initialized {
		return nil
	}
	return r.initialize()
}

func (r *LineReader) initialize() error {
	r.state.initialized = true

	if err := r.readInput(); err != nil {
		return err
	}

	kernel := fastestSliceKernel()
	kernel(r.state.rawBuffer, &r.state.lines)
	return nil
}

// fastestSliceKernel returns the last available (and by registration order,
// fastest) slice kernel whose FeatureCheck passes on this CPU - SliceKernels
// lists only the SIMD kernels, in roughly increasing throughput order, in
// the same order the benchmark harness runs them. When no kernel passes its
// check (or none is registered on this build), it returns the scalar oracle
// SplitInPlace.
func fastestSliceKernel() SliceKernel {
	kernels := SliceKernels()
	for i := len(kernels) - 1; i >= 0; i-- {
		if kernels[i].Check() {
			return kernels[i].Kernel
		}
	}
	return SplitInPlace
}

// readInput reads the entire source into rawBuffer, enforcing MaxInputSize.
func (r *LineReader) readInput() error {
	maxSize := r.MaxInputSize
	if maxSize == 0 {
		maxSize = DefaultMaxInputSize
	}

	var initialCap int64
	if seeker, ok := r.source.(io.Seeker); ok {
		if size, err := seeker.Seek(0, io.SeekEnd); err == nil {
			initialCap = size
			_, _ = seeker.Seek(0, io.SeekStart)
		}
	}

	limited := io.LimitReader(r.source, maxSize+1)
	buf, err := readAllWithHint(limited, initialCap)
	if err != nil {
		return err
	}
	if int64(len(buf)) > maxSize {
		return ErrInputTooLarge
	}
	r.state.rawBuffer = buf
	return nil
}

// readAllWithHint reads all of r, pre-allocating a buffer of size
// initialCap when the caller already knows (or estimates) it.
func readAllWithHint(r io.Reader, initialCap int64) ([]byte, error) {
	if initialCap > 0 {
		buf := make([]byte, initialCap)
		n, err := io.ReadFull(r, buf)
		if err == io.ErrUnexpectedEOF || err == io.EOF {
			return buf[:n], nil
		}
		return buf[:n], err
	}
	return io.ReadAll(r)
}
