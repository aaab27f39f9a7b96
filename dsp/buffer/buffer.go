package buffer

import "github.com/cwbudde/algo-pitch/dsp/core"

// Buffer is a growable float64 sample queue with front discard.
// DSP functions accept raw []float64; use Samples() to bridge.
type Buffer struct {
	samples []float64
}

// New returns an empty Buffer with the given initial capacity.
func New(capacity int) *Buffer {
	if capacity < 0 {
		capacity = 0
	}
	return &Buffer{samples: make([]float64, 0, capacity)}
}

// Samples returns the buffered samples. The slice is only valid until the
// next AppendPCM16 or Discard.
func (b *Buffer) Samples() []float64 {
	return b.samples
}

// Len returns the current number of samples.
func (b *Buffer) Len() int {
	return len(b.samples)
}

// AppendPCM16 converts signed 16-bit samples to [-1, 1) and appends them.
func (b *Buffer) AppendPCM16(src []int16) {
	n := len(b.samples)
	b.grow(n + len(src))
	b.samples = b.samples[:n+len(src)]
	core.PCM16ToFloat(b.samples[n:], src)
}

// Discard drops the first n samples, moving the remainder to the front of
// the backing array. n is clamped to [0, Len()].
func (b *Buffer) Discard(n int) {
	if n <= 0 {
		return
	}
	if n >= len(b.samples) {
		b.samples = b.samples[:0]
		return
	}
	rest := copy(b.samples, b.samples[n:])
	b.samples = b.samples[:rest]
}

// Reset empties the buffer, keeping its capacity.
func (b *Buffer) Reset() {
	b.samples = b.samples[:0]
}

func (b *Buffer) grow(n int) {
	if n <= cap(b.samples) {
		return
	}
	newCap := 2 * cap(b.samples)
	if newCap < n {
		newCap = n
	}
	grown := make([]float64, len(b.samples), newCap)
	copy(grown, b.samples)
	b.samples = grown
}
