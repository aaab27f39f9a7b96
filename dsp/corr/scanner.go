package corr

import (
	"fmt"
	"math"
	"math/bits"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-pitch/dsp/core"
)

// Scanner performs repeated period searches with fixed options.
// It caches the FFT plan and scratch buffers, so it is not safe for
// concurrent use.
type Scanner struct {
	opts   PeriodOptions
	useFFT bool

	plan    *algofft.Plan[complex128]
	fftSize int
	refFreq []complex128
	segFreq []complex128
	timeBuf []complex128

	coeffs  []float64
	squares []float64
	prefix  []float64
}

// NewScanner validates opts and prepares a Scanner.
func NewScanner(opts PeriodOptions) (*Scanner, error) {
	opts, err := opts.normalized()
	if err != nil {
		return nil, err
	}

	s := &Scanner{opts: opts}
	switch opts.Method {
	case MethodDirect:
	case MethodFFT:
		s.useFFT = true
	case MethodAuto:
		s.useFFT = preferFFT(opts)
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownMethod, int(opts.Method))
	}

	if s.useFFT {
		s.fftSize = nextPowerOf2(opts.Span())
		plan, err := algofft.NewPlan64(s.fftSize)
		if err != nil {
			return nil, fmt.Errorf("corr: failed to create FFT plan: %w", err)
		}
		s.plan = plan
		s.refFreq = make([]complex128, s.fftSize)
		s.segFreq = make([]complex128, s.fftSize)
		s.timeBuf = make([]complex128, s.fftSize)
	}
	return s, nil
}

// Options returns the normalized options.
func (s *Scanner) Options() PeriodOptions { return s.opts }

// Method returns the backend actually in use.
func (s *Scanner) Method() Method {
	if s.useFFT {
		return MethodFFT
	}
	return MethodDirect
}

// Span returns the number of samples Scan needs from its offset.
func (s *Scanner) Span() int { return s.opts.Span() }

// Scan searches x for period candidates at offset. The buffer must hold at
// least Span() samples from offset. Magnitudes are left at zero.
func (s *Scanner) Scan(x []float64, offset int) ([]Candidate, error) {
	coeffs, err := s.Coefficients(x, offset)
	if err != nil {
		return nil, err
	}
	return selectPeaks(coeffs, s.opts), nil
}

// Coefficients returns the correlation coefficient for every lag from
// MinLag-1 to MaxLag+1. The returned slice is reused by the next call.
func (s *Scanner) Coefficients(x []float64, offset int) ([]float64, error) {
	if len(x) == 0 {
		return nil, ErrEmptyInput
	}
	span := s.opts.Span()
	if offset < 0 || offset+span > len(x) {
		return nil, fmt.Errorf("%w: offset=%d span=%d have=%d", ErrShortBuffer, offset, span, len(x))
	}

	seg := x[offset : offset+span]
	lo := s.opts.MinLag - 1
	hi := s.opts.MaxLag + 1
	w := s.opts.Window

	s.coeffs = core.EnsureLen(s.coeffs, hi-lo+1)
	s.prefixEnergy(seg)
	refEnergy := s.prefix[w]

	if s.useFFT {
		if err := s.fftDots(seg, lo, hi); err != nil {
			return nil, err
		}
		// Rescale so lag 0 reproduces the direct window energy; this makes the
		// result independent of the transform's normalization convention.
		if lag0 := real(s.timeBuf[0]); refEnergy > energyFloor && lag0 != 0 {
			scale := refEnergy / lag0
			for i := range s.coeffs {
				s.coeffs[i] *= scale
			}
		}
	} else {
		ref := seg[:w]
		for d := lo; d <= hi; d++ {
			shifted := seg[d : d+w]
			dot := 0.0
			for i, v := range ref {
				dot += v * shifted[i]
			}
			s.coeffs[d-lo] = dot
		}
	}

	for d := lo; d <= hi; d++ {
		s.coeffs[d-lo] = coefficient(s.coeffs[d-lo], refEnergy, s.prefix[d+w]-s.prefix[d])
	}
	return s.coeffs, nil
}

// prefixEnergy fills s.prefix so that prefix[j]-prefix[i] is the energy of seg[i:j].
func (s *Scanner) prefixEnergy(seg []float64) {
	s.squares = core.EnsureLen(s.squares, len(seg))
	vecmath.MulBlock(s.squares, seg, seg)
	s.prefix = core.EnsureLen(s.prefix, len(seg)+1)
	s.prefix[0] = 0
	for i, v := range s.squares {
		s.prefix[i+1] = s.prefix[i] + v
	}
}

// fftDots writes sum(ref[i]*seg[d+i]) for d in [lo, hi] into s.coeffs using
// IFFT(FFT(seg) * conj(FFT(ref))). The segment fits in one transform, so
// the circular correlation has no wrapped terms for these lags.
func (s *Scanner) fftDots(seg []float64, lo, hi int) error {
	w := s.opts.Window
	for i := range s.timeBuf {
		s.timeBuf[i] = 0
	}
	for i := range w {
		s.timeBuf[i] = complex(seg[i], 0)
	}
	if err := s.plan.Forward(s.refFreq, s.timeBuf); err != nil {
		return fmt.Errorf("corr: forward FFT failed: %w", err)
	}

	for i := range s.timeBuf {
		s.timeBuf[i] = 0
	}
	for i, v := range seg {
		s.timeBuf[i] = complex(v, 0)
	}
	if err := s.plan.Forward(s.segFreq, s.timeBuf); err != nil {
		return fmt.Errorf("corr: forward FFT failed: %w", err)
	}

	for i := range s.segFreq {
		r := s.refFreq[i]
		s.segFreq[i] *= complex(real(r), -imag(r))
	}
	if err := s.plan.Inverse(s.timeBuf, s.segFreq); err != nil {
		return fmt.Errorf("corr: inverse FFT failed: %w", err)
	}

	for d := lo; d <= hi; d++ {
		s.coeffs[d-lo] = real(s.timeBuf[d])
	}
	return nil
}

// preferFFT compares direct work (window * lags) against roughly three
// transforms of the span.
func preferFFT(opts PeriodOptions) bool {
	n := nextPowerOf2(opts.Span())
	direct := float64(opts.Window) * float64(opts.MaxLag-opts.MinLag+3)
	fft := 3 * float64(n) * math.Log2(float64(n))
	return direct > 2*fft
}

func nextPowerOf2(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(n-1))
}
