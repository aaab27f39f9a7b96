package corr

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/cwbudde/algo-pitch/dsp/core"
)

// Errors returned by correlation functions.
var (
	ErrEmptyInput      = errors.New("corr: empty input")
	ErrInvalidLagRange = errors.New("corr: invalid lag range")
	ErrInvalidLength   = errors.New("corr: invalid window length")
	ErrShortBuffer     = errors.New("corr: buffer too short for window")
	ErrUnknownMethod   = errors.New("corr: unknown method")
)

// energyFloor treats windows below this energy as silent.
const energyFloor = 1e-24

// Method selects how lag scans are computed.
type Method int

const (
	// MethodAuto chooses between direct and FFT scanning from the problem size.
	MethodAuto Method = iota

	// MethodDirect computes every lag with an explicit dot product.
	MethodDirect

	// MethodFFT computes all lags with one FFT cross-correlation.
	MethodFFT
)

// String returns the lowercase method name.
func (m Method) String() string {
	switch m {
	case MethodAuto:
		return "auto"
	case MethodDirect:
		return "direct"
	case MethodFFT:
		return "fft"
	default:
		return fmt.Sprintf("Method(%d)", int(m))
	}
}

// ParseMethod parses "auto", "direct" or "fft".
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return MethodAuto, nil
	case "direct":
		return MethodDirect, nil
	case "fft":
		return MethodFFT, nil
	}
	return MethodAuto, fmt.Errorf("%w: %q", ErrUnknownMethod, s)
}

// Candidate is one hypothesis of the dominant period at a buffer offset.
type Candidate struct {
	Lag        int
	Similarity float64
	Magnitude  float64
}

// Similarity returns the normalized correlation coefficient of a and b.
// Only the first min(len(a), len(b)) samples are compared.
func Similarity(a, b []float64) float64 {
	n := min(len(a), len(b))
	var dot, ea, eb float64
	for i := range n {
		x, y := a[i], b[i]
		dot += x * y
		ea += x * x
		eb += y * y
	}
	return coefficient(dot, ea, eb)
}

func coefficient(dot, ea, eb float64) float64 {
	if ea <= energyFloor || eb <= energyFloor {
		return 0
	}
	r := dot / math.Sqrt(ea*eb)
	if math.IsNaN(r) {
		return 0
	}
	return core.Clamp(r, -1, 1)
}

// Magnitude returns an amplitude proxy for x[offset:offset+length]: half the
// peak-to-peak excursion. Out-of-range parts of the window are ignored and an
// empty window yields 0.
func Magnitude(x []float64, offset, length int) float64 {
	start := max(offset, 0)
	end := min(offset+length, len(x))
	if start >= end {
		return 0
	}
	lo, hi := x[start], x[start]
	for _, v := range x[start+1 : end] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return (hi - lo) / 2
}

// MatchTemplate scores pattern[patternOffset:patternOffset+length] against
// target[targetOffset:targetOffset+length].
func MatchTemplate(pattern []float64, patternOffset, length int, target []float64, targetOffset int) (float64, error) {
	if len(pattern) == 0 || len(target) == 0 {
		return 0, ErrEmptyInput
	}
	if length <= 0 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidLength, length)
	}
	if patternOffset < 0 || patternOffset+length > len(pattern) {
		return 0, fmt.Errorf("%w: pattern offset=%d length=%d have=%d",
			ErrShortBuffer, patternOffset, length, len(pattern))
	}
	if targetOffset < 0 || targetOffset+length > len(target) {
		return 0, fmt.Errorf("%w: target offset=%d length=%d have=%d",
			ErrShortBuffer, targetOffset, length, len(target))
	}
	return Similarity(pattern[patternOffset:patternOffset+length], target[targetOffset:targetOffset+length]), nil
}

// BestSplice finds the overlap length w in [minLen, maxLen] for which the
// last w samples of a best correlate with the first w samples of b.
// Lengths exceeding either buffer are skipped. It returns (0, 0) when no
// length is admissible.
func BestSplice(a, b []float64, minLen, maxLen int) (length int, similarity float64) {
	if maxLen < minLen {
		minLen, maxLen = maxLen, minLen
	}
	minLen = max(minLen, 1)

	best := -1
	bestSim := math.Inf(-1)
	for w := minLen; w <= maxLen; w++ {
		if w > len(a) || w > len(b) {
			break
		}
		s := Similarity(a[len(a)-w:], b[:w])
		if s > bestSim {
			bestSim = s
			best = w
		}
	}
	if best < 0 {
		return 0, 0
	}
	return best, bestSim
}
