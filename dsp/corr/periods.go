package corr

import (
	"fmt"
	"math"
	"sort"
)

// DefaultDuplicateFraction is the fraction of MinLag within which two
// candidates are considered the same period.
const DefaultDuplicateFraction = 0.25

// PeriodOptions configures a period search.
type PeriodOptions struct {
	// MinLag and MaxLag bound the candidate lags in samples (inclusive).
	MinLag int
	MaxLag int

	// Window is the length of the compared sub-windows. Zero means MinLag/2.
	Window int

	// Threshold is the minimum coefficient a candidate must reach.
	Threshold float64

	// MaxItems caps the number of returned candidates. Zero means no cap.
	MaxItems int

	// DuplicateFraction sets the minimum lag separation between kept
	// candidates as a fraction of MinLag. Zero means DefaultDuplicateFraction.
	DuplicateFraction float64

	// Method selects the scan backend.
	Method Method
}

func (o PeriodOptions) normalized() (PeriodOptions, error) {
	if o.MinLag < 1 || o.MaxLag <= o.MinLag {
		return o, fmt.Errorf("%w: [%d, %d]", ErrInvalidLagRange, o.MinLag, o.MaxLag)
	}
	if o.Window == 0 {
		o.Window = max(o.MinLag/2, 1)
	}
	if o.Window < 0 {
		return o, fmt.Errorf("%w: %d", ErrInvalidLength, o.Window)
	}
	if o.DuplicateFraction <= 0 || math.IsNaN(o.DuplicateFraction) {
		o.DuplicateFraction = DefaultDuplicateFraction
	}
	if o.MaxItems < 0 {
		o.MaxItems = 0
	}
	return o, nil
}

// Span returns the number of samples a search needs from its offset:
// the window at the largest lag plus one extra lag used to judge whether
// MaxLag is a local maximum.
func (o PeriodOptions) Span() int {
	w := o.Window
	if w == 0 {
		w = max(o.MinLag/2, 1)
	}
	return o.MaxLag + 1 + w
}

// FindPeriods runs a single period search on x at offset.
// See [Scanner] for repeated searches.
func FindPeriods(x []float64, offset int, opts PeriodOptions) ([]Candidate, error) {
	s, err := NewScanner(opts)
	if err != nil {
		return nil, err
	}
	return s.Scan(x, offset)
}

// selectPeaks keeps local maxima of coeffs, which holds the coefficients for
// lags minLag-1 .. maxLag+1, then ranks and thins them.
func selectPeaks(coeffs []float64, opts PeriodOptions) []Candidate {
	var peaks []Candidate
	for k := 1; k < len(coeffs)-1; k++ {
		r := coeffs[k]
		if r < opts.Threshold {
			continue
		}
		// Strict on the left so a plateau yields a single peak.
		if r > coeffs[k-1] && r >= coeffs[k+1] {
			peaks = append(peaks, Candidate{Lag: opts.MinLag - 1 + k, Similarity: r})
		}
	}

	sort.SliceStable(peaks, func(i, j int) bool {
		if peaks[i].Similarity != peaks[j].Similarity {
			return peaks[i].Similarity > peaks[j].Similarity
		}
		return peaks[i].Lag < peaks[j].Lag
	})

	minSep := max(int(opts.DuplicateFraction*float64(opts.MinLag)), 1)
	kept := peaks[:0]
	for _, p := range peaks {
		if opts.MaxItems > 0 && len(kept) >= opts.MaxItems {
			break
		}
		dup := false
		for _, k := range kept {
			d := p.Lag - k.Lag
			if d < 0 {
				d = -d
			}
			if d <= minSep {
				dup = true
				break
			}
		}
		if !dup {
			kept = append(kept, p)
		}
	}
	return kept
}
