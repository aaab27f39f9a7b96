package match

import (
	"errors"
	"fmt"
	"sort"

	resampling "github.com/tphakala/go-audio-resampling"

	"github.com/cwbudde/algo-pitch/dsp/core"
	"github.com/cwbudde/algo-pitch/dsp/corr"
)

var (
	// ErrInvalidSampleRate is returned for non-positive sample rates.
	ErrInvalidSampleRate = errors.New("match: invalid sample rate")
	// ErrEmptyPattern is returned when a pattern has no samples.
	ErrEmptyPattern = errors.New("match: empty pattern")
	// ErrInvalidExcerpt is returned when the excerpt lies outside the source.
	ErrInvalidExcerpt = errors.New("match: invalid excerpt")
)

// DefaultThreshold admits every positively correlated pattern.
const DefaultThreshold = 0.0

// Pattern is a labelled reference clip at the library sample rate.
type Pattern struct {
	Label   string
	Samples []float64
}

// Result is the score of one pattern for one excerpt.
type Result struct {
	Score float64
	Label string
}

// Library holds the patterns to match against. It is built once and read
// by Match; Match does not modify it.
type Library struct {
	sampleRate int
	threshold  float64
	patterns   []Pattern
}

// Option configures a Library.
type Option func(*Library)

// WithThreshold sets the minimum score a result must exceed.
func WithThreshold(threshold float64) Option {
	return func(l *Library) { l.threshold = threshold }
}

// NewLibrary returns an empty library for sources sampled at sampleRate.
func NewLibrary(sampleRate int, opts ...Option) (*Library, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSampleRate, sampleRate)
	}
	l := &Library{sampleRate: sampleRate, threshold: DefaultThreshold}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	return l, nil
}

// SampleRate returns the library sample rate.
func (l *Library) SampleRate() int { return l.sampleRate }

// Threshold returns the score threshold.
func (l *Library) Threshold() float64 { return l.threshold }

// Len returns the number of patterns.
func (l *Library) Len() int { return len(l.patterns) }

// Patterns returns the stored patterns in insertion order.
func (l *Library) Patterns() []Pattern { return l.patterns }

// Add stores a copy of samples under label. Samples recorded at a different
// rate are resampled to the library rate first.
func (l *Library) Add(label string, samples []float64, sampleRate int) error {
	if len(samples) == 0 {
		return fmt.Errorf("%w: %q", ErrEmptyPattern, label)
	}
	if sampleRate <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidSampleRate, sampleRate)
	}

	var data []float64
	if sampleRate == l.sampleRate {
		data = append([]float64(nil), samples...)
	} else {
		var err error
		data, err = resample(samples, sampleRate, l.sampleRate)
		if err != nil {
			return fmt.Errorf("match: resample %q: %w", label, err)
		}
		if len(data) == 0 {
			return fmt.Errorf("%w: %q after resampling", ErrEmptyPattern, label)
		}
	}
	l.patterns = append(l.patterns, Pattern{Label: label, Samples: data})
	return nil
}

// AddPCM16 is Add for signed 16-bit samples.
func (l *Library) AddPCM16(label string, samples []int16, sampleRate int) error {
	x := make([]float64, len(samples))
	core.PCM16ToFloat(x, samples)
	return l.Add(label, x, sampleRate)
}

// Match scores source[offset:offset+length] against every pattern. The
// excerpt is clipped to the end of the source and each comparison is
// truncated to the shorter of excerpt and pattern. Results scoring above the
// threshold are returned by descending score; equal scores keep insertion
// order.
func (l *Library) Match(source []float64, offset, length int) ([]Result, error) {
	if offset < 0 || offset > len(source) || length < 0 {
		return nil, fmt.Errorf("%w: offset=%d length=%d source=%d", ErrInvalidExcerpt, offset, length, len(source))
	}
	length = min(length, len(source)-offset)

	var out []Result
	for _, p := range l.patterns {
		n := min(length, len(p.Samples))
		score := 0.0
		if n > 0 {
			s, err := corr.MatchTemplate(p.Samples, 0, n, source, offset)
			if err != nil {
				return nil, fmt.Errorf("match: %q: %w", p.Label, err)
			}
			score = s
		}
		if score > l.threshold {
			out = append(out, Result{Score: score, Label: p.Label})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out, nil
}

func resample(samples []float64, from, to int) ([]float64, error) {
	r, err := resampling.New(&resampling.Config{
		InputRate:  float64(from),
		OutputRate: float64(to),
		Channels:   1,
		Quality:    resampling.QualitySpec{Preset: resampling.QualityHigh},
	})
	if err != nil {
		return nil, err
	}
	out, err := r.Process(samples)
	if err != nil {
		return nil, err
	}
	tail, err := r.Flush()
	if err != nil {
		return nil, err
	}
	return append(out, tail...), nil
}
