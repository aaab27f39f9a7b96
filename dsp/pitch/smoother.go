package pitch

import (
	"fmt"
	"math"
)

// SmootherConfig tunes a Smoother.
type SmootherConfig struct {
	SampleRate int

	// A window is voiced when its best similarity exceeds SimMax and its
	// best magnitude exceeds MagMax.
	SimMax float64
	MagMax float64

	// Entries contribute to the pitch estimate only above SimMin and MagMin.
	SimMin float64
	MagMin float64

	// Window is the smoothing length in frames.
	Window int
}

// DefaultSmootherConfig returns the defaults for sampleRate: similarity
// 0.7/0.9, magnitude 0.01/0.03 and a 10 ms window.
func DefaultSmootherConfig(sampleRate int) SmootherConfig {
	return SmootherConfig{
		SampleRate: sampleRate,
		SimMin:     0.7,
		SimMax:     0.9,
		MagMin:     0.01,
		MagMax:     0.03,
		Window:     int(0.01 * float64(sampleRate)),
	}
}

// Validate checks the smoother settings.
func (c SmootherConfig) Validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate must be positive: %d", ErrConfig, c.SampleRate)
	}
	if c.Window < 1 {
		return fmt.Errorf("%w: smoothing window must be at least one frame: %d", ErrConfig, c.Window)
	}
	for _, v := range []float64{c.SimMin, c.SimMax, c.MagMin, c.MagMax} {
		if math.IsNaN(v) {
			return fmt.Errorf("%w: smoother thresholds must be numbers", ErrConfig)
		}
	}
	if c.SimMin > c.SimMax || c.MagMin > c.MagMax {
		return fmt.Errorf("%w: smoother lower thresholds exceed upper thresholds", ErrConfig)
	}
	return nil
}

type smoothEntry struct {
	size  int
	sim   float64
	mag   float64
	pitch float64
}

// Smoother reduces each step to a single pitch value. It keeps the top
// candidate of the recent steps and reports the midpoint of the plausible
// pitches, or 0 when the window does not look voiced.
type Smoother struct {
	cfg     SmootherConfig
	entries []smoothEntry
	frames  int
}

// NewSmoother validates cfg and returns an empty Smoother.
func NewSmoother(cfg SmootherConfig) (*Smoother, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Smoother{cfg: cfg}, nil
}

// Observe feeds an extractor step and returns the smoothed pitch in Hz.
func (s *Smoother) Observe(st Step) float64 {
	if len(st.Candidates) == 0 {
		return s.Feed(st.Size, 0, 0, 0)
	}
	c := st.Candidates[0]
	return s.Feed(st.Size, c.Similarity, c.Magnitude, float64(s.cfg.SampleRate)/float64(c.Lag))
}

// Feed records one step and returns the smoothed pitch in Hz, or 0.
func (s *Smoother) Feed(size int, sim, mag, pitch float64) float64 {
	s.entries = append(s.entries, smoothEntry{size: size, sim: sim, mag: mag, pitch: pitch})
	s.frames += size

	smax, mmax := math.Inf(-1), math.Inf(-1)
	for _, e := range s.entries {
		smax = max(smax, e.sim)
		mmax = max(mmax, e.mag)
	}

	out := 0.0
	if s.cfg.SimMax < smax && s.cfg.MagMax < mmax {
		lo, hi := math.Inf(1), math.Inf(-1)
		for _, e := range s.entries {
			if s.cfg.SimMin < e.sim && s.cfg.MagMin < e.mag {
				lo = min(lo, e.pitch)
				hi = max(hi, e.pitch)
			}
		}
		if lo <= hi {
			out = (lo + hi) / 2
		}
	}

	drop := 0
	for s.frames >= s.cfg.Window && drop < len(s.entries) {
		s.frames -= s.entries[drop].size
		drop++
	}
	if drop > 0 {
		s.entries = append(s.entries[:0], s.entries[drop:]...)
	}
	return out
}

// Reset forgets the window contents.
func (s *Smoother) Reset() {
	s.entries = s.entries[:0]
	s.frames = 0
}
