package pitch

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/cwbudde/algo-pitch/dsp/core"
	"github.com/cwbudde/algo-pitch/dsp/corr"
)

// ErrConfig marks an invalid analysis configuration. All validation errors
// wrap it.
var ErrConfig = errors.New("pitch: invalid configuration")

const (
	defaultPitchMin     = 70.0
	defaultPitchMax     = 400.0
	defaultThresholdSim = 0.9
	defaultThresholdMag = 0.01
	defaultMaxItems     = 3
	defaultRatio        = 0.9
	defaultWindowSec    = 0.01

	// Supported input format.
	requiredChannels    = 1
	requiredSampleWidth = 2
)

// Config holds the tuning knobs shared by Extractor, Tracker and Smoother.
type Config struct {
	// SampleRate of the analyzed stream in Hz.
	SampleRate int

	// PitchMin and PitchMax bound the admissible fundamental in Hz. They map
	// to the lag range [SampleRate/PitchMax, SampleRate/PitchMin].
	PitchMin float64
	PitchMax float64

	// ThresholdSim is the correlation coefficient a candidate must exceed.
	ThresholdSim float64

	// ThresholdMag is the magnitude (half peak-to-peak, full scale 1) a
	// candidate must exceed to be tracked.
	ThresholdMag float64

	// MaxItems caps the candidates returned per analysis step.
	MaxItems int

	// WindowSize is the silence gap in frames after which a thread expires.
	WindowSize int

	// Ratio sets the tolerance band [lag*Ratio, lag/Ratio] for merging a
	// candidate into an existing thread. Must lie in (0, 1).
	Ratio float64

	// DuplicateFraction is the near-duplicate lag separation, as a fraction
	// of the minimum lag. Zero selects corr.DefaultDuplicateFraction.
	DuplicateFraction float64

	// Method selects the correlation backend.
	Method corr.Method
}

// Option mutates a Config.
type Option func(*Config)

// DefaultConfig returns the documented defaults for sampleRate:
// 70-400 Hz, similarity 0.9, magnitude 0.01, three candidates per step,
// a 10 ms expiry window and a 0.9 merge ratio.
func DefaultConfig(sampleRate int) Config {
	return Config{
		SampleRate:   sampleRate,
		PitchMin:     defaultPitchMin,
		PitchMax:     defaultPitchMax,
		ThresholdSim: defaultThresholdSim,
		ThresholdMag: defaultThresholdMag,
		MaxItems:     defaultMaxItems,
		WindowSize:   int(defaultWindowSec * float64(sampleRate)),
		Ratio:        defaultRatio,
	}
}

// NewConfig applies opts to DefaultConfig(sampleRate) and validates the result.
func NewConfig(sampleRate int, opts ...Option) (Config, error) {
	cfg := DefaultConfig(sampleRate)
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// WithPitchRange sets the admissible fundamental range in Hz.
func WithPitchRange(minHz, maxHz float64) Option {
	return func(cfg *Config) {
		cfg.PitchMin = minHz
		cfg.PitchMax = maxHz
	}
}

// WithThresholds sets the similarity and magnitude admission thresholds.
func WithThresholds(sim, mag float64) Option {
	return func(cfg *Config) {
		cfg.ThresholdSim = sim
		cfg.ThresholdMag = mag
	}
}

// WithMaxItems sets the per-step candidate cap.
func WithMaxItems(n int) Option {
	return func(cfg *Config) { cfg.MaxItems = n }
}

// WithWindowSize sets the thread expiry gap in frames.
func WithWindowSize(frames int) Option {
	return func(cfg *Config) { cfg.WindowSize = frames }
}

// WithWindowDuration sets the thread expiry gap in seconds.
func WithWindowDuration(seconds float64) Option {
	return func(cfg *Config) { cfg.WindowSize = int(seconds * float64(cfg.SampleRate)) }
}

// WithRatio sets the thread merge tolerance.
func WithRatio(ratio float64) Option {
	return func(cfg *Config) { cfg.Ratio = ratio }
}

// WithDuplicateFraction sets the near-duplicate candidate separation.
func WithDuplicateFraction(f float64) Option {
	return func(cfg *Config) { cfg.DuplicateFraction = f }
}

// WithMethod selects the correlation backend.
func WithMethod(m corr.Method) Option {
	return func(cfg *Config) { cfg.Method = m }
}

// WithPreset applies a named voice preset. Unknown names leave an invalid
// range behind so Validate reports them.
func WithPreset(name string) Option {
	return func(cfg *Config) {
		lo, hi, err := PresetRange(name)
		if err != nil {
			cfg.PitchMin, cfg.PitchMax = math.NaN(), math.NaN()
			return
		}
		cfg.PitchMin, cfg.PitchMax = lo, hi
	}
}

// PresetRange returns the pitch range of a voice preset: "male" (75-200 Hz)
// or "female" (150-300 Hz).
func PresetRange(name string) (minHz, maxHz float64, err error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "male", "m":
		return 75, 200, nil
	case "female", "f":
		return 150, 300, nil
	}
	return 0, 0, fmt.Errorf("%w: unknown preset %q", ErrConfig, name)
}

// LagRange returns the admissible lag range [wmin, wmax] in samples.
func (c Config) LagRange() (wmin, wmax int) {
	if c.PitchMin <= 0 || c.PitchMax <= 0 {
		return 0, 0
	}
	return int(float64(c.SampleRate) / c.PitchMax), int(float64(c.SampleRate) / c.PitchMin)
}

// StepSize returns the analysis hop in frames (wmin/2).
func (c Config) StepSize() int {
	wmin, _ := c.LagRange()
	return max(wmin/2, 1)
}

// Validate checks the configuration and returns an error wrapping ErrConfig.
func (c Config) Validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate must be positive: %d", ErrConfig, c.SampleRate)
	}
	if !core.IsFinitePositive(c.PitchMin) || !core.IsFinitePositive(c.PitchMax) {
		return fmt.Errorf("%w: pitch bounds must be positive and finite: [%f, %f]",
			ErrConfig, c.PitchMin, c.PitchMax)
	}
	wmin, wmax := c.LagRange()
	if wmin < 2 {
		return fmt.Errorf("%w: pitchmax %f too high for sample rate %d", ErrConfig, c.PitchMax, c.SampleRate)
	}
	if wmin >= wmax {
		return fmt.Errorf("%w: lag range must satisfy wmin < wmax: [%d, %d]", ErrConfig, wmin, wmax)
	}
	if math.IsNaN(c.ThresholdSim) || c.ThresholdSim < 0 || c.ThresholdSim > 1 {
		return fmt.Errorf("%w: similarity threshold must be in [0, 1]: %f", ErrConfig, c.ThresholdSim)
	}
	if math.IsNaN(c.ThresholdMag) || c.ThresholdMag < 0 {
		return fmt.Errorf("%w: magnitude threshold must be non-negative: %f", ErrConfig, c.ThresholdMag)
	}
	if c.MaxItems < 1 {
		return fmt.Errorf("%w: max items must be at least 1: %d", ErrConfig, c.MaxItems)
	}
	if c.WindowSize < 1 {
		return fmt.Errorf("%w: window size must be at least one frame: %d", ErrConfig, c.WindowSize)
	}
	if math.IsNaN(c.Ratio) || c.Ratio <= 0 || c.Ratio >= 1 {
		return fmt.Errorf("%w: ratio must be in (0, 1): %f", ErrConfig, c.Ratio)
	}
	if math.IsNaN(c.DuplicateFraction) || c.DuplicateFraction < 0 || c.DuplicateFraction >= 1 {
		return fmt.Errorf("%w: duplicate fraction must be in [0, 1): %f", ErrConfig, c.DuplicateFraction)
	}
	switch c.Method {
	case corr.MethodAuto, corr.MethodDirect, corr.MethodFFT:
	default:
		return fmt.Errorf("%w: unknown method %v", ErrConfig, c.Method)
	}
	return nil
}

// Unthresholded returns a copy of c whose period search reports candidates
// of any non-negative similarity. Use it for consumers, such as Smoother, that
// filter candidates themselves.
func (c Config) Unthresholded() Config {
	c.ThresholdSim = 0
	return c
}

// periodOptions maps the config onto a corr period search.
func (c Config) periodOptions() corr.PeriodOptions {
	wmin, wmax := c.LagRange()
	return corr.PeriodOptions{
		MinLag:            wmin,
		MaxLag:            wmax,
		Window:            c.StepSize(),
		Threshold:         c.ThresholdSim,
		MaxItems:          c.MaxItems,
		DuplicateFraction: c.DuplicateFraction,
		Method:            c.Method,
	}
}

// CheckFormat rejects anything but mono 16-bit input.
func CheckFormat(channels, sampleWidth int) error {
	if channels != requiredChannels {
		return fmt.Errorf("%w: invalid number of channels: %d (only mono is supported)", ErrConfig, channels)
	}
	if sampleWidth != requiredSampleWidth {
		return fmt.Errorf("%w: invalid sample width: %d bytes (only 16-bit is supported)", ErrConfig, sampleWidth)
	}
	return nil
}
